// internal/tvmode/model.go
//
// TV mode is a wall-display loop: fetch the dashboard payload, rotate through
// the panels on a timer and refetch on another.
package tvmode

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javajoker/atelier-backend/internal/services"
)

type panel int

const (
	panelOverview panel = iota
	panelFunnel
	panelAlerts
	panelStylists
	panelClients
	panelDelivery
	panelCount
)

var panelTitles = [panelCount]string{
	panelOverview: "Visão geral",
	panelFunnel:   "Funil de produção",
	panelAlerts:   "Alertas",
	panelStylists: "Estilistas",
	panelClients:  "Principais clientes",
	panelDelivery: "Entregas",
}

type payloadMsg struct {
	payload *services.TVPayload
	err     error
}

type rotateMsg struct{}

type refreshMsg struct{}

// Model is the bubbletea model of the TV display.
type Model struct {
	fetcher Fetcher
	rotate  time.Duration
	refresh time.Duration

	panel     panel
	payload   *services.TVPayload
	err       error
	updatedAt time.Time
	paused    bool

	width  int
	height int
}

func NewModel(fetcher Fetcher, rotate, refresh time.Duration) *Model {
	if rotate <= 0 {
		rotate = 15 * time.Second
	}
	if refresh <= 0 {
		refresh = time.Minute
	}
	return &Model{
		fetcher: fetcher,
		rotate:  rotate,
		refresh: refresh,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.scheduleRotate(), m.scheduleRefresh())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case payloadMsg:
		if msg.err != nil {
			// Keep showing the last good payload
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.payload = msg.payload
		m.updatedAt = time.Now()
		return m, nil

	case rotateMsg:
		if !m.paused {
			m.panel = (m.panel + 1) % panelCount
		}
		return m, m.scheduleRotate()

	case refreshMsg:
		return m, tea.Batch(m.fetch(), m.scheduleRefresh())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "right", "l", "n":
			m.panel = (m.panel + 1) % panelCount
		case "left", "h", "p":
			m.panel = (m.panel + panelCount - 1) % panelCount
		case " ", "space":
			m.paused = !m.paused
		case "r":
			return m, m.fetch()
		}
	}
	return m, nil
}

func (m *Model) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		payload, err := m.fetcher.Fetch(ctx)
		return payloadMsg{payload: payload, err: err}
	}
}

func (m *Model) scheduleRotate() tea.Cmd {
	return tea.Tick(m.rotate, func(time.Time) tea.Msg {
		return rotateMsg{}
	})
}

func (m *Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.refresh, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}
