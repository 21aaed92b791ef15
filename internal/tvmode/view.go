// internal/tvmode/view.go
package tvmode

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javajoker/atelier-backend/internal/workflow"
)

const maxAlertRows = 12

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F2C14E"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	valueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)

	severityStyles = map[workflow.Severity]lipgloss.Style{
		workflow.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		workflow.SeverityUrgent:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F2A541")),
		workflow.SeverityWarning:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F2C14E")),
	}
)

func (m *Model) View() string {
	header := titleStyle.Render(fmt.Sprintf("ATELIER · %s", panelTitles[m.panel]))

	var body string
	switch {
	case m.payload == nil && m.err != nil:
		body = errorStyle.Render("Sem conexão: " + m.err.Error())
	case m.payload == nil:
		body = labelStyle.Render("Carregando painel...")
	default:
		body = m.renderPanel()
	}

	width := m.width - 4
	if width < 40 {
		width = 40
	}
	box := boxStyle.Width(width).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, box, m.renderFooter())
}

func (m *Model) renderPanel() string {
	switch m.panel {
	case panelFunnel:
		return m.renderFunnel()
	case panelAlerts:
		return m.renderAlerts()
	case panelStylists:
		return m.renderStylists()
	case panelClients:
		return m.renderClients()
	case panelDelivery:
		return m.renderDelivery()
	default:
		return m.renderOverview()
	}
}

func metric(label string, value interface{}) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("%-22s", label)), valueStyle.Render(fmt.Sprint(value)))
}

func (m *Model) renderOverview() string {
	s := m.payload.Stats
	lines := []string{
		metric("Produtos", s.TotalProducts),
		metric("Em produção", s.ActiveProducts),
		metric("Concluídos", s.CompletedProducts),
		metric("Sem etapas", s.WithoutStages),
		metric("Atrasados", s.Overdue),
		metric("Urgentes", s.Urgent),
		metric("Atenção", s.Warning),
		"",
		metric("Aprovados", m.payload.Approval.Approved),
		metric("Aguardando aprovação", m.payload.Approval.Pending),
		metric("Taxa de aprovação", fmt.Sprintf("%.0f%%", m.payload.Approval.Rate)),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFunnel() string {
	lines := []string{labelStyle.Render(fmt.Sprintf("%-14s %9s %12s %10s", "Etapa", "Pendente", "Andamento", "Concluída"))}
	for _, row := range m.payload.Funnel {
		lines = append(lines, fmt.Sprintf("%-14s %9d %12d %10d", row.StageName, row.Pending, row.InProgress, row.Completed))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderAlerts() string {
	if len(m.payload.Alerts) == 0 {
		return valueStyle.Render("Nenhum alerta. Produção em dia.")
	}
	lines := make([]string, 0, maxAlertRows+1)
	for i, a := range m.payload.Alerts {
		if i == maxAlertRows {
			lines = append(lines, labelStyle.Render(fmt.Sprintf("... e mais %d", len(m.payload.Alerts)-maxAlertRows)))
			break
		}
		style := severityStyles[a.Severity]
		lines = append(lines, style.Render(fmt.Sprintf("%-10s %-24s %-14s %+4dd", a.ProductCode, truncate(a.ProductName, 24), a.StageName, a.DaysRemaining)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderStylists() string {
	if len(m.payload.Stylists) == 0 {
		return labelStyle.Render("Nenhuma estilista cadastrada.")
	}
	lines := []string{labelStyle.Render(fmt.Sprintf("%-20s %10s %10s %8s", "Estilista", "Andamento", "No mês", "No prazo"))}
	for _, s := range m.payload.Stylists {
		lines = append(lines, fmt.Sprintf("%-20s %10d %10d %7.0f%%", truncate(s.Stylist, 20), s.InProgress, s.CompletedThisMonth, s.OnTimeRate))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderClients() string {
	if len(m.payload.TopClients) == 0 {
		return labelStyle.Render("Nenhum cliente cadastrado.")
	}
	lines := make([]string, 0, len(m.payload.TopClients))
	for i, c := range m.payload.TopClients {
		lines = append(lines, fmt.Sprintf("%d. %-28s %s", i+1, truncate(c.Name, 28), valueStyle.Render(fmt.Sprintf("%d coleções", c.Collections))))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderDelivery() string {
	d := m.payload.Delivery
	lines := []string{
		metric("No prazo", d.OnTime),
		metric("Urgentes", d.Urgent),
		metric("Atrasados", d.Delayed),
		metric("Pontualidade", fmt.Sprintf("%.0f%%", d.OnTimeRate)),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	parts := []string{fmt.Sprintf("%d/%d", int(m.panel)+1, int(panelCount))}
	if !m.updatedAt.IsZero() {
		parts = append(parts, "atualizado "+m.updatedAt.Format("15:04:05"))
	}
	if m.paused {
		parts = append(parts, "pausado")
	}
	if m.err != nil && m.payload != nil {
		parts = append(parts, errorStyle.Render("falha ao atualizar"))
	}
	parts = append(parts, "←/→ painel · espaço pausa · r atualiza · q sai")
	return footerStyle.Render(strings.Join(parts, " · "))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
