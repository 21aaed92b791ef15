// cmd/tvmode/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/atelier-backend/internal/config"
	"github.com/javajoker/atelier-backend/internal/tvmode"
)

func main() {
	// Only the TV section matters here; database settings may be absent
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Warn("Configuration incomplete, using TV settings as loaded")
	}

	baseURL := flag.String("api", cfg.TV.APIBaseURL, "atelier API base URL")
	rotate := flag.Duration("rotate", cfg.TV.RotateInterval, "panel rotation interval")
	refresh := flag.Duration("refresh", cfg.TV.RefreshInterval, "dashboard refresh interval")
	flag.Parse()

	// Logs would tear the alternate screen
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.WarnLevel)

	model := tvmode.NewModel(tvmode.NewClient(*baseURL, *refresh), *rotate, *refresh)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "tvmode:", err)
		os.Exit(1)
	}
}
