package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"homeboard/internal/api"
	"homeboard/internal/config"
	"homeboard/internal/logging"
	"homeboard/internal/session"
	"homeboard/internal/sync"
	"homeboard/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	// The terminal is owned by the UI, so logs go to a file.
	logger, logFile, err := logging.SetupFile(filepath.Join(cfg.StateDir, "homeboard.log"), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	client := api.NewClient(cfg.ServerURL)
	sess := session.NewManager(cfg.StateDir)
	syncer := sync.New(client, sess)

	logger.Info("starting", "server", cfg.ServerURL, "state_dir", cfg.StateDir)

	p := tea.NewProgram(tui.NewApp(syncer), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
