package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mgomes/img2xl/internal/config"
	"github.com/mgomes/img2xl/internal/logging"
	"github.com/mgomes/img2xl/internal/tui"
)

func runTUI(_ *cobra.Command, _ []string) error {
	logPath, err := config.LogPath()
	if err != nil {
		return fmt.Errorf("failed to get log path: %w", err)
	}
	logFile, err := logging.OpenFile(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close() //nolint:errcheck

	logger := newLogger(logFile)

	if !config.Exists() && os.Getenv(config.EnvAPIBaseURL) == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := runSetup(cfg); err != nil {
			return fmt.Errorf("setup failed: %w", err)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	e, err := openEnv(cfg, logger)
	if err != nil {
		return err
	}
	defer e.Close()

	logger.Info("starting", "api", cfg.APIBaseURL)

	model := tui.NewAppModel(e.service, tui.Options{ExportDir: cfg.ExportDirOrDefault()})
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}
