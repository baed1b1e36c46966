package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mgomes/img2xl/internal/cohere"
	"github.com/mgomes/img2xl/internal/config"
	"github.com/mgomes/img2xl/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the API base URL and optional Cohere key",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return runSetup(cfg)
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cfg *config.Config) error {
	model := newSetupRunner(cfg)
	program := tea.NewProgram(model)

	finalModel, err := program.Run()
	if err != nil {
		return err
	}

	if runner, ok := finalModel.(setupRunner); ok && runner.done {
		cfg.APIBaseURL = runner.baseURL
		cfg.CohereAPIKey = runner.cohereKey
		return cfg.Save()
	}

	return fmt.Errorf("setup cancelled")
}

type setupRunner struct {
	setupModel tui.SetupModel
	cfg        *config.Config
	baseURL    string
	cohereKey  string
	done       bool
}

func newSetupRunner(cfg *config.Config) setupRunner {
	return setupRunner{
		setupModel: tui.NewSetupModel(cfg.APIBaseURL),
		cfg:        cfg,
	}
}

func (m setupRunner) Init() tea.Cmd {
	return tea.Batch(m.setupModel.Init(), tea.EnableBracketedPaste)
}

func (m setupRunner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tui.SetupSubmitMsg:
		if errMsg := m.check(msg); errMsg != "" {
			m.setError(errMsg)
			return m, nil
		}

		m.baseURL = strings.TrimRight(msg.APIBaseURL, "/")
		m.cohereKey = msg.CohereAPIKey
		m.done = true
		return m, tea.Quit

	default:
		newModel, cmd := m.setupModel.Update(msg)
		if sm, ok := newModel.(tui.SetupModel); ok {
			m.setupModel = sm
		}
		return m, cmd
	}
}

// check validates a submission and returns the message to show, or "".
func (m setupRunner) check(msg tui.SetupSubmitMsg) string {
	candidate := *m.cfg
	candidate.APIBaseURL = strings.TrimRight(msg.APIBaseURL, "/")
	if err := candidate.Validate(); err != nil {
		return "Invalid API base URL: " + msg.APIBaseURL
	}

	if msg.CohereAPIKey == "" {
		return ""
	}

	client := cohere.NewClient(msg.CohereAPIKey, m.cfg.EmbedModel, m.cfg.RerankModel, m.cfg.EmbedDim)
	if err := client.ValidateAPIKey(context.Background()); err != nil {
		return "Invalid Cohere API key: " + err.Error()
	}
	return ""
}

func (m *setupRunner) setError(text string) {
	newModel, _ := m.setupModel.Update(tui.SetupErrorMsg{Error: text})
	if sm, ok := newModel.(tui.SetupModel); ok {
		m.setupModel = sm
	}
}

func (m setupRunner) View() string {
	return m.setupModel.View()
}
