package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type SetupModel struct {
	urlInput textinput.Model
	keyInput textinput.Model
	focus    int
	error    string
	width    int
	height   int
}

func NewSetupModel(baseURL string) SetupModel {
	urlInput := textinput.New()
	urlInput.Placeholder = "http://localhost:8000"
	urlInput.SetValue(baseURL)
	urlInput.Focus()
	urlInput.Width = 60

	keyInput := textinput.New()
	keyInput.Placeholder = "Optional: Cohere API key for related questions"
	keyInput.Width = 60
	keyInput.EchoMode = textinput.EchoPassword
	keyInput.EchoCharacter = '•'

	return SetupModel{
		urlInput: urlInput,
		keyInput: keyInput,
	}
}

func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *SetupModel) toggleFocus() {
	if m.focus == 0 {
		m.focus = 1
		m.urlInput.Blur()
		m.keyInput.Focus()
	} else {
		m.focus = 0
		m.keyInput.Blur()
		m.urlInput.Focus()
	}
}

func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "tab", "down", "shift+tab", "up":
			m.toggleFocus()
			return m, nil

		case "enter":
			baseURL := strings.TrimSpace(m.urlInput.Value())
			key := strings.TrimSpace(m.keyInput.Value())

			if baseURL == "" {
				m.error = "API base URL is required"
				return m, nil
			}

			m.error = ""
			return m, func() tea.Msg {
				return SetupSubmitMsg{
					APIBaseURL:   baseURL,
					CohereAPIKey: key,
				}
			}
		}

		if m.focus == 0 {
			m.urlInput, cmd = m.urlInput.Update(msg)
		} else {
			m.keyInput, cmd = m.keyInput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case SetupErrorMsg:
		m.error = msg.Error

	default:
		if m.focus == 0 {
			m.urlInput, cmd = m.urlInput.Update(msg)
		} else {
			m.keyInput, cmd = m.keyInput.Update(msg)
		}
	}

	return m, cmd
}

func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString(brand() + titleStyle.Render(" - Setup") + "\n\n")
	b.WriteString("img2xl talks to a document QA service that extracts text and answers questions.\n\n")
	b.WriteString("1. Enter the base URL of the service (it serves /upload and /ask)\n")
	b.WriteString("2. Optionally paste a Cohere API key from " + activeStyle.Render("https://dashboard.cohere.com/api-keys") + "\n")
	b.WriteString("   to suggest related questions from your history\n\n")

	urlLabel := "API Base URL:"
	if m.focus == 0 {
		urlLabel = activeStyle.Render("> " + urlLabel)
	} else {
		urlLabel = "  " + urlLabel
	}
	b.WriteString(urlLabel + "\n")
	b.WriteString(inputStyle.Render(m.urlInput.View()) + "\n\n")

	keyLabel := "Cohere API Key:"
	if m.focus == 1 {
		keyLabel = activeStyle.Render("> " + keyLabel)
	} else {
		keyLabel = "  " + keyLabel
	}
	b.WriteString(keyLabel + "\n")
	b.WriteString(inputStyle.Render(m.keyInput.View()) + "\n")

	if m.error != "" {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.error) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("tab switch field  enter submit  ctrl+c quit"))

	return b.String()
}
