package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mgomes/img2xl/internal/thread"
)

const (
	snippetLines = 4
	headerHeight = 2
	footerHeight = 4
)

// ThreadModel shows one conversation: the current question, its answer,
// source snippets, OCR text and related questions, with a follow-up box.
type ThreadModel struct {
	backend   Backend
	state     thread.State
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	related   []string
	format    thread.Format
	exportDir string
	status    string
	width     int
	height    int
}

func NewThreadModel(backend Backend, state thread.State, exportDir string) ThreadModel {
	input := textinput.New()
	input.Placeholder = "Ask a follow-up..."
	input.Width = 60
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = activeStyle

	m := ThreadModel{
		backend:   backend,
		state:     state,
		input:     input,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		format:    thread.FormatJSON,
		exportDir: exportDir,
	}
	m.refresh()
	return m
}

func (m ThreadModel) State() thread.State {
	return m.state
}

// Start asks question in this thread. It does nothing while another
// question is pending or when question is blank.
func (m ThreadModel) Start(question string) (ThreadModel, tea.Cmd) {
	req, ok := m.state.Begin(question)
	if !ok {
		return m, nil
	}

	m.status = ""
	m.refresh()
	m.viewport.GotoBottom()
	return m, tea.Batch(askCmd(m.backend, req), m.spinner.Tick)
}

// Invalidate drops the in-flight request, if any.
func (m ThreadModel) Invalidate() ThreadModel {
	m.state.Invalidate()
	return m
}

func (m *ThreadModel) setSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(10, width-6)
	m.viewport.Width = width
	m.viewport.Height = max(3, height-headerHeight-footerHeight)
	m.refresh()
}

func (m ThreadModel) Update(msg tea.Msg) (ThreadModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case AskResultMsg:
		if !m.state.Apply(msg.Seq, msg.Result) {
			return m, nil
		}
		m.input.Reset()
		m.refresh()
		m.viewport.GotoBottom()

		// each answered question is saved as its own history entry
		rec := m.state.Record()
		rec.ID = ""
		return m, tea.Batch(
			saveCmd(m.backend, rec),
			relatedCmd(m.backend, m.state.Query),
		)

	case AskErrorMsg:
		if !m.state.Fail(msg.Seq) {
			return m, nil
		}
		slog.Error("ask failed", "error", msg.Err)
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case SavedMsg:
		if msg.Record.Query == m.state.Query && msg.Record.CreatedAt.Equal(m.state.AskedAt) {
			m.state.ID = msg.Record.ID
		}
		return m, nil

	case RelatedMsg:
		if msg.Query == m.state.Query {
			m.related = msg.Suggestions
			m.refresh()
		}
		return m, nil

	case ExportedMsg:
		if msg.Err != nil {
			m.status = errorStyle.Render("Export failed: " + msg.Err.Error())
			slog.Error("export failed", "path", msg.Path, "error", msg.Err)
		} else {
			m.status = activeStyle.Render("Exported to " + msg.Path)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m.Start(m.input.Value())

		case "ctrl+e":
			if m.state.Loading() || m.state.Answer == "" {
				return m, nil
			}
			return m, exportCmd(m.exportDir, m.state.Record(), m.format)

		case "ctrl+t":
			m.format = m.format.Next()
			m.status = ""
			return m, nil

		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *ThreadModel) refresh() {
	m.viewport.SetContent(m.content())
}

func (m ThreadModel) contentWidth() int {
	if m.viewport.Width > 8 {
		return m.viewport.Width - 4
	}
	return 76
}

func (m ThreadModel) content() string {
	var b strings.Builder
	width := m.contentWidth()

	if m.state.Document != nil {
		card := m.state.Document.Name
		if m.state.Document.Size > 0 {
			card += "  " + dimStyle.Render(formatSize(m.state.Document.Size))
		}
		b.WriteString(cardStyle.Render(card) + "\n")
	}

	b.WriteString(sectionStyle.Render("Answer") + "\n")
	if m.state.Loading() {
		b.WriteString(m.spinner.View() + " " + dimStyle.Render(thread.Thinking) + "\n")
		b.WriteString(dimStyle.Render(thread.Analyzing) + "\n")
	} else {
		b.WriteString(lipgloss.NewStyle().Width(width).Render(m.state.DisplayAnswer()) + "\n")
	}

	if len(m.state.Sources) > 0 {
		b.WriteString(sectionStyle.Render("Sources") + "\n")
		for i, src := range m.state.Sources {
			b.WriteString(sourceLabelStyle.Render(fmt.Sprintf("Source #%d", i+1)) + "\n")
			for _, line := range wrapText(src, width-2, snippetLines) {
				b.WriteString("  " + snippetStyle.Render(line) + "\n")
			}
		}
	}

	if m.state.OCRText != "" {
		b.WriteString(sectionStyle.Render("OCR Raw Text") + "\n")
		b.WriteString(ocrStyle.Width(width).Render(m.state.OCRText) + "\n")
	}

	if len(m.related) > 0 {
		b.WriteString(sectionStyle.Render("Related") + "\n")
		for _, q := range m.related {
			b.WriteString("  " + dimStyle.Render("• ") + truncate(q, width-4) + "\n")
		}
	}

	return b.String()
}

func (m ThreadModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(truncate(m.state.Query, max(10, m.width-2))) + "\n\n")
	b.WriteString(m.viewport.View() + "\n")

	b.WriteString(inputStyle.Render(m.input.View()) + "\n")

	export := dimStyle.Render("Export As: ") + activeStyle.Render(strings.ToUpper(string(m.format)))
	if m.status != "" {
		export += "  " + m.status
	}
	b.WriteString(export + "\n")
	b.WriteString(helpStyle.Render("enter ask  ctrl+e export  ctrl+t format  pgup/pgdn scroll  ctrl+n new thread"))

	return b.String()
}
