package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mgomes/img2xl/internal/thread"
)

type screen int

const (
	screenLanding screen = iota
	screenThread
)

type Options struct {
	ExportDir string
}

// AppModel is the root model. It owns the history sidebar and switches
// between the landing screen and a thread.
type AppModel struct {
	backend Backend
	opts    Options
	screen  screen
	landing LandingModel
	thread  ThreadModel
	sidebar SidebarModel
	status  string
	width   int
	height  int
}

func NewAppModel(backend Backend, opts Options) AppModel {
	return AppModel{
		backend: backend,
		opts:    opts,
		screen:  screenLanding,
		landing: NewLandingModel(backend),
		thread:  NewThreadModel(backend, thread.New(""), opts.ExportDir),
		sidebar: NewSidebarModel(),
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.landing.Init(), loadHistoryCmd(m.backend))
}

func (m AppModel) mainSize() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{
		Width:  max(20, m.width-sidebarWidth),
		Height: max(5, m.height-1),
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		main := m.mainSize()
		var cmds [2]tea.Cmd
		m.landing, cmds[0] = m.landing.Update(main)
		m.thread, cmds[1] = m.thread.Update(main)
		m.sidebar, _ = m.sidebar.Update(tea.WindowSizeMsg{Width: sidebarWidth, Height: main.Height})
		return m, tea.Batch(cmds[:]...)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SubmitQueryMsg:
		return m.openNew(msg.Query, msg.Document)

	case OpenThreadMsg:
		m.landing = m.landing.CancelUpload()
		m.sidebar = m.sidebar.SetFocused(false)
		return m, openThreadCmd(m.backend, msg.ID)

	case ThreadLoadedMsg:
		m.thread = m.thread.Invalidate()
		m.thread = NewThreadModel(m.backend, thread.Restore(msg.Record), m.opts.ExportDir)
		m.thread, _ = m.thread.Update(m.mainSize())
		m.screen = screenThread
		m.status = ""
		m.sidebar = m.sidebar.SetActive(msg.Record.ID)
		return m, relatedCmd(m.backend, msg.Record.Query)

	case ThreadLoadErrorMsg:
		slog.Error("failed to open thread", "error", msg.Err)
		m.status = "Could not open thread: " + msg.Err.Error()
		return m, nil

	case HistoryMsg:
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd

	case SavedMsg:
		m.thread, cmd = m.thread.Update(msg)
		if m.thread.State().ID == msg.Record.ID {
			m.sidebar = m.sidebar.SetActive(msg.Record.ID)
		}
		return m, tea.Batch(cmd, loadHistoryCmd(m.backend))

	case UploadDoneMsg, UploadErrorMsg:
		if m.screen != screenLanding {
			return m, nil
		}
		m.landing, cmd = m.landing.Update(msg)
		return m, cmd

	case AskResultMsg, AskErrorMsg, RelatedMsg, ExportedMsg, spinner.TickMsg:
		m.thread, cmd = m.thread.Update(msg)
		return m, cmd
	}

	return m.routeToScreen(msg)
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.screen == screenLanding && m.landing.Blocking() {
		return m.routeToScreen(msg)
	}

	switch msg.String() {
	case "ctrl+n":
		m.thread = m.thread.Invalidate()
		m.landing = m.landing.CancelUpload()
		m.screen = screenLanding
		m.status = ""
		m.sidebar = m.sidebar.SetFocused(false).SetActive("")
		return m, nil

	case "tab":
		m.sidebar = m.sidebar.SetFocused(!m.sidebar.Focused())
		return m, nil

	case "esc":
		if m.sidebar.Focused() {
			m.sidebar = m.sidebar.SetFocused(false)
			return m, nil
		}
	}

	if m.sidebar.Focused() {
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	return m.routeToScreen(msg)
}

func (m AppModel) routeToScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case screenThread:
		m.thread, cmd = m.thread.Update(msg)
	default:
		m.landing, cmd = m.landing.Update(msg)
	}
	return m, cmd
}

// openNew replaces the current thread with a new one for query and asks
// it. Any answer still pending for the old thread is dropped.
func (m AppModel) openNew(query string, doc *thread.Document) (tea.Model, tea.Cmd) {
	m.thread = m.thread.Invalidate()

	st := thread.New(query)
	st.Document = doc

	m.thread = NewThreadModel(m.backend, st, m.opts.ExportDir)
	m.thread, _ = m.thread.Update(m.mainSize())
	m.screen = screenThread
	m.status = ""
	m.sidebar = m.sidebar.SetFocused(false).SetActive("")

	var cmd tea.Cmd
	m.thread, cmd = m.thread.Start(query)
	return m, cmd
}

func (m AppModel) View() string {
	var main string
	switch m.screen {
	case screenThread:
		main = m.thread.View()
	default:
		main = m.landing.View()
	}

	if m.status != "" {
		main = errorStyle.Render(m.status) + "\n" + main
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
}
