package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgomes/img2xl/internal/db"
)

const sidebarWidth = 28

type SidebarModel struct {
	threads  []db.ThreadSummary
	selected int
	focused  bool
	activeID string
	height   int
}

func NewSidebarModel() SidebarModel {
	return SidebarModel{}
}

func (m SidebarModel) Focused() bool {
	return m.focused
}

func (m SidebarModel) SetFocused(focused bool) SidebarModel {
	m.focused = focused
	return m
}

// SetActive marks the thread shown in the main pane.
func (m SidebarModel) SetActive(id string) SidebarModel {
	m.activeID = id
	return m
}

func (m SidebarModel) Update(msg tea.Msg) (SidebarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height

	case HistoryMsg:
		m.threads = msg.Threads
		if m.selected >= len(m.threads) {
			m.selected = max(0, len(m.threads)-1)
		}

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.threads)-1 {
				m.selected++
			}

		case "enter":
			if len(m.threads) == 0 {
				return m, nil
			}
			id := m.threads[m.selected].UUID
			return m, func() tea.Msg {
				return OpenThreadMsg{ID: id}
			}
		}
	}

	return m, nil
}

func (m SidebarModel) View() string {
	var b strings.Builder
	inner := sidebarWidth - 3

	b.WriteString(brand() + "\n\n")
	b.WriteString(activeStyle.Render("+ New Thread") + " " + helpStyle.Render("ctrl+n") + "\n\n")

	header := "History"
	if m.focused {
		header = activeStyle.Render("> " + header)
	}
	b.WriteString(sectionStyle.Render(header) + "\n")

	if len(m.threads) == 0 {
		b.WriteString(dimStyle.Render("No threads yet") + "\n")
	}

	visible := len(m.threads)
	if m.height > 8 {
		visible = min(visible, m.height-8)
	}

	for i, t := range m.threads[:visible] {
		label := truncate(t.Query, inner-2)
		switch {
		case m.focused && i == m.selected:
			b.WriteString(selectedStyle.Render("> "+label) + "\n")
		case t.UUID == m.activeID:
			b.WriteString(activeStyle.Render("  "+label) + "\n")
		default:
			b.WriteString("  " + label + "\n")
		}
	}

	style := sidebarStyle.Width(sidebarWidth - 1)
	if m.height > 0 {
		style = style.Height(m.height)
	}
	return style.Render(b.String())
}
