package tui

import "github.com/charmbracelet/lipgloss"

const (
	emerald = lipgloss.Color("35")
	muted   = lipgloss.Color("241")
	border  = lipgloss.Color("238")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	brandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	brandAccentStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(emerald)

	activeStyle = lipgloss.NewStyle().
			Foreground(emerald)

	dimStyle = lipgloss.NewStyle().
			Foreground(muted)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(muted)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(emerald)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			MarginTop(1)

	sourceLabelStyle = lipgloss.NewStyle().
				Foreground(muted)

	snippetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	ocrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(border).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(border).
			Padding(0, 1)

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(1, 3)
)

func brand() string {
	return brandStyle.Render("img") + brandAccentStyle.Render("2xl")
}
