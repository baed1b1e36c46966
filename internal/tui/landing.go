package tui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mgomes/img2xl/internal/thread"
)

const uploadFailed = "Upload failed"

var documentTypes = []string{".pdf", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

// LandingModel is the empty-state screen: a question box and a file
// picker. It never asks questions itself; it hands queries to the root
// model with SubmitQueryMsg.
type LandingModel struct {
	backend   Backend
	input     textarea.Model
	picker    filepicker.Model
	picking   bool
	uploading bool
	uploadSeq uint64
	alert     string
	width     int
	height    int
}

func NewLandingModel(backend Backend) LandingModel {
	input := textarea.New()
	input.Placeholder = "Upload PDF or ask anything..."
	input.ShowLineNumbers = false
	input.SetHeight(3)
	input.SetWidth(60)
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.Focus()

	picker := filepicker.New()
	picker.AllowedTypes = documentTypes

	return LandingModel{
		backend: backend,
		input:   input,
		picker:  picker,
	}
}

func (m LandingModel) Init() tea.Cmd {
	return textarea.Blink
}

// Blocking reports whether the landing screen holds exclusive input, as
// with an open alert or file picker.
func (m LandingModel) Blocking() bool {
	return m.alert != "" || m.picking
}

func (m LandingModel) Update(msg tea.Msg) (LandingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(max(20, min(80, msg.Width-4)))
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case UploadDoneMsg:
		if !m.uploading || msg.Seq != m.uploadSeq {
			return m, nil
		}
		m.uploading = false
		doc := &thread.Document{Name: msg.Result.FileName, Size: msg.Result.Size}
		return m, submit(thread.SummarizePrompt, doc)

	case UploadErrorMsg:
		if !m.uploading || msg.Seq != m.uploadSeq {
			return m, nil
		}
		m.uploading = false
		m.alert = uploadFailed
		slog.Error("upload failed", "error", msg.Err)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	if m.picking {
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m LandingModel) handleKey(msg tea.KeyMsg) (LandingModel, tea.Cmd) {
	if m.alert != "" {
		switch msg.String() {
		case "enter", "esc", " ":
			m.alert = ""
		}
		return m, nil
	}

	if m.picking {
		if msg.String() == "ctrl+o" {
			m.picking = false
			return m, nil
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		if ok, path := m.picker.DidSelectFile(msg); ok {
			return m.startUpload(path)
		}
		return m, cmd
	}

	if m.uploading {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		query := m.input.Value()
		if strings.TrimSpace(query) == "" {
			return m, nil
		}
		m.input.Reset()
		return m, submit(query, nil)

	case "ctrl+o":
		m.picking = true
		return m, m.picker.Init()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m LandingModel) startUpload(path string) (LandingModel, tea.Cmd) {
	m.picking = false
	m.uploading = true
	m.uploadSeq++
	return m, uploadCmd(m.backend, m.uploadSeq, path)
}

// CancelUpload forgets the pending upload, if any. Its result is dropped
// when it arrives.
func (m LandingModel) CancelUpload() LandingModel {
	m.uploading = false
	return m
}

// Upload starts uploading path as if it had been picked.
func (m LandingModel) Upload(path string) (LandingModel, tea.Cmd) {
	if m.uploading {
		return m, nil
	}
	return m.startUpload(path)
}

func (m LandingModel) View() string {
	if m.alert != "" {
		box := alertStyle.Render(errorStyle.Render(m.alert) + "\n\n" + helpStyle.Render("enter dismiss"))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Render(brand()) + "\n\n")

	if m.picking {
		b.WriteString(titleStyle.Render("Attach a PDF or image") + "\n\n")
		b.WriteString(m.picker.View() + "\n")
		b.WriteString(helpStyle.Render("enter select  ctrl+o cancel"))
		return b.String()
	}

	b.WriteString(inputStyle.Render(m.input.View()) + "\n")

	if m.uploading {
		b.WriteString(dimStyle.Render("Uploading...") + "\n")
	} else {
		b.WriteString("\n")
	}

	b.WriteString("\n" + helpStyle.Render("enter ask  ctrl+o attach PDF/image  tab history  ctrl+c quit"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}

func submit(query string, doc *thread.Document) tea.Cmd {
	return func() tea.Msg {
		return SubmitQueryMsg{Query: query, Document: doc}
	}
}
