package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgomes/img2xl/internal/db"
	"github.com/mgomes/img2xl/internal/thread"
)

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	app, ok := next.(AppModel)
	require.True(t, ok)
	return app, cmd
}

func TestApp_SubmitOpensThread(t *testing.T) {
	backend := newFakeBackend()
	m := NewAppModel(backend, Options{ExportDir: t.TempDir()})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, screenLanding, m.screen)

	m, cmd := update(t, m, SubmitQueryMsg{Query: "What is the total?"})
	assert.Equal(t, screenThread, m.screen)
	assert.True(t, m.thread.state.Loading())

	res, ok := findMsg[AskResultMsg](runCmd(cmd))
	require.True(t, ok)

	m, cmd = update(t, m, res)
	assert.Equal(t, "The total is $42.", m.thread.state.Answer)

	saved, ok := findMsg[SavedMsg](runCmd(cmd))
	require.True(t, ok)

	backend.history = []db.ThreadSummary{{UUID: saved.Record.ID, Query: saved.Record.Query}}
	m, cmd = update(t, m, saved)
	history, ok := findMsg[HistoryMsg](runCmd(cmd))
	require.True(t, ok)

	m, _ = update(t, m, history)
	assert.Contains(t, m.View(), "What is the total?")
}

func TestApp_NewThreadDropsLateResponse(t *testing.T) {
	backend := newFakeBackend()
	m := NewAppModel(backend, Options{ExportDir: t.TempDir()})

	m, cmd := update(t, m, SubmitQueryMsg{Query: "old question"})
	late, ok := findMsg[AskResultMsg](runCmd(cmd))
	require.True(t, ok)

	m, _ = update(t, m, key(tea.KeyCtrlN))
	assert.Equal(t, screenLanding, m.screen)

	m, _ = update(t, m, late)
	assert.Empty(t, m.thread.state.Answer)

	m, _ = update(t, m, SubmitQueryMsg{Query: "new question"})
	m, cmd = update(t, m, late)
	assert.Nil(t, cmd)
	assert.True(t, m.thread.state.Loading())
	assert.Equal(t, "new question", m.thread.state.Query)
}

func TestApp_SummarizeCarriesDocument(t *testing.T) {
	backend := newFakeBackend()
	m := NewAppModel(backend, Options{ExportDir: t.TempDir()})

	doc := &thread.Document{Name: "scan.pdf", Size: 2048}
	m, cmd := update(t, m, SubmitQueryMsg{Query: thread.SummarizePrompt, Document: doc})
	runCmd(cmd)

	assert.Equal(t, []string{thread.SummarizePrompt}, backend.asked)
	assert.Contains(t, m.thread.content(), "scan.pdf")
	assert.Contains(t, m.thread.content(), "2.0 KB")
}

func TestApp_OpenThreadFromSidebar(t *testing.T) {
	backend := newFakeBackend()
	backend.records["abc"] = thread.Record{
		ID:      "abc",
		Query:   "Who is the vendor?",
		Answer:  "Acme",
		Sources: []string{"Acme Corp"},
	}
	m := NewAppModel(backend, Options{ExportDir: t.TempDir()})
	m, _ = update(t, m, HistoryMsg{Threads: []db.ThreadSummary{{UUID: "abc", Query: "Who is the vendor?"}}})

	m, _ = update(t, m, key(tea.KeyTab))
	assert.True(t, m.sidebar.Focused())

	m, cmd := update(t, m, key(tea.KeyEnter))
	open, ok := findMsg[OpenThreadMsg](runCmd(cmd))
	require.True(t, ok)
	assert.Equal(t, "abc", open.ID)

	m, cmd = update(t, m, open)
	assert.False(t, m.sidebar.Focused())
	loaded, ok := findMsg[ThreadLoadedMsg](runCmd(cmd))
	require.True(t, ok)

	m, cmd = update(t, m, loaded)
	assert.Equal(t, screenThread, m.screen)
	assert.Equal(t, "Acme", m.thread.state.Answer)
	assert.Zero(t, backend.askCount(), "opening history does not re-ask")

	_, ok = findMsg[RelatedMsg](runCmd(cmd))
	assert.True(t, ok)
}

func TestApp_LateUploadKeepsOpenedThread(t *testing.T) {
	backend := newFakeBackend()
	backend.records["abc"] = thread.Record{ID: "abc", Query: "Who is the vendor?", Answer: "Acme"}
	m := NewAppModel(backend, Options{ExportDir: t.TempDir()})

	var upload tea.Cmd
	m.landing, upload = m.landing.Upload("/tmp/scan.pdf")
	require.NotNil(t, upload)

	m, cmd := update(t, m, OpenThreadMsg{ID: "abc"})
	loaded, ok := findMsg[ThreadLoadedMsg](runCmd(cmd))
	require.True(t, ok)
	m, _ = update(t, m, loaded)

	done := upload()
	m, cmd = update(t, m, done)
	assert.Nil(t, cmd)
	assert.Equal(t, screenThread, m.screen)
	assert.Equal(t, "Acme", m.thread.state.Answer)

	// back on the landing screen the cancelled upload stays dropped
	m, _ = update(t, m, key(tea.KeyCtrlN))
	m, cmd = update(t, m, done)
	assert.Nil(t, cmd)
	assert.Equal(t, screenLanding, m.screen)
	assert.Zero(t, backend.askCount())
}

func TestApp_OpenMissingThread(t *testing.T) {
	m := NewAppModel(newFakeBackend(), Options{})

	m, cmd := update(t, m, OpenThreadMsg{ID: "missing"})
	failed, ok := findMsg[ThreadLoadErrorMsg](runCmd(cmd))
	require.True(t, ok)

	m, _ = update(t, m, failed)
	assert.Equal(t, screenLanding, m.screen)
	assert.Contains(t, m.View(), "Could not open thread")
}

func TestApp_CtrlCQuits(t *testing.T) {
	m := NewAppModel(newFakeBackend(), Options{})
	_, cmd := update(t, m, key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
