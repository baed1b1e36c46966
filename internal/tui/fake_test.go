package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgomes/img2xl/internal/api"
	"github.com/mgomes/img2xl/internal/db"
	"github.com/mgomes/img2xl/internal/thread"
)

type fakeBackend struct {
	mu        sync.Mutex
	answer    *api.AnswerResult
	askErr    error
	uploadErr error
	asked     []string
	uploaded  []string
	saved     []thread.Record
	history   []db.ThreadSummary
	records   map[string]thread.Record
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		answer: &api.AnswerResult{
			Answer:  "The total is $42.",
			Sources: []api.Source{{ChunkText: "Total: $42.00"}},
			OCRText: "INVOICE\nTotal: $42.00",
		},
		records: make(map[string]thread.Record),
	}
}

func (f *fakeBackend) Ask(ctx context.Context, question string) (*api.AnswerResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, question)
	if f.askErr != nil {
		return nil, f.askErr
	}
	return f.answer, nil
}

func (f *fakeBackend) Upload(ctx context.Context, path string) (*api.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, path)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &api.UploadResult{FileName: "scan.pdf", Size: 2048}, nil
}

func (f *fakeBackend) Save(ctx context.Context, rec thread.Record) (thread.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("id-%d", len(f.saved)+1)
	}
	f.saved = append(f.saved, rec)
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeBackend) Related(ctx context.Context, query string) []string {
	return []string{"What is the due date?"}
}

func (f *fakeBackend) History() ([]db.ThreadSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history, nil
}

func (f *fakeBackend) Thread(id string) (*thread.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("thread %s not found", id)
	}
	return &rec, nil
}

func (f *fakeBackend) askCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.asked)
}

// runCmd executes cmd and any batched commands, returning the messages
// they produce.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if m, ok := msg.(T); ok {
			return m, true
		}
	}
	var zero T
	return zero, false
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}
