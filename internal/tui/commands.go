package tui

import (
	"context"
	"log/slog"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgomes/img2xl/internal/api"
	"github.com/mgomes/img2xl/internal/db"
	"github.com/mgomes/img2xl/internal/thread"
)

// Backend is what the UI needs from the rest of the program.
// *docqa.Service implements it.
type Backend interface {
	Ask(ctx context.Context, question string) (*api.AnswerResult, error)
	Upload(ctx context.Context, path string) (*api.UploadResult, error)
	Save(ctx context.Context, rec thread.Record) (thread.Record, error)
	Related(ctx context.Context, query string) []string
	History() ([]db.ThreadSummary, error)
	Thread(id string) (*thread.Record, error)
}

func askCmd(b Backend, req thread.Request) tea.Cmd {
	return func() tea.Msg {
		res, err := b.Ask(context.Background(), req.Question)
		if err != nil {
			return AskErrorMsg{Seq: req.Seq, Err: err}
		}
		return AskResultMsg{Seq: req.Seq, Result: res}
	}
}

func uploadCmd(b Backend, seq uint64, path string) tea.Cmd {
	return func() tea.Msg {
		res, err := b.Upload(context.Background(), path)
		if err != nil {
			return UploadErrorMsg{Seq: seq, Err: err}
		}
		return UploadDoneMsg{Seq: seq, Result: res}
	}
}

func saveCmd(b Backend, rec thread.Record) tea.Cmd {
	return func() tea.Msg {
		saved, err := b.Save(context.Background(), rec)
		if err != nil {
			// already logged by the backend; the answer stays on screen
			return nil
		}
		return SavedMsg{Record: saved}
	}
}

func relatedCmd(b Backend, query string) tea.Cmd {
	return func() tea.Msg {
		return RelatedMsg{Query: query, Suggestions: b.Related(context.Background(), query)}
	}
}

func loadHistoryCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		threads, err := b.History()
		if err != nil {
			slog.Warn("failed to load history", "error", err)
			return nil
		}
		return HistoryMsg{Threads: threads}
	}
}

func openThreadCmd(b Backend, id string) tea.Cmd {
	return func() tea.Msg {
		rec, err := b.Thread(id)
		if err != nil {
			return ThreadLoadErrorMsg{Err: err}
		}
		return ThreadLoadedMsg{Record: *rec}
	}
}

func exportCmd(dir string, rec thread.Record, format thread.Format) tea.Cmd {
	return func() tea.Msg {
		path := filepath.Join(dir, thread.FileName(rec, format))
		if err := thread.WriteFile(path, rec, format); err != nil {
			return ExportedMsg{Path: path, Err: err}
		}
		return ExportedMsg{Path: path}
	}
}
