// Package docqa ties the remote question-answering service to the local
// history store and related-question index.
package docqa

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mgomes/img2xl/internal/api"
	"github.com/mgomes/img2xl/internal/db"
	"github.com/mgomes/img2xl/internal/related"
	"github.com/mgomes/img2xl/internal/thread"
)

const historyLimit = 50

type Service struct {
	api     *api.Client
	store   *db.DB
	related *related.Finder
	logger  *slog.Logger
}

// New returns a Service. store and finder may be nil, in which case
// history and related questions are disabled.
func New(client *api.Client, store *db.DB, finder *related.Finder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:     client,
		store:   store,
		related: finder,
		logger:  logger,
	}
}

func (s *Service) Ask(ctx context.Context, question string) (*api.AnswerResult, error) {
	s.logger.Debug("asking", "question", question)

	res, err := s.api.Ask(ctx, question)
	if err != nil {
		s.logger.Error("ask failed", "error", err)
		return nil, err
	}

	s.logger.Info("answer received", "sources", len(res.Sources), "ocr_bytes", len(res.OCRText))
	return res, nil
}

func (s *Service) Upload(ctx context.Context, path string) (*api.UploadResult, error) {
	s.logger.Debug("uploading", "path", path)

	res, err := s.api.Upload(ctx, path)
	if err != nil {
		s.logger.Error("upload failed", "path", path, "error", err)
		return nil, err
	}

	s.logger.Info("upload complete", "file", res.FileName, "size", res.Size)
	return res, nil
}

// UploadAndSummarize uploads path and, once that succeeds, asks the fixed
// summary question. The returned state carries the answer or the server
// error text; err is non-nil only when the upload itself failed.
func (s *Service) UploadAndSummarize(ctx context.Context, path string) (thread.State, error) {
	up, err := s.Upload(ctx, path)
	if err != nil {
		return thread.State{}, err
	}

	st := thread.New(thread.SummarizePrompt)
	st.Document = &thread.Document{Name: up.FileName, Size: up.Size}

	s.AskInto(ctx, &st, thread.SummarizePrompt)
	return st, nil
}

// AskInto runs a complete ask against st and saves a successful turn.
// It reports whether the ask started and succeeded.
func (s *Service) AskInto(ctx context.Context, st *thread.State, question string) bool {
	req, ok := st.Begin(question)
	if !ok {
		return false
	}

	res, err := s.Ask(ctx, req.Question)
	if err != nil {
		st.Fail(req.Seq)
		return false
	}

	st.Apply(req.Seq, res)

	// each answered question is its own history entry
	st.ID = ""
	rec, err := s.Save(ctx, st.Record())
	if err == nil {
		st.ID = rec.ID
	}
	return true
}

// Save stores a turn in history, assigning an id if it has none, and
// indexes its question. History failures are logged, never fatal to the
// caller's display.
func (s *Service) Save(ctx context.Context, rec thread.Record) (thread.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if s.store == nil {
		return rec, nil
	}

	threadID, err := s.store.SaveThread(rec)
	if err != nil {
		s.logger.Warn("failed to save thread", "id", rec.ID, "error", err)
		return rec, fmt.Errorf("failed to save thread: %w", err)
	}

	if err := s.related.Remember(ctx, threadID, rec.Query); err != nil {
		s.logger.Warn("failed to index question", "id", rec.ID, "error", err)
	}

	return rec, nil
}

func (s *Service) Related(ctx context.Context, query string) []string {
	suggestions, err := s.related.Find(ctx, query)
	if err != nil {
		s.logger.Warn("related lookup failed", "error", err)
	}
	return suggestions
}

func (s *Service) History() ([]db.ThreadSummary, error) {
	return s.Recent(historyLimit)
}

func (s *Service) Thread(id string) (*thread.Record, error) {
	if s.store == nil {
		return nil, fmt.Errorf("history is disabled")
	}
	full, err := s.store.ResolveID(id)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.GetThread(full)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("thread %s not found", id)
	}
	return rec, nil
}

// Delete removes a thread, given its id or a unique prefix of it.
func (s *Service) Delete(id string) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("history is disabled")
	}
	full, err := s.store.ResolveID(id)
	if err != nil {
		return "", err
	}
	if err := s.store.DeleteThread(full); err != nil {
		return "", err
	}
	s.logger.Info("thread deleted", "id", full)
	return full, nil
}

// Recent lists up to limit saved threads, newest first.
func (s *Service) Recent(limit int) ([]db.ThreadSummary, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListThreads(limit)
}
