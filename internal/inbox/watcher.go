// Package inbox watches a directory and hands new or changed documents to
// a handler once they have stopped changing.
package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

const (
	debounceDelay = 2 * time.Second
	pollInterval  = 500 * time.Millisecond
)

// Handler processes one settled document. path is absolute.
type Handler func(ctx context.Context, path string) error

type Watcher struct {
	dir         string
	handle      Handler
	watcher     *fsnotify.Watcher
	pending     map[string]time.Time
	mu          sync.Mutex
	concurrency int
	debounce    time.Duration
	logger      *slog.Logger
}

func NewWatcher(dir string, handle Handler, concurrency int, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		dir:         abs,
		handle:      handle,
		watcher:     fsw,
		pending:     make(map[string]time.Time),
		concurrency: concurrency,
		debounce:    debounceDelay,
		logger:      logger,
	}, nil
}

// Start watches until ctx is cancelled. Documents still pending at that
// point are dropped.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.watcher.Close() //nolint:errcheck

	if err := w.addWatchRecursive(w.dir); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.processEvents(ctx)
	}()
	go func() {
		defer wg.Done()
		w.processPending(ctx)
	}()

	w.logger.Info("watching inbox", "dir", w.dir)

	<-ctx.Done()
	wg.Wait()
	return nil
}

func (w *Watcher) addWatchRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != w.dir && isHiddenDir(info.Name()) {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}

		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	relPath, err := filepath.Rel(w.dir, event.Name)
	if err != nil || isHiddenRelPath(relPath) {
		return
	}

	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addWatchRecursive(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "dir", relPath, "error", err)
			}
			return
		}
	}

	if !isDocumentFile(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case event.Op&fsnotify.Write == fsnotify.Write,
		event.Op&fsnotify.Create == fsnotify.Create:
		w.pending[event.Name] = time.Now()
		w.logger.Debug("detected change", "path", relPath)

	case event.Op&fsnotify.Remove == fsnotify.Remove,
		event.Op&fsnotify.Rename == fsnotify.Rename:
		delete(w.pending, event.Name)
	}
}

func (w *Watcher) processPending(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.handleSettled(ctx, w.settled(time.Now()))
		}
	}
}

// settled removes and returns the pending paths that have not changed for
// the debounce delay.
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, changedAt := range w.pending {
		if now.Sub(changedAt) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	return ready
}

// handleSettled runs the handler for each path with bounded concurrency.
// A failing document is logged and does not stop the others.
func (w *Watcher) handleSettled(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for _, path := range paths {
		g.Go(func() error {
			rel, _ := filepath.Rel(w.dir, path)
			w.logger.Info("processing document", "path", rel)
			if err := w.handle(gctx, path); err != nil {
				w.logger.Error("failed to process document", "path", rel, "error", err)
			}
			return nil
		})
	}

	_ = g.Wait()
}
