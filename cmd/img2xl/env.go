package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mgomes/img2xl/internal/api"
	"github.com/mgomes/img2xl/internal/cohere"
	"github.com/mgomes/img2xl/internal/config"
	"github.com/mgomes/img2xl/internal/db"
	"github.com/mgomes/img2xl/internal/docqa"
	"github.com/mgomes/img2xl/internal/logging"
	"github.com/mgomes/img2xl/internal/related"
)

// env holds everything a command needs, opened from the saved config.
type env struct {
	cfg     *config.Config
	store   *db.DB
	service *docqa.Service
	logger  *slog.Logger
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer) *slog.Logger {
	logger := logging.New(w, debugLogging)
	slog.SetDefault(logger)
	return logger
}

func openEnv(cfg *config.Config, logger *slog.Logger) (*env, error) {
	dbPath, err := config.DBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	store, err := db.Open(dbPath, cfg.EmbedDim)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Related questions need embeddings; without a key the finder is nil
	// and suggestions fall back to the built-in list.
	var finder *related.Finder
	if cfg.CohereAPIKey != "" {
		finder = related.New(store, cohere.NewClient(cfg.CohereAPIKey, cfg.EmbedModel, cfg.RerankModel, cfg.EmbedDim))
	}

	client := api.NewClient(cfg.APIBaseURL, time.Duration(cfg.RequestTimeout))
	logger.Debug("environment ready", "api", client.BaseURL(), "db", dbPath, "related", finder.Enabled())

	return &env{
		cfg:     cfg,
		store:   store,
		service: docqa.New(client, store, finder, logger),
		logger:  logger,
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("failed to close database", "error", err)
	}
}

// openCLIEnv loads config and opens the environment with logs on w.
func openCLIEnv(w io.Writer) (*env, error) {
	logger := newLogger(w)
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openEnv(cfg, logger)
}
