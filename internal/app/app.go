// Package app wires configuration into the ledger and its snapshot backend.
package app

import (
	"context"
	"fmt"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/config"
	infraBQ "github.com/labibilahe-oss/Vaulty-AI-main/internal/infra/bigquery"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/infra/gcs"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/ledger"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/logger"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/metrics"
)

// App is an opened ledger plus the resources behind it.
type App struct {
	Config *config.Config
	Store  *ledger.Store
	Engine metrics.Engine

	closers []func() error
}

// OpenBackend creates the snapshot backend selected by cfg. The returned
// close function is never nil.
func OpenBackend(ctx context.Context, cfg config.StorageConfig) (ledger.SnapshotStore, func() error, error) {
	log := logger.FromContext(ctx)
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendFile:
		fs, err := ledger.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, noop, fmt.Errorf("OpenBackend: %w", err)
		}
		log.Info().Str("backend", cfg.Backend).Str("dir", cfg.Dir).Msg("Using snapshot backend")
		return fs, noop, nil

	case config.BackendGCS:
		store, err := gcs.NewSnapshotStore(ctx, cfg.Bucket, cfg.Prefix)
		if err != nil {
			return nil, noop, fmt.Errorf("OpenBackend: %w", err)
		}
		log.Info().Str("backend", cfg.Backend).Str("bucket", cfg.Bucket).Str("prefix", cfg.Prefix).Msg("Using snapshot backend")
		return store, store.Close, nil

	case config.BackendBigQuery:
		store, err := infraBQ.NewSnapshotStore(ctx, cfg.Project, cfg.Dataset)
		if err != nil {
			return nil, noop, fmt.Errorf("OpenBackend: %w", err)
		}
		if err := store.EnsureTable(ctx); err != nil {
			store.Close()
			return nil, noop, fmt.Errorf("OpenBackend: %w", err)
		}
		log.Info().Str("backend", cfg.Backend).Str("project", cfg.Project).Str("dataset", cfg.Dataset).Msg("Using snapshot backend")
		return store, store.Close, nil
	}

	return nil, noop, fmt.Errorf("OpenBackend: unknown backend %q", cfg.Backend)
}

// Open opens the configured backend and loads the ledger from it.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	backend, closeBackend, err := OpenBackend(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	store, err := ledger.Open(ctx, backend)
	if err != nil {
		closeBackend()
		return nil, fmt.Errorf("Open: %w", err)
	}

	return &App{
		Config:  cfg,
		Store:   store,
		Engine:  metrics.Engine{WarnThreshold: cfg.Metrics.WarnThreshold},
		closers: []func() error{closeBackend},
	}, nil
}

// Close releases the backend.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
