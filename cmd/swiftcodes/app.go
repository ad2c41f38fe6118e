package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	config "github.com/zdziszkee/swift-codes-catalog/internal/configurations"
	"github.com/zdziszkee/swift-codes-catalog/internal/database"
	"github.com/zdziszkee/swift-codes-catalog/internal/ingestion"
	"github.com/zdziszkee/swift-codes-catalog/internal/logging"
	"github.com/zdziszkee/swift-codes-catalog/internal/metrics"
	repository "github.com/zdziszkee/swift-codes-catalog/internal/repositories"
)

// app holds everything both commands share.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	repo     repository.SwiftRepository
	close    func() error
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr).
		With().Str("app", cfg.AppName).Logger()

	registry := prometheus.NewRegistry()
	a := &app{
		cfg:      cfg,
		log:      logger,
		registry: registry,
		metrics:  metrics.New(registry),
	}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	if a.cfg.Database.Type == database.TypeMemory {
		a.log.Warn().Msg("using the in-memory store, data is lost on exit")
		a.repo = repository.NewMemoryRepository()
		a.close = func() error { return nil }
		return nil
	}

	db, err := database.New(ctx, a.cfg.Database, a.log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	repo, err := repository.NewSQLSwiftRepository(db, a.log)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize repository: %w", err)
	}

	a.repo = repo
	a.close = db.Close
	return nil
}

func (a *app) ingester() *ingestion.Ingester {
	return ingestion.New(a.repo, a.log,
		ingestion.WithMetrics(a.metrics),
		ingestion.WithPolicy(a.cfg.Data.IngestPolicy),
		ingestion.WithBatchSize(a.cfg.Data.BatchSize),
	)
}
