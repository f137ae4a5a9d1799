// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/workerlist/internal/config"
	collysource "github.com/JakeFAU/workerlist/internal/source/colly"
	"github.com/JakeFAU/workerlist/internal/source/postgres"
	"github.com/JakeFAU/workerlist/internal/workers"
)

type closer interface {
	Close()
}

// App holds the services built once at startup and shared by every command.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	source workers.Source
	closer closer
}

// GetConfig returns the loaded configuration.
func (a *App) GetConfig() config.Config {
	return a.cfg
}

// GetLogger returns the shared zap logger.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetSource returns the configured worker source.
func (a *App) GetSource() workers.Source {
	return a.source
}

// NewApp selects and initializes the worker source named by cfg.Source.Kind.
// It fails fast when the source cannot be built.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{cfg: cfg, logger: logger}

	switch cfg.Source.Kind {
	case config.SourceHTTP, "":
		src, err := collysource.New(collysource.Config{
			BaseURL:     cfg.Upstream.BaseURL,
			WorkersPath: cfg.Upstream.WorkersPath,
			UserAgent:   cfg.Upstream.UserAgent,
			Timeout:     cfg.Upstream.Timeout,
			MaxBodySize: cfg.Upstream.MaxBodySize,
		}, logger.Named("source"))
		if err != nil {
			return nil, fmt.Errorf("init http source: %w", err)
		}
		logger.Info("Using HTTP worker source", zap.String("endpoint", src.Endpoint()))
		a.source = src
	case config.SourcePostgres:
		store, err := postgres.NewWorkerStore(ctx, postgres.Config{
			DSN:      cfg.DB.DSN,
			Table:    cfg.DB.Table,
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		}, logger.Named("source"))
		if err != nil {
			return nil, fmt.Errorf("init postgres source: %w", err)
		}
		logger.Info("Using Postgres worker source", zap.String("table", cfg.DB.Table))
		a.source = store
		a.closer = store
	default:
		return nil, fmt.Errorf("unknown worker source: %s", cfg.Source.Kind)
	}
	return a, nil
}

// Close releases the source and flushes the logger.
func (a *App) Close() {
	if a.closer != nil {
		a.closer.Close()
	}
	// Sync commonly fails on stderr/stdout; nothing useful can be done about it.
	_ = a.logger.Sync()
}
