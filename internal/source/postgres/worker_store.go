// Package postgres provides a Postgres-backed worker source.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/JakeFAU/workerlist/internal/metrics"
	"github.com/JakeFAU/workerlist/internal/workers"
)

// SourceName labels this source in metrics.
const SourceName = "postgres"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used to read workers.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type queryCloser interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
	Close()
}

// WorkerStore reads the full worker collection from a table.
type WorkerStore struct {
	pool   queryCloser
	table  string
	logger *zap.Logger
}

// NewWorkerStore creates a WorkerStore connected with cfg.
func NewWorkerStore(ctx context.Context, cfg Config, logger *zap.Logger) (*WorkerStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &WorkerStore{pool: pool, table: table, logger: nopIfNil(logger)}, nil
}

// NewWorkerStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewWorkerStoreWithPool(pool queryCloser, table string, logger *zap.Logger) (*WorkerStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &WorkerStore{pool: pool, table: name, logger: nopIfNil(logger)}, nil
}

// Close releases the underlying pool resources.
func (s *WorkerStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// ListWorkers returns every row of the table, oldest first.
func (s *WorkerStore) ListWorkers(ctx context.Context) ([]workers.Worker, error) {
	start := time.Now()
	list, err := s.list(ctx)
	metrics.ObserveFetch(SourceName, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("loaded workers", zap.String("table", s.table), zap.Int("count", len(list)))
	return list, nil
}

func (s *WorkerStore) list(ctx context.Context) ([]workers.Worker, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("worker store is not configured")
	}
	// Only id and category are required; the display columns may be NULL.
	query := fmt.Sprintf(`
SELECT
	id,
	COALESCE(name, ''),
	category,
	COALESCE(description, ''),
	COALESCE(location, ''),
	COALESCE(phone, ''),
	COALESCE(image, ''),
	COALESCE(experience, 0),
	COALESCE(rating, 0),
	COALESCE(reviews, 0),
	created_at
FROM %s
ORDER BY created_at`, s.table)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query workers: %w", err)
	}
	defer rows.Close()

	out := []workers.Worker{}
	for rows.Next() {
		var (
			w         workers.Worker
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(
			&w.ID,
			&w.Name,
			&w.Category,
			&w.Description,
			&w.Location,
			&w.Phone,
			&w.Image,
			&w.Experience,
			&w.Rating,
			&w.Reviews,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		if createdAt.Valid {
			w.CreatedAt = createdAt.Time
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workers: %w", err)
	}
	return out, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = "workers"
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
