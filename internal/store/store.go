package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/fxsync/internal/config"
	"github.com/rickgao/fxsync/internal/database"
	"github.com/rickgao/fxsync/internal/postgrest"
)

// Record is the column projection written to the prices table.
type Record struct {
	Pair      string  `json:"pair"`
	Timestamp string  `json:"timestamp"` // "2006-01-02 15:04:05", no zone
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
}

// Client reads and appends price rows.
type Client interface {
	// CountRows counts rows for pair with from <= timestamp <= to.
	CountRows(ctx context.Context, pair, from, to string) (int64, error)

	// InsertRows writes all records atomically.
	InsertRows(ctx context.Context, records []Record) error

	// Close releases connections.
	Close()
}

// Open creates the Client selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s, err := NewPostgres(pool, cfg.Table)
		if err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("store connected",
			"backend", cfg.Backend,
			"host", cfg.Postgres.Host,
			"database", cfg.Postgres.Name,
			"table", cfg.Table,
		)
		return s, nil

	case config.BackendPostgREST:
		client := postgrest.NewClient(
			cfg.PostgREST.URL,
			cfg.PostgREST.APIKey,
			postgrest.WithLogger(logger),
			postgrest.WithTimeout(durationOr(cfg.PostgREST.Timeout, 30*time.Second)),
			postgrest.WithRetries(cfg.PostgREST.Retries(), durationOr(cfg.PostgREST.RetryBackoff, time.Second)),
		)
		logger.Info("store configured",
			"backend", cfg.Backend,
			"url", cfg.PostgREST.URL,
			"table", cfg.Table,
		)
		return NewPostgREST(client, cfg.Table), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
