package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxConn is the subset of *pgxpool.Pool used by Postgres.
type pgxConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres stores rows directly in a Postgres table.
type Postgres struct {
	conn      pgxConn
	pool      *pgxpool.Pool
	countSQL  string
	insertSQL string
}

// NewPostgres creates a Postgres store writing to table.
func NewPostgres(pool *pgxpool.Pool, table string) (*Postgres, error) {
	s, err := newPostgres(pool, table)
	if err != nil {
		return nil, err
	}
	s.pool = pool
	return s, nil
}

func newPostgres(conn pgxConn, table string) (*Postgres, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("table is required")
	}
	ident := pgx.Identifier(strings.Split(table, ".")).Sanitize()

	return &Postgres{
		conn: conn,
		// Bounds arrive as naive strings; the double cast keeps pgx from
		// having to encode a Go string as a timestamp parameter.
		countSQL: `SELECT count(*) FROM ` + ident + `
			WHERE pair = $1
			  AND timestamp BETWEEN $2::text::timestamp AND $3::text::timestamp`,
		insertSQL: `INSERT INTO ` + ident + ` (pair, timestamp, open, high, low, close)
			VALUES ($1, $2::text::timestamp, $3, $4, $5, $6)`,
	}, nil
}

// CountRows counts rows for pair within the inclusive timestamp range.
func (s *Postgres) CountRows(ctx context.Context, pair, from, to string) (int64, error) {
	var n int64
	if err := s.conn.QueryRow(ctx, s.countSQL, pair, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// InsertRows inserts records in one transaction using a pgx.Batch.
func (s *Postgres) InsertRows(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	err := pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range records {
			batch.Queue(s.insertSQL, r.Pair, r.Timestamp, r.Open, r.High, r.Low, r.Close)
		}

		results := tx.SendBatch(ctx, batch)
		for range records {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return err
			}
		}
		return results.Close()
	})
	if err != nil {
		return fmt.Errorf("insert rows: %w", err)
	}
	return nil
}

// Close closes the underlying pool.
func (s *Postgres) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
