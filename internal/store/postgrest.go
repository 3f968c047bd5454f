package store

import (
	"context"

	"github.com/rickgao/fxsync/internal/postgrest"
)

// PostgREST stores rows through a PostgREST endpoint.
type PostgREST struct {
	client *postgrest.Client
	table  string
}

// NewPostgREST creates a PostgREST store writing to table.
func NewPostgREST(client *postgrest.Client, table string) *PostgREST {
	return &PostgREST{client: client, table: table}
}

// CountRows counts rows for pair within the inclusive timestamp range.
func (s *PostgREST) CountRows(ctx context.Context, pair, from, to string) (int64, error) {
	return s.client.Count(ctx, s.table,
		postgrest.Filter{Column: "pair", Operator: "eq", Value: pair},
		postgrest.Filter{Column: "timestamp", Operator: "gte", Value: from},
		postgrest.Filter{Column: "timestamp", Operator: "lte", Value: to},
	)
}

// InsertRows posts records as a single insert request.
func (s *PostgREST) InsertRows(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	return s.client.Insert(ctx, s.table, records)
}

// Close is a no-op; HTTP connections are pooled by net/http.
func (s *PostgREST) Close() {}
