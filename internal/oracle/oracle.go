// Package oracle answers whether a trading day has already been ingested.
package oracle

import (
	"context"
	"fmt"

	"github.com/rickgao/fxsync/internal/model"
)

// Counter counts stored rows for a pair within an inclusive timestamp range.
type Counter interface {
	CountRows(ctx context.Context, pair, from, to string) (int64, error)
}

// Oracle checks day-level existence in the remote store.
//
// Existence is coarse: any stored row marks the whole day as ingested, so a
// day left partial by an interrupted upload is never backfilled.
type Oracle struct {
	store Counter
}

// New creates an Oracle backed by store.
func New(store Counter) *Oracle {
	return &Oracle{store: store}
}

// Exists returns the number of rows stored for key's instrument and day.
func (o *Oracle) Exists(ctx context.Context, key model.DayKey) (model.ExistenceRecord, error) {
	from, to := key.Bounds()

	n, err := o.store.CountRows(ctx, key.Instrument, from, to)
	if err != nil {
		return model.ExistenceRecord{}, fmt.Errorf("check %s: %w", key, err)
	}
	if n < 0 {
		return model.ExistenceRecord{}, fmt.Errorf("check %s: negative count %d", key, n)
	}

	return model.ExistenceRecord{Key: key, Count: n}, nil
}
