package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/fxsync/internal/metrics"
	"github.com/rickgao/fxsync/internal/model"
	"github.com/rickgao/fxsync/internal/store"
)

// Inserter writes one chunk of records atomically.
type Inserter interface {
	InsertRows(ctx context.Context, records []store.Record) error
}

// Uploader writes price rows to the store in sequential chunks.
type Uploader struct {
	cfg    WriterConfig
	store  Inserter
	logger *slog.Logger

	mu      sync.Mutex
	metrics WriterMetrics
}

// NewUploader creates a new Uploader.
func NewUploader(cfg WriterConfig, s Inserter, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultWriterConfig().BatchSize
	}
	return &Uploader{
		cfg:    cfg,
		store:  s,
		logger: logger,
	}
}

// Stats returns current metrics.
func (u *Uploader) Stats() WriterMetrics {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.metrics
}

// Upload commits rows chunk by chunk and returns the number of rows committed.
// On a chunk failure it stops and returns a *ChunkError; earlier chunks are
// not rolled back.
func (u *Uploader) Upload(ctx context.Context, rows []model.PriceRow) (int, error) {
	records := make([]store.Record, len(rows))
	for i, row := range rows {
		records[i] = u.transform(row)
	}

	committed := 0
	for i, chunk := range chunkRecords(records, u.cfg.BatchSize) {
		pair := chunk[0].Pair
		start := time.Now()

		err := u.store.InsertRows(ctx, chunk)
		metrics.RecordChunk(pair, len(chunk), time.Since(start), err)
		if err != nil {
			u.mu.Lock()
			u.metrics.Errors++
			u.mu.Unlock()

			return committed, &ChunkError{
				Index:     i,
				Offset:    i * u.cfg.BatchSize,
				Size:      len(chunk),
				Committed: committed,
				Err:       err,
			}
		}

		committed += len(chunk)

		u.mu.Lock()
		u.metrics.Inserts += int64(len(chunk))
		u.metrics.Chunks++
		u.mu.Unlock()

		u.logger.Debug("chunk committed",
			"pair", pair,
			"chunk", i+1,
			"rows", len(chunk),
			"duration", time.Since(start),
		)
	}

	u.mu.Lock()
	u.metrics.Uploads++
	u.mu.Unlock()

	return committed, nil
}

// transform projects a PriceRow onto the store's columns.
func (u *Uploader) transform(row model.PriceRow) store.Record {
	return store.Record{
		Pair:      row.Instrument,
		Timestamp: row.Timestamp.Format(model.TimestampLayout),
		Open:      row.Open,
		High:      row.High,
		Low:       row.Low,
		Close:     row.Close,
	}
}

// chunkRecords splits records into consecutive slices of at most size.
func chunkRecords(records []store.Record, size int) [][]store.Record {
	if len(records) == 0 {
		return nil
	}
	chunks := make([][]store.Record, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		chunks = append(chunks, records[start:end])
	}
	return chunks
}
