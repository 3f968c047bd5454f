package writer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/fxsync/internal/model"
	"github.com/rickgao/fxsync/internal/store"
)

// recordingInserter captures chunk sizes and fails on a chosen call.
type recordingInserter struct {
	calls  [][]store.Record
	failOn int // 1-based call number that fails, 0 = never
}

func (r *recordingInserter) InsertRows(ctx context.Context, records []store.Record) error {
	r.calls = append(r.calls, records)
	if r.failOn > 0 && len(r.calls) == r.failOn {
		return errors.New("503 service unavailable")
	}
	return nil
}

func (r *recordingInserter) sizes() []int {
	out := make([]int, len(r.calls))
	for i, c := range r.calls {
		out[i] = len(c)
	}
	return out
}

func makeRows(n int) []model.PriceRow {
	start := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	rows := make([]model.PriceRow, n)
	for i := range rows {
		rows[i] = model.PriceRow{
			Instrument: "EURUSD",
			Timestamp:  start.Add(time.Duration(i) * time.Minute),
			Open:       1.17,
			High:       1.18,
			Low:        1.16,
			Close:      1.175,
		}
	}
	return rows
}

func TestUploader_Transform(t *testing.T) {
	u := NewUploader(DefaultWriterConfig(), nil, nil)

	row := model.PriceRow{
		Instrument: "GBPUSD",
		Timestamp:  time.Date(2025, 9, 30, 13, 45, 0, 0, time.UTC),
		Open:       1.3401,
		High:       1.3410,
		Low:        1.3399,
		Close:      1.3405,
	}

	rec := u.transform(row)

	assert.Equal(t, store.Record{
		Pair:      "GBPUSD",
		Timestamp: "2025-09-30 13:45:00",
		Open:      1.3401,
		High:      1.3410,
		Low:       1.3399,
		Close:     1.3405,
	}, rec)
}

func TestUploader_ChunksPreserveOrder(t *testing.T) {
	ins := &recordingInserter{}
	u := NewUploader(WriterConfig{BatchSize: 1000}, ins, nil)

	n, err := u.Upload(context.Background(), makeRows(1500))
	require.NoError(t, err)

	assert.Equal(t, 1500, n)
	assert.Equal(t, []int{1000, 500}, ins.sizes())
	assert.Equal(t, "2025-09-30 00:00:00", ins.calls[0][0].Timestamp)
	assert.Equal(t, "2025-09-30 16:40:00", ins.calls[1][0].Timestamp) // row 1000

	stats := u.Stats()
	assert.Equal(t, int64(1500), stats.Inserts)
	assert.Equal(t, int64(2), stats.Chunks)
	assert.Equal(t, int64(1), stats.Uploads)
	assert.Zero(t, stats.Errors)
}

func TestUploader_ExactMultiple(t *testing.T) {
	ins := &recordingInserter{}
	u := NewUploader(WriterConfig{BatchSize: 250}, ins, nil)

	n, err := u.Upload(context.Background(), makeRows(1000))
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
	assert.Equal(t, []int{250, 250, 250, 250}, ins.sizes())
}

func TestUploader_StopsOnFailedChunk(t *testing.T) {
	ins := &recordingInserter{failOn: 2}
	u := NewUploader(WriterConfig{BatchSize: 1000}, ins, nil)

	n, err := u.Upload(context.Background(), makeRows(2500))
	require.Error(t, err)

	// Chunk 3 is never submitted.
	assert.Equal(t, []int{1000, 1000}, ins.sizes())
	assert.Equal(t, 1000, n)

	var chunkErr *ChunkError
	require.ErrorAs(t, err, &chunkErr)
	assert.Equal(t, 1, chunkErr.Index)
	assert.Equal(t, 1000, chunkErr.Offset)
	assert.Equal(t, 1000, chunkErr.Size)
	assert.Equal(t, 1000, chunkErr.Committed)
	assert.Contains(t, err.Error(), "insert chunk 1 (rows 1000-1999, 1000 already committed)")

	stats := u.Stats()
	assert.Equal(t, int64(1), stats.Errors)
	assert.Zero(t, stats.Uploads)
}

func TestUploader_EmptyInput(t *testing.T) {
	ins := &recordingInserter{}
	u := NewUploader(DefaultWriterConfig(), ins, nil)

	n, err := u.Upload(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, ins.calls)
}

func TestUploader_InvalidBatchSizeFallsBack(t *testing.T) {
	u := NewUploader(WriterConfig{BatchSize: 0}, &recordingInserter{}, nil)
	assert.Equal(t, DefaultWriterConfig().BatchSize, u.cfg.BatchSize)
}

func TestChunkRecords(t *testing.T) {
	tests := []struct {
		n    int
		size int
		want []int
	}{
		{0, 10, nil},
		{1, 10, []int{1}},
		{10, 10, []int{10}},
		{11, 10, []int{10, 1}},
		{25, 10, []int{10, 10, 5}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.n, tt.size), func(t *testing.T) {
			chunks := chunkRecords(make([]store.Record, tt.n), tt.size)
			var got []int
			for _, c := range chunks {
				got = append(got, len(c))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
