package writer

import (
	"fmt"
)

// WriterConfig contains configuration for the uploader.
type WriterConfig struct {
	// BatchSize is the number of rows sent per insert call.
	BatchSize int
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize: 1000,
	}
}

// WriterMetrics holds metrics for the uploader.
type WriterMetrics struct {
	Inserts int64 // Rows committed
	Chunks  int64 // Successful insert calls
	Errors  int64 // Failed insert calls
	Uploads int64 // Completed uploads
}

// ChunkError reports the chunk whose insert failed.
type ChunkError struct {
	Index     int // Zero-based chunk index
	Offset    int // Index of the chunk's first row
	Size      int
	Committed int // Rows committed by earlier chunks
	Err       error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("insert chunk %d (rows %d-%d, %d already committed): %v",
		e.Index, e.Offset, e.Offset+e.Size-1, e.Committed, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
