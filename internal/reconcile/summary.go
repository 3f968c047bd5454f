package reconcile

import (
	"log/slog"

	"github.com/google/uuid"
)

// Summary holds the per-run counters.
type Summary struct {
	RunID         uuid.UUID
	Discovered    int // Files matching the staging pattern
	OutOfWindow   int // Files not carrying the target-day marker
	Unresolved    int // Empty, unknown-instrument, or unparsable files
	Duplicates    int // Files whose day was already stored
	UploadedFiles int
	UploadedRows  int
}

// NoNewData reports whether the run uploaded nothing.
func (s Summary) NoNewData() bool {
	return s.UploadedFiles == 0
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID.String()),
		slog.Int("discovered", s.Discovered),
		slog.Int("out_of_window", s.OutOfWindow),
		slog.Int("unresolved", s.Unresolved),
		slog.Int("duplicates", s.Duplicates),
		slog.Int("uploaded_files", s.UploadedFiles),
		slog.Int("uploaded_rows", s.UploadedRows),
	)
}
