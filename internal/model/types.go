package model

import (
	"path/filepath"
	"time"
)

// Store timestamp layouts. Timestamps are written without a zone suffix.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DayLayout       = "2006-01-02"
)

// -----------------------------------------------------------------------------
// Staging Types
// -----------------------------------------------------------------------------

// StagedFile is a downloaded price file awaiting reconciliation.
type StagedFile struct {
	Path string // Full path on disk
	Name string // Base filename (e.g., "eurusd-m1-bid-20250930-20251001.csv")
}

// NewStagedFile builds a StagedFile from a path.
func NewStagedFile(path string) StagedFile {
	return StagedFile{Path: path, Name: filepath.Base(path)}
}

// -----------------------------------------------------------------------------
// Time-Series Types
// -----------------------------------------------------------------------------

// PriceRow is one OHLC observation.
type PriceRow struct {
	Instrument string    // Uppercase symbol
	Timestamp  time.Time // Second precision
	Open       float64
	High       float64
	Low        float64
	Close      float64
}

// DayKey identifies one instrument's trading day.
type DayKey struct {
	Instrument string
	Day        time.Time // Midnight of the calendar day
}

// NewDayKey truncates ts to its calendar day in ts's location.
func NewDayKey(instrument string, ts time.Time) DayKey {
	y, m, d := ts.Date()
	return DayKey{
		Instrument: instrument,
		Day:        time.Date(y, m, d, 0, 0, 0, 0, ts.Location()),
	}
}

// Bounds returns the inclusive timestamp range covering the day.
func (k DayKey) Bounds() (from, to string) {
	day := k.Day.Format(DayLayout)
	return day + " 00:00:00", day + " 23:59:59"
}

// String returns "INSTRUMENT@YYYY-MM-DD".
func (k DayKey) String() string {
	return k.Instrument + "@" + k.Day.Format(DayLayout)
}

// ExistenceRecord is the number of stored rows for a DayKey.
type ExistenceRecord struct {
	Key   DayKey
	Count int64
}

// Duplicate reports whether any rows already exist for the day.
// A day with partial data still counts as ingested.
func (r ExistenceRecord) Duplicate() bool {
	return r.Count > 0
}
