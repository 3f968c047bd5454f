package staging

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/fxsync/internal/model"
)

var requiredColumns = []string{"timestamp", "open", "high", "low", "close"}

// ReadRows parses a staged CSV file into price rows for symbol.
// Timestamps are millisecond epochs rendered as wall-clock time in loc.
func ReadRows(path, symbol string, loc *time.Location) ([]model.PriceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	return parseRows(f, symbol, loc)
}

func parseRows(r io.Reader, symbol string, loc *time.Location) ([]model.PriceRow, error) {
	if loc == nil {
		loc = time.UTC
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []model.PriceRow
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		row, err := parseRecord(record, idx, symbol, loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		idx[col] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("header missing column %q", col)
		}
	}
	return idx, nil
}

func parseRecord(record []string, idx map[string]int, symbol string, loc *time.Location) (model.PriceRow, error) {
	field := func(name string) (string, error) {
		i := idx[name]
		if i >= len(record) {
			return "", fmt.Errorf("missing %s value", name)
		}
		return strings.TrimSpace(record[i]), nil
	}

	raw, err := field("timestamp")
	if err != nil {
		return model.PriceRow{}, err
	}
	ts, err := parseEpochMillis(raw, loc)
	if err != nil {
		return model.PriceRow{}, err
	}

	var prices [4]float64
	for i, name := range requiredColumns[1:] {
		raw, err := field(name)
		if err != nil {
			return model.PriceRow{}, err
		}
		prices[i], err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.PriceRow{}, fmt.Errorf("parse %s %q: %w", name, raw, err)
		}
	}

	return model.PriceRow{
		Instrument: symbol,
		Timestamp:  ts,
		Open:       prices[0],
		High:       prices[1],
		Low:        prices[2],
		Close:      prices[3],
	}, nil
}

// parseEpochMillis converts a millisecond epoch to second precision.
// Fractional seconds are truncated.
func parseEpochMillis(raw string, loc *time.Location) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Some exports write the epoch as a float ("1727654400000.0").
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
		}
		ms = int64(f)
	}
	return time.UnixMilli(ms).In(loc).Truncate(time.Second), nil
}
