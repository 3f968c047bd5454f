package staging

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rickgao/fxsync/internal/model"
)

var (
	// ErrEmptyInput means a staged file has no parsable rows.
	ErrEmptyInput = errors.New("staged file has no rows")

	// ErrUnknownInstrument means the filename did not yield a configured symbol.
	ErrUnknownInstrument = errors.New("unknown instrument")
)

// Resolved is a staged file with its identity and rows.
type Resolved struct {
	File model.StagedFile
	Name Name
	Key  model.DayKey
	Rows []model.PriceRow
}

// Resolver maps staged files to (instrument, day) keys.
type Resolver struct {
	known    map[string]struct{}
	prefixes []string
	loc      *time.Location
}

// NewResolver creates a Resolver for the given instruments.
func NewResolver(instruments, prefixes []string, loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	known := make(map[string]struct{}, len(instruments))
	for _, inst := range instruments {
		known[strings.ToUpper(inst)] = struct{}{}
	}
	return &Resolver{
		known:    known,
		prefixes: prefixes,
		loc:      loc,
	}
}

// Resolve parses the file and keys it by the first row's calendar day.
// The date encoded in the filename is ignored.
func (r *Resolver) Resolve(file model.StagedFile) (Resolved, error) {
	name := ParseName(file.Name, r.prefixes)
	if name.Symbol == "" {
		return Resolved{}, fmt.Errorf("%s: %w", file.Name, ErrUnknownInstrument)
	}
	if _, ok := r.known[name.Symbol]; !ok {
		return Resolved{}, fmt.Errorf("%s: %w %q", file.Name, ErrUnknownInstrument, name.Symbol)
	}

	rows, err := ReadRows(file.Path, name.Symbol, r.loc)
	if err != nil {
		return Resolved{}, fmt.Errorf("%s: %w", file.Name, err)
	}
	if len(rows) == 0 {
		return Resolved{}, fmt.Errorf("%s: %w", file.Name, ErrEmptyInput)
	}

	return Resolved{
		File: file,
		Name: name,
		Key:  model.NewDayKey(name.Symbol, rows[0].Timestamp),
		Rows: rows,
	}, nil
}
