package staging

import (
	"path/filepath"
	"strings"
	"time"
)

// NameShape tags which filename convention a staged file follows.
type NameShape int

const (
	ShapeDelimited NameShape = iota
	ShapeConcatenated
)

func (s NameShape) String() string {
	switch s {
	case ShapeDelimited:
		return "delimited"
	case ShapeConcatenated:
		return "concatenated"
	default:
		return "unknown"
	}
}

const nameDelimiter = "-"

// Name is a parsed staged filename.
type Name struct {
	Raw    string
	Shape  NameShape
	Symbol string // Uppercase candidate symbol
}

// ParseName derives the candidate symbol from a filename.
//
// Delimited names use the first segment. Concatenated names use the first six
// characters, widened to seven when the leading three are not a known prefix.
func ParseName(filename string, prefixes []string) Name {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	if strings.Contains(stem, nameDelimiter) {
		segment, _, _ := strings.Cut(stem, nameDelimiter)
		return Name{
			Raw:    base,
			Shape:  ShapeDelimited,
			Symbol: strings.ToUpper(segment),
		}
	}

	symbol := strings.ToUpper(head(stem, 6))
	if !hasKnownPrefix(symbol, prefixes) {
		symbol = strings.ToUpper(head(stem, 7))
	}
	return Name{
		Raw:    base,
		Shape:  ShapeConcatenated,
		Symbol: symbol,
	}
}

// MatchesDay reports whether the filename carries the marker for day.
// Accepted markers: -YYYYMMDD-, -YYYY-MM-DD-, and, for concatenated names,
// a start date given by the first eight digits of the first run of at least
// eight digits. A concatenated end date never matches.
func MatchesDay(filename string, day time.Time) bool {
	base := filepath.Base(filename)
	compact := day.Format("20060102")

	if strings.Contains(base, nameDelimiter+compact+nameDelimiter) {
		return true
	}
	if strings.Contains(base, nameDelimiter+day.Format("2006-01-02")+nameDelimiter) {
		return true
	}
	if !strings.Contains(base, nameDelimiter) {
		return startDate(base) == compact
	}
	return false
}

// startDate returns the first eight digits of the first run of eight or more
// digits in s, or "" when there is none.
func startDate(s string) string {
	run := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			run++
			continue
		}
		if run >= 8 {
			return s[i-run : i-run+8]
		}
		run = 0
	}
	if run >= 8 {
		return s[len(s)-run : len(s)-run+8]
	}
	return ""
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func hasKnownPrefix(symbol string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(symbol, strings.ToUpper(p)) {
			return true
		}
	}
	return false
}
