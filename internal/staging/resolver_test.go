package staging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rickgao/fxsync/internal/model"
)

var testInstruments = []string{"EURUSD", "GBPUSD", "EURGBP", "GBPAUD", "GBPNOK", "GBPSEK"}

func TestResolver_Resolve(t *testing.T) {
	dir := t.TempDir()
	file := writeStaged(t, dir, "eurusd-m1-bid-20250930-20251001.csv",
		"timestamp,open,high,low,close\n"+
			"1759276800000,1.1,1.2,1.0,1.15\n"+ // 2025-10-01 00:00:00 UTC
			"1759276860000,1.15,1.2,1.1,1.18\n")

	r := NewResolver(testInstruments, testPrefixes, time.UTC)
	res, err := r.Resolve(file)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if res.Key.Instrument != "EURUSD" {
		t.Errorf("Key.Instrument = %q, want EURUSD", res.Key.Instrument)
	}
	// The filename says 2025-09-30, the data starts on 2025-10-01.
	if got := res.Key.Day.Format(model.DayLayout); got != "2025-10-01" {
		t.Errorf("Key.Day = %s, want 2025-10-01", got)
	}
	if len(res.Rows) != 2 {
		t.Errorf("len(Rows) = %d, want 2", len(res.Rows))
	}
	if res.Name.Shape != ShapeDelimited {
		t.Errorf("Name.Shape = %v, want delimited", res.Name.Shape)
	}
}

func TestResolver_ResolveConcatenated(t *testing.T) {
	dir := t.TempDir()
	file := writeStaged(t, dir, "gbpnokm1bid2025093020251001.csv",
		"timestamp,open,high,low,close\n1759190400000,13.1,13.2,13.0,13.15\n") // 2025-09-30

	r := NewResolver(testInstruments, testPrefixes, time.UTC)
	res, err := r.Resolve(file)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Key.String() != "GBPNOK@2025-09-30" {
		t.Errorf("Key = %s, want GBPNOK@2025-09-30", res.Key)
	}
}

func TestResolver_EmptyInput(t *testing.T) {
	dir := t.TempDir()
	file := writeStaged(t, dir, "eurusd-m1-bid-20250930-20251001.csv", "timestamp,open,high,low,close\n")

	r := NewResolver(testInstruments, testPrefixes, time.UTC)
	_, err := r.Resolve(file)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Resolve() error = %v, want ErrEmptyInput", err)
	}
}

func TestResolver_UnknownInstrument(t *testing.T) {
	dir := t.TempDir()
	file := writeStaged(t, dir, "audusdm1bid2025093020251001.csv",
		"timestamp,open,high,low,close\n1759190400000,1,1,1,1\n")

	r := NewResolver(testInstruments, testPrefixes, time.UTC)
	_, err := r.Resolve(file)
	if !errors.Is(err, ErrUnknownInstrument) {
		t.Errorf("Resolve() error = %v, want ErrUnknownInstrument", err)
	}
}

func TestResolver_MissingFile(t *testing.T) {
	r := NewResolver(testInstruments, testPrefixes, time.UTC)
	_, err := r.Resolve(model.NewStagedFile(filepath.Join(t.TempDir(), "eurusd-m1-bid-20250930-20251001.csv")))
	if err == nil {
		t.Fatal("Resolve() expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Resolve() error = %v, want os.ErrNotExist", err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeStaged(t, dir, "gbpusd-m1-bid-20250930-20251001.csv", "")
	writeStaged(t, dir, "eurusd-m1-bid-20250930-20251001.csv", "")
	writeStaged(t, dir, "readme.txt", "")
	if err := os.Mkdir(filepath.Join(dir, "archive.csv"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := Discover(dir, "*.csv")
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	if files[0].Name != "eurusd-m1-bid-20250930-20251001.csv" {
		t.Errorf("files[0].Name = %q, want sorted order", files[0].Name)
	}
}

func TestDiscover_BadPattern(t *testing.T) {
	if _, err := Discover(t.TempDir(), "[a-"); err == nil {
		t.Error("Discover() expected error for malformed pattern")
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "nope"), "*.csv"); err == nil {
		t.Error("Discover() expected error for missing directory")
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	file := writeStaged(t, dir, "eurusd-m1-bid-20250930-20251001.csv", "x")

	if err := Remove(file); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(file.Path); !os.IsNotExist(err) {
		t.Errorf("file still exists after Remove")
	}
	if err := Remove(file); err == nil {
		t.Error("second Remove() expected error")
	}
}

func writeStaged(t *testing.T, dir, name, content string) model.StagedFile {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write staged file: %v", err)
	}
	return model.NewStagedFile(path)
}
