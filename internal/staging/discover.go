package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rickgao/fxsync/internal/model"
)

// Discover lists regular files in dir matching the glob pattern, sorted by name.
// No instrument filtering is applied.
func Discover(dir, pattern string) ([]model.StagedFile, error) {
	if pattern == "" {
		pattern = "*"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("bad staging pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read staging dir: %w", err)
	}

	var files []model.StagedFile
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if ok, _ := filepath.Match(pattern, e.Name()); !ok {
			continue
		}
		files = append(files, model.NewStagedFile(filepath.Join(dir, e.Name())))
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Remove deletes a consumed staged file.
func Remove(file model.StagedFile) error {
	if err := os.Remove(file.Path); err != nil {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}
