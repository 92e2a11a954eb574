package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"extractd/internal/common/fsutil"
	"extractd/pkg/types"
)

// GGUFScanner discovers *.gguf model files in a directory (non-recursive).
type GGUFScanner struct {
	ext string
}

// NewGGUFScanner returns a scanner matching the .gguf extension, case-insensitively.
func NewGGUFScanner() *GGUFScanner { return &GGUFScanner{ext: ".gguf"} }

// Scan builds a registry from file names. ID and Name are the file name, Path
// is absolute. Results are sorted by ID.
func (s *GGUFScanner) Scan(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), s.ext) {
			continue
		}
		m := types.Model{ID: name, Name: name, Path: filepath.Join(abs, name)}
		if fi, err := e.Info(); err == nil {
			m.SizeBytes = fi.Size()
		}
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// LoadDir scans dir with a GGUFScanner.
func LoadDir(dir string) ([]types.Model, error) {
	return NewGGUFScanner().Scan(dir)
}
