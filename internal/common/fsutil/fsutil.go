package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists reports whether path exists. Permission errors count as existing.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// DefaultConfigCandidates lists the config files looked up when no --config
// flag is given, in priority order.
var DefaultConfigCandidates = []string{
	"extractd.yaml",
	"extractd.toml",
	"extractd.json",
	"~/.config/extractd/config.yaml",
	"~/.config/extractd/config.toml",
	"~/.config/extractd/config.json",
}

// FindFirst returns the first candidate (after ~ expansion) that is a regular
// file, or "" when none is.
func FindFirst(candidates []string) string {
	for _, c := range candidates {
		p, err := ExpandHome(c)
		if err != nil {
			continue
		}
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}
