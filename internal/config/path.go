// Package config loads and validates sortsense configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/sortsense/internal/common"
)

// MemoryDB is the history database path that keeps history in memory.
const MemoryDB = ":memory:"

// ExpandPath expands $VAR references and a leading ~ in path and cleans the
// result. Variables are expanded first so a variable may hold a ~ path.
func ExpandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return path
	}

	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}

	return filepath.Clean(path)
}

// StatePath resolves a path sortsense keeps state in. The ledger, its lock
// and the history database are shared by every run, so relative paths are
// anchored to the current directory once, at load time. Empty paths and
// the in-memory database are returned unchanged.
func StatePath(key, path string) (string, error) {
	path = ExpandPath(path)
	if path == "" || path == MemoryDB {
		return path, nil
	}
	if strings.HasPrefix(path, "~") {
		return "", common.NewConfigError(key, "cannot expand %q without a home directory", path)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return "", common.NewConfigError(key, "%q is a directory, expected a file", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", common.NewConfigError(key, "cannot resolve %q: %v", path, err)
	}
	return abs, nil
}
