package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/Veraticus/sortsense/internal/common"
)

// acquireLock takes the single-instance lock and returns its release
// function.
func (e *Engine) acquireLock() (func(), error) {
	if e.lockPath == "" {
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(e.lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock := flock.New(e.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", common.ErrLocked, e.lockPath)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("Failed to release lock", "path", e.lockPath, "error", err)
		}
	}, nil
}
