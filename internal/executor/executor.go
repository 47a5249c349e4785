// Package executor performs recorded, collision-safe moves.
package executor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/model"
)

const maxNameAttempts = 10000

// Recorder persists completed moves.
type Recorder interface {
	Append(entry model.TransactionEntry) error
}

// Executor moves items into destination folders and records each move
// under one session id.
type Executor struct {
	recorder  Recorder
	now       func() time.Time
	sessionID string
}

// New creates an executor that records moves under sessionID.
func New(recorder Recorder, sessionID string) *Executor {
	return &Executor{
		recorder:  recorder,
		sessionID: sessionID,
		now:       time.Now,
	}
}

// SessionID returns the id moves are recorded under.
func (e *Executor) SessionID() string {
	return e.sessionID
}

// Move relocates src into destDir, picking a free name when the original
// is taken, and appends a ledger entry. It returns the final path.
func (e *Executor) Move(src, destDir string, category model.CategoryID) (string, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return "", common.NewPathError(common.ErrMove, "stat", src, err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", common.NewPathError(common.ErrMove, "create folder", destDir, err)
	}

	target, err := FreeName(destDir, filepath.Base(src), info.IsDir())
	if err != nil {
		return "", common.NewPathError(common.ErrMove, "allocate name", destDir, err)
	}

	if err := Relocate(src, target); err != nil {
		return "", common.NewPathError(common.ErrMove, "move", src, err)
	}

	entry := model.TransactionEntry{
		Timestamp:   model.NewTimestamp(e.now()),
		SessionID:   e.sessionID,
		Source:      src,
		Destination: target,
		Category:    category,
	}
	if err := e.recorder.Append(entry); err != nil {
		// Every completed move must have a ledger entry.
		if rbErr := Relocate(target, src); rbErr != nil {
			slog.Error("Failed to roll back unrecorded move",
				"source", src,
				"destination", target,
				"error", rbErr)
		}
		return "", common.NewPathError(common.ErrMove, "record", src, err)
	}

	slog.Debug("Moved item", "source", src, "destination", target, "category", category)
	return target, nil
}

// FreeName returns a path in dir for name that does not exist yet. Files
// get a numeric suffix before the extension (report_1.pdf), directories
// after the name (photos_1).
func FreeName(dir, name string, isDir bool) (string, error) {
	candidate := filepath.Join(dir, name)
	if !exists(candidate) {
		return candidate, nil
	}

	stem, ext := name, ""
	if !isDir {
		ext = filepath.Ext(name)
		stem = strings.TrimSuffix(name, ext)
	}

	for n := 1; n <= maxNameAttempts; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("exhausted name slots for %s in %s", name, dir)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
