package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/executor"
	"github.com/Veraticus/sortsense/internal/model"
)

// RestoreFailure is a ledger entry that could not be put back.
type RestoreFailure struct {
	Err   error
	Entry model.TransactionEntry
}

// UndoReport summarizes an undo.
type UndoReport struct {
	SessionID string
	Failures  []RestoreFailure
	Restored  int
}

// Undo reverses the most recent session that still has moves to undo.
// Entries are restored in the order they were recorded. An entry whose
// destination is gone, or whose original location is occupied, is reported
// and left alone; the session is marked undone either way. With nothing to
// undo the report is empty.
func (e *Engine) Undo(ctx context.Context) (*UndoReport, error) {
	unlock, err := e.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	sessionID, ok := e.ledger.LastSession()
	if !ok {
		slog.Info("No session to undo")
		return &UndoReport{}, nil
	}

	report := &UndoReport{SessionID: sessionID}
	entries := e.ledger.SessionEntries(sessionID)

	slog.Info("Undoing session", "session_id", sessionID, "entries", len(entries))

	for _, entry := range entries {
		if err := restore(entry); err != nil {
			common.LogError(err, "Failed to restore item", common.Fields{
				"source":      entry.Source,
				"destination": entry.Destination,
			})
			report.Failures = append(report.Failures, RestoreFailure{Entry: entry, Err: err})
			continue
		}
		report.Restored++
	}

	if _, err := e.ledger.MarkUndone(sessionID); err != nil {
		return report, fmt.Errorf("failed to mark session %s undone: %w", sessionID, err)
	}

	if e.history != nil {
		if err := e.history.MarkRunUndone(ctx, sessionID, e.now()); err != nil {
			slog.Warn("Failed to record undo in history", "session_id", sessionID, "error", err)
		}
	}

	slog.Info("Undo complete",
		"session_id", sessionID,
		"restored", report.Restored,
		"failed", len(report.Failures))
	return report, nil
}

func restore(entry model.TransactionEntry) error {
	if _, err := os.Lstat(entry.Destination); err != nil {
		return common.NewPathError(common.ErrRestore, "find", entry.Destination, err)
	}

	if _, err := os.Lstat(entry.Source); err == nil {
		return common.NewPathError(common.ErrRestore, "restore", entry.Source, os.ErrExist)
	} else if !errors.Is(err, os.ErrNotExist) {
		return common.NewPathError(common.ErrRestore, "restore", entry.Source, err)
	}

	if err := os.MkdirAll(filepath.Dir(entry.Source), 0o755); err != nil {
		return common.NewPathError(common.ErrRestore, "create folder", filepath.Dir(entry.Source), err)
	}

	if err := executor.Relocate(entry.Destination, entry.Source); err != nil {
		return common.NewPathError(common.ErrRestore, "move", entry.Destination, err)
	}

	slog.Debug("Restored item", "source", entry.Source, "from", entry.Destination)
	return nil
}
