package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Run summarizes one reorganization session.
type Run struct {
	StartedAt   time.Time
	FinishedAt  time.Time
	UndoneAt    *time.Time
	SessionID   string
	Source      string
	Destination string
	Moved       int
	Skipped     int
	Errors      int
	DryRun      bool
}

// RunFile is the per-item outcome of a run.
type RunFile struct {
	Source      string
	Category    string
	Method      string
	Destination string
	Outcome     string
	Error       string
	Confidence  float64
}

// SaveRun stores a run and its items in a single transaction.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run Run, files []RunFile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(&run); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (session_id, started_at, finished_at, source, destination, dry_run, moved, skipped, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.SessionID, run.StartedAt, run.FinishedAt, run.Source, run.Destination,
		run.DryRun, run.Moved, run.Skipped, run.Errors)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_files WHERE session_id = ?`, run.SessionID); err != nil {
		return fmt.Errorf("failed to clear run files: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_files (session_id, source, category, confidence, method, destination, outcome, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range files {
		if _, err := stmt.ExecContext(ctx, run.SessionID, f.Source, f.Category, f.Confidence,
			f.Method, nullString(f.Destination), f.Outcome, nullString(f.Error)); err != nil {
			return fmt.Errorf("failed to save run file %s: %w", f.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	slog.Debug("Saved run", "session_id", run.SessionID, "files", len(files))
	return nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT session_id, started_at, finished_at, source, destination, dry_run, moved, skipped, errors, undone_at
		FROM runs
		ORDER BY started_at DESC, session_id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var undone sql.NullTime
		if err := rows.Scan(&r.SessionID, &r.StartedAt, &r.FinishedAt, &r.Source, &r.Destination,
			&r.DryRun, &r.Moved, &r.Skipped, &r.Errors, &undone); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if undone.Valid {
			t := undone.Time
			r.UndoneAt = &t
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// RunFiles returns the items recorded for a session in insertion order.
func (s *SQLiteStorage) RunFiles(ctx context.Context, sessionID string) ([]RunFile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(sessionID, "sessionID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source, category, confidence, method, COALESCE(destination, ''), outcome, COALESCE(error, '')
		FROM run_files
		WHERE session_id = ?
		ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run files: %w", err)
	}
	defer rows.Close()

	var files []RunFile
	for rows.Next() {
		var f RunFile
		if err := rows.Scan(&f.Source, &f.Category, &f.Confidence, &f.Method, &f.Destination, &f.Outcome, &f.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run file: %w", err)
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

// MarkRunUndone records when a session was undone. Unknown sessions are
// ignored.
func (s *SQLiteStorage) MarkRunUndone(ctx context.Context, sessionID string, at time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(sessionID, "sessionID"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE runs SET undone_at = ? WHERE session_id = ?`, at, sessionID); err != nil {
		return fmt.Errorf("failed to mark run undone: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
