// Package ledger persists the append-only record of completed moves.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/model"
)

// document is the on-disk layout.
type document struct {
	LastUpdated  model.Timestamp          `json:"last_updated"`
	Transactions []model.TransactionEntry `json:"transactions"`
}

// Ledger is a JSON file of transaction entries. The whole file is rewritten
// after every change.
type Ledger struct {
	now     func() time.Time
	path    string
	entries []model.TransactionEntry
}

// SessionSummary aggregates the entries of one session.
type SessionSummary struct {
	Started  time.Time
	Finished time.Time
	ID       string
	Moves    int
	Undone   int
}

// Open loads the ledger at path. A missing file yields an empty ledger; an
// unreadable or malformed file is an error.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: ledger path cannot be empty", common.ErrMissingConfig)
	}
	l := &Ledger{path: path, now: time.Now}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	if len(data) == 0 {
		return l, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrLedgerCorrupted, path, err)
	}
	l.entries = doc.Transactions
	return l, nil
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// Append adds an entry and persists the ledger before returning.
func (l *Ledger) Append(entry model.TransactionEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = model.NewTimestamp(l.now())
	}
	l.entries = append(l.entries, entry)
	if err := l.save(); err != nil {
		l.entries = l.entries[:len(l.entries)-1]
		return err
	}
	return nil
}

// Entries returns a copy of all entries in append order.
func (l *Ledger) Entries() []model.TransactionEntry {
	return append([]model.TransactionEntry(nil), l.entries...)
}

// LastSession returns the most recent session that still has an entry not
// yet undone.
func (l *Ledger) LastSession() (string, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if !l.entries[i].Undone {
			return l.entries[i].SessionID, true
		}
	}
	return "", false
}

// SessionEntries returns the not-yet-undone entries of a session in append
// order.
func (l *Ledger) SessionEntries(sessionID string) []model.TransactionEntry {
	var out []model.TransactionEntry
	for _, e := range l.entries {
		if e.SessionID == sessionID && !e.Undone {
			out = append(out, e)
		}
	}
	return out
}

// MarkUndone flags every entry of a session as undone and persists the
// ledger. It returns the number of entries changed.
func (l *Ledger) MarkUndone(sessionID string) (int, error) {
	changed := 0
	for i := range l.entries {
		if l.entries[i].SessionID == sessionID && !l.entries[i].Undone {
			l.entries[i].Undone = true
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	if err := l.save(); err != nil {
		return 0, err
	}
	return changed, nil
}

// Sessions summarizes every session, most recent first.
func (l *Ledger) Sessions() []SessionSummary {
	index := make(map[string]int)
	var out []SessionSummary
	for _, e := range l.entries {
		i, ok := index[e.SessionID]
		if !ok {
			index[e.SessionID] = len(out)
			out = append(out, SessionSummary{ID: e.SessionID, Started: e.Timestamp.Time})
			i = len(out) - 1
		}
		s := &out[i]
		s.Moves++
		if e.Undone {
			s.Undone++
		}
		s.Finished = e.Timestamp.Time
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Prune removes entries older than maxAge and returns how many were
// removed.
func (l *Ledger) Prune(maxAge time.Duration) (int, error) {
	cutoff := l.now().Add(-maxAge)
	kept := l.entries[:0:0]
	for _, e := range l.entries {
		if !e.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	removed := len(l.entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	previous := l.entries
	l.entries = kept
	if err := l.save(); err != nil {
		l.entries = previous
		return 0, err
	}
	return removed, nil
}

// save writes the ledger to a temporary file and renames it into place.
func (l *Ledger) save() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	doc := document{
		LastUpdated:  model.NewTimestamp(l.now()),
		Transactions: l.entries,
	}
	if doc.Transactions == nil {
		doc.Transactions = []model.TransactionEntry{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("failed to create ledger temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close ledger: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}
