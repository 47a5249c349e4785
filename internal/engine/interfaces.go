package engine

import (
	"context"
	"time"

	"github.com/Veraticus/sortsense/internal/extract"
	"github.com/Veraticus/sortsense/internal/model"
	"github.com/Veraticus/sortsense/internal/storage"
	"github.com/Veraticus/sortsense/internal/vision"
)

// TextExtractor pulls text out of a file.
type TextExtractor interface {
	Extract(ctx context.Context, path string) extract.Result
}

// Classifier assigns a category from text and a filename.
type Classifier interface {
	Classify(text, filename string) (model.CategoryID, model.Confidence, []string)
}

// ImageClassifier assigns a category to an image.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, path string) (vision.Result, error)
}

// Ledger records moves and supports undoing the latest session.
type Ledger interface {
	Append(entry model.TransactionEntry) error
	LastSession() (string, bool)
	SessionEntries(sessionID string) []model.TransactionEntry
	MarkUndone(sessionID string) (int, error)
}

// HistoryRecorder keeps a summary of every run.
type HistoryRecorder interface {
	SaveRun(ctx context.Context, run storage.Run, files []storage.RunFile) error
	MarkRunUndone(ctx context.Context, sessionID string, at time.Time) error
}
