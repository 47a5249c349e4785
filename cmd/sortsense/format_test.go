package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/engine"
	"github.com/Veraticus/sortsense/internal/ledger"
	"github.com/Veraticus/sortsense/internal/model"
	"github.com/Veraticus/sortsense/internal/storage"
	"github.com/Veraticus/sortsense/internal/testutil/categories"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable(t *testing.T) {
	out := renderTable("Title", []column{{title: "Name"}, {title: "Count", right: true}}, [][]string{
		{"alpha", "1"},
		{"beta"},
	})

	lower := strings.ToLower(out)
	assert.Contains(t, lower, "title")
	assert.Contains(t, lower, "name")
	assert.Contains(t, lower, "count")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
	assert.Empty(t, renderTable("", nil, nil))
}

func TestFormatRuns(t *testing.T) {
	assert.Contains(t, formatRuns(nil), "No sessions recorded yet")

	undone := time.Now().Add(-time.Hour)
	out := formatRuns([]storage.Run{
		{SessionID: "ss-1", StartedAt: time.Now(), Source: "/in", Moved: 3},
		{SessionID: "ss-2", StartedAt: time.Now(), Source: "/in", DryRun: true},
		{SessionID: "ss-3", StartedAt: time.Now(), Source: "/in", UndoneAt: &undone},
	})

	assert.Contains(t, out, "ss-1")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "dry run")
	assert.Contains(t, out, "undone 1 hour ago")
}

func TestFormatLedgerSessions(t *testing.T) {
	assert.Contains(t, formatLedgerSessions(nil, 0), "empty")

	sessions := []ledger.SessionSummary{
		{ID: "ss-b", Started: time.Now(), Finished: time.Now(), Moves: 2, Undone: 2},
		{ID: "ss-a", Started: time.Now(), Finished: time.Now(), Moves: 4, Undone: 1},
		{ID: "ss-0", Started: time.Now(), Finished: time.Now(), Moves: 1},
	}

	out := formatLedgerSessions(sessions, 2)
	assert.Contains(t, out, "ss-b")
	assert.Contains(t, out, "undone")
	assert.Contains(t, out, "1 undone")
	assert.NotContains(t, out, "ss-0")
}

func TestFormatRunFiles(t *testing.T) {
	out := formatRunFiles("ss-1", []storage.RunFile{
		{Source: "/in/invoice.txt", Category: "documents", Confidence: 0.6, Method: "text", Outcome: "moved", Destination: "/out/documents/invoice.txt"},
		{Source: "/in/locked.txt", Category: "work", Outcome: "error", Error: "permission denied"},
	})

	assert.Contains(t, strings.ToLower(out), "session ss-1")
	assert.Contains(t, out, "invoice.txt")
	assert.Contains(t, out, "60%")
	assert.Contains(t, out, "permission denied")
}

func TestFormatCategories(t *testing.T) {
	registry := categories.NewBuilder(t).
		With(model.Category{ID: "work", Description: "Career", Folder: "work", Keywords: []string{"resume", "offer letter"}}).
		Build()

	out := formatCategories(registry, false)
	assert.Contains(t, out, "work/")
	assert.Contains(t, out, "unsorted (default)")
	assert.Contains(t, out, "left in place")

	out = formatCategories(registry, true)
	assert.Contains(t, out, "resume, offer letter")
}

func TestFormatTools(t *testing.T) {
	out := formatTools(map[string]bool{"tesseract": true, "pdftotext": false})

	assert.Contains(t, out, "tesseract")
	assert.Contains(t, out, "found")
	assert.Contains(t, out, "missing")
}

func TestRunOptions(t *testing.T) {
	t.Cleanup(viper.Reset)

	_, err := runOptions("organize", "/in", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	viper.Set("organize.misc_threshold", 1.5)
	_, err = runOptions("organize", "/in", "/out")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	viper.Set("organize.misc_threshold", 0.4)
	viper.Set("organize.max_files", -1)
	_, err = runOptions("organize", "/in", "/out")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	viper.Set("organize.max_files", 10)
	viper.Set("organize.recursive", true)
	viper.Set("organize.dry_run", true)
	opts, err := runOptions("organize", "/in", "/out")
	require.NoError(t, err)
	assert.Equal(t, engine.Options{
		Source:        "/in",
		Destination:   "/out",
		MaxFiles:      10,
		MiscThreshold: 0.4,
		Recursive:     true,
		DryRun:        true,
	}, opts)
}

func TestWriteReport(t *testing.T) {
	analysis := &engine.Analysis{
		StartedAt:   time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
		Source:      "/in",
		Destination: "/out",
		Files: []model.FileRecord{
			{SourcePath: "/in/invoice.txt", Filename: "invoice.txt", Category: "documents", Method: model.MethodText},
		},
	}

	require.NoError(t, writeReport("", analysis))

	path := filepath.Join(t.TempDir(), "reports", "run.json")
	require.NoError(t, writeReport(path, analysis))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "/in", report["source_folder"])
	assert.Equal(t, "/out", report["destination_base"])
	assert.EqualValues(t, 1, report["total_files"])
}
