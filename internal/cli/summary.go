package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Veraticus/sortsense/internal/engine"
	"github.com/Veraticus/sortsense/internal/model"
)

const maxListedFiles = 10

// FormatAnalysis renders the analysis grouped by category, largest group
// first.
func FormatAnalysis(registry *model.Registry, a *engine.Analysis) string {
	var b strings.Builder

	byCategory := make(map[model.CategoryID][]model.FileRecord)
	for _, f := range a.Files {
		byCategory[f.Category] = append(byCategory[f.Category], f)
	}
	ids := make([]model.CategoryID, 0, len(byCategory))
	for id := range byCategory {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(byCategory[ids[i]]) != len(byCategory[ids[j]]) {
			return len(byCategory[ids[i]]) > len(byCategory[ids[j]])
		}
		return ids[i] < ids[j]
	})

	if len(a.Folders) > 0 {
		b.WriteString(BoldStyle.Render(fmt.Sprintf("%s FOLDERS: %d kept together", FolderIcon, len(a.Folders))))
		b.WriteString("\n")
		for _, f := range a.Folders {
			fmt.Fprintf(&b, "  [%s] %s/ → %s (%d files)\n",
				ScoreBar(f.Confidence), f.Name, f.Category, f.FileCount)
		}
		b.WriteString("\n")
	}

	for _, id := range ids {
		files := byCategory[id]
		desc := string(id)
		if c, ok := registry.Get(id); ok && c.Description != "" {
			desc = c.Description
		}
		b.WriteString(BoldStyle.Render(fmt.Sprintf("%s %s (%s): %d files",
			FolderIcon, strings.ToUpper(string(id)), desc, len(files))))
		b.WriteString("\n")

		for i, f := range files {
			if i == maxListedFiles {
				b.WriteString(SubtleStyle.Render(fmt.Sprintf("  ... and %d more", len(files)-maxListedFiles)))
				b.WriteString("\n")
				break
			}
			fmt.Fprintf(&b, "  [%s] %s\n", ScoreBar(f.Confidence.Normalized()), truncateName(f.Filename, 45))
			if len(f.Matches) > 0 {
				matches := f.Matches
				if len(matches) > 3 {
					matches = matches[:3]
				}
				b.WriteString(SubtleStyle.Render("       Matched: " + strings.Join(matches, ", ")))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	stats := a.Stats()
	fmt.Fprintf(&b, "Total files analyzed: %d (%s)\n", stats.TotalFiles, humanize.Bytes(uint64(max(stats.TotalSize, 0))))
	fmt.Fprintf(&b, "Categories found: %d", len(byCategory))
	if stats.Errors > 0 {
		fmt.Fprintf(&b, "\n%s", WarningStyle.Render(fmt.Sprintf("Extraction errors: %d", stats.Errors)))
	}
	return b.String()
}

// FormatResult renders the outcome of a run.
func FormatResult(res *engine.Result) string {
	var b strings.Builder

	for _, o := range res.Outcomes {
		name := filepath.Base(o.Source)
		switch o.Status {
		case engine.StatusPlanned:
			fmt.Fprintf(&b, "  %s %s\n            → %s\n", DryRunIcon, name, o.Destination)
		case engine.StatusFailed:
			fmt.Fprintf(&b, "  %s\n", FormatError(fmt.Sprintf("%s: %v", name, o.Err)))
		}
	}

	ids := make([]model.CategoryID, 0, len(res.MovedByCategory))
	for id := range res.MovedByCategory {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fmt.Fprintf(&b, "  %s %s: %d\n", FolderIcon, id, res.MovedByCategory[id])
	}

	if res.DryRun {
		b.WriteString(InfoStyle.Render(fmt.Sprintf("\nWould move %d items, skip %d", res.Moved(), res.Skipped)))
	} else {
		b.WriteString(SuccessStyle.Render(fmt.Sprintf("\n%s Moved %d items, skipped %d, errors %d",
			SuccessIcon, res.Moved(), res.Skipped, res.Errors)))
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render("Session: " + res.SessionID))
	}
	return b.String()
}

// FormatUndo renders the outcome of an undo.
func FormatUndo(report *engine.UndoReport) string {
	if report.SessionID == "" {
		return FormatInfo("No sessions to undo")
	}

	var b strings.Builder
	for _, f := range report.Failures {
		fmt.Fprintf(&b, "  %s\n", FormatWarning(fmt.Sprintf("%s: %v", filepath.Base(f.Entry.Source), f.Err)))
	}
	b.WriteString(SuccessStyle.Render(fmt.Sprintf("%s Restored %d items from session %s",
		UndoIcon, report.Restored, report.SessionID)))
	return b.String()
}

func truncateName(name string, n int) string {
	runes := []rune(name)
	if len(runes) <= n {
		return name
	}
	return string(runes[:n-3]) + "..."
}
