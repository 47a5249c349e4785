package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/sortsense/internal/classify"
	"github.com/Veraticus/sortsense/internal/cohesion"
	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/discovery"
	"github.com/Veraticus/sortsense/internal/extract"
	"github.com/Veraticus/sortsense/internal/model"
)

// Analysis is the outcome of scanning a source folder. Folder records are
// executed before file records.
type Analysis struct {
	StartedAt   time.Time
	Index       *discovery.Index
	Source      string
	Destination string
	Folders     []model.FolderRecord
	Files       []model.FileRecord
}

// Stats summarizes an analysis.
type Stats struct {
	ByCategory map[model.CategoryID]int
	ByMethod   map[model.ExtractionMethod]int
	TotalFiles int
	TotalSize  int64
	Folders    int
	Errors     int
}

// Stats counts files by category and extraction method.
func (a *Analysis) Stats() Stats {
	s := Stats{
		ByCategory: make(map[model.CategoryID]int),
		ByMethod:   make(map[model.ExtractionMethod]int),
		TotalFiles: len(a.Files),
		Folders:    len(a.Folders),
	}
	for _, f := range a.Files {
		s.ByCategory[f.Category]++
		s.ByMethod[f.Method]++
		s.TotalSize += f.Size
		if f.Method == model.MethodError {
			s.Errors++
		}
	}
	return s
}

// Analyze scans opts.Source and classifies every folder unit and file in it.
// Nothing is moved.
func (e *Engine) Analyze(ctx context.Context, opts Options) (*Analysis, error) {
	source, err := filepath.Abs(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source: %w", err)
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, common.NewPathError(common.ErrScanPermission, "stat", source, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", source)
	}
	if strings.TrimSpace(opts.Destination) == "" {
		return nil, fmt.Errorf("%w: destination", common.ErrMissingConfig)
	}
	destination, err := filepath.Abs(opts.Destination)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination: %w", err)
	}

	a := &Analysis{
		StartedAt:   e.now(),
		Source:      source,
		Destination: destination,
		Index:       discovery.Discover(destination, e.depth, e.registry.LeafNames()),
	}

	slog.Info("Starting analysis",
		"source", source,
		"destination", destination,
		"recursive", opts.Recursive,
		"known_folders", len(a.Index.Cache()))

	analyzer := cohesion.New(e.cohesion, e.registry.Default(), cohesion.SamplerFunc(e.sampleCategory))

	folders, files, err := e.collect(ctx, source, analyzer, sortedTree(source, a.Index), opts)
	if err != nil {
		return nil, err
	}

	for _, f := range folders {
		f.Destination = e.destinationFor(a.Index, f.Category, "")
		a.Folders = append(a.Folders, f)
	}

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := e.analyzeFile(ctx, source, path, a.Index, opts.UseVision)
		a.Files = append(a.Files, rec)
		if opts.Progress != nil {
			opts.Progress(i+1, len(files), path)
		}
	}

	slog.Info("Analysis complete",
		"folders", len(a.Folders),
		"files", len(a.Files))
	return a, nil
}

// collect walks the source. Directories are judged by the cohesion analyzer
// before their contents are considered.
func (e *Engine) collect(ctx context.Context, root string, analyzer *cohesion.Analyzer, sorted func(string) bool, opts Options) ([]model.FolderRecord, []string, error) {
	var folders []model.FolderRecord
	var files []string
	full := func() bool { return opts.MaxFiles > 0 && len(files) >= opts.MaxFiles }

	var visit func(dir string) error
	visit = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if dir == root {
				return common.NewPathError(common.ErrScanPermission, "read", dir, err)
			}
			slog.Warn("Skipping unreadable folder", "path", dir, "error", err)
			return nil
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			if full() {
				return nil
			}

			name := entry.Name()
			if e.skipHidden && model.IsHidden(name) {
				continue
			}
			path := filepath.Join(dir, name)

			switch {
			case entry.IsDir() && sorted(path):
				slog.Debug("Skipping destination folder", "path", path)
			case entry.IsDir():
				verdict := analyzer.Analyze(ctx, path)
				switch verdict.Outcome {
				case cohesion.Exclude:
					slog.Debug("Excluding folder", "path", path, "reason", verdict.Reason)
				case cohesion.Cohesive:
					slog.Debug("Folder kept together",
						"path", path,
						"category", verdict.Category,
						"reason", verdict.Reason)
					folders = append(folders, verdict.Record(path))
				default:
					if opts.Recursive {
						if err := visit(path); err != nil {
							return err
						}
					}
				}
			case entry.Type().IsRegular():
				files = append(files, path)
			}
		}
		return nil
	}

	if err := visit(root); err != nil {
		return nil, nil, err
	}
	return folders, files, nil
}

// sortedTree reports directories that belong to the destination: the
// destination root itself and everything beneath it when it is nested in the
// source, and any category folder discovery found.
func sortedTree(source string, index *discovery.Index) func(string) bool {
	dest := index.Root()
	known := make(map[string]bool)
	for _, rel := range index.Cache() {
		known[index.Abs(rel)] = true
	}
	return func(path string) bool {
		if dest != source && isWithin(dest, path) {
			return true
		}
		return known[path]
	}
}

// isWithin reports whether path is dir or lies beneath it.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (e *Engine) analyzeFile(ctx context.Context, root, path string, index *discovery.Index, useVision bool) model.FileRecord {
	name := filepath.Base(path)
	rec := model.FileRecord{
		SourcePath: path,
		Filename:   name,
		Extension:  strings.ToLower(filepath.Ext(name)),
	}

	info, err := os.Stat(path)
	if err != nil {
		rec.Method = model.MethodError
		rec.Category = e.registry.Default()
		rec.Error = common.NewPathError(common.ErrExtraction, "stat", path, err).Error()
		return rec
	}
	rec.Size = info.Size()

	res := e.extractor.Extract(ctx, path)
	rec.Method = res.Method
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}

	rec.Category, rec.Confidence, rec.Matches = e.classifier.Classify(res.Text, name)

	if useVision && e.vision != nil && e.registry.IsDefault(rec.Category) && extract.IsImage(path) {
		e.applyVision(ctx, &rec)
	}

	parent := ""
	if dir := filepath.Dir(path); dir != root {
		parent = filepath.Base(dir)
	}
	rec.Subfolder = e.subfolders.Detect(parent, res.Text, rec.Category)
	rec.Text = extract.Truncate(res.Text, e.storedText)
	rec.Destination = e.destinationFor(index, rec.Category, rec.Subfolder)
	return rec
}

func (e *Engine) applyVision(ctx context.Context, rec *model.FileRecord) {
	res, err := e.vision.ClassifyImage(ctx, rec.SourcePath)
	if err != nil {
		slog.Warn("Vision classification failed", "path", rec.SourcePath, "error", err)
		return
	}
	if res.Confidence <= e.visionMin || e.registry.IsDefault(res.Category) {
		slog.Debug("Vision result ignored",
			"path", rec.SourcePath,
			"category", res.Category,
			"confidence", res.Confidence)
		return
	}

	rec.Category = res.Category
	rec.Confidence = model.UnitScore(res.Confidence)
	rec.Method = model.MethodVision
	rec.VisionLabel = res.Label
	rec.Matches = res.Descriptions
	rec.Error = ""
}

// destinationFor is the absolute folder a category routes to, or "" for the
// default category.
func (e *Engine) destinationFor(index *discovery.Index, id model.CategoryID, sub string) string {
	if e.registry.IsDefault(id) {
		return ""
	}
	category, ok := e.registry.Get(id)
	if !ok {
		return ""
	}
	dir := index.Abs(index.FolderFor(category))
	if sub != "" {
		dir = filepath.Join(dir, sub)
	}
	return dir
}

// sampleCategory classifies one sampled file for the cohesion analyzer.
func (e *Engine) sampleCategory(ctx context.Context, path string) model.CategoryID {
	res := e.extractor.Extract(ctx, path)
	id, _, _ := e.classifier.Classify(res.Text, filepath.Base(path))
	return id
}

// Report is the JSON form of an analysis.
type Report struct {
	Timestamp       model.Timestamp                `json:"timestamp"`
	FilesByCategory map[model.CategoryID][]string  `json:"files_by_category"`
	Summary         map[model.CategoryID]int       `json:"summary"`
	ByMethod        map[model.ExtractionMethod]int `json:"by_extraction_method"`
	Source          string                         `json:"source_folder"`
	Destination     string                         `json:"destination_base"`
	Folders         []model.FolderRecord           `json:"folders"`
	Results         []model.FileRecord             `json:"analysis_results"`
	TotalFiles      int                            `json:"total_files"`
	TotalSize       int64                          `json:"total_size_bytes"`
}

// Report builds the JSON report of an analysis. File names within each
// category are sorted.
func (a *Analysis) Report() Report {
	stats := a.Stats()
	r := Report{
		Timestamp:       model.NewTimestamp(a.StartedAt),
		Source:          a.Source,
		Destination:     a.Destination,
		TotalFiles:      stats.TotalFiles,
		TotalSize:       stats.TotalSize,
		Summary:         stats.ByCategory,
		ByMethod:        stats.ByMethod,
		FilesByCategory: make(map[model.CategoryID][]string),
		Folders:         a.Folders,
		Results:         a.Files,
	}
	for _, f := range a.Files {
		r.FilesByCategory[f.Category] = append(r.FilesByCategory[f.Category], f.Filename)
	}
	for _, names := range r.FilesByCategory {
		sort.Strings(names)
	}
	return r
}

var _ Classifier = (*classify.Keyword)(nil)
