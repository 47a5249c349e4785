// Package cohesion decides whether a directory should move as a single unit.
package cohesion

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/sortsense/internal/model"
)

// Outcome is the result class of a cohesion check.
type Outcome int

const (
	// NotCohesive means the directory's files are analyzed individually.
	NotCohesive Outcome = iota
	// Cohesive means the directory moves as one unit.
	Cohesive
	// Exclude means the directory is neither analyzed nor moved.
	Exclude
)

func (o Outcome) String() string {
	switch o {
	case Cohesive:
		return "cohesive"
	case Exclude:
		return "exclude"
	default:
		return "not_cohesive"
	}
}

// Verdict is the cohesion decision for one directory.
type Verdict struct {
	Category   model.CategoryID
	Kind       model.FolderKind
	Reason     string
	Confidence float64
	FileCount  int
	Outcome    Outcome
}

// Sampler classifies a single file for cohesion sampling.
type Sampler interface {
	SampleCategory(ctx context.Context, path string) model.CategoryID
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(ctx context.Context, path string) model.CategoryID

// SampleCategory calls f.
func (f SamplerFunc) SampleCategory(ctx context.Context, path string) model.CategoryID {
	return f(ctx, path)
}

// Rules configures the analyzer.
type Rules struct {
	Force       map[string]model.CategoryID
	Deny        []string
	Exempt      []string
	AppSuffixes []string
	SampleSize  int
	Share       float64
}

// Analyzer applies the cohesion rules in a fixed order: deny list, force
// map, application bundles, exemptions, then content sampling.
type Analyzer struct {
	sampler   Sampler
	force     map[string]model.CategoryID
	deny      map[string]bool
	exempt    map[string]bool
	defaultID model.CategoryID
	suffixes  []string
	sample    int
	share     float64
}

// New creates an analyzer. defaultID is never considered a cohesive category.
func New(rules Rules, defaultID model.CategoryID, sampler Sampler) *Analyzer {
	a := &Analyzer{
		sampler:   sampler,
		force:     make(map[string]model.CategoryID, len(rules.Force)),
		deny:      make(map[string]bool, len(rules.Deny)),
		exempt:    make(map[string]bool, len(rules.Exempt)),
		defaultID: defaultID,
		suffixes:  rules.AppSuffixes,
		sample:    rules.SampleSize,
		share:     rules.Share,
	}
	for name, id := range rules.Force {
		a.force[model.FoldName(name)] = id
	}
	for _, name := range rules.Deny {
		a.deny[model.FoldName(name)] = true
	}
	for _, name := range rules.Exempt {
		a.exempt[model.FoldName(name)] = true
	}
	if len(a.suffixes) == 0 {
		a.suffixes = []string{".app"}
	}
	if a.sample < 1 {
		a.sample = 5
	}
	if a.share <= 0 {
		a.share = 0.8
	}
	return a
}

// Analyze classifies dir.
func (a *Analyzer) Analyze(ctx context.Context, dir string) Verdict {
	name := filepath.Base(dir)
	key := model.FoldName(name)

	if a.deny[key] {
		return Verdict{Outcome: Exclude, Reason: "denylisted"}
	}

	if id, ok := a.force[key]; ok {
		return Verdict{
			Outcome:    Cohesive,
			Category:   id,
			Confidence: 1.0,
			FileCount:  CountFiles(dir),
			Kind:       model.KindCohesive,
			Reason:     "forced",
		}
	}

	if a.isAppBundle(dir, key) {
		return Verdict{
			Outcome:    Cohesive,
			Category:   model.AppsID,
			Confidence: 1.0,
			FileCount:  CountFiles(dir),
			Kind:       model.KindAppBundle,
			Reason:     "application bundle",
		}
	}

	if a.exempt[key] {
		return Verdict{Outcome: NotCohesive, Reason: "exempt"}
	}

	return a.sampleVerdict(ctx, dir)
}

func (a *Analyzer) isAppBundle(dir, key string) bool {
	matched := false
	for _, suffix := range a.suffixes {
		if strings.HasSuffix(key, model.FoldName(suffix)) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

func (a *Analyzer) sampleVerdict(ctx context.Context, dir string) Verdict {
	files := a.sampleFiles(dir)
	if len(files) == 0 {
		return Verdict{Outcome: NotCohesive, Reason: "no files to sample"}
	}

	counts := make(map[model.CategoryID]int, len(files))
	var order []model.CategoryID
	for _, f := range files {
		id := a.sampler.SampleCategory(ctx, f)
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}

	if len(order) == 1 && order[0] != a.defaultID {
		return Verdict{
			Outcome:    Cohesive,
			Category:   order[0],
			Confidence: 1.0,
			FileCount:  CountFiles(dir),
			Kind:       model.KindCohesive,
			Reason:     "uniform sample",
		}
	}

	for _, id := range order {
		if id == a.defaultID {
			continue
		}
		share := float64(counts[id]) / float64(len(files))
		if share >= a.share {
			return Verdict{
				Outcome:    Cohesive,
				Category:   id,
				Confidence: share,
				FileCount:  CountFiles(dir),
				Kind:       model.KindCohesive,
				Reason:     "dominant category",
			}
		}
	}

	slog.Debug("Directory is not cohesive", "path", dir, "sampled", len(files), "categories", len(order))
	return Verdict{Outcome: NotCohesive, Reason: "mixed sample"}
}

// sampleFiles returns up to a.sample non-hidden regular files directly in
// dir, in name order.
func (a *Analyzer) sampleFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("Cannot sample directory", "path", dir, "error", err)
		return nil
	}

	var out []string
	for _, e := range entries {
		if len(out) == a.sample {
			break
		}
		if !e.Type().IsRegular() || model.IsHidden(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out
}

// CountFiles counts non-directory entries beneath dir, skipping unreadable
// subtrees.
func CountFiles(dir string) int {
	count := 0
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	return count
}

// Record converts a cohesive verdict into a folder record.
func (v Verdict) Record(dir string) model.FolderRecord {
	return model.FolderRecord{
		Path:       dir,
		Name:       filepath.Base(dir),
		Category:   v.Category,
		Kind:       v.Kind,
		Confidence: v.Confidence,
		FileCount:  v.FileCount,
		Cohesive:   v.Outcome == Cohesive,
	}
}
