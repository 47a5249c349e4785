package cohesion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/sortsense/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// prefixSampler classifies files by the part of their name before the first
// underscore, e.g. "work_1.txt" is work.
func prefixSampler(seen *[]string) Sampler {
	return SamplerFunc(func(_ context.Context, path string) model.CategoryID {
		name := filepath.Base(path)
		if seen != nil {
			*seen = append(*seen, name)
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return "unsorted"
		}
		return model.CategoryID(prefix)
	})
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, n := range names {
		p := filepath.Join(dir, filepath.FromSlash(n))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func newAnalyzer(sampler Sampler) *Analyzer {
	return New(Rules{
		Deny:       []string{"node_modules", ".git"},
		Exempt:     []string{"statements"},
		Force:      map[string]model.CategoryID{"DCIM": "photos"},
		SampleSize: 5,
		Share:      0.8,
	}, "unsorted", sampler)
}

func TestAnalyze_Rules(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, filepath.Join(root, "node_modules"), "work_a.txt")
	writeFiles(t, filepath.Join(root, "dcim"), "img1.jpg", "sub/img2.jpg")
	writeFiles(t, filepath.Join(root, "Tool.app"), "Contents/Info.plist", "Contents/MacOS/tool")
	writeFiles(t, filepath.Join(root, "Statements"), "documents_1.pdf", "documents_2.pdf")

	a := newAnalyzer(prefixSampler(nil))

	tests := []struct {
		name      string
		dir       string
		outcome   Outcome
		category  model.CategoryID
		kind      model.FolderKind
		fileCount int
	}{
		{name: "denylist", dir: "node_modules", outcome: Exclude},
		{name: "force map", dir: "dcim", outcome: Cohesive, category: "photos", kind: model.KindCohesive, fileCount: 2},
		{name: "app bundle", dir: "Tool.app", outcome: Cohesive, category: model.AppsID, kind: model.KindAppBundle, fileCount: 2},
		{name: "exempt", dir: "Statements", outcome: NotCohesive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := a.Analyze(context.Background(), filepath.Join(root, tt.dir))
			assert.Equal(t, tt.outcome, v.Outcome)
			assert.Equal(t, tt.category, v.Category)
			assert.Equal(t, tt.kind, v.Kind)
			assert.Equal(t, tt.fileCount, v.FileCount)
			if tt.outcome == Cohesive {
				assert.InDelta(t, 1.0, v.Confidence, 1e-9)
			}
		})
	}
}

func TestAnalyze_Sampling(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		outcome    Outcome
		category   model.CategoryID
		confidence float64
	}{
		{name: "empty", files: nil, outcome: NotCohesive},
		{name: "single category", files: []string{"work_1.txt", "work_2.txt"}, outcome: Cohesive, category: "work", confidence: 1.0},
		{name: "only default", files: []string{"a.txt", "b.txt"}, outcome: NotCohesive},
		{name: "eighty percent", files: []string{"health_1", "health_2", "health_3", "health_4", "work_5"}, outcome: Cohesive, category: "health", confidence: 0.8},
		{name: "eighty percent with default", files: []string{"health_1", "health_2", "health_3", "health_4", "zz"}, outcome: Cohesive, category: "health", confidence: 0.8},
		{name: "mixed", files: []string{"health_1", "health_2", "health_3", "work_4", "work_5"}, outcome: NotCohesive},
		{name: "A A A A B", files: []string{"a_1", "a_2", "a_3", "a_4", "b_5"}, outcome: Cohesive, category: "a", confidence: 0.8},
		{name: "A B C default default", files: []string{"a_1", "b_2", "c_3", "x", "y"}, outcome: NotCohesive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "folder")
			writeFiles(t, dir, tt.files...)

			v := newAnalyzer(prefixSampler(nil)).Analyze(context.Background(), dir)
			assert.Equal(t, tt.outcome, v.Outcome)
			assert.Equal(t, tt.category, v.Category)
			assert.InDelta(t, tt.confidence, v.Confidence, 1e-9)
			if tt.outcome == Cohesive {
				assert.Equal(t, len(tt.files), v.FileCount)
			}
		})
	}
}

func TestAnalyze_SampleIsDeterministic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mixed")
	writeFiles(t, dir, "g_7", "a_1", ".hidden", "f_6", "c_3", "b_2", "e_5", "d_4")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a_dir"), 0o755))

	var seen []string
	newAnalyzer(prefixSampler(&seen)).Analyze(context.Background(), dir)

	assert.Equal(t, []string{"a_1", "b_2", "c_3", "d_4", "e_5"}, seen)
}

func TestAnalyze_AppSuffixRequiresDirectory(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Notes.app")
	writeFiles(t, dir, "work_readme.txt")

	v := newAnalyzer(prefixSampler(nil)).Analyze(context.Background(), dir)
	assert.Equal(t, model.KindAppBundle, v.Kind)

	rec := v.Record(dir)
	assert.Equal(t, "Notes.app", rec.Name)
	assert.True(t, rec.Cohesive)
	assert.Equal(t, model.AppsID, rec.Category)
}
