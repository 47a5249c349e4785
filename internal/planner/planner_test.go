package planner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/discovery"
	"github.com/Veraticus/sortsense/internal/model"
	"github.com/Veraticus/sortsense/internal/testutil"
	"github.com/Veraticus/sortsense/internal/testutil/categories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	registry *model.Registry
	index    *discovery.Index
	root     string
}

func newFixture(t *testing.T, existing ...string) fixture {
	t.Helper()
	reg := categories.NewBuilder(t).WithFixture(categories.FixtureFolders).Build()

	root := t.TempDir()
	tree := make(map[string]string, len(existing))
	for _, rel := range existing {
		tree[rel+"/"] = ""
	}
	testutil.WriteTree(t, root, tree)
	return fixture{
		registry: reg,
		index:    discovery.Discover(root, 3, reg.LeafNames()),
		root:     root,
	}
}

func file(category model.CategoryID, score int) model.FileRecord {
	return model.FileRecord{
		SourcePath: "/src/" + string(category) + ".pdf",
		Category:   category,
		Confidence: model.KeywordScore(score),
	}
}

func TestPlanFile_Routing(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		rec        model.FileRecord
		existing   []string
		wantAction Action
		wantFolder string
		wantReason string
		wantCat    model.CategoryID
	}{
		{
			name:       "default category skipped",
			rec:        file("unsorted", 0),
			wantAction: ActionSkip,
			wantReason: ReasonDefaultCategory,
			wantCat:    "unsorted",
		},
		{
			name:       "category folder",
			rec:        file("work", 3),
			wantAction: ActionMove,
			wantFolder: "work",
			wantCat:    "work",
		},
		{
			name:       "threshold routes low confidence to misc",
			opts:       Options{MiscThreshold: 0.5},
			rec:        file("health", 2),
			wantAction: ActionMove,
			wantFolder: "personal/misc",
			wantCat:    model.MiscID,
		},
		{
			name:       "threshold routes default category to misc",
			opts:       Options{MiscThreshold: 0.5},
			rec:        file("unsorted", 0),
			wantAction: ActionMove,
			wantFolder: "personal/misc",
			wantCat:    model.MiscID,
		},
		{
			name:       "threshold keeps confident items",
			opts:       Options{MiscThreshold: 0.5},
			rec:        file("health", 3),
			wantAction: ActionMove,
			wantFolder: "health",
			wantCat:    "health",
		},
		{
			name:       "existing only skips missing folder",
			opts:       Options{ExistingOnly: true},
			rec:        file("housing", 4),
			wantAction: ActionSkip,
			wantReason: ReasonMissingFolder,
			wantCat:    "housing",
		},
		{
			name:       "existing only uses discovered folder",
			opts:       Options{ExistingOnly: true},
			existing:   []string{"life/Housing"},
			rec:        file("housing", 4),
			wantAction: ActionMove,
			wantFolder: "life/Housing",
			wantCat:    "housing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, tt.existing...)
			s, err := NewSession(fx.registry, fx.index, nil, tt.opts)
			require.NoError(t, err)

			p, err := s.PlanFile(context.Background(), tt.rec)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, p.Action)
			assert.Equal(t, tt.wantCat, p.Category)
			assert.Equal(t, tt.wantReason, p.Reason)
			if tt.wantAction == ActionMove {
				assert.Equal(t, tt.wantFolder, p.Folder)
				assert.Equal(t, filepath.Join(fx.root, filepath.FromSlash(tt.wantFolder)), p.DestDir)
			}
		})
	}
}

func TestPlanFile_Subfolder(t *testing.T) {
	fx := newFixture(t)
	s, err := NewSession(fx.registry, fx.index, nil, Options{})
	require.NoError(t, err)

	rec := file("documents", 4)
	rec.Subfolder = "chase"
	p, err := s.PlanFile(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "documents/chase", p.Folder)

	rec = file("photos", 4)
	rec.Category = "work"
	rec.VisionLabel = "Team Offsite"
	p, err = s.PlanFile(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "work/team-offsite", p.Folder)
}

func TestPlanFile_InteractiveCachesDecisions(t *testing.T) {
	fx := newFixture(t, "work")
	decider := NewScriptedDecider(Reject, map[string]Decision{"housing": Accept})
	s, err := NewSession(fx.registry, fx.index, decider, Options{Interactive: true})
	require.NoError(t, err)
	ctx := context.Background()

	// existing folder: no prompt
	p, err := s.PlanFile(ctx, file("work", 2))
	require.NoError(t, err)
	assert.False(t, p.Prompted)
	assert.Equal(t, "work", p.Folder)

	// accepted folder is created and remembered
	p, err = s.PlanFile(ctx, file("housing", 2))
	require.NoError(t, err)
	assert.True(t, p.Prompted)
	assert.Equal(t, "housing", p.Folder)

	p, err = s.PlanFile(ctx, file("housing", 5))
	require.NoError(t, err)
	assert.False(t, p.Prompted)
	assert.Equal(t, "housing", p.Folder)

	// rejected folder reroutes beneath the same parent
	p, err = s.PlanFile(ctx, file("health", 2))
	require.NoError(t, err)
	assert.True(t, p.Prompted)
	assert.Equal(t, ActionMove, p.Action)
	assert.Equal(t, "health-misc", p.Folder)

	rec := file("work", 3)
	rec.Subfolder = "side-gig"
	p, err = s.PlanFile(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, "work/work-misc", p.Folder)

	rec.SourcePath = "/src/other.pdf"
	_, err = s.PlanFile(ctx, rec)
	require.NoError(t, err)

	calls := decider.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "housing", calls[0].Folder)
	assert.Equal(t, "health", calls[1].Folder)
	assert.Equal(t, "side-gig", calls[2].Folder)
	assert.Equal(t, "work", calls[2].Parent)

	assert.Equal(t, Accept, s.Decisions()["housing"])
	assert.Equal(t, Reject, s.Decisions()["health"])
}

func TestPlanFile_InteractiveDeepExistingFolder(t *testing.T) {
	fx := newFixture(t, "a/b/health/clinic")
	decider := NewScriptedDecider(Reject, nil)
	s, err := NewSession(fx.registry, fx.index, decider, Options{Interactive: true})
	require.NoError(t, err)

	rec := file("health", 3)
	rec.Subfolder = "clinic"
	p, err := s.PlanFile(context.Background(), rec)
	require.NoError(t, err)

	assert.False(t, p.Prompted)
	assert.Equal(t, "a/b/health/clinic", p.Folder)
	assert.Equal(t, filepath.Join(fx.root, "a", "b", "health", "clinic"), p.DestDir)
	assert.Empty(t, decider.Calls())
}

func TestPlanFile_DryRunNeverPrompts(t *testing.T) {
	fx := newFixture(t)
	decider := NewScriptedDecider(Reject, nil)
	s, err := NewSession(fx.registry, fx.index, decider, Options{Interactive: true, DryRun: true})
	require.NoError(t, err)

	p, err := s.PlanFile(context.Background(), file("housing", 3))
	require.NoError(t, err)
	assert.Equal(t, "housing", p.Folder)
	assert.Empty(t, decider.Calls())
}

type failingDecider struct{}

func (failingDecider) Decide(context.Context, Proposal) (Decision, error) {
	return Reject, errors.New("input terminated")
}

func TestPlanFile_DeciderError(t *testing.T) {
	fx := newFixture(t)
	s, err := NewSession(fx.registry, fx.index, failingDecider{}, Options{Interactive: true})
	require.NoError(t, err)

	_, err = s.PlanFile(context.Background(), file("housing", 3))
	assert.ErrorContains(t, err, "input terminated")
}

func TestPlanFolder(t *testing.T) {
	fx := newFixture(t)
	s, err := NewSession(fx.registry, fx.index, nil, Options{MiscThreshold: 0.9})
	require.NoError(t, err)

	p, err := s.PlanFolder(context.Background(), model.FolderRecord{Path: "/src/Tool.app", Category: model.AppsID, Confidence: 1})
	require.NoError(t, err)
	assert.Equal(t, "downloaded-apps", p.Folder)

	p, err = s.PlanFolder(context.Background(), model.FolderRecord{Path: "/src/taxes", Category: "documents", Confidence: 0.8})
	require.NoError(t, err)
	assert.Equal(t, model.MiscID, p.Category)
}

func TestNewSession_Validation(t *testing.T) {
	fx := newFixture(t)

	_, err := NewSession(fx.registry, fx.index, nil, Options{MiscThreshold: 1.5})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = NewSession(fx.registry, fx.index, nil, Options{Interactive: true})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestSession_Commit(t *testing.T) {
	fx := newFixture(t)
	s, err := NewSession(fx.registry, fx.index, nil, Options{})
	require.NoError(t, err)

	p, err := s.PlanFile(context.Background(), file("work", 5))
	require.NoError(t, err)
	assert.False(t, fx.index.Exists("work"))

	s.Commit(p)
	assert.True(t, fx.index.Exists("work"))
}
