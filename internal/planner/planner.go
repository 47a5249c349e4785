// Package planner turns analyzed items into move decisions.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/discovery"
	"github.com/Veraticus/sortsense/internal/model"
)

// Action is what the executor should do with an item.
type Action int

const (
	// ActionSkip leaves the item in place.
	ActionSkip Action = iota
	// ActionMove moves the item into Plan.DestDir.
	ActionMove
)

func (a Action) String() string {
	if a == ActionMove {
		return "move"
	}
	return "skip"
}

// Skip reasons.
const (
	ReasonDefaultCategory = "default category"
	ReasonMissingFolder   = "destination folder does not exist"
	ReasonUnknownCategory = "category not registered"
)

// Plan is the decision for a single item.
type Plan struct {
	Category model.CategoryID
	Folder   string
	DestDir  string
	Reason   string
	Action   Action
	Prompted bool
}

// Options controls routing policy for a session.
type Options struct {
	// MiscThreshold routes items below this normalized confidence to the
	// catch-all category. Zero disables it.
	MiscThreshold float64
	ExistingOnly  bool
	Interactive   bool
	DryRun        bool
}

// Session carries the state shared by every plan in one run: known
// destination folders and interactive decisions.
type Session struct {
	registry  *model.Registry
	index     *discovery.Index
	decider   Decider
	decisions map[string]Decision
	opts      Options
}

// NewSession creates a planning session. decider may be nil unless
// opts.Interactive is set.
func NewSession(registry *model.Registry, index *discovery.Index, decider Decider, opts Options) (*Session, error) {
	if opts.MiscThreshold < 0 || opts.MiscThreshold > 1 {
		return nil, common.NewConfigError("misc_threshold", "must be in (0, 1], got %v", opts.MiscThreshold)
	}
	if opts.Interactive && !opts.DryRun && decider == nil {
		return nil, fmt.Errorf("%w: interactive mode requires a decider", common.ErrInvalidConfig)
	}
	return &Session{
		registry:  registry,
		index:     index,
		decider:   decider,
		decisions: make(map[string]Decision),
		opts:      opts,
	}, nil
}

type item struct {
	source     string
	category   model.CategoryID
	subfolder  string
	label      string
	confidence float64
}

// PlanFile decides where a file goes.
func (s *Session) PlanFile(ctx context.Context, rec model.FileRecord) (Plan, error) {
	return s.plan(ctx, item{
		source:     rec.SourcePath,
		category:   rec.Category,
		subfolder:  rec.Subfolder,
		label:      rec.VisionLabel,
		confidence: rec.Confidence.Normalized(),
	})
}

// PlanFolder decides where a folder unit goes.
func (s *Session) PlanFolder(ctx context.Context, rec model.FolderRecord) (Plan, error) {
	return s.plan(ctx, item{
		source:     rec.Path,
		category:   rec.Category,
		confidence: rec.Confidence,
	})
}

func (s *Session) plan(ctx context.Context, it item) (Plan, error) {
	id := it.category
	extra := it.subfolder
	if extra == "" && it.label != "" && model.FoldName(it.label) != model.FoldName(string(id)) {
		extra = model.NormalizeSegment(it.label)
	}

	switch {
	case s.opts.MiscThreshold > 0 && it.confidence < s.opts.MiscThreshold:
		id = model.MiscID
		extra = ""
	case s.registry.IsDefault(id):
		return Plan{Action: ActionSkip, Category: id, Reason: ReasonDefaultCategory}, nil
	}

	category, ok := s.registry.Get(id)
	if !ok {
		return Plan{Action: ActionSkip, Category: id, Reason: ReasonUnknownCategory}, nil
	}

	top := s.index.FolderFor(category)
	if s.opts.ExistingOnly && !s.index.Exists(top) {
		return Plan{Action: ActionSkip, Category: id, Folder: top, Reason: ReasonMissingFolder}, nil
	}

	rel := top
	if extra != "" {
		rel = path.Join(top, extra)
	}

	p := Plan{Action: ActionMove, Category: id}

	if s.opts.Interactive && !s.opts.DryRun && !s.index.Exists(rel) {
		decision, prompted, err := s.decide(ctx, Proposal{
			Folder:     path.Base(rel),
			Parent:     path.Dir(rel),
			Category:   id,
			Source:     it.source,
			Confidence: it.confidence,
		})
		if err != nil {
			return Plan{}, err
		}
		p.Prompted = prompted
		if decision == Reject {
			rel = path.Join(path.Dir(rel), string(id)+"-misc")
		}
		s.index.Add(rel)
	}

	p.Folder = rel
	p.DestDir = s.index.Abs(rel)
	return p, nil
}

func (s *Session) decide(ctx context.Context, p Proposal) (Decision, bool, error) {
	key := model.FoldName(p.Folder)
	if d, ok := s.decisions[key]; ok {
		return d, false, nil
	}

	d, err := s.decider.Decide(ctx, p)
	if err != nil {
		return Reject, true, fmt.Errorf("failed to confirm folder %q: %w", p.Folder, err)
	}
	s.decisions[key] = d

	slog.Debug("Folder decision recorded", "folder", p.Folder, "decision", d.String())
	return d, true, nil
}

// Commit records that a planned destination now exists on disk.
func (s *Session) Commit(p Plan) {
	if p.Action == ActionMove && p.Folder != "" {
		s.index.Add(p.Folder)
	}
}

// Decisions returns a copy of the interactive decisions made so far.
func (s *Session) Decisions() map[string]Decision {
	out := make(map[string]Decision, len(s.decisions))
	for k, v := range s.decisions {
		out[k] = v
	}
	return out
}
