// Package engine orchestrates analysis, moves and undo for a reorganization run.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/sortsense/internal/cohesion"
	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/model"
	"github.com/Veraticus/sortsense/internal/planner"
	"github.com/Veraticus/sortsense/internal/subfolder"
)

// Defaults applied when Config leaves a value unset.
const (
	DefaultDiscoveryDepth   = 3
	DefaultStoredTextLength = 500
	DefaultVisionConfidence = 0.3
)

// Config holds the collaborators and settings of an engine. Vision, History
// and Decider are optional.
type Config struct {
	Registry   *model.Registry
	Extractor  TextExtractor
	Classifier Classifier
	Vision     ImageClassifier
	Ledger     Ledger
	History    HistoryRecorder
	Decider    planner.Decider

	// LockPath is the single-instance lock file. Empty disables locking.
	LockPath string

	Cohesion            cohesion.Rules
	FinancialCategories []string
	DiscoveryDepth      int
	StoredTextLength    int
	VisionConfidence    float64
	SkipHidden          bool
}

// Engine runs reorganization sessions.
type Engine struct {
	registry   *model.Registry
	extractor  TextExtractor
	classifier Classifier
	vision     ImageClassifier
	ledger     Ledger
	history    HistoryRecorder
	decider    planner.Decider
	subfolders *subfolder.Detector
	now        func() time.Time
	lockPath   string
	cohesion   cohesion.Rules
	depth      int
	storedText int
	visionMin  float64
	skipHidden bool
}

// New creates an engine from cfg.
func New(cfg Config) (*Engine, error) {
	var errs []error
	if cfg.Registry == nil {
		errs = append(errs, errors.New("registry is required"))
	}
	if cfg.Extractor == nil {
		errs = append(errs, errors.New("extractor is required"))
	}
	if cfg.Classifier == nil {
		errs = append(errs, errors.New("classifier is required"))
	}
	if cfg.Ledger == nil {
		errs = append(errs, errors.New("ledger is required"))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", common.ErrMissingConfig, errors.Join(errs...))
	}

	e := &Engine{
		registry:   cfg.Registry,
		extractor:  cfg.Extractor,
		classifier: cfg.Classifier,
		vision:     cfg.Vision,
		ledger:     cfg.Ledger,
		history:    cfg.History,
		decider:    cfg.Decider,
		subfolders: subfolder.NewDetector(cfg.FinancialCategories),
		now:        time.Now,
		lockPath:   cfg.LockPath,
		cohesion:   cfg.Cohesion,
		depth:      cfg.DiscoveryDepth,
		storedText: cfg.StoredTextLength,
		visionMin:  cfg.VisionConfidence,
		skipHidden: cfg.SkipHidden,
	}
	if e.depth <= 0 {
		e.depth = DefaultDiscoveryDepth
	}
	if e.storedText <= 0 {
		e.storedText = DefaultStoredTextLength
	}
	if e.visionMin <= 0 {
		e.visionMin = DefaultVisionConfidence
	}
	return e, nil
}

// Registry returns the category registry the engine classifies into.
func (e *Engine) Registry() *model.Registry {
	return e.registry
}

// Options controls a single run.
type Options struct {
	// Progress is called after each file is analyzed.
	Progress func(done, total int, path string)

	Source        string
	Destination   string
	MaxFiles      int
	MiscThreshold float64
	Recursive     bool
	DryRun        bool
	ExistingOnly  bool
	Interactive   bool
	UseVision     bool
}

func (o Options) plannerOptions() planner.Options {
	return planner.Options{
		MiscThreshold: o.MiscThreshold,
		ExistingOnly:  o.ExistingOnly,
		Interactive:   o.Interactive,
		DryRun:        o.DryRun,
	}
}
