package planner

import (
	"context"
	"sync"

	"github.com/Veraticus/sortsense/internal/model"
)

// Decision is the answer to a folder creation proposal.
type Decision int

const (
	// Reject declines the proposed folder.
	Reject Decision = iota
	// Accept allows the proposed folder to be created.
	Accept
)

func (d Decision) String() string {
	if d == Accept {
		return "accept"
	}
	return "reject"
}

// Proposal describes a folder that does not exist yet.
type Proposal struct {
	Folder     string
	Parent     string
	Category   model.CategoryID
	Source     string
	Confidence float64
}

// Decider confirms the creation of new destination folders.
type Decider interface {
	Decide(ctx context.Context, p Proposal) (Decision, error)
}

// ScriptedDecider answers proposals from a fixed table and records every
// proposal it receives. Folders without an entry get Fallback.
type ScriptedDecider struct {
	Answers  map[string]Decision
	calls    []Proposal
	Fallback Decision
	mu       sync.Mutex
}

// NewScriptedDecider creates a decider with the given answers.
func NewScriptedDecider(fallback Decision, answers map[string]Decision) *ScriptedDecider {
	if answers == nil {
		answers = map[string]Decision{}
	}
	return &ScriptedDecider{Answers: answers, Fallback: fallback}
}

// Decide implements Decider.
func (d *ScriptedDecider) Decide(_ context.Context, p Proposal) (Decision, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls = append(d.calls, p)
	if ans, ok := d.Answers[model.FoldName(p.Folder)]; ok {
		return ans, nil
	}
	return d.Fallback, nil
}

// Calls returns the proposals received so far.
func (d *ScriptedDecider) Calls() []Proposal {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Proposal(nil), d.calls...)
}
