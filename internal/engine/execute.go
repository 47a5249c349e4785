package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/executor"
	"github.com/Veraticus/sortsense/internal/model"
	"github.com/Veraticus/sortsense/internal/planner"
	"github.com/Veraticus/sortsense/internal/storage"
)

// Status is the result of handling a single item.
type Status string

// Item statuses.
const (
	StatusMoved   Status = "moved"
	StatusPlanned Status = "planned"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "error"
)

// Outcome records what happened to one folder unit or file.
type Outcome struct {
	Err         error
	Source      string
	Destination string
	Category    model.CategoryID
	Method      model.ExtractionMethod
	Reason      string
	Status      Status
	Confidence  float64
	Folder      bool
}

// Result summarizes an executed (or simulated) run.
type Result struct {
	MovedByCategory map[model.CategoryID]int
	SessionID       string
	Outcomes        []Outcome
	Skipped         int
	Errors          int
	DryRun          bool
}

// Moved returns the number of items moved, or that would be moved in a dry
// run.
func (r *Result) Moved() int {
	total := 0
	for _, n := range r.MovedByCategory {
		total += n
	}
	return total
}

// Execute moves the analyzed items: folder units first, then files. Every
// move is recorded in the ledger as it happens, so an interrupted run can
// still be undone. A cancelled context stops the run between items and is
// returned alongside the partial result.
func (e *Engine) Execute(ctx context.Context, a *Analysis, opts Options) (*Result, error) {
	if a == nil {
		return nil, errors.New("analysis is required")
	}

	if !opts.DryRun {
		unlock, err := e.acquireLock()
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	session, err := planner.NewSession(e.registry, a.Index, e.decider, opts.plannerOptions())
	if err != nil {
		return nil, err
	}

	res := &Result{
		SessionID:       model.NewSessionID(e.now()),
		DryRun:          opts.DryRun,
		MovedByCategory: make(map[model.CategoryID]int),
	}
	mover := executor.New(e.ledger, res.SessionID)

	slog.Info("Starting session",
		"session_id", res.SessionID,
		"dry_run", opts.DryRun,
		"folders", len(a.Folders),
		"files", len(a.Files))

	runErr := e.runItems(ctx, a, session, mover, res)

	e.recordRun(ctx, a, res)

	slog.Info("Session finished",
		"session_id", res.SessionID,
		"moved", res.Moved(),
		"skipped", res.Skipped,
		"errors", res.Errors)
	return res, runErr
}

func (e *Engine) runItems(ctx context.Context, a *Analysis, session *planner.Session, mover *executor.Executor, res *Result) error {
	for _, f := range a.Folders {
		if err := ctx.Err(); err != nil {
			return err
		}
		plan, err := session.PlanFolder(ctx, f)
		if err != nil {
			return err
		}
		e.apply(session, mover, plan, Outcome{
			Source:     f.Path,
			Category:   f.Category,
			Confidence: f.Confidence,
			Folder:     true,
		}, res)
	}

	for _, f := range a.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		plan, err := session.PlanFile(ctx, f)
		if err != nil {
			return err
		}
		e.apply(session, mover, plan, Outcome{
			Source:     f.SourcePath,
			Category:   f.Category,
			Method:     f.Method,
			Confidence: f.Confidence.Normalized(),
		}, res)
	}
	return nil
}

func (e *Engine) apply(session *planner.Session, mover *executor.Executor, plan planner.Plan, out Outcome, res *Result) {
	out.Category = plan.Category

	switch {
	case plan.Action == planner.ActionSkip:
		out.Status = StatusSkipped
		out.Reason = plan.Reason
		res.Skipped++
		slog.Debug("Skipping item", "source", out.Source, "reason", plan.Reason)

	case res.DryRun:
		out.Status = StatusPlanned
		out.Destination = plan.DestDir
		res.MovedByCategory[plan.Category]++
		session.Commit(plan)

	default:
		target, err := mover.Move(out.Source, plan.DestDir, plan.Category)
		if err != nil {
			out.Status = StatusFailed
			out.Err = err
			res.Errors++
			common.LogError(err, "Failed to move item", common.Fields{
				"source":      out.Source,
				"destination": plan.DestDir,
			})
			break
		}
		out.Status = StatusMoved
		out.Destination = target
		res.MovedByCategory[plan.Category]++
		session.Commit(plan)
	}

	res.Outcomes = append(res.Outcomes, out)
}

func (e *Engine) recordRun(ctx context.Context, a *Analysis, res *Result) {
	if e.history == nil {
		return
	}

	run := storage.Run{
		SessionID:   res.SessionID,
		StartedAt:   a.StartedAt,
		FinishedAt:  e.now(),
		Source:      a.Source,
		Destination: a.Destination,
		DryRun:      res.DryRun,
		Moved:       res.Moved(),
		Skipped:     res.Skipped,
		Errors:      res.Errors,
	}
	files := make([]storage.RunFile, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		f := storage.RunFile{
			Source:      o.Source,
			Category:    string(o.Category),
			Confidence:  o.Confidence,
			Method:      string(o.Method),
			Destination: o.Destination,
			Outcome:     string(o.Status),
		}
		if o.Folder {
			f.Method = "folder"
		}
		if o.Err != nil {
			f.Error = o.Err.Error()
		}
		files = append(files, f)
	}

	// Interrupted runs are still recorded.
	if err := e.history.SaveRun(context.WithoutCancel(ctx), run, files); err != nil {
		slog.Warn("Failed to record run history", "session_id", res.SessionID, "error", err)
	}
}

