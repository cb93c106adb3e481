// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrate runs the research pipeline as a supervised state
// machine: plan, search, enrich, extract, analyze, quality-check, report.
// Every state transition is checkpointed before the next stage begins, so a
// process restart resumes from the last written checkpoint without
// duplicated work. Cancellation is cooperative and takes effect at stage
// boundaries.
package orchestrate

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/meshintel/prodscout/internal/checkpoint"
	"github.com/meshintel/prodscout/internal/enrich"
	"github.com/meshintel/prodscout/internal/plan"
	"github.com/meshintel/prodscout/internal/quality"
	"github.com/meshintel/prodscout/internal/search"
	"github.com/meshintel/prodscout/pkg/types"
)

const defaultMaxIterations = 3

// Stage components. Interfaces keep the supervisor testable with mocks; the
// concrete implementations live in their own packages.
type (
	// Planner builds the initial search plan.
	Planner interface {
		Build(ctx context.Context, req plan.Request) *types.SearchPlan
	}

	// Searcher executes pending plan queries against providers.
	Searcher interface {
		Execute(ctx context.Context, p *types.SearchPlan, history []types.SearchResult) (search.Output, error)
	}

	// Enricher upgrades short result contents in place.
	Enricher interface {
		Enrich(ctx context.Context, results []types.SearchResult) (enrich.Summary, []types.SearchResult)
	}

	// Summarizer runs the map and reduce phases.
	Summarizer interface {
		MapAll(ctx context.Context, results []types.SearchResult, existing []types.ExtractionResult) ([]types.ExtractionResult, error)
		Reduce(ctx context.Context, topic string, extractions []types.ExtractionResult) *types.ComprehensiveSummary
	}

	// Analyzer produces the deep analysis.
	Analyzer interface {
		Analyze(ctx context.Context, topic string, summary *types.ComprehensiveSummary, results []types.SearchResult) *types.AnalysisResult
	}

	// Gate scores evidence and proposes supplemental queries.
	Gate interface {
		Check(ctx context.Context, in quality.Input) *types.QualityCheck
	}

	// Reporter writes the final report artifact and returns its path.
	Reporter interface {
		Write(snap *types.Snapshot) (string, error)
	}
)

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Planner    Planner
	Searcher   Searcher
	Enricher   Enricher
	Summarizer Summarizer
	Analyzer   Analyzer
	Gate       Gate
	Reporter   Reporter
	Store      *checkpoint.Store
	Sink       ProgressSink
	Out        io.Writer
}

// Orchestrator sequences the pipeline stages for one task at a time.
type Orchestrator struct {
	deps      Deps
	cfg       types.OrchestratorConfig
	cancelled atomic.Bool
}

// New returns an Orchestrator. A nil Sink is replaced with NopSink.
func New(deps Deps, cfg types.OrchestratorConfig) *Orchestrator {
	if deps.Sink == nil {
		deps.Sink = NopSink{}
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	return &Orchestrator{deps: deps, cfg: cfg}
}

// Cancel requests cooperative cancellation. In-flight calls are not
// aborted; the run stops at the next stage boundary.
func (o *Orchestrator) Cancel() {
	o.cancelled.Store(true)
}

// Run starts a new research task and drives it to a terminal state. The
// returned snapshot reflects the final checkpoint.
func (o *Orchestrator) Run(ctx context.Context, req plan.Request) (*types.Snapshot, error) {
	maxIters := o.cfg.MaxIterations
	if maxIters <= 0 {
		maxIters = defaultMaxIterations
	}

	started := time.Now().UTC()
	snap := &types.Snapshot{
		Task: types.ResearchTask{
			ID:            uuid.NewString(),
			Title:         req.Title,
			Description:   req.Description,
			Keywords:      req.Keywords,
			Status:        types.StatusPending,
			MaxIterations: maxIters,
			StartedAt:     started,
			UpdatedAt:     started,
		},
	}
	if err := o.deps.Store.Write(snap); err != nil {
		return snap, fmt.Errorf("writing initial checkpoint: %w", err)
	}
	return o.loop(ctx, snap)
}

// Resume continues a task from its last checkpoint. Cancelled tasks pick
// up at the stage the cancellation interrupted; completed and failed tasks
// are returned unchanged. A corrupt checkpoint surfaces
// checkpoint.ErrIntegrity so the caller can decide to restart from scratch.
func (o *Orchestrator) Resume(ctx context.Context, taskID string) (*types.Snapshot, error) {
	snap, err := o.deps.Store.Read(taskID)
	if err != nil {
		return nil, err
	}
	if snap.Task.Status == types.StatusCancelled && snap.Task.ResumeStatus != "" {
		snap.Task.Status = snap.Task.ResumeStatus
		snap.Task.ResumeStatus = ""
	} else if snap.Task.Status.Terminal() {
		return snap, nil
	}
	klog.V(2).Infof("resuming task %s from status %s", taskID, snap.Task.Status)
	return o.loop(ctx, snap)
}

// loop dispatches stages until the task reaches a terminal state. Each case
// performs one stage's work and transitions forward; the only backward edge
// is analyzing back to searching when the gate requests supplemental
// queries.
func (o *Orchestrator) loop(ctx context.Context, snap *types.Snapshot) (*types.Snapshot, error) {
	for {
		if snap.Task.Status.Terminal() {
			return snap, nil
		}
		if o.cancelled.Load() || ctx.Err() != nil {
			snap.Task.ResumeStatus = snap.Task.Status
			if err := o.transition(snap, types.StatusCancelled, snap.Task.ProgressPercent, "cancelled"); err != nil {
				return snap, err
			}
			return snap, nil
		}

		var err error
		switch snap.Task.Status {
		case types.StatusPending:
			err = o.transition(snap, types.StatusPlanning, 5, "planning research")
		case types.StatusPlanning:
			err = o.stagePlan(ctx, snap)
		case types.StatusSearching:
			err = o.stageSearch(ctx, snap)
		case types.StatusExtracting:
			err = o.stageExtract(ctx, snap)
		case types.StatusAnalyzing:
			err = o.stageAnalyze(ctx, snap)
		case types.StatusReporting:
			err = o.stageReport(snap)
		default:
			return snap, fmt.Errorf("task %s: unexpected status %q", snap.Task.ID, snap.Task.Status)
		}
		if err != nil {
			return snap, o.fail(snap, err)
		}
	}
}

func (o *Orchestrator) stagePlan(ctx context.Context, snap *types.Snapshot) error {
	p := o.deps.Planner.Build(ctx, plan.Request{
		Title:       snap.Task.Title,
		Description: snap.Task.Description,
		Keywords:    snap.Task.Keywords,
	})
	snap.Plan = p
	return o.transition(snap, types.StatusSearching, 15,
		fmt.Sprintf("plan ready: %d queries across %d dimensions", len(p.Queries), len(p.Dimensions)))
}

func (o *Orchestrator) stageSearch(ctx context.Context, snap *types.Snapshot) error {
	out, err := o.deps.Searcher.Execute(ctx, snap.Plan, snap.Results)
	if err != nil {
		return fmt.Errorf("search stage: %w", err)
	}

	// Enrichment failures keep the snippet; they never fail the stage.
	_, enriched := o.deps.Enricher.Enrich(ctx, out.Results)
	snap.Results = append(snap.Results, enriched...)

	return o.transition(snap, types.StatusExtracting, 45,
		fmt.Sprintf("found %d new results (%d duplicates removed)", len(enriched), out.DupsRemoved))
}

func (o *Orchestrator) stageExtract(ctx context.Context, snap *types.Snapshot) error {
	extractions, err := o.deps.Summarizer.MapAll(ctx, snap.Results, snap.Extractions)
	if err != nil {
		return fmt.Errorf("extract stage: %w", err)
	}
	snap.Extractions = append(snap.Extractions, extractions...)
	snap.Summary = o.deps.Summarizer.Reduce(ctx, snap.Task.Title, snap.Extractions)

	return o.transition(snap, types.StatusAnalyzing, 70,
		fmt.Sprintf("extracted %d new results, %d total", len(extractions), len(snap.Extractions)))
}

func (o *Orchestrator) stageAnalyze(ctx context.Context, snap *types.Snapshot) error {
	snap.Analysis = o.deps.Analyzer.Analyze(ctx, snap.Task.Title, snap.Summary, snap.Results)

	check := o.deps.Gate.Check(ctx, quality.Input{
		Topic:      snap.Task.Title,
		Results:    snap.Results,
		Summary:    snap.Summary,
		Analysis:   snap.Analysis,
		Thresholds: snap.Plan.Thresholds,
		Iteration:  snap.Task.IterationsUsed,
		MaxIters:   snap.Task.MaxIterations,
	})
	snap.Quality = check
	snap.Task.IterationsUsed++

	if !check.IsComplete && len(check.RecommendedQueries) > 0 {
		// Append-only: supplemental queries carry fresh ids and existing
		// plan entries are never touched.
		snap.Plan.Queries = append(snap.Plan.Queries, check.RecommendedQueries...)
		return o.transition(snap, types.StatusSearching, 30,
			fmt.Sprintf("score %.1f below %.0f, searching %d supplemental queries",
				check.Score, snap.Plan.Thresholds.CompletionScore, len(check.RecommendedQueries)))
	}

	msg := fmt.Sprintf("research complete with score %.1f", check.Score)
	if !check.IsComplete {
		msg = fmt.Sprintf("iteration ceiling reached at score %.1f, reporting anyway", check.Score)
	}
	return o.transition(snap, types.StatusReporting, 85, msg)
}

func (o *Orchestrator) stageReport(snap *types.Snapshot) error {
	path, err := o.deps.Reporter.Write(snap)
	if err != nil {
		return fmt.Errorf("report stage: %w", err)
	}
	completed := time.Now().UTC()
	snap.Task.CompletedAt = &completed
	return o.transition(snap, types.StatusCompleted, 100, "report written to "+path)
}

// transition moves the task to the next status and checkpoints before any
// further work happens. The progress sink is notified after the durable
// write so observers never see un-checkpointed state.
func (o *Orchestrator) transition(snap *types.Snapshot, status types.TaskStatus, percent int, message string) error {
	snap.Task.Status = status
	snap.Task.ProgressPercent = percent
	snap.Task.ProgressMessage = message
	snap.Task.UpdatedAt = time.Now().UTC()

	if err := o.deps.Store.Write(snap); err != nil {
		return fmt.Errorf("checkpointing %s: %w", status, err)
	}

	fmt.Fprintf(o.deps.Out, "%s: %s\n", status, message)
	o.deps.Sink.UpdateProgress(snap.Task.ID, percent, message)
	return nil
}

// fail marks the task failed with a human-readable message. The checkpoint
// before the failure stays intact, so the task remains inspectable.
func (o *Orchestrator) fail(snap *types.Snapshot, cause error) error {
	klog.Errorf("task %s failed: %v", snap.Task.ID, cause)
	if err := o.transition(snap, types.StatusFailed, snap.Task.ProgressPercent, cause.Error()); err != nil {
		klog.Errorf("task %s: recording failure: %v", snap.Task.ID, err)
	}
	return cause
}
