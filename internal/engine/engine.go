// Package engine orchestrates extraction, classification, duplicate
// detection, planning and execution over a batch of files.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nazjaz/curator/internal/dedupe"
	"github.com/nazjaz/curator/internal/model"
)

// Config holds configuration options for the organization engine.
type Config struct {
	// Now supplies the clock for age computation; injectable for tests.
	Now func() time.Time
	// Fingerprint hashes file content; defaults to dedupe.Fingerprint.
	Fingerprint Fingerprinter
	// OnFile is called after each file completes, for progress reporting.
	OnFile func(index, total int, plan model.OperationPlan)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Now:         time.Now,
		Fingerprint: dedupe.Fingerprint,
	}
}

// RunOptions controls a single batch run.
type RunOptions struct {
	// Seed preloads per-category fingerprints from a previous run so
	// already-placed content is recognized as duplicate.
	Seed map[string][]string
	// DryRun executes the full pipeline, including duplicate bookkeeping,
	// without touching the filesystem.
	DryRun bool
}

// Engine processes a batch of file candidates through the per-file state
// machine: Discovered, Extracted, Classified, DuplicateChecked, Planned,
// then Executed, Simulated or Failed.
type Engine struct {
	extractor  Extractor
	classifier Classifier
	planner    Planner
	executor   Executor
	config     Config
}

// New creates an organization engine with the given dependencies.
func New(extractor Extractor, classifier Classifier, planner Planner, executor Executor) *Engine {
	return NewWithConfig(extractor, classifier, planner, executor, DefaultConfig())
}

// NewWithConfig creates an organization engine with custom configuration.
func NewWithConfig(extractor Extractor, classifier Classifier, planner Planner, executor Executor, config Config) *Engine {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Fingerprint == nil {
		config.Fingerprint = dedupe.Fingerprint
	}
	return &Engine{
		extractor:  extractor,
		classifier: classifier,
		planner:    planner,
		executor:   executor,
		config:     config,
	}
}

// Run processes every candidate to completion, one at a time. A failure on
// one file increments the error counter and the batch continues; the run
// only aborts early on context cancellation.
func (e *Engine) Run(ctx context.Context, candidates []model.FileCandidate, opts RunOptions) (model.RunStatistics, []model.OperationPlan, error) {
	stats := model.RunStatistics{}
	plans := make([]model.OperationPlan, 0, len(candidates))

	tracker := dedupe.NewTracker()
	for category, fingerprints := range opts.Seed {
		tracker.Seed(category, fingerprints)
	}

	now := e.config.Now()

	slog.Info("Starting organization run",
		"files", len(candidates),
		"dry_run", opts.DryRun,
		"seeded_categories", tracker.Categories())

	for i, candidate := range candidates {
		select {
		case <-ctx.Done():
			return stats, plans, ctx.Err()
		default:
		}

		stats.Scanned++
		plan := e.processFile(candidate, now, tracker, opts.DryRun, &stats)
		plans = append(plans, plan)

		if e.config.OnFile != nil {
			e.config.OnFile(i, len(candidates), plan)
		}
	}

	slog.Info("Organization run complete",
		"scanned", stats.Scanned,
		"classified", stats.Classified,
		"duplicates", stats.DuplicatesFound,
		"moved", stats.Moved,
		"skipped", stats.Skipped,
		"errors", stats.Errors)

	return stats, plans, nil
}

// processFile runs one candidate through the full pipeline and returns its
// terminal plan.
func (e *Engine) processFile(candidate model.FileCandidate, now time.Time, tracker *dedupe.Tracker, dryRun bool, stats *model.RunStatistics) model.OperationPlan {
	bundle := e.extractor.Extract(candidate, now)
	if bundle.ExtractionError != "" {
		// The file is still classifiable on partial attributes; the lost
		// signal is counted, not fatal.
		stats.Errors++
		slog.Warn("Attribute extraction degraded",
			"path", candidate.RelativePath,
			"error", bundle.ExtractionError)
	}

	decision := e.classifier.Classify(bundle)
	stats.Classified++
	if decision.IsUnknown {
		stats.Unknown++
	}

	fingerprint, err := e.config.Fingerprint(candidate.AbsolutePath)
	if err != nil {
		// An unhashable file must not pass as unique content.
		stats.Errors++
		return failedPlan(candidate, decision, dryRun, fmt.Sprintf("fingerprint failed: %v", err))
	}

	isDuplicate := tracker.IsDuplicate(fingerprint, decision.CategoryFolder)
	if isDuplicate {
		stats.DuplicatesFound++
	}

	plan, err := e.planner.Plan(decision, isDuplicate)
	if err != nil {
		stats.Errors++
		return failedPlan(candidate, decision, dryRun, fmt.Sprintf("planning failed: %v", err))
	}
	plan.Fingerprint = fingerprint
	plan.DryRun = dryRun

	if dryRun {
		plan.State = model.StateSimulated
		if plan.Action.Mutates() || contentPlaced(plan) {
			tracker.Record(fingerprint, decision.CategoryFolder)
		}
		if !plan.Action.Mutates() {
			stats.Skipped++
		}
		return plan
	}

	if !plan.Action.Mutates() {
		stats.Skipped++
		plan.State = model.StateExecuted
		if contentPlaced(plan) {
			tracker.Record(fingerprint, decision.CategoryFolder)
		}
		return plan
	}

	if err := e.executor.Execute(plan); err != nil {
		stats.Errors++
		slog.Error("Plan execution failed",
			"path", candidate.RelativePath,
			"destination", plan.DestinationPath,
			"error", err)
		plan.State = model.StateFailed
		plan.Reason = err.Error()
		return plan
	}

	stats.Moved++
	plan.State = model.StateExecuted
	tracker.Record(fingerprint, decision.CategoryFolder)

	slog.Debug("File organized",
		"source", candidate.RelativePath,
		"destination", plan.DestinationPath,
		"category", plan.Category,
		"action", plan.Action)

	return plan
}

// contentPlaced reports whether a non-mutating plan still leaves the
// content present in its category (the source already sits at the
// destination), which must count for duplicate bookkeeping.
func contentPlaced(plan model.OperationPlan) bool {
	return plan.Action == model.ActionSkipConflict && plan.Reason == "already at destination"
}

func failedPlan(candidate model.FileCandidate, decision model.ClassificationDecision, dryRun bool, reason string) model.OperationPlan {
	return model.OperationPlan{
		SourcePath:  candidate.AbsolutePath,
		Category:    decision.CategoryFolder,
		MatchedRule: decision.MatchedRule,
		State:       model.StateFailed,
		Reason:      reason,
		DryRun:      dryRun,
	}
}
