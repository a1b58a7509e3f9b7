package engine

import (
	"time"

	"github.com/nazjaz/curator/internal/model"
)

// Extractor derives attribute bundles from file candidates.
type Extractor interface {
	Extract(candidate model.FileCandidate, now time.Time) model.AttributeBundle
}

// Classifier resolves a category decision for an attribute bundle.
type Classifier interface {
	Classify(bundle model.AttributeBundle) model.ClassificationDecision
}

// Planner computes an operation plan for a classified file.
type Planner interface {
	Plan(decision model.ClassificationDecision, isDuplicate bool) (model.OperationPlan, error)
}

// Executor applies a mutating operation plan to the filesystem.
type Executor interface {
	Execute(plan model.OperationPlan) error
}

// Fingerprinter hashes file content for duplicate detection.
type Fingerprinter func(path string) (string, error)
