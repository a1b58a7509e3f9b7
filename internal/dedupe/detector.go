// Package dedupe detects byte-identical files already placed in a
// destination category.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Fingerprint hashes the full byte content of a file. The result is stable
// for identical content regardless of filename or location.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for fingerprinting: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Tracker records which fingerprints have been assigned to each destination
// category during a run. Duplicate scope is per category: content identical
// to a file placed in category A is not a duplicate of anything in B. The
// engine owns the tracker exclusively; it grows monotonically within a run.
type Tracker struct {
	seen map[string]map[string]struct{}
}

// NewTracker creates an empty fingerprint tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]map[string]struct{})}
}

// IsDuplicate reports whether the fingerprint was already recorded for the
// category.
func (t *Tracker) IsDuplicate(fingerprint, category string) bool {
	fps, ok := t.seen[category]
	if !ok {
		return false
	}
	_, dup := fps[fingerprint]
	return dup
}

// Record marks a fingerprint as placed in the category.
func (t *Tracker) Record(fingerprint, category string) {
	if fingerprint == "" {
		return
	}
	fps, ok := t.seen[category]
	if !ok {
		fps = make(map[string]struct{})
		t.seen[category] = fps
	}
	fps[fingerprint] = struct{}{}
}

// Seed preloads fingerprints for a category, typically from a previous
// run's persisted ledger, so re-runs recognize already-placed content.
func (t *Tracker) Seed(category string, fingerprints []string) {
	for _, fp := range fingerprints {
		t.Record(fp, category)
	}
}

// Categories returns the number of categories with recorded fingerprints.
func (t *Tracker) Categories() int {
	return len(t.seen)
}
