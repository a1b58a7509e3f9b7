package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazjaz/curator/internal/attr"
	"github.com/nazjaz/curator/internal/classify"
	"github.com/nazjaz/curator/internal/model"
	"github.com/nazjaz/curator/internal/planner"
	"github.com/nazjaz/curator/internal/rules"
	"github.com/nazjaz/curator/internal/testutil"
	"github.com/nazjaz/curator/internal/walker"
)

func testRules() *rules.RuleSet {
	return rules.New([]model.Rule{
		{Name: "Documents", Priority: 10, Criteria: []model.Criterion{
			{Kind: model.CriterionExtension, Weight: 2, Extensions: []string{".txt", ".pdf"}},
		}},
		{Name: "Images", Priority: 10, Criteria: []model.Criterion{
			{Kind: model.CriterionExtension, Weight: 2, Extensions: []string{".jpg", ".png"}},
		}},
	}, 1, "Unsorted")
}

func newTestEngine(dest string, ruleset *rules.RuleSet) *Engine {
	extractor := attr.New(attr.Options{Vocabulary: ruleset.KeywordVocabulary()})
	classifier := classify.New(ruleset)
	plnr := planner.New(dest, model.ConflictRename)
	return New(extractor, classifier, plnr, NewFSExecutor())
}

func scan(t *testing.T, root string) []model.FileCandidate {
	t.Helper()
	candidates, err := walker.Walk(root, walker.Options{Recursive: true})
	require.NoError(t, err)
	return candidates
}

func TestEngine_OrganizesBatch(t *testing.T) {
	source := testutil.Tree(t, map[string]string{
		"report.txt": "quarterly report",
		"photo.jpg":  "jpeg bytes",
		"data.bin":   "mystery bytes",
	})
	dest := t.TempDir()

	eng := newTestEngine(dest, testRules())
	stats, plans, err := eng.Run(context.Background(), scan(t, source), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Scanned)
	assert.Equal(t, 3, stats.Classified)
	assert.Equal(t, 1, stats.Unknown)
	assert.Equal(t, 3, stats.Moved)
	assert.Equal(t, 0, stats.Errors)
	assert.Len(t, plans, 3)

	assert.FileExists(t, filepath.Join(dest, "Documents", "report.txt"))
	assert.FileExists(t, filepath.Join(dest, "Images", "photo.jpg"))
	assert.FileExists(t, filepath.Join(dest, "Unsorted", "data.bin"))
	assert.NoFileExists(t, filepath.Join(source, "report.txt"))

	for _, plan := range plans {
		assert.Equal(t, model.StateExecuted, plan.State)
		assert.NotEmpty(t, plan.Fingerprint)
	}
}

func TestEngine_DuplicateContentSkipped(t *testing.T) {
	// Two byte-identical files bound for the same category: the second is
	// a duplicate and never moved.
	source := testutil.Tree(t, map[string]string{
		"a_report.txt": "identical bytes",
		"b_report.txt": "identical bytes",
	})
	dest := t.TempDir()

	eng := newTestEngine(dest, testRules())
	stats, plans, err := eng.Run(context.Background(), scan(t, source), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DuplicatesFound)
	assert.Equal(t, 1, stats.Moved)
	assert.Equal(t, 1, stats.Skipped)

	actions := map[model.PlanAction]int{}
	for _, plan := range plans {
		actions[plan.Action]++
	}
	assert.Equal(t, 1, actions[model.ActionSkipDuplicate])
}

func TestEngine_DryRunTouchesNothing(t *testing.T) {
	source := testutil.Tree(t, map[string]string{
		"report.txt": "quarterly report",
		"photo.jpg":  "jpeg bytes",
	})
	dest := t.TempDir()

	eng := newTestEngine(dest, testRules())
	stats, plans, err := eng.Run(context.Background(), scan(t, source), RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 2, stats.Classified)
	assert.Equal(t, 0, stats.Moved)

	entries, readErr := os.ReadDir(dest)
	require.NoError(t, readErr)
	assert.Empty(t, entries)

	assert.FileExists(t, filepath.Join(source, "report.txt"))
	for _, plan := range plans {
		assert.Equal(t, model.StateSimulated, plan.State)
		assert.True(t, plan.DryRun)
	}
}

func TestEngine_DryRunEquivalence(t *testing.T) {
	// The dry-run plan must choose the same destinations and actions a
	// real run would.
	files := map[string]string{
		"report.txt": "quarterly report",
		"photo.jpg":  "jpeg bytes",
		"twin.txt":   "quarterly report",
	}

	sourceA := testutil.Tree(t, files)
	destA := t.TempDir()
	_, dryPlans, err := newTestEngine(destA, testRules()).
		Run(context.Background(), scan(t, sourceA), RunOptions{DryRun: true})
	require.NoError(t, err)

	sourceB := testutil.Tree(t, files)
	destB := t.TempDir()
	_, realPlans, err := newTestEngine(destB, testRules()).
		Run(context.Background(), scan(t, sourceB), RunOptions{})
	require.NoError(t, err)

	require.Len(t, dryPlans, len(realPlans))

	byName := func(plans []model.OperationPlan) map[string]model.OperationPlan {
		m := make(map[string]model.OperationPlan)
		for _, p := range plans {
			m[filepath.Base(p.SourcePath)] = p
		}
		return m
	}
	dry, real := byName(dryPlans), byName(realPlans)

	for name, dp := range dry {
		rp, ok := real[name]
		require.True(t, ok, "plan for %s missing from real run", name)
		assert.Equal(t, dp.Action, rp.Action, "action for %s", name)
		assert.Equal(t, dp.Category, rp.Category, "category for %s", name)
		assert.Equal(t,
			filepath.Base(dp.DestinationPath),
			filepath.Base(rp.DestinationPath),
			"destination name for %s", name)
	}
}

func TestEngine_SecondRunIsIdempotent(t *testing.T) {
	files := map[string]string{
		"report.txt": "quarterly report",
		"photo.jpg":  "jpeg bytes",
	}
	source := testutil.Tree(t, files)
	dest := t.TempDir()

	eng := newTestEngine(dest, testRules())
	first, _, err := eng.Run(context.Background(), scan(t, source), RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, first.Moved)

	// Refill the source with the same content and seed the tracker the
	// way a persisted ledger would.
	source2 := testutil.Tree(t, files)
	seed := map[string][]string{}
	for _, rel := range []string{"Documents/report.txt", "Images/photo.jpg"} {
		fp, fpErr := fingerprintFile(filepath.Join(dest, filepath.FromSlash(rel)))
		require.NoError(t, fpErr)
		seed[filepath.Dir(rel)] = append(seed[filepath.Dir(rel)], fp)
	}

	second, plans, err := eng.Run(context.Background(), scan(t, source2), RunOptions{Seed: seed})
	require.NoError(t, err)

	assert.Equal(t, 0, second.Moved, "already-placed content must not be re-copied")
	assert.Equal(t, 2, second.DuplicatesFound)
	for _, plan := range plans {
		assert.Equal(t, model.ActionSkipDuplicate, plan.Action)
	}
}

func TestEngine_DryRunStatsWithConflicts(t *testing.T) {
	// 10 files, 2 of which collide with existing destination files: the
	// dry run moves nothing but its plans carry the conflict resolution a
	// real run would apply.
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "report", "photo"} {
		files[name+".txt"] = "content of " + name
	}
	source := testutil.Tree(t, files)
	dest := t.TempDir()
	testutil.WriteFile(t, dest, "Documents/report.txt", "older report")
	testutil.WriteFile(t, dest, "Documents/photo.txt", "older photo notes")

	eng := newTestEngine(dest, testRules())
	stats, plans, err := eng.Run(context.Background(), scan(t, source), RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 10, stats.Scanned)
	assert.Equal(t, 10, stats.Classified)
	assert.Equal(t, 0, stats.Moved)

	renamed := 0
	for _, plan := range plans {
		if plan.Action == model.ActionRenameSuffix {
			renamed++
		}
	}
	assert.Equal(t, 2, renamed)
}

func TestEngine_FailureIsolation(t *testing.T) {
	source := testutil.Tree(t, map[string]string{
		"good.txt":  "fine",
		"other.txt": "also fine",
	})
	dest := t.TempDir()

	ruleset := testRules()
	config := DefaultConfig()
	// Fail fingerprinting for one file; the batch must continue.
	config.Fingerprint = func(path string) (string, error) {
		if filepath.Base(path) == "good.txt" {
			return "", errors.New("disk error")
		}
		return fingerprintFile(path)
	}

	eng := NewWithConfig(
		attr.New(attr.Options{}),
		classify.New(ruleset),
		planner.New(dest, model.ConflictRename),
		NewFSExecutor(),
		config,
	)

	stats, plans, err := eng.Run(context.Background(), scan(t, source), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.Moved)

	states := map[model.FileState]int{}
	for _, plan := range plans {
		states[plan.State]++
	}
	assert.Equal(t, 1, states[model.StateFailed])
	assert.Equal(t, 1, states[model.StateExecuted])
}

func TestEngine_ContextCancellationStopsBatch(t *testing.T) {
	source := testutil.Tree(t, map[string]string{"report.txt": "hi"})
	dest := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := newTestEngine(dest, testRules())
	_, _, err := eng.Run(ctx, scan(t, source), RunOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_DeterministicClock(t *testing.T) {
	source := testutil.Tree(t, map[string]string{"old.txt": "aged content"})
	mtime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	testutil.Touch(t, filepath.Join(source, "old.txt"), mtime)

	ruleset := rules.New([]model.Rule{
		{Name: "Stale", Priority: 10, Criteria: []model.Criterion{
			{Kind: model.CriterionNumericRange, Weight: 2, Field: model.FieldAgeDays, Min: floatPtr(30)},
		}},
	}, 1, "Unsorted")

	dest := t.TempDir()
	config := DefaultConfig()
	config.Now = func() time.Time { return mtime.AddDate(0, 0, 60) }

	eng := NewWithConfig(
		attr.New(attr.Options{}),
		classify.New(ruleset),
		planner.New(dest, model.ConflictRename),
		NewFSExecutor(),
		config,
	)

	_, plans, err := eng.Run(context.Background(), scan(t, source), RunOptions{})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Stale", plans[0].MatchedRule)
}

func floatPtr(f float64) *float64 { return &f }

func fingerprintFile(path string) (string, error) {
	return DefaultConfig().Fingerprint(path)
}
