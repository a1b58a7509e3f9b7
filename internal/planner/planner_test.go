package planner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazjaz/curator/internal/model"
	"github.com/nazjaz/curator/internal/testutil"
)

func decisionFor(root, rel, category string) model.ClassificationDecision {
	return model.ClassificationDecision{
		File: model.FileCandidate{
			AbsolutePath: filepath.Join(root, filepath.FromSlash(rel)),
			RelativePath: rel,
			Extension:    filepath.Ext(rel),
			ModifiedTime: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		},
		MatchedRule:    "TestRule",
		CategoryFolder: category,
	}
}

func TestPlan_SimpleMove(t *testing.T) {
	source := testutil.Tree(t, map[string]string{"report.txt": "hello"})
	dest := t.TempDir()

	p := New(dest, model.ConflictRename)
	plan, err := p.Plan(decisionFor(source, "report.txt", "Documents"), false)
	require.NoError(t, err)

	assert.Equal(t, model.ActionMove, plan.Action)
	assert.Equal(t, filepath.Join(dest, "Documents", "report.txt"), plan.DestinationPath)
	assert.Equal(t, model.StatePlanned, plan.State)
}

func TestPlan_CopyMode(t *testing.T) {
	source := testutil.Tree(t, map[string]string{"report.txt": "hello"})
	dest := t.TempDir()

	p := New(dest, model.ConflictRename)
	p.CopyMode = true
	plan, err := p.Plan(decisionFor(source, "report.txt", "Documents"), false)
	require.NoError(t, err)

	assert.Equal(t, model.ActionCopy, plan.Action)
}

func TestPlan_DuplicateSkipsWithoutDestination(t *testing.T) {
	source := testutil.Tree(t, map[string]string{"report.txt": "hello"})

	p := New(t.TempDir(), model.ConflictRename)
	plan, err := p.Plan(decisionFor(source, "report.txt", "Documents"), true)
	require.NoError(t, err)

	assert.Equal(t, model.ActionSkipDuplicate, plan.Action)
	assert.Empty(t, plan.DestinationPath)
}

func TestPlan_ConflictPolicies(t *testing.T) {
	tests := []struct {
		name       string
		policy     model.ConflictPolicy
		wantAction model.PlanAction
		wantSuffix string
	}{
		{
			name:       "skip leaves the existing file alone",
			policy:     model.ConflictSkip,
			wantAction: model.ActionSkipConflict,
		},
		{
			name:       "overwrite replaces the destination",
			policy:     model.ConflictOverwrite,
			wantAction: model.ActionMove,
		},
		{
			name:       "rename appends a numeric suffix",
			policy:     model.ConflictRename,
			wantAction: model.ActionRenameSuffix,
			wantSuffix: "report_1.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := testutil.Tree(t, map[string]string{"report.txt": "new content"})
			dest := t.TempDir()
			testutil.WriteFile(t, dest, "Documents/report.txt", "existing content")

			p := New(dest, tt.policy)
			plan, err := p.Plan(decisionFor(source, "report.txt", "Documents"), false)
			require.NoError(t, err)

			assert.Equal(t, tt.wantAction, plan.Action)
			if tt.wantSuffix != "" {
				assert.Equal(t, filepath.Join(dest, "Documents", tt.wantSuffix), plan.DestinationPath)
			}
		})
	}
}

func TestPlan_RenameSkipsTakenSuffixes(t *testing.T) {
	source := testutil.Tree(t, map[string]string{"report.txt": "new"})
	dest := t.TempDir()
	testutil.WriteFile(t, dest, "Documents/report.txt", "v0")
	testutil.WriteFile(t, dest, "Documents/report_1.txt", "v1")
	testutil.WriteFile(t, dest, "Documents/report_2.txt", "v2")

	p := New(dest, model.ConflictRename)
	plan, err := p.Plan(decisionFor(source, "report.txt", "Documents"), false)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dest, "Documents", "report_3.txt"), plan.DestinationPath)
}

func TestPlan_SourceAlreadyAtDestination(t *testing.T) {
	// Organizing a tree in place: the file already sits where it belongs.
	base := t.TempDir()
	testutil.WriteFile(t, base, "Documents/report.txt", "hello")

	decision := model.ClassificationDecision{
		File: model.FileCandidate{
			AbsolutePath: filepath.Join(base, "Documents", "report.txt"),
			RelativePath: "report.txt",
			Extension:    ".txt",
		},
		CategoryFolder: "Documents",
	}

	p := New(base, model.ConflictRename)
	plan, err := p.Plan(decision, false)
	require.NoError(t, err)

	assert.Equal(t, model.ActionSkipConflict, plan.Action)
	assert.Equal(t, "already at destination", plan.Reason)
}

func TestPlan_PreserveSubpath(t *testing.T) {
	source := testutil.Tree(t, map[string]string{"projects/alpha/notes.txt": "hi"})
	dest := t.TempDir()

	p := New(dest, model.ConflictRename)
	p.PreserveSubpath = true
	plan, err := p.Plan(decisionFor(source, "projects/alpha/notes.txt", "Documents"), false)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dest, "Documents", "projects", "alpha", "notes.txt"), plan.DestinationPath)
}

func TestPlan_NameTemplate(t *testing.T) {
	source := testutil.Tree(t, map[string]string{"report.txt": "hi"})
	dest := t.TempDir()

	p := New(dest, model.ConflictRename)
	p.NameTemplate = "{date}_{name}{ext}"
	plan, err := p.Plan(decisionFor(source, "report.txt", "Documents"), false)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dest, "Documents", "2026-03-15_report.txt"), plan.DestinationPath)
}

func TestPlan_KeepsUppercaseExtension(t *testing.T) {
	source := testutil.Tree(t, map[string]string{"photo.JPG": "pixels"})
	dest := t.TempDir()

	decision := decisionFor(source, "photo.JPG", "Images")
	decision.File.Extension = ".jpg"

	p := New(dest, model.ConflictRename)
	plan, err := p.Plan(decision, false)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dest, "Images", "photo.JPG"), plan.DestinationPath)
}

func TestPlan_NeverMutatesFilesystem(t *testing.T) {
	source := testutil.Tree(t, map[string]string{"report.txt": "hi"})
	dest := t.TempDir()

	p := New(dest, model.ConflictRename)
	_, err := p.Plan(decisionFor(source, "report.txt", "Documents"), false)
	require.NoError(t, err)

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries, "planning must not create anything")
}
