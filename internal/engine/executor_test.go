package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazjaz/curator/internal/model"
	"github.com/nazjaz/curator/internal/testutil"
)

func TestExecute_MoveCreatesDestinationDirectories(t *testing.T) {
	root := testutil.Tree(t, map[string]string{"report.txt": "hello"})
	dest := filepath.Join(t.TempDir(), "Documents", "2024", "report.txt")

	x := NewFSExecutor()
	err := x.Execute(model.OperationPlan{
		SourcePath:      filepath.Join(root, "report.txt"),
		DestinationPath: dest,
		Action:          model.ActionMove,
	})
	require.NoError(t, err)

	assert.FileExists(t, dest)
	assert.NoFileExists(t, filepath.Join(root, "report.txt"))
}

func TestExecute_SkipActionsAreNoOps(t *testing.T) {
	x := NewFSExecutor()
	err := x.Execute(model.OperationPlan{
		SourcePath: "/nonexistent/file.txt",
		Action:     model.ActionSkipDuplicate,
	})
	assert.NoError(t, err)
}

func TestCopyFile_CleansUpPartialDestination(t *testing.T) {
	dir := t.TempDir()
	// A directory opens fine but fails on read, aborting the copy midway.
	src := filepath.Join(dir, "not-a-file")
	require.NoError(t, os.Mkdir(src, 0o750))
	dest := filepath.Join(dir, "out.txt")

	err := copyFile(src, dest)
	require.Error(t, err)
	assert.NoFileExists(t, dest)
}
