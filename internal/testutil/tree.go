// Package testutil provides filesystem helpers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nazjaz/curator/internal/model"
)

// Tree creates a temp directory populated with the given relative-path to
// content mapping and returns its root.
func Tree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
	return root
}

// WriteFile creates one file (and its parent directories) under root.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// Candidate builds a FileCandidate for a file created by Tree/WriteFile.
func Candidate(t *testing.T, root, rel string) model.FileCandidate {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(path)
	require.NoError(t, err)

	depth := 0
	for _, r := range rel {
		if r == '/' {
			depth++
		}
	}

	return model.FileCandidate{
		AbsolutePath: path,
		RelativePath: rel,
		SizeBytes:    info.Size(),
		ModifiedTime: info.ModTime(),
		CreatedTime:  info.ModTime(),
		Extension:    strings.ToLower(filepath.Ext(rel)),
		NestingDepth: depth,
	}
}

// Touch sets a file's modification time, for age-based tests.
func Touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}
