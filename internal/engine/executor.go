package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nazjaz/curator/internal/model"
)

// FSExecutor applies operation plans to the real filesystem.
type FSExecutor struct{}

// NewFSExecutor creates a filesystem executor.
func NewFSExecutor() *FSExecutor {
	return &FSExecutor{}
}

// Execute performs the plan's move or copy. Skip actions are no-ops.
func (x *FSExecutor) Execute(plan model.OperationPlan) error {
	if !plan.Action.Mutates() {
		return nil
	}
	if plan.DestinationPath == "" {
		return fmt.Errorf("plan for %s has no destination", plan.SourcePath)
	}

	if err := os.MkdirAll(filepath.Dir(plan.DestinationPath), 0o750); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	if plan.Action == model.ActionCopy {
		return copyFile(plan.SourcePath, plan.DestinationPath)
	}

	return moveFile(plan.SourcePath, plan.DestinationPath)
}

// moveFile renames when possible and falls back to copy-and-remove for
// cross-device moves.
func moveFile(source, dest string) error {
	err := os.Rename(source, dest)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return fmt.Errorf("failed to move %s: %w", source, err)
	}

	if copyErr := copyFile(source, dest); copyErr != nil {
		return copyErr
	}
	if rmErr := os.Remove(source); rmErr != nil {
		return fmt.Errorf("copied %s but failed to remove source: %w", source, rmErr)
	}
	return nil
}

func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer func() {
		_ = in.Close()
	}()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", source, err)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("failed to copy %s: %w", source, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("failed to finish writing %s: %w", dest, err)
	}
	return nil
}
