// Package walker scans a directory tree and produces immutable file
// candidate snapshots for the engine.
package walker

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/nazjaz/curator/internal/model"
)

// Options configures a scan.
type Options struct {
	Excludes      []string
	MaxDepth      int
	Recursive     bool
	IncludeHidden bool
}

// Walk snapshots every regular file under root into FileCandidate records.
// The snapshot is taken in full before any planning or execution, so later
// file moves cannot invalidate the iteration.
func Walk(root string, opts Options) ([]model.FileCandidate, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scan root: %w", err)
	}

	var candidates []model.FileCandidate

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// A root that cannot be read at all is the caller's problem.
			if d == nil || p == root {
				return err
			}
			// Unreadable subtrees are skipped, not fatal.
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if p == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		depth := strings.Count(rel, "/")

		if d.IsDir() {
			if !opts.Recursive {
				return fs.SkipDir
			}
			if !opts.IncludeHidden && isHidden(d.Name()) {
				return fs.SkipDir
			}
			if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
				return fs.SkipDir
			}
			if excluded(rel, d.Name(), opts.Excludes) {
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if !opts.IncludeHidden && isHidden(d.Name()) {
			return nil
		}
		if excluded(rel, d.Name(), opts.Excludes) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}

		candidates = append(candidates, model.FileCandidate{
			AbsolutePath: p,
			RelativePath: rel,
			SizeBytes:    info.Size(),
			ModifiedTime: info.ModTime(),
			// Birth time is not portably available; modification time is
			// the closest stable signal.
			CreatedTime:  info.ModTime(),
			Extension:    strings.ToLower(filepath.Ext(d.Name())),
			NestingDepth: depth,
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, walkErr)
	}

	return candidates, nil
}

// excluded matches exclude globs against both the base name and the
// slash-separated relative path.
func excluded(rel, name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
		if ok, err := path.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
