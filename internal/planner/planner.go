// Package planner computes destination paths and conflict resolutions
// without mutating the filesystem.
package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nazjaz/curator/internal/model"
)

// DefaultNameTemplate keeps the original filename.
const DefaultNameTemplate = "{name}{ext}"

// renameLimit bounds the numeric-suffix search so a pathological directory
// cannot loop forever.
const renameLimit = 10000

// Planner turns classification decisions into operation plans. It performs
// existence checks only; actual file movement belongs to the engine, which
// is what makes dry-run simulation share this exact logic.
type Planner struct {
	BaseDir         string
	NameTemplate    string
	Conflict        model.ConflictPolicy
	PreserveSubpath bool
	CopyMode        bool
}

// New creates a planner with defaults applied.
func New(baseDir string, conflict model.ConflictPolicy) *Planner {
	if conflict == "" {
		conflict = model.ConflictRename
	}
	return &Planner{
		BaseDir:      baseDir,
		Conflict:     conflict,
		NameTemplate: DefaultNameTemplate,
	}
}

// Plan computes the operation for one classified file. isDuplicate marks
// content already placed in the decision's category; duplicate files are
// skipped without computing a destination.
func (p *Planner) Plan(decision model.ClassificationDecision, isDuplicate bool) (model.OperationPlan, error) {
	plan := model.OperationPlan{
		SourcePath:  decision.File.AbsolutePath,
		Category:    decision.CategoryFolder,
		MatchedRule: decision.MatchedRule,
		State:       model.StatePlanned,
	}

	if isDuplicate {
		plan.Action = model.ActionSkipDuplicate
		plan.Reason = "identical content already placed in category"
		return plan, nil
	}

	dest := p.destinationPath(decision)

	existing, err := os.Lstat(dest)
	switch {
	case err == nil:
		return p.resolveConflict(plan, decision, dest, existing)
	case os.IsNotExist(err):
		plan.Action = p.transferAction()
		plan.DestinationPath = dest
		return plan, nil
	default:
		return plan, fmt.Errorf("failed to check destination %s: %w", dest, err)
	}
}

// destinationPath is base / category / (preserved subpath) / templated name.
func (p *Planner) destinationPath(decision model.ClassificationDecision) string {
	dir := filepath.Join(p.BaseDir, decision.CategoryFolder)
	if p.PreserveSubpath {
		if sub := filepath.Dir(decision.File.RelativePath); sub != "." {
			dir = filepath.Join(dir, sub)
		}
	}
	return filepath.Join(dir, p.renderName(decision))
}

// renderName expands the naming template. Supported placeholders: {name}
// (stem without extension), {ext} (extension with dot), {category}, and
// {date} (modification date, YYYY-MM-DD).
func (p *Planner) renderName(decision model.ClassificationDecision) string {
	template := p.NameTemplate
	if template == "" {
		template = DefaultNameTemplate
	}

	// Split on the name's own extension, not the normalized lowercase one,
	// so files like photo.JPG keep their casing.
	name := decision.File.Name()
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	r := strings.NewReplacer(
		"{name}", stem,
		"{ext}", ext,
		"{category}", decision.CategoryFolder,
		"{date}", decision.File.ModifiedTime.Format("2006-01-02"),
	)
	return r.Replace(template)
}

// resolveConflict applies the configured policy when the destination
// already exists. A destination that is the source itself is not a
// conflict; the file is already in place.
func (p *Planner) resolveConflict(plan model.OperationPlan, decision model.ClassificationDecision, dest string, existing os.FileInfo) (model.OperationPlan, error) {
	if source, err := os.Lstat(decision.File.AbsolutePath); err == nil && os.SameFile(source, existing) {
		plan.Action = model.ActionSkipConflict
		plan.DestinationPath = dest
		plan.Reason = "already at destination"
		return plan, nil
	}

	switch p.Conflict {
	case model.ConflictSkip:
		plan.Action = model.ActionSkipConflict
		plan.DestinationPath = dest
		plan.Reason = "destination exists"
		return plan, nil
	case model.ConflictOverwrite:
		plan.Action = p.transferAction()
		plan.DestinationPath = dest
		plan.Reason = "destination replaced"
		return plan, nil
	case model.ConflictRename:
		free, err := p.freeName(dest)
		if err != nil {
			return plan, err
		}
		plan.Action = model.ActionRenameSuffix
		plan.DestinationPath = free
		return plan, nil
	}

	return plan, fmt.Errorf("unknown conflict policy %q", p.Conflict)
}

// freeName appends _1, _2, ... before the extension until an unused path
// is found.
func (p *Planner) freeName(dest string) (string, error) {
	dir := filepath.Dir(dest)
	base := filepath.Base(dest)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 1; i <= renameLimit; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", dest, renameLimit)
}

func (p *Planner) transferAction() model.PlanAction {
	if p.CopyMode {
		return model.ActionCopy
	}
	return model.ActionMove
}
