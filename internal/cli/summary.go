package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/nazjaz/curator/internal/model"
)

// RenderSummary formats run statistics for the terminal.
func RenderSummary(stats model.RunStatistics, plans []model.OperationPlan, dryRun bool) string {
	var b strings.Builder

	title := "Organization complete"
	if dryRun {
		title = "Dry run complete (no files were moved)"
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("  Scanned:    %d\n", stats.Scanned))
	b.WriteString(fmt.Sprintf("  Classified: %d", stats.Classified))
	if stats.Unknown > 0 {
		b.WriteString(SubtleStyle.Render(fmt.Sprintf(" (%d unknown)", stats.Unknown)))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Duplicates: %d\n", stats.DuplicatesFound))
	b.WriteString(SuccessStyle.Render(fmt.Sprintf("  Moved:      %d", stats.Moved)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Skipped:    %d\n", stats.Skipped))
	if stats.Errors > 0 {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("  Errors:     %d", stats.Errors)))
		b.WriteString("\n")
	}

	byCategory := lo.CountValuesBy(plans, func(p model.OperationPlan) string {
		return p.Category
	})
	if len(byCategory) > 0 {
		b.WriteString("\n")
		b.WriteString(BoldStyle.Render("By category:"))
		b.WriteString("\n")
		categories := lo.Keys(byCategory)
		sort.Strings(categories)
		for _, category := range categories {
			b.WriteString(fmt.Sprintf("  %-20s %d\n", category, byCategory[category]))
		}
	}

	return b.String()
}
