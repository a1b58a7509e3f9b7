// Package report renders run results as JSON reports and CSV manifests.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"

	"github.com/nazjaz/curator/internal/model"
)

// Report is the JSON document written after a run.
type Report struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Actions     map[string]int        `json:"actions"`
	Stats       model.RunStatistics   `json:"stats"`
	Plans       []model.OperationPlan `json:"plans"`
	DryRun      bool                  `json:"dry_run"`
}

// WriteJSON writes the full report, including an action breakdown.
func WriteJSON(w io.Writer, stats model.RunStatistics, plans []model.OperationPlan, dryRun bool, now time.Time) error {
	actions := lo.CountValuesBy(plans, func(p model.OperationPlan) string {
		return string(p.Action)
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Report{
		GeneratedAt: now,
		Stats:       stats,
		Actions:     actions,
		Plans:       plans,
		DryRun:      dryRun,
	}); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}

// WriteManifestCSV writes one row per plan, in the manifest style the
// organizer family of tools keeps alongside organized trees.
func WriteManifestCSV(w io.Writer, plans []model.OperationPlan) error {
	cw := csv.NewWriter(w)

	header := []string{"source", "destination", "category", "rule", "action", "state", "fingerprint", "reason"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write manifest header: %w", err)
	}

	for _, p := range plans {
		row := []string{
			p.SourcePath,
			p.DestinationPath,
			p.Category,
			p.MatchedRule,
			string(p.Action),
			string(p.State),
			p.Fingerprint,
			p.Reason,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write manifest row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush manifest: %w", err)
	}
	return nil
}
