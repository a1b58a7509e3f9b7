package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nazjaz/curator/internal/common"
	"github.com/nazjaz/curator/internal/storage"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past organization runs",
		RunE:  runHistory,
	}
	cmd.Flags().IntP("limit", "n", 20, "number of runs to show")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := storage.NewStore(historyPath())
	if err != nil {
		return common.NewUserError("failed to open history database", err)
	}
	defer func() {
		_ = store.Close()
	}()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate history database: %w", err)
	}

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Run", "Started", "Mode", "Scanned", "Moved", "Dupes", "Skipped", "Errors"})
	table.SetBorder(false)

	for _, r := range runs {
		mode := "execute"
		if r.DryRun {
			mode = "dry-run"
		}
		table.Append([]string{
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Format("2006-01-02 15:04"),
			mode,
			strconv.Itoa(r.Stats.Scanned),
			strconv.Itoa(r.Stats.Moved),
			strconv.Itoa(r.Stats.DuplicatesFound),
			strconv.Itoa(r.Stats.Skipped),
			strconv.Itoa(r.Stats.Errors),
		})
	}

	table.Render()
	return nil
}
