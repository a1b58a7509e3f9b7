// Package main contains the curator CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nazjaz/curator/internal/attr"
	"github.com/nazjaz/curator/internal/classify"
	"github.com/nazjaz/curator/internal/cli"
	"github.com/nazjaz/curator/internal/common"
	"github.com/nazjaz/curator/internal/engine"
	"github.com/nazjaz/curator/internal/model"
	"github.com/nazjaz/curator/internal/planner"
	"github.com/nazjaz/curator/internal/report"
	"github.com/nazjaz/curator/internal/rules"
	"github.com/nazjaz/curator/internal/storage"
	"github.com/nazjaz/curator/internal/walker"
)

func organizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize [source]",
		Short: "Classify and sort files into category folders",
		Long: `Classify every file under the source directory against the rule set and
sort the winners into category folders under the destination.

Runs are dry-run by default: the full pipeline executes, including duplicate
bookkeeping, but nothing on disk changes. Pass --execute to apply the plan.

Examples:
  curator organize ~/Downloads                   # preview
  curator organize ~/Downloads --execute         # move files
  curator organize ~/in --dest ~/sorted --copy --execute
  curator organize ~/in --rules rules.yaml --conflict skip --execute`,
		Args: cobra.ExactArgs(1),
		RunE: runOrganize,
	}

	cmd.Flags().StringP("dest", "d", "", "destination base directory (default: the source directory)")
	cmd.Flags().StringP("rules", "r", "", "YAML rule file (default: built-in rules)")
	cmd.Flags().BoolP("execute", "x", false, "apply the plan instead of previewing it")
	cmd.Flags().Bool("copy", false, "copy files instead of moving them")
	cmd.Flags().Bool("recursive", true, "descend into subdirectories")
	cmd.Flags().StringSlice("exclude", nil, "glob patterns to skip (repeatable)")
	cmd.Flags().String("conflict", "rename", "conflict policy: skip, overwrite, rename")
	cmd.Flags().Bool("preserve-path", false, "keep the source subdirectory layout under each category")
	cmd.Flags().String("template", "", "destination filename template ({name}, {ext}, {category}, {date})")
	cmd.Flags().String("report", "", "write a JSON report to this path")
	cmd.Flags().String("manifest", "", "write a CSV manifest to this path")
	cmd.Flags().Bool("no-history", false, "skip recording the run in the history database")

	_ = viper.BindPFlag("organize.dest", cmd.Flags().Lookup("dest"))
	_ = viper.BindPFlag("organize.rules", cmd.Flags().Lookup("rules"))
	_ = viper.BindPFlag("organize.execute", cmd.Flags().Lookup("execute"))
	_ = viper.BindPFlag("organize.copy", cmd.Flags().Lookup("copy"))
	_ = viper.BindPFlag("organize.recursive", cmd.Flags().Lookup("recursive"))
	_ = viper.BindPFlag("organize.exclude", cmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("organize.conflict", cmd.Flags().Lookup("conflict"))
	_ = viper.BindPFlag("organize.preserve_path", cmd.Flags().Lookup("preserve-path"))
	_ = viper.BindPFlag("organize.template", cmd.Flags().Lookup("template"))
	_ = viper.BindPFlag("organize.no_history", cmd.Flags().Lookup("no-history"))

	return cmd
}

func runOrganize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	source := common.ExpandPath(args[0])

	dest := common.ExpandPath(viper.GetString("organize.dest"))
	if dest == "" {
		dest = source
	}

	execute := viper.GetBool("organize.execute")
	dryRun := !execute

	ruleset, err := loadRules(viper.GetString("organize.rules"))
	if err != nil {
		return err
	}

	conflict := model.ConflictPolicy(viper.GetString("organize.conflict"))
	switch conflict {
	case model.ConflictSkip, model.ConflictOverwrite, model.ConflictRename:
	default:
		return common.NewUserError(fmt.Sprintf("invalid conflict policy %q (use skip, overwrite or rename)", conflict), nil)
	}

	candidates, err := walker.Walk(source, walker.Options{
		Recursive:     viper.GetBool("organize.recursive"),
		Excludes:      viper.GetStringSlice("organize.exclude"),
		IncludeHidden: false,
	})
	if err != nil {
		return common.NewUserError("failed to scan source directory", err)
	}
	if len(candidates) == 0 {
		slog.Info("Nothing to organize", "source", source)
		return nil
	}

	slog.Info("Scanned source directory",
		"source", source,
		"files", len(candidates),
		"rules", ruleset.Len(),
		"dry_run", dryRun)

	plnr := planner.New(dest, conflict)
	plnr.CopyMode = viper.GetBool("organize.copy")
	plnr.PreserveSubpath = viper.GetBool("organize.preserve_path")
	if tmpl := viper.GetString("organize.template"); tmpl != "" {
		plnr.NameTemplate = tmpl
	}

	extractor := attr.New(attr.Options{Vocabulary: ruleset.KeywordVocabulary()})
	classifier := classify.New(ruleset)

	var seed map[string][]string
	store := openHistory(ctx)
	if store != nil {
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				slog.Error("Failed to close history database", "error", closeErr)
			}
		}()
		if seed, err = store.PlacedFingerprints(ctx); err != nil {
			common.LogError(err, "Failed to load placement history; duplicate detection starts cold", common.Fields{})
			seed = nil
		}
	}

	bar := newProgressBar(len(candidates), dryRun)
	config := engine.DefaultConfig()
	config.OnFile = func(_, _ int, _ model.OperationPlan) {
		_ = bar.Add(1)
	}

	eng := engine.NewWithConfig(extractor, classifier, plnr, engine.NewFSExecutor(), config)

	startedAt := time.Now()
	stats, plans, err := eng.Run(ctx, candidates, engine.RunOptions{DryRun: dryRun, Seed: seed})
	if err != nil {
		return fmt.Errorf("organization run aborted: %w", err)
	}

	if store != nil && !viper.GetBool("organize.no_history") {
		if _, recordErr := store.RecordRun(ctx, startedAt, dryRun, stats, plans); recordErr != nil {
			common.LogError(recordErr, "Failed to record run history", common.Fields{"db": historyPath()})
		}
	}

	if path := mustString(cmd, "report"); path != "" {
		if writeErr := writeReportFile(path, stats, plans, dryRun); writeErr != nil {
			return writeErr
		}
	}
	if path := mustString(cmd, "manifest"); path != "" {
		if writeErr := writeManifestFile(path, plans); writeErr != nil {
			return writeErr
		}
	}

	fmt.Println(cli.RenderSummary(stats, plans, dryRun))
	return nil
}

// loadRules reads the configured rule file, falling back to the built-in
// defaults when none is set.
func loadRules(path string) (*rules.RuleSet, error) {
	if path == "" {
		if path = viper.GetString("rules.file"); path == "" {
			slog.Debug("No rule file configured, using built-in rules")
			return rules.Default(), nil
		}
	}

	ruleset, err := rules.Load(common.ExpandPath(path))
	if err != nil {
		return nil, common.NewUserError("failed to load rule file", err)
	}
	return ruleset, nil
}

// openHistory opens the history database, returning nil (with a warning)
// when it cannot be opened; history is an enhancement, not a requirement.
func openHistory(ctx context.Context) *storage.Store {
	if viper.GetBool("organize.no_history") {
		return nil
	}

	store, err := storage.NewStore(historyPath())
	if err != nil {
		common.LogError(err, "Failed to open history database; continuing without it", common.Fields{"db": historyPath()})
		return nil
	}
	if err := store.Migrate(ctx); err != nil {
		common.LogError(err, "Failed to migrate history database; continuing without it", common.Fields{"db": historyPath()})
		_ = store.Close()
		return nil
	}
	return store
}

func historyPath() string {
	if path := viper.GetString("database.path"); path != "" {
		return common.ExpandPath(path)
	}
	return common.DefaultDataPath("curator.db")
}

func newProgressBar(total int, dryRun bool) *progressbar.ProgressBar {
	description := "[cyan][bold]Organizing files...[reset]"
	if dryRun {
		description = "[cyan][bold]Simulating run...[reset]"
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

func writeReportFile(path string, stats model.RunStatistics, plans []model.OperationPlan, dryRun bool) error {
	f, err := os.Create(common.ExpandPath(path))
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return report.WriteJSON(f, stats, plans, dryRun, time.Now())
}

func writeManifestFile(path string, plans []model.OperationPlan) error {
	f, err := os.Create(common.ExpandPath(path))
	if err != nil {
		return fmt.Errorf("failed to create manifest file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return report.WriteManifestCSV(f, plans)
}

func mustString(cmd *cobra.Command, flag string) string {
	v, _ := cmd.Flags().GetString(flag)
	return v
}
