package main

import (
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nazjaz/curator/internal/attr"
	"github.com/nazjaz/curator/internal/classify"
	"github.com/nazjaz/curator/internal/common"
	"github.com/nazjaz/curator/internal/walker"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [source]",
		Short: "Classify files without planning or moving anything",
		Long: `Scan the source directory and print each file's winning category, matched
rule and score. Nothing is planned or moved; this is a pure classification
preview for tuning rule files.`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().StringP("rules", "r", "", "YAML rule file (default: built-in rules)")
	cmd.Flags().Bool("recursive", true, "descend into subdirectories")
	cmd.Flags().StringSlice("exclude", nil, "glob patterns to skip (repeatable)")
	cmd.Flags().Bool("unknown-only", false, "show only files no rule claimed")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	source := common.ExpandPath(args[0])

	rulesPath, _ := cmd.Flags().GetString("rules")
	ruleset, err := loadRules(rulesPath)
	if err != nil {
		return err
	}

	recursive, _ := cmd.Flags().GetBool("recursive")
	excludes, _ := cmd.Flags().GetStringSlice("exclude")
	unknownOnly, _ := cmd.Flags().GetBool("unknown-only")

	candidates, err := walker.Walk(source, walker.Options{
		Recursive: recursive,
		Excludes:  excludes,
	})
	if err != nil {
		return common.NewUserError("failed to scan source directory", err)
	}

	extractor := attr.New(attr.Options{Vocabulary: ruleset.KeywordVocabulary()})
	classifier := classify.New(ruleset)
	now := time.Now()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"File", "Type", "Category", "Rule", "Score"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for _, candidate := range candidates {
		bundle := extractor.Extract(candidate, now)
		decision := classifier.Classify(bundle)

		if unknownOnly && !decision.IsUnknown {
			continue
		}

		rule := decision.MatchedRule
		if decision.IsUnknown {
			rule = "-"
		}
		mime := bundle.DetectedMIME
		if mime == "" {
			mime = "-"
		}
		table.Append([]string{
			candidate.RelativePath,
			mime,
			decision.CategoryFolder,
			rule,
			strconv.Itoa(decision.Score),
		})
	}

	table.Render()
	common.LogInfo("Scan complete", common.Fields{"files": len(candidates), "rules": ruleset.Len()})
	return nil
}
