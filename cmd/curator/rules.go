package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nazjaz/curator/internal/cli"
	"github.com/nazjaz/curator/internal/model"
	"github.com/nazjaz/curator/internal/rules"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and validate rule files",
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesValidateCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		RunE:  runRulesList,
	}
	cmd.Flags().StringP("rules", "r", "", "YAML rule file (default: built-in rules)")
	return cmd
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	rulesPath, _ := cmd.Flags().GetString("rules")
	ruleset, err := loadRules(rulesPath)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rule", "Priority", "Folder", "Criteria"})
	table.SetBorder(false)

	for _, rule := range ruleset.Rules() {
		table.Append([]string{
			rule.Name,
			strconv.Itoa(rule.Priority),
			rule.CategoryFolder(),
			describeCriteria(rule),
		})
	}

	table.Render()
	fmt.Printf("\nmin_score=%d unknown_folder=%s\n", ruleset.MinScore, ruleset.UnknownFolder)
	return nil
}

func describeCriteria(rule model.Rule) string {
	desc := ""
	for i, c := range rule.Criteria {
		if i > 0 {
			desc += ", "
		}
		desc += fmt.Sprintf("%s(w=%d)", c.Kind, c.Weight)
	}
	return desc
}

func rulesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a rule file without running anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ruleset, err := rules.Load(args[0])
			if err != nil {
				fmt.Println(cli.ErrorStyle.Render(fmt.Sprintf("invalid: %v", err)))
				return err
			}
			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("valid: %d rules, min_score=%d, unknown folder %q",
					ruleset.Len(), ruleset.MinScore, ruleset.UnknownFolder)))
			return nil
		},
	}
}
