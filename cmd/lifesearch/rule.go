package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/totalistic/lifesearch/internal/rule"
)

// newRuleCmd parses a rulestring and re-emits it in canonical Hensel
// notation, exercising internal/rule standalone. LLS_main.py's CLI exposed
// this as a way to sanity-check a rulestring before spending a search on it;
// the distillation's module boundary folds rule parsing into the pattern
// pipeline, but spec.md §1's "render the table back to canonical notation"
// implies the same standalone check belongs here too.
func newRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rule <rulestring>",
		Short: "Parse a rulestring and re-emit it in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, _, err := rule.Parse(args[0], 0)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.String())
			return nil
		},
	}
}
