// Command lifesearch searches cellular-automaton rule spaces for patterns
// satisfying a declarative set of constraints by compiling them to a SAT
// instance. It is the Go counterpart of LLS_main.py/main.py.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var debug bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "lifesearch",
		Short: "Search cellular-automaton rule spaces for patterns via SAT",
		Long: `lifesearch compiles a declaratively constrained search pattern
(symmetry, population, growth/decay bounds, the evolution rule itself) into
a CNF instance and hands it to a SAT solver, substituting any model found
back into the pattern's grid.`,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(newSolveCmd())
	rootCmd.AddCommand(newRuleCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
