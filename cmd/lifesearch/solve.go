package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/totalistic/lifesearch/internal/config"
	"github.com/totalistic/lifesearch/internal/format"
	"github.com/totalistic/lifesearch/internal/grid"
	"github.com/totalistic/lifesearch/internal/literal"
	"github.com/totalistic/lifesearch/internal/pattern"
	"github.com/totalistic/lifesearch/internal/solve"
	"github.com/totalistic/lifesearch/internal/state"
	"github.com/totalistic/lifesearch/internal/transition"
)

// solveArgs collects every solve subcommand flag, mirroring the teacher's
// package-level flag-var convention.
var solveArgs struct {
	configFile     string
	rulestring     string
	background     string
	symmetries     []string
	asymmetries    []string
	periods        []string
	popAtLeast     []string
	popAtMost      []string
	popExactly     []string
	maxChange      int
	maxDecay       int
	maxGrowth      int
	forceChange    []string
	solver         string
	solverBinDir   string
	parameters     []string
	timeout        time.Duration
	method         string
	outputFormat   string
	numberSolns    string
	saveDIMACS     string
	saveState      string
	loadState      string
	dryRun         bool
	outputFile     string
}

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <pattern-file>",
		Short: "Search for a pattern satisfying the given constraints",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}

	flags := cmd.Flags()
	flags.StringVar(&solveArgs.configFile, "config", "", "optional TOML config file overlaying built-in defaults")
	flags.StringVar(&solveArgs.rulestring, "rulestring", "", "rulestring to search under (default from config)")
	flags.StringVar(&solveArgs.background, "background", "", "path to a background pattern file (default: a single dead cell)")
	flags.StringArrayVar(&solveArgs.symmetries, "symmetry", nil, "force a symmetry \"transform,dx,dy,period\" (repeatable)")
	flags.StringArrayVar(&solveArgs.asymmetries, "asymmetry", nil, "forbid a symmetry \"transform,dx,dy,period\" (repeatable)")
	flags.StringArrayVar(&solveArgs.periods, "period", nil, "force_period shorthand \"period,dx,dy\" (repeatable)")
	flags.StringArrayVar(&solveArgs.popAtLeast, "population-at-least", nil, "\"times:population\" lower bound (repeatable)")
	flags.StringArrayVar(&solveArgs.popAtMost, "population-at-most", nil, "\"times:population\" upper bound (repeatable)")
	flags.StringArrayVar(&solveArgs.popExactly, "population-exactly", nil, "\"times:population\" exact bound (repeatable)")
	flags.IntVar(&solveArgs.maxChange, "max-change", -1, "bound cells differing from generation 0 (-1: unset)")
	flags.IntVar(&solveArgs.maxDecay, "max-decay", -1, "bound cells dying relative to generation 0 (-1: unset)")
	flags.IntVar(&solveArgs.maxGrowth, "max-growth", -1, "bound cells born relative to generation 0 (-1: unset)")
	flags.StringArrayVar(&solveArgs.forceChange, "force-change", nil, "\"t0,t1\" forcing a difference between two generations (repeatable)")
	flags.StringVar(&solveArgs.solver, "solver", "", "SAT solver to use (default from config)")
	flags.StringVar(&solveArgs.solverBinDir, "solver-bin-dir", "", "directory containing the solver binary, if not on PATH")
	flags.StringArrayVar(&solveArgs.parameters, "parameter", nil, "extra argv token passed through to an external solver (repeatable)")
	flags.DurationVar(&solveArgs.timeout, "timeout", 0, "solver timeout (0: no timeout)")
	flags.StringVar(&solveArgs.method, "method", "", "transition encoding: knuth, naive, or generic (default from config)")
	flags.StringVar(&solveArgs.outputFormat, "output-format", "", "solution format: rle, csv, or blk (default from config)")
	flags.StringVar(&solveArgs.numberSolns, "number-of-solutions", "1", "how many distinct solutions to find, or \"Infinity\"")
	flags.StringVar(&solveArgs.saveDIMACS, "save-dimacs", "", "write the generated CNF to this path before solving")
	flags.StringVar(&solveArgs.saveState, "save-state", "", "save solve state to this path (or a default name if empty but flag is set)")
	flags.StringVar(&solveArgs.loadState, "state", "", "resume from a state file previously written by --save-state")
	flags.BoolVar(&solveArgs.dryRun, "dry-run", false, "build the CNF and report statistics without invoking a solver")
	flags.StringVar(&solveArgs.outputFile, "output-file", "", "append each solution's formatted output to this file")

	return cmd
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(solveArgs.configFile)
	if err != nil {
		return err
	}
	applyConfigDefaults(&cfg)

	p, determined, showBackground, err := buildPattern(args[0], cfg)
	if err != nil {
		return err
	}

	log.Infof("Number of undetermined cells: %d", p.NumberOfCells())
	log.Infof("Number of variables: %d", p.Store.NumVars())
	log.Infof("Number of clauses: %d", len(p.Store.Clauses()))

	if solveArgs.saveDIMACS != "" {
		if err := writeDIMACS(p, solveArgs.saveDIMACS); err != nil {
			return err
		}
	}
	if solveArgs.saveState != "" || cmd.Flags().Changed("save-state") {
		if err := saveState(p); err != nil {
			return err
		}
	}
	if solveArgs.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "Dry run")
		return nil
	}

	backend, err := solve.New(cfg.Solver, solveArgs.solverBinDir)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if solveArgs.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, solveArgs.timeout)
		defer cancel()
	}

	wanted, infinite, err := parseNumberOfSolutions(solveArgs.numberSolns)
	if err != nil {
		return err
	}

	found := 0
	for {
		result, err := backend.Solve(ctx, p.Store)
		if err != nil {
			return err
		}

		switch result.Outcome {
		case solve.Satisfiable:
			output, err := formatSolution(p, result.Model, determined, showBackground, cfg.PatternOutputFormat)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			if solveArgs.outputFile != "" {
				if err := appendToFile(solveArgs.outputFile, output); err != nil {
					return err
				}
			}
			found++
			if !infinite && found >= wanted {
				return nil
			}
			p.ForceDistinct(modelLiterals(result.Model), determined)
		case solve.TimedOut:
			fmt.Fprintln(cmd.OutOrStdout(), "Timed Out")
			return nil
		default:
			if found > 0 {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Unsatisfiable")
			return nil
		}
	}
}

// applyConfigDefaults overlays any explicitly set solve flags onto cfg,
// matching main.py's pattern of settings.py values used only when the
// corresponding CLI argument was omitted.
func applyConfigDefaults(cfg *config.Config) {
	if solveArgs.solver != "" {
		cfg.Solver = solveArgs.solver
	}
	if solveArgs.outputFormat != "" {
		cfg.PatternOutputFormat = solveArgs.outputFormat
	}
}

func buildPattern(path string, cfg config.Config) (p *pattern.Pattern, determined bool, showBackground bool, err error) {
	if solveArgs.loadState != "" {
		snapshot, err := state.Load(solveArgs.loadState)
		if err != nil {
			return nil, false, false, err
		}
		p = &pattern.Pattern{
			Store:      snapshot.Store(),
			Grid:       snapshot.Grid,
			Ignore:     snapshot.Ignore,
			Background: snapshot.Background,
			BgIgnore:   snapshot.BgIgnore,
			Rule:       snapshot.Rule,
		}
		return p, p.Deterministic(), p.BackgroundNontrivial(), nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, false, false, err
	}
	foreground, ignore, err := grid.Parse(string(contents))
	if err != nil {
		return nil, false, false, err
	}

	background, bgIgnore, err := readBackground(solveArgs.background)
	if err != nil {
		return nil, false, false, err
	}

	rulestring := cfg.Rulestring
	if solveArgs.rulestring != "" {
		rulestring = solveArgs.rulestring
	}

	p, err = pattern.New(foreground, ignore, background, bgIgnore, rulestring)
	if err != nil {
		return nil, false, false, err
	}

	constraints, err := buildConstraints(cfg)
	if err != nil {
		return nil, false, false, err
	}
	if err := pattern.Preprocess(p, constraints); err != nil {
		return nil, false, false, err
	}

	return p, p.Deterministic(), p.BackgroundNontrivial(), nil
}

func readBackground(path string) (grid.Raw, grid.Ignore, error) {
	if path == "" {
		return grid.Raw{{{"0"}}}, grid.Ignore{{{false}}}, nil
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return grid.Parse(string(contents))
}

func buildConstraints(cfg config.Config) (pattern.Constraints, error) {
	var c pattern.Constraints

	for _, spec := range solveArgs.symmetries {
		s, err := parseSymmetry(spec)
		if err != nil {
			return c, err
		}
		c.Symmetries = append(c.Symmetries, s)
	}
	for _, spec := range solveArgs.periods {
		fields := strings.Split(spec, ",")
		if len(fields) != 3 {
			return c, fmt.Errorf("period %q: want \"period,dx,dy\"", spec)
		}
		period, err1 := strconv.Atoi(strings.TrimSpace(fields[0]))
		dx, err2 := strconv.Atoi(strings.TrimSpace(fields[1]))
		dy, err3 := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err1 != nil || err2 != nil || err3 != nil {
			return c, fmt.Errorf("period %q: malformed", spec)
		}
		c.Symmetries = append(c.Symmetries, pattern.Symmetry{Transform: "RO0", DX: dx, DY: dy, Period: period})
	}
	for _, spec := range solveArgs.asymmetries {
		s, err := parseSymmetry(spec)
		if err != nil {
			return c, err
		}
		c.Asymmetries = append(c.Asymmetries, s)
	}
	for _, spec := range solveArgs.popAtLeast {
		pc, err := parsePopulation(spec)
		if err != nil {
			return c, err
		}
		c.PopulationAtLeast = append(c.PopulationAtLeast, pc)
	}
	for _, spec := range solveArgs.popAtMost {
		pc, err := parsePopulation(spec)
		if err != nil {
			return c, err
		}
		c.PopulationAtMost = append(c.PopulationAtMost, pc)
	}
	for _, spec := range solveArgs.popExactly {
		pc, err := parsePopulation(spec)
		if err != nil {
			return c, err
		}
		c.PopulationExactly = append(c.PopulationExactly, pc)
	}
	if solveArgs.maxChange >= 0 {
		v := solveArgs.maxChange
		c.MaxChange = &v
	}
	if solveArgs.maxDecay >= 0 {
		v := solveArgs.maxDecay
		c.MaxDecay = &v
	}
	if solveArgs.maxGrowth >= 0 {
		v := solveArgs.maxGrowth
		c.MaxGrowth = &v
	}
	for _, spec := range solveArgs.forceChange {
		fc, err := parseForceChange(spec)
		if err != nil {
			return c, err
		}
		c.ForceChange = append(c.ForceChange, fc)
	}

	method := solveArgs.method
	methodValue, err := methodFromString(method, cfg)
	if err != nil {
		return c, err
	}
	c.Method = methodValue

	return c, nil
}

func methodFromString(s string, cfg config.Config) (transition.Method, error) {
	if s == "" {
		return transition.Method(cfg.EncodingMethod), nil
	}
	switch strings.ToLower(s) {
	case "knuth":
		return transition.Knuth, nil
	case "naive":
		return transition.Naive, nil
	case "generic":
		return transition.Generic, nil
	default:
		return 0, fmt.Errorf("method %q: want knuth, naive, or generic", s)
	}
}

func parseNumberOfSolutions(s string) (wanted int, infinite bool, err error) {
	if strings.EqualFold(s, "infinity") {
		return 0, true, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("number-of-solutions %q: %w", s, err)
	}
	return n, false, nil
}

func formatSolution(p *pattern.Pattern, model map[int]bool, determined, showBackground bool, outputFormat string) (string, error) {
	resolved := format.StringsFromLits(p.Grid, model)
	opts := format.Options{Rule: p.Rule, Determined: determined, ShowBackground: showBackground}

	switch outputFormat {
	case "", "rle":
		return format.RLE(resolved, opts)
	case "csv":
		return format.CSV(resolved, p.Ignore, opts), nil
	case "blk":
		return format.Blk(resolved)
	default:
		return "", &pattern.ErrUnrecognizedFormat{Format: outputFormat}
	}
}

func modelLiterals(model map[int]bool) []literal.Lit {
	lits := make([]literal.Lit, 0, len(model))
	for v, val := range model {
		if val {
			lits = append(lits, literal.Lit(v))
		} else {
			lits = append(lits, literal.Lit(-v))
		}
	}
	return lits
}

func writeDIMACS(p *pattern.Pattern, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.Store.WriteDIMACS(f)
}

func saveState(p *pattern.Pattern) error {
	path := solveArgs.saveState
	if path == "" {
		path = state.NextAvailablePath("lls_state.gob")
	}
	return state.Save(path, state.Snapshot{
		Grid:       p.Grid,
		Ignore:     p.Ignore,
		Background: p.Background,
		BgIgnore:   p.BgIgnore,
		Rule:       p.Rule,
		Clauses:    p.Store.Clauses(),
		NumVars:    p.Store.NumVars(),
	})
}

func appendToFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(content + "\n")
	return err
}
