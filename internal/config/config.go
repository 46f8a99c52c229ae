// Package config holds the project's tunable defaults and an optional TOML
// override file, the Go counterpart of defaults.py.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Method names the CNF transition-encoding scheme by number, matching
// defaults.py's life_encoding_method (0, 1, or 2).
type Method int

const (
	MethodKnuth Method = iota
	MethodNaive
	MethodGeneric
)

// Config mirrors defaults.py's module-level constants as fields, plus the
// pieces LLS_main.py/main.py read out of argparse that have no natural home
// elsewhere.
type Config struct {
	Verbosity           int      `toml:"verbosity"`
	PatternOutputFormat string   `toml:"pattern_output_format"`
	EncodingMethod      Method   `toml:"life_encoding_method"`
	Rulestring          string   `toml:"rulestring"`
	Solver              string   `toml:"solver"`
	SupportedSolvers    []string `toml:"supported_solvers"`
	Background          string   `toml:"background"`
	SolverBinDir        string   `toml:"solver_bin_dir"`
}

// Default returns the project's built-in defaults, matching defaults.py
// verbatim.
func Default() Config {
	return Config{
		Verbosity:           2,
		PatternOutputFormat: "rle",
		EncodingMethod:      MethodNaive,
		Rulestring:          "B3/S23",
		Solver:              "kissat",
		SupportedSolvers: []string{
			"kissat",
			"cadical",
			"glucose",
			"glucose-syrup",
			"lingeling",
			"plingeling",
			"treengeling",
			"gini",
		},
		Background: "possible_strobing",
	}
}

// ErrUnsupportedSolver is returned by Validate when Solver names a solver
// outside SupportedSolvers, mirroring defaults.py's module-level assertion.
type ErrUnsupportedSolver struct {
	Solver string
}

func (e *ErrUnsupportedSolver) Error() string {
	return fmt.Sprintf("config: solver %q not recognized", e.Solver)
}

// Validate checks that Solver is one of SupportedSolvers.
func (c Config) Validate() error {
	for _, s := range c.SupportedSolvers {
		if s == c.Solver {
			return nil
		}
	}
	return &ErrUnsupportedSolver{c.Solver}
}

// Load starts from Default and overlays any fields present in the TOML file
// at path, leaving fields the file omits at their default value. A missing
// file is not an error — it mirrors the project running entirely off
// defaults.py when no override is supplied.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
