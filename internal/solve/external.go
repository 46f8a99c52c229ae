package solve

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/totalistic/lifesearch/internal/clause"
)

// External shells out to one of SupportedSolvers' binaries, writing the
// problem to a temporary DIMACS file and parsing the binary's stdout back
// into a Result. Grounded on sat_solvers.py's use_solver: the two
// argv/output-format families it dispatches on (kissat/cadical/lingeling-
// style; glucose-style) are reproduced here as argvFor and parseOutput, and
// its threading.Timer-kills-the-process/SIGINT-propagates timeout model is
// reproduced with an errgroup racing the subprocess against ctx.
type External struct {
	Solver string
	BinDir string
	Args   []string
}

// Solve writes store to a uuid-named temporary DIMACS file (replacing
// sat_solvers.py's "lls_dimacsN.cnf" collision-probing loop with a
// collision-proof name), runs the configured solver against it, and parses
// the result. The temporary file is always removed before returning,
// matching sat_solvers.py's save_dimacs=None cleanup path (including its
// "ignore ENOENT" tolerance). Output on stderr without an "s " status line on
// stdout is reported as an error.
func (e *External) Solve(ctx context.Context, store *clause.Store) (*Result, error) {
	path := filepath.Join(os.TempDir(), "lifesearch-"+uuid.NewString()+".cnf")
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			_ = err // best-effort cleanup, matching sat_solvers.py's ENOENT tolerance
		}
	}()

	dimacsFile, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating DIMACS file %q", path)
	}
	if err := store.WriteDIMACS(dimacsFile); err != nil {
		dimacsFile.Close()
		return nil, errors.Wrap(err, "writing DIMACS file")
	}
	if err := dimacsFile.Close(); err != nil {
		return nil, errors.Wrap(err, "closing DIMACS file")
	}

	binary := e.Solver
	if e.BinDir != "" {
		binary = filepath.Join(e.BinDir, e.Solver)
	}
	argv := argvFor(e.Solver, path, e.Args)

	cmd := exec.Command(binary, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	done := make(chan struct{})
	var group errgroup.Group
	group.Go(func() error {
		defer close(done)
		return cmd.Run()
	})
	group.Go(func() error {
		select {
		case <-ctx.Done():
			if cmd.Process != nil {
				_ = cmd.Process.Signal(syscall.SIGKILL)
			}
			return ctx.Err()
		case <-done:
			return nil
		}
	})
	runErr := group.Wait()
	duration := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		return &Result{Outcome: TimedOut, Duration: duration}, nil
	}
	if ctx.Err() == context.Canceled {
		return nil, ErrInterrupted
	}
	// Most SAT solvers exit nonzero on a definite SAT/UNSAT verdict (10/20
	// under the SAT competition convention), so a nonzero exit alone isn't
	// a failure; only an inability to run the binary at all is.
	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); !ok {
			return nil, errors.Wrapf(runErr, "running %q (stderr: %s)", e.Solver, stderr.String())
		}
	}
	if stderr.Len() > 0 && !strings.Contains("\n"+stdout.String(), "\ns ") {
		return nil, errors.Errorf("solver %q wrote to stderr without a status line: %s", e.Solver, stderr.String())
	}

	return parseOutput(e.Solver, stdout.String(), duration)
}

// argvFor reproduces use_solver's argument-shape dispatch.
func argvFor(solver, dimacsFile string, extra []string) []string {
	switch solver {
	case "glucose", "glucose-syrup":
		return append([]string{dimacsFile, "-model"}, extra...)
	default: // kissat, cadical, lingeling, plingeling, treengeling
		return append([]string{dimacsFile}, extra...)
	}
}

// parseOutput reproduces use_solver's per-family stdout parsing: kissat/
// cadical/lingeling-family solvers print "s SATISFIABLE"/"s UNSATISFIABLE"
// followed by "v "-prefixed literal lines; glucose prints the same shape
// behind an "-model" flag.
func parseOutput(solver, output string, duration time.Duration) (*Result, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	satisfiable := false
	sawStatus := false
	model := make(map[int]bool)

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "s "):
			sawStatus = true
			satisfiable = strings.Contains(line, "SATISFIABLE") && !strings.Contains(line, "UNSATISFIABLE")
		case strings.HasPrefix(line, "v "):
			for _, field := range strings.Fields(strings.TrimPrefix(line, "v ")) {
				n, err := strconv.Atoi(field)
				if err != nil || n == 0 {
					continue
				}
				if n < 0 {
					model[-n] = false
				} else {
					model[n] = true
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning solver output")
	}

	if !sawStatus || !satisfiable {
		return &Result{Outcome: Unsatisfiable, Duration: duration}, nil
	}
	return &Result{Outcome: Satisfiable, Model: model, Duration: duration}, nil
}
