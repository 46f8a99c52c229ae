package solve

import (
	"bytes"
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/totalistic/lifesearch/internal/clause"
)

// Gini is the in-process SAT backend, grounded on the teacher's own
// gini.New()/Assume/Solve/Value call shape (cmd/operator-cli's dependency
// solver, adapted here from installable selection to raw CNF solving). It
// has no analog in sat_solvers.py, which only ever shells out.
type Gini struct{}

// Solve loads store's clauses into a fresh gini instance by round-tripping
// through the same DIMACS text External would write to disk, then runs it
// to completion or, when ctx carries a deadline, until that deadline passes
// (reported as TimedOut). Cancelling ctx without a deadline does not stop a
// solve in progress.
func (g *Gini) Solve(ctx context.Context, store *clause.Store) (*Result, error) {
	var buf bytes.Buffer
	if err := store.WriteDIMACS(&buf); err != nil {
		return nil, err
	}
	solver, err := gini.NewDimacs(&buf)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var sat int
	if deadline, ok := ctx.Deadline(); ok {
		sat = solver.Try(time.Until(deadline))
	} else {
		sat = solver.Solve()
	}
	duration := time.Since(start)

	switch sat {
	case 1:
		model := make(map[int]bool, store.NumVars())
		for v := 1; v <= store.NumVars(); v++ {
			model[v] = solver.Value(z.Var(v).Pos())
		}
		return &Result{Outcome: Satisfiable, Model: model, Duration: duration}, nil
	case -1:
		return &Result{Outcome: Unsatisfiable, Duration: duration}, nil
	default:
		return &Result{Outcome: TimedOut, Duration: duration}, nil
	}
}
