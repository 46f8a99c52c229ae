// Package state saves and restores a Pattern's solve-ready state to disk
// between invocations, the Go counterpart of main.py's save_state branch
// (which pickles a tuple of grid/ignore/background/rule/clause-numbering
// fields; this uses encoding/gob over the equivalent Go values instead).
package state

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/totalistic/lifesearch/internal/clause"
	"github.com/totalistic/lifesearch/internal/grid"
	"github.com/totalistic/lifesearch/internal/rule"
)

// Snapshot is everything main.py's save_state tuple preserves: the numbered
// grids, their ignore flags, the rule table, and enough of the clause store
// to keep allocating consistent variable ids and adding more constraints
// after reloading.
type Snapshot struct {
	Grid       grid.Grid
	Ignore     grid.Ignore
	Background grid.Grid
	BgIgnore   grid.Ignore
	Rule       rule.Table
	Clauses    []clause.Clause
	NumVars    int
}

// Save writes snapshot to path in gob form, truncating any existing file.
func Save(path string, snapshot Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("state: creating %q: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(snapshot); err != nil {
		return fmt.Errorf("state: encoding %q: %w", path, err)
	}
	return nil
}

// Load reads a Snapshot previously written by Save.
func Load(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("state: opening %q: %w", path, err)
	}
	defer f.Close()

	var snapshot Snapshot
	if err := gob.NewDecoder(f).Decode(&snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("state: decoding %q: %w", path, err)
	}
	return snapshot, nil
}

// NextAvailablePath returns base if it doesn't already exist, or the first
// "<base-without-ext>N<ext>" that doesn't, matching main.py's
// lls_state.pkl / lls_state1.pkl / ... numbering scheme.
func NextAvailablePath(base string) string {
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return base
	}
	ext := ""
	stem := base
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			ext = base[i:]
			stem = base[:i]
			break
		}
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s%d%s", stem, n, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// Store rebuilds a *clause.Store from a Snapshot's clause list and variable
// counter, ready for Pattern construction to resume adding constraints.
func (s Snapshot) Store() *clause.Store {
	store := clause.NewStore()
	store.Reserve(s.NumVars)
	store.AppendAll(s.Clauses)
	return store
}
