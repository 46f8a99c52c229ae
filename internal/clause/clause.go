// Package clause implements an append-only CNF clause accumulator with a
// monotonic fresh-variable allocator and a deduplicating DIMACS writer.
package clause

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/totalistic/lifesearch/internal/literal"
)

// Clause is a disjunction of literals.
type Clause []literal.Lit

// Store is the sole owner of a problem's clauses and variable counter. The
// constant True (variable 1) is reserved and always forced true, matching
// the original encoder's convention that variable 1 denotes the constant.
type Store struct {
	clauses []Clause
	numVars int
}

// NewStore returns a Store with the constant-true unit clause already
// present and the fresh-variable counter seeded past variable 1.
func NewStore() *Store {
	s := &Store{numVars: 1}
	s.clauses = append(s.clauses, Clause{literal.True})
	return s
}

// Fresh allocates and returns a new variable id. Fresh ids are monotonically
// increasing and are never reused, even after force-equal substitution makes
// one unreachable.
func (s *Store) Fresh() int {
	s.numVars++
	return s.numVars
}

// FreshLit is a convenience wrapper returning the positive literal of a
// freshly allocated variable.
func (s *Store) FreshLit() literal.Lit {
	return literal.Lit(s.Fresh())
}

// Reserve ensures the fresh-variable counter is at least id, for callers
// that bind an explicit numeric variable id (as pattern text may name a
// literal by number) without going through Fresh.
func (s *Store) Reserve(id int) {
	if id > s.numVars {
		s.numVars = id
	}
}

// NumVars returns the number of variables allocated so far (including the
// reserved constant-true variable).
func (s *Store) NumVars() int {
	return s.numVars
}

// Append adds a clause to the store without deduplication; duplicates are
// only eliminated at DIMACS emission time.
func (s *Store) Append(c Clause) {
	cp := make(Clause, len(c))
	copy(cp, c)
	s.clauses = append(s.clauses, cp)
}

// AppendAll appends every clause in cs.
func (s *Store) AppendAll(cs []Clause) {
	for _, c := range cs {
		s.Append(c)
	}
}

// Clauses returns the raw, undeduplicated clause list. Callers must not
// mutate the returned slices.
func (s *Store) Clauses() []Clause {
	return s.clauses
}

// WriteDIMACS serializes the store to DIMACS CNF form:
//   - clauses containing the constant True are dropped (trivially satisfied)
//   - clauses containing both a literal and its negation are dropped
//   - the constant False is removed from surviving clauses
//   - remaining variable ids are remapped into a dense 1..N range, numbering
//     only variables that actually appear in a surviving clause
//   - each clause is sorted and duplicate clauses are removed
//
// The header line is "p cnf N M" where N is the dense variable count and M
// the surviving clause count.
func (s *Store) WriteDIMACS(w io.Writer) error {
	surviving := make([]Clause, 0, len(s.clauses))
	for _, c := range s.clauses {
		filtered, ok := simplify(c)
		if ok {
			surviving = append(surviving, filtered)
		}
	}

	remap := make(map[int]int)
	nextID := 0
	for _, c := range surviving {
		for _, lit := range c {
			v := lit.Var()
			if _, ok := remap[v]; !ok {
				nextID++
				remap[v] = nextID
			}
		}
	}

	dense := make([]Clause, 0, len(surviving))
	seen := make(map[string]struct{}, len(surviving))
	for _, c := range surviving {
		renumbered := make(Clause, len(c))
		for i, lit := range c {
			variable, polarity := lit.Decompose()
			renumbered[i] = literal.FromVarPolarity(remap[variable], polarity)
		}
		sort.Slice(renumbered, func(i, j int) bool { return renumbered[i] < renumbered[j] })
		key := clauseKey(renumbered)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		dense = append(dense, renumbered)
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", nextID, len(dense)); err != nil {
		return err
	}
	for _, c := range dense {
		for _, lit := range c {
			if _, err := fmt.Fprintf(bw, "%d ", int(lit)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw, "0"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// simplify applies the per-clause DIMACS rules: drop a clause containing
// True, drop the constant False from a clause, and drop a clause containing
// a literal alongside its own negation. ok is false when the whole clause
// was dropped as trivially satisfied.
func simplify(c Clause) (Clause, bool) {
	seenPos := make(map[int]bool)
	seenNeg := make(map[int]bool)
	out := make(Clause, 0, len(c))
	for _, lit := range c {
		if lit == literal.True {
			return nil, false
		}
		if lit == literal.False {
			continue
		}
		variable, polarity := lit.Decompose()
		if polarity > 0 {
			if seenNeg[variable] {
				return nil, false
			}
			if seenPos[variable] {
				continue
			}
			seenPos[variable] = true
		} else {
			if seenPos[variable] {
				return nil, false
			}
			if seenNeg[variable] {
				continue
			}
			seenNeg[variable] = true
		}
		out = append(out, lit)
	}
	return out, true
}

func clauseKey(c Clause) string {
	buf := make([]byte, 0, len(c)*6)
	for _, lit := range c {
		buf = append(buf, []byte(lit.String())...)
		buf = append(buf, ',')
	}
	return string(buf)
}
