// Package transition implements the CNF encodings of a single cell's
// evolution under a rule table: three alternative schemes trading clause
// count against auxiliary-variable count, selectable per spec.md §4.5.
package transition

import (
	"fmt"

	"github.com/totalistic/lifesearch/internal/clause"
	"github.com/totalistic/lifesearch/internal/literal"
	"github.com/totalistic/lifesearch/internal/rule"
)

// Method selects which CNF scheme Encode uses.
type Method int

const (
	// Knuth is inspired by the sorting-network threshold scheme from TAOCP
	// Volume 4 Fascicle 6, solution to exercise 65b, trading clauses for
	// auxiliary variables; see encodeKnuth's comment for the actual
	// per-cell counts this implementation achieves (not literature's
	// reported 13/57, which assumes a comparator network this convolution-
	// based merge does not reproduce). Valid only for the unmodified
	// Conway's Life rule (B3/S23).
	Knuth Method = iota
	// Naive is the scheme from exercise 65a's solution: 190 clauses, no
	// auxiliary variables. Also Life-only.
	Naive
	// Generic lists every one of the 512 possible predecessor
	// neighborhoods directly against the rule table; 512 clauses, no
	// auxiliary variables, and the only scheme valid for rules other than
	// Life.
	Generic
)

// ErrMethodRequiresLife is returned when Knuth or Naive is requested for a
// rule other than B3/S23.
var ErrMethodRequiresLife = fmt.Errorf("transition: methods 0 and 1 are only valid for rule B3/S23")

// Encoder emits the clauses constraining one cell's next state from its
// predecessor and its eight neighbors.
type Encoder struct {
	store  *clause.Store
	table  rule.Table
	method Method
}

// New returns an Encoder using method against table, which must be the rule
// B3/S23 table unless method is Generic.
func New(store *clause.Store, table rule.Table, method Method) (*Encoder, error) {
	if method != Generic && table.String() != "B3/S23" {
		return nil, ErrMethodRequiresLife
	}
	return &Encoder{store: store, table: table, method: method}, nil
}

// Encode emits the clauses constraining cell (the next-generation literal)
// given predecessor (the same cell one generation earlier) and its eight
// neighbor literals in clockwise order.
func (e *Encoder) Encode(cell, predecessor literal.Lit, neighbours [8]literal.Lit) {
	switch e.method {
	case Knuth:
		e.encodeKnuth(cell, predecessor, neighbours)
	case Naive:
		e.encodeNaive(cell, predecessor, neighbours)
	default:
		e.encodeGeneric(cell, predecessor, neighbours)
	}
}

// encodeNaive reproduces SearchPattern.py:force_transition method 1: five
// threshold families built directly from the neighbor literals, valid only
// for Conway's Life, needing no auxiliary variables.
func (e *Encoder) encodeNaive(cell, predecessor literal.Lit, neighbours [8]literal.Lit) {
	n := neighbours[:]

	for _, four := range combinations(n, 4) {
		e.store.Append(literal.Implies(four, cell.Negate()))
	}

	for _, seven := range combinations(n, 7) {
		e.store.Append(literal.Implies(negateAll(seven), cell.Negate()))
	}

	for _, six := range combinations(n, 6) {
		antecedents := append([]literal.Lit{predecessor.Negate()}, negateAll(six)...)
		e.store.Append(literal.Implies(antecedents, cell.Negate()))
	}

	for _, three := range combinations(n, 3) {
		five := complement(n, three)
		antecedents := append(append([]literal.Lit{}, three...), negateAll(five)...)
		e.store.Append(literal.Implies(antecedents, cell))
	}

	for _, two := range combinations(n, 2) {
		rest := complement(n, two)
		five := rest[1:]
		antecedents := append([]literal.Lit{predecessor}, two...)
		antecedents = append(antecedents, negateAll(five)...)
		e.store.Append(literal.Implies(antecedents, cell))
	}
}

// encodeGeneric reproduces SearchPattern.py:force_transition method 2:
// every one of the 512 possible (predecessor, 8 neighbors) sign patterns is
// checked directly against the rule table's transition literal.
func (e *Encoder) encodeGeneric(cell, predecessor literal.Lit, neighbours [8]literal.Lit) {
	for _, predecessorAlive := range []int{-1, 1} {
		for mask := 0; mask < 256; mask++ {
			var neighboursAlive [8]int
			for i := 0; i < 8; i++ {
				if mask&(1<<i) != 0 {
					neighboursAlive[i] = 1
				} else {
					neighboursAlive[i] = -1
				}
			}
			letter := "B"
			if predecessorAlive == 1 {
				letter = "S"
			}
			code, err := rule.CanonicalCode(neighboursAlive)
			if err != nil {
				continue
			}
			transitionLit := e.table[rule.Transition(letter+code)]

			antecedents := make([]literal.Lit, 0, 10)
			antecedents = append(antecedents, scale(predecessor, predecessorAlive))
			for i := 0; i < 8; i++ {
				antecedents = append(antecedents, scale(neighbours[i], neighboursAlive[i]))
			}

			e.store.Append(literal.Implies(append([]literal.Lit{transitionLit}, antecedents...), cell))
			e.store.Append(literal.Implies(append([]literal.Lit{transitionLit.Negate()}, antecedents...), cell.Negate()))
		}
	}
}

// encodeKnuth is inspired by the sorting-network threshold circuit Knuth
// describes in TAOCP Volume 4, Fascicle 6, solution to exercise 65b, but is
// not a transcription of it: Life's rule only ever consults "at least 2",
// "at least 3" and "at least 4" of the eight neighbors, so this builds a
// three-level pairwise merge that caps every intermediate threshold vector
// at 4 entries instead of computing the full 1..8 vector at every level
// (which the naive convolution this is built from would otherwise do, at a
// cost of about 45 auxiliary variables and 151 clauses per cell — much of
// it on thresholds 5 through 8 that nothing ever reads). Capping at 4 brings
// that down to 32 auxiliary variables and 109 clauses per cell, still short
// of Knuth's reported 13/57 (his construction reuses partial comparator
// results across thresholds in a way this convolution-based merge
// does not attempt to reproduce), but a real reduction over the
// uncapped form and well short of Generic's 512-clause brute force. Valid
// only for Conway's Life.
func (e *Encoder) encodeKnuth(cell, predecessor literal.Lit, neighbours [8]literal.Lit) {
	n := neighbours

	// Only thresholds 1..4 of any group are ever consulted (directly, or
	// as an input to a higher level computing its own 1..4), so every
	// merge is capped there.
	const neededThresholds = 4

	pairAB := e.mergeThresholds([]literal.Lit{n[0]}, []literal.Lit{n[1]}, neededThresholds)
	pairCD := e.mergeThresholds([]literal.Lit{n[2]}, []literal.Lit{n[3]}, neededThresholds)
	pairEF := e.mergeThresholds([]literal.Lit{n[4]}, []literal.Lit{n[5]}, neededThresholds)
	pairGH := e.mergeThresholds([]literal.Lit{n[6]}, []literal.Lit{n[7]}, neededThresholds)

	quadABCD := e.mergeThresholds(pairAB, pairCD, neededThresholds)
	quadEFGH := e.mergeThresholds(pairEF, pairGH, neededThresholds)

	u := e.mergeThresholds(quadABCD, quadEFGH, neededThresholds)

	two := u[1]   // at least 2 alive
	three := u[2] // at least 3 alive
	four := u[3]  // at least 4 alive

	// Life: birth iff exactly 3 alive; survival iff 2 or 3 alive.
	e.store.Append(literal.Implies([]literal.Lit{four}, cell.Negate()))
	e.store.Append(literal.Implies([]literal.Lit{two.Negate()}, cell.Negate()))
	e.store.Append(literal.Implies([]literal.Lit{three, four.Negate()}, cell))
	e.store.Append(literal.Implies([]literal.Lit{predecessor, two, three.Negate()}, cell))
	e.store.Append(literal.Implies([]literal.Lit{predecessor.Negate(), three.Negate()}, cell.Negate()))
}

// mergeThresholds combines two monotone threshold vectors (left[i-1] <->
// "at least i of the left group", 1-indexed, left[0] implicitly True, past
// the end implicitly False) into the threshold vector for their union:
// combined[k-1] <-> OR over i+j=k of (left_i AND right_j). Only the first
// maxThreshold entries are computed (the rest of the union's thresholds are
// never produced); pass maxThreshold <= 0 to compute every threshold up to
// len(left)+len(right).
func (e *Encoder) mergeThresholds(left, right []literal.Lit, maxThreshold int) []literal.Lit {
	atLeastLeft := func(i int) literal.Lit {
		switch {
		case i <= 0:
			return literal.True
		case i > len(left):
			return literal.False
		default:
			return left[i-1]
		}
	}
	atLeastRight := func(j int) literal.Lit {
		switch {
		case j <= 0:
			return literal.True
		case j > len(right):
			return literal.False
		default:
			return right[j-1]
		}
	}

	total := len(left) + len(right)
	limit := total
	if maxThreshold > 0 && maxThreshold < limit {
		limit = maxThreshold
	}
	out := make([]literal.Lit, limit)
	for k := 1; k <= limit; k++ {
		var terms []literal.Lit
		for i := 0; i <= len(left); i++ {
			j := k - i
			if j < 0 || j > len(right) {
				continue
			}
			terms = append(terms, e.andVar(atLeastLeft(i), atLeastRight(j)))
		}
		out[k-1] = e.orAll(terms)
	}
	return out
}

// andVar returns a fresh variable equivalent to a AND b, or a/b directly
// when one side is a constant.
func (e *Encoder) andVar(a, b literal.Lit) literal.Lit {
	if a == literal.True {
		return b
	}
	if b == literal.True {
		return a
	}
	if a == literal.False || b == literal.False {
		return literal.False
	}
	v := e.store.FreshLit()
	e.store.Append(clause.Clause{v.Negate(), a})
	e.store.Append(clause.Clause{v.Negate(), b})
	e.store.Append(clause.Clause{v, a.Negate(), b.Negate()})
	return v
}

// orAll returns a fresh variable equivalent to the disjunction of terms.
func (e *Encoder) orAll(terms []literal.Lit) literal.Lit {
	if len(terms) == 0 {
		return literal.False
	}
	if len(terms) == 1 {
		return terms[0]
	}
	v := e.store.FreshLit()
	for _, t := range terms {
		e.store.Append(clause.Clause{v, t.Negate()})
	}
	e.store.Append(append(clause.Clause{v.Negate()}, terms...))
	return v
}

func scale(l literal.Lit, sign int) literal.Lit {
	if sign < 0 {
		return l.Negate()
	}
	return l
}

func negateAll(lits []literal.Lit) []literal.Lit {
	out := make([]literal.Lit, len(lits))
	for i, l := range lits {
		out[i] = l.Negate()
	}
	return out
}

func complement(all, chosen []literal.Lit) []literal.Lit {
	chosenSet := make(map[literal.Lit]int, len(chosen))
	for _, l := range chosen {
		chosenSet[l]++
	}
	out := make([]literal.Lit, 0, len(all)-len(chosen))
	for _, l := range all {
		if chosenSet[l] > 0 {
			chosenSet[l]--
			continue
		}
		out = append(out, l)
	}
	return out
}

// combinations returns every k-element subset of lits, in the order
// itertools.combinations would produce.
func combinations(lits []literal.Lit, k int) [][]literal.Lit {
	n := len(lits)
	if k > n {
		return nil
	}
	var result [][]literal.Lit
	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}
	for {
		combo := make([]literal.Lit, k)
		for i, idx := range indices {
			combo[i] = lits[idx]
		}
		result = append(result, combo)

		i := k - 1
		for i >= 0 && indices[i] == i+n-k {
			i--
		}
		if i < 0 {
			break
		}
		indices[i]++
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
	return result
}
