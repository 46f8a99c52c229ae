// Package cardinality implements the memoized recursive "at-least-k"
// indicator construction described in spec.md §4.4: given a literal set L
// and a threshold k, it defines a variable equivalent to
// "at least k literals of L are true", sharing clauses across overlapping
// calls via a cache keyed on the sorted literal tuple and threshold.
package cardinality

import (
	"fmt"
	"sort"

	"github.com/totalistic/lifesearch/internal/clause"
	"github.com/totalistic/lifesearch/internal/literal"
)

// key identifies a single (literal set, threshold) cardinality node in the
// cache. lits must already be sorted.
type key struct {
	lits string
	k    int
}

func keyOf(lits []literal.Lit, k int) key {
	buf := make([]byte, 0, len(lits)*6)
	for _, l := range lits {
		buf = append(buf, []byte(fmt.Sprintf("%d,", l))...)
	}
	return key{lits: string(buf), k: k}
}

// Encoder owns the cardinality cache and emits defining clauses into a
// shared clause.Store. The cache is shared across every call made through a
// single Encoder, so repeated ForceAtLeast/ForceAtMost calls over
// overlapping literal sets cost near-linear, not quadratic, clauses.
type Encoder struct {
	store    *clause.Store
	variable map[key]literal.Lit
	defined  map[key]bool
}

// New returns an Encoder that emits into store.
func New(store *clause.Store) *Encoder {
	return &Encoder{
		store:    store,
		variable: make(map[key]literal.Lit),
		defined:  make(map[key]bool),
	}
}

// AtLeast returns (creating and defining if necessary) a literal X such that
// X is equivalent to "at least k of lits are true". lits need not be sorted
// or pre-stripped of constants.
func (e *Encoder) AtLeast(lits []literal.Lit, k int) literal.Lit {
	stripped, adjustedK := preprocess(lits, k)
	return e.define(stripped, adjustedK)
}

// ForceAtLeast emits a unit clause asserting that at least k of lits are
// true. It reports false, appending no clause, if the request is already
// known unsatisfiable after constant-folding (k exceeds the number of
// remaining literals) — the UnsatInPreprocessing case of spec.md §7.
func (e *Encoder) ForceAtLeast(lits []literal.Lit, k int) (satisfiable bool) {
	stripped, adjustedK := preprocess(lits, k)
	if adjustedK > len(stripped) {
		return false
	}
	name := e.define(stripped, adjustedK)
	e.store.Append(clause.Clause{name})
	return true
}

// ForceAtMost emits clauses asserting that at most k of lits are true.
func (e *Encoder) ForceAtMost(lits []literal.Lit, k int) (satisfiable bool) {
	negated := make([]literal.Lit, len(lits))
	for i, l := range lits {
		negated[i] = l.Negate()
	}
	return e.ForceAtLeast(negated, len(lits)-k)
}

// ForceExactly emits clauses asserting that exactly k of lits are true.
func (e *Encoder) ForceExactly(lits []literal.Lit, k int) (satisfiable bool) {
	if !e.ForceAtLeast(lits, k) {
		return false
	}
	return e.ForceAtMost(lits, k)
}

// preprocess strips constant literals (both True and False) from lits,
// decrements k by the number of True literals removed (False literals never
// contribute to the sum, so removing them leaves k unchanged), and returns
// the remainder sorted, per spec.md §4.4.
func preprocess(lits []literal.Lit, k int) ([]literal.Lit, int) {
	remaining := make([]literal.Lit, 0, len(lits))
	trueCount := 0
	for _, l := range lits {
		switch l {
		case literal.True:
			trueCount++
		case literal.False:
		default:
			remaining = append(remaining, l)
		}
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i] < remaining[j] })
	return remaining, k - trueCount
}

// define returns the cached or newly defined indicator for (lits, k), where
// lits is already sorted and free of constants.
func (e *Encoder) define(lits []literal.Lit, k int) literal.Lit {
	name := e.nameOf(lits, k)
	e.defineClauses(lits, k)
	return name
}

// nameOf returns (allocating if necessary) the variable for (lits, k)
// without emitting its defining clauses.
func (e *Encoder) nameOf(lits []literal.Lit, k int) literal.Lit {
	key := keyOf(lits, k)
	if name, ok := e.variable[key]; ok {
		return name
	}
	name := e.store.FreshLit()
	e.variable[key] = name
	return name
}

// defineClauses emits the defining clauses for (lits, k) the first time it
// is encountered, recursing into whichever child (half, threshold) pairs
// the construction actually needs. Matches
// SearchPattern.py:define_cardinality_variable exactly, including the
// asymmetric converse-direction boundary clauses spec.md §9 calls out.
func (e *Encoder) defineClauses(lits []literal.Lit, k int) {
	key := keyOf(lits, k)
	if e.defined[key] {
		return
	}
	e.defined[key] = true

	name := e.nameOf(lits, k)
	n := len(lits)
	n1 := n / 2
	lits1 := lits[:n1]
	n2 := n - n1
	lits2 := lits[n1:]

	switch {
	case k <= 0:
		e.store.Append(clause.Clause{name})
		return
	case k > n:
		e.store.Append(clause.Clause{name.Negate()})
		return
	case n == 1:
		l := lits[0]
		e.store.Append(clause.Clause{name.Negate(), l})
		e.store.Append(clause.Clause{name, l.Negate()})
		return
	}

	var toDefine1, toDefine2 []int
	add := func(dst *[]int, v int) { *dst = append(*dst, v) }

	if k <= n1 {
		e.store.Append(literal.Implies([]literal.Lit{e.nameOf(lits1, k)}, name))
		add(&toDefine1, k)
	}
	for j := 1; j <= n2; j++ {
		for i := 1; i <= n1; i++ {
			if i+j == k {
				e.store.Append(literal.Implies(
					[]literal.Lit{e.nameOf(lits1, i), e.nameOf(lits2, j)}, name))
				add(&toDefine1, i)
				add(&toDefine2, j)
			}
		}
	}
	if k <= n2 {
		e.store.Append(literal.Implies([]literal.Lit{e.nameOf(lits2, k)}, name))
		add(&toDefine2, k)
	}

	if k > n2 {
		i := k - n2
		e.store.Append(literal.Implies([]literal.Lit{e.nameOf(lits1, i).Negate()}, name.Negate()))
		add(&toDefine1, i)
	}
	for j := 1; j <= n2; j++ {
		for i := 1; i <= n1; i++ {
			if i+j == k+1 {
				e.store.Append(literal.Implies(
					[]literal.Lit{e.nameOf(lits1, i).Negate(), e.nameOf(lits2, j).Negate()}, name.Negate()))
				add(&toDefine1, i)
				add(&toDefine2, j)
			}
		}
	}
	if k > n1 {
		j := k - n1
		e.store.Append(literal.Implies([]literal.Lit{e.nameOf(lits2, j).Negate()}, name.Negate()))
		add(&toDefine2, j)
	}

	for _, i := range dedupe(toDefine1) {
		e.defineClauses(lits1, i)
	}
	for _, j := range dedupe(toDefine2) {
		e.defineClauses(lits2, j)
	}
}

func dedupe(xs []int) []int {
	seen := make(map[int]struct{}, len(xs))
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}
