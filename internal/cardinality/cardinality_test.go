package cardinality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/totalistic/lifesearch/internal/clause"
	"github.com/totalistic/lifesearch/internal/literal"
)

// evalClause reports whether c is satisfied under assign: a literal.True
// entry satisfies it outright, a literal.False entry is skipped, and every
// other literal is read from assign by its variable and sign.
func evalClause(c clause.Clause, assign map[int]bool) bool {
	for _, l := range c {
		if l == literal.True {
			return true
		}
		if l == literal.False {
			continue
		}
		v, pol := l.Decompose()
		val := assign[v]
		if pol < 0 {
			val = !val
		}
		if val {
			return true
		}
	}
	return false
}

// atLeastConsistent exhaustively checks that, for every assignment of the
// input literals, the defined indicator variable's forced value under the
// emitted clauses matches popcount(lits) >= k. This is the "Cardinality
// sanity" testable property.
func atLeastConsistent(t *testing.T, n, k int) {
	t.Helper()
	store := clause.NewStore()
	enc := New(store)

	vars := make([]int, n)
	lits := make([]literal.Lit, n)
	for i := range lits {
		vars[i] = store.Fresh()
		lits[i] = literal.Lit(vars[i])
	}
	name := enc.AtLeast(lits, k)
	nameVar, _ := name.Decompose()

	clauses := store.Clauses()

	for mask := 0; mask < (1 << n); mask++ {
		assign := make(map[int]bool, n+1)
		assign[1] = true // constant True variable
		popcount := 0
		for i, v := range vars {
			bit := mask&(1<<i) != 0
			assign[v] = bit
			if bit {
				popcount++
			}
		}
		want := popcount >= k

		// Try both values of the indicator and require exactly the
		// expected one to satisfy every defining clause.
		assign[nameVar] = true
		trueOK := allSatisfied(clauses, assign)
		assign[nameVar] = false
		falseOK := allSatisfied(clauses, assign)

		if want {
			assert.True(t, trueOK, "n=%d k=%d mask=%b: expected indicator forced true", n, k, mask)
			assert.False(t, falseOK, "n=%d k=%d mask=%b: indicator=false should violate a clause", n, k, mask)
		} else {
			assert.True(t, falseOK, "n=%d k=%d mask=%b: expected indicator forced false", n, k, mask)
			assert.False(t, trueOK, "n=%d k=%d mask=%b: indicator=true should violate a clause", n, k, mask)
		}
	}
}

func allSatisfied(clauses []clause.Clause, assign map[int]bool) bool {
	for _, c := range clauses {
		if !evalClause(c, assign) {
			return false
		}
	}
	return true
}

func TestAtLeastExhaustiveSmall(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for k := 0; k <= n+1; k++ {
			atLeastConsistent(t, n, k)
		}
	}
}

func TestForceAtLeastUnsatWhenImpossible(t *testing.T) {
	store := clause.NewStore()
	enc := New(store)
	a := store.FreshLit()
	b := store.FreshLit()
	assert.False(t, enc.ForceAtLeast([]literal.Lit{a, b}, 3))
}

func TestForceAtLeastStripsConstants(t *testing.T) {
	store := clause.NewStore()
	enc := New(store)
	a := store.FreshLit()
	assert.True(t, enc.ForceAtLeast([]literal.Lit{a, literal.True}, 2))
}

func TestForceAtMostDelegatesToNegatedAtLeast(t *testing.T) {
	store := clause.NewStore()
	enc := New(store)
	a := store.FreshLit()
	b := store.FreshLit()
	c := store.FreshLit()
	assert.True(t, enc.ForceAtMost([]literal.Lit{a, b, c}, 1))
}

func TestCacheReusesIdenticalRequests(t *testing.T) {
	store := clause.NewStore()
	enc := New(store)
	a := store.FreshLit()
	b := store.FreshLit()
	first := enc.AtLeast([]literal.Lit{a, b}, 1)
	before := len(store.Clauses())
	second := enc.AtLeast([]literal.Lit{a, b}, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, before, len(store.Clauses()))
}
