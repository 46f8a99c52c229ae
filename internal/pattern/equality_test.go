package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/totalistic/lifesearch/internal/clause"
	"github.com/totalistic/lifesearch/internal/literal"
	"github.com/totalistic/lifesearch/internal/rule"
)

func TestForceEqualUnifiesTwoVariables(t *testing.T) {
	store := clause.NewStore()
	a := store.FreshLit()
	b := store.FreshLit()

	eq := newEquality()
	require.NoError(t, eq.ForceEqual([][2]literal.Lit{{a, b}}))

	assert.Equal(t, eq.Apply(a), eq.Apply(b))
}

func TestForceEqualHandlesNegatedPair(t *testing.T) {
	store := clause.NewStore()
	a := store.FreshLit()
	b := store.FreshLit()

	eq := newEquality()
	require.NoError(t, eq.ForceEqual([][2]literal.Lit{{a, b.Negate()}}))

	assert.Equal(t, eq.Apply(a), eq.Apply(b).Negate())
}

func TestForceEqualRejectsSelfContradiction(t *testing.T) {
	store := clause.NewStore()
	a := store.FreshLit()

	eq := newEquality()
	err := eq.ForceEqual([][2]literal.Lit{{a, a.Negate()}})
	assert.Error(t, err)
	var unsat *ErrUnsat
	assert.ErrorAs(t, err, &unsat)
}

func TestForceEqualCollapsesAConstant(t *testing.T) {
	store := clause.NewStore()
	a := store.FreshLit()

	eq := newEquality()
	require.NoError(t, eq.ForceEqual([][2]literal.Lit{{a, literal.True}}))

	assert.Equal(t, literal.True, eq.Apply(a))
}

func TestForceEqualRewiresExistingDependents(t *testing.T) {
	store := clause.NewStore()
	a := store.FreshLit()
	b := store.FreshLit()
	c := store.FreshLit()

	eq := newEquality()
	require.NoError(t, eq.ForceEqual([][2]literal.Lit{{a, b}}))
	require.NoError(t, eq.ForceEqual([][2]literal.Lit{{b, c}}))

	assert.Equal(t, eq.Apply(a), eq.Apply(c))
}

func TestApplyGridRewritesEveryCell(t *testing.T) {
	store := clause.NewStore()
	a := store.FreshLit()
	b := store.FreshLit()

	eq := newEquality()
	require.NoError(t, eq.ForceEqual([][2]literal.Lit{{a, b}}))

	g := [][][]literal.Lit{{{a, b}}}
	eq.ApplyGrid(g)
	assert.Equal(t, g[0][0][0], g[0][0][1])
}

func TestApplyRuleRewritesEveryTransition(t *testing.T) {
	store := clause.NewStore()
	a := store.FreshLit()
	b := store.FreshLit()

	eq := newEquality()
	require.NoError(t, eq.ForceEqual([][2]literal.Lit{{a, b}}))

	table := rule.Table{rule.Transition("00000000"): a}
	eq.ApplyRule(table)
	assert.Equal(t, eq.Apply(b), table[rule.Transition("00000000")])
}

func TestForceUnequalAddsBlockingClause(t *testing.T) {
	store := clause.NewStore()
	a := store.FreshLit()
	b := store.FreshLit()

	before := len(store.Clauses())
	ForceUnequal(store, [][2]literal.Lit{{a, b}})
	assert.Greater(t, len(store.Clauses()), before)
}
