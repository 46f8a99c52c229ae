package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totalistic/lifesearch/internal/transition"
)

func TestForceEvolutionAddsClausesForEveryNonIgnoredTransition(t *testing.T) {
	p := newTestPattern(t, "*,*,*\n*,*,*\n*,*,*\n\n*,*,*\n*,*,*\n*,*,*", "B3/S23")
	before := len(p.Store.Clauses())
	require.NoError(t, p.ForceEvolution(transition.Naive))
	assert.Greater(t, len(p.Store.Clauses()), before)
}

func TestForceEvolutionSkipsIgnoredCells(t *testing.T) {
	withIgnore := newTestPattern(t, "0,0\n0,0\n\n0',0\n0,0", "B3/S23")
	withoutIgnore := newTestPattern(t, "0,0\n0,0\n\n0,0\n0,0", "B3/S23")

	require.NoError(t, withIgnore.ForceEvolution(transition.Naive))
	require.NoError(t, withoutIgnore.ForceEvolution(transition.Naive))

	assert.Less(t, len(withIgnore.Store.Clauses()), len(withoutIgnore.Store.Clauses()))
}

func TestForceEvolutionRejectsNonLifeRuleUnderNaiveMethod(t *testing.T) {
	p := newTestPattern(t, "*\n\n*", "B36/S23")
	err := p.ForceEvolution(transition.Naive)
	assert.ErrorIs(t, err, transition.ErrMethodRequiresLife)
}

func TestForceEvolutionAcceptsNonLifeRuleUnderGenericMethod(t *testing.T) {
	p := newTestPattern(t, "*\n\n*", "B36/S23")
	assert.NoError(t, p.ForceEvolution(transition.Generic))
}
