package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totalistic/lifesearch/internal/transition"
)

func TestPreprocessAppliesEveryConstraintAndThenEvolution(t *testing.T) {
	p := newTestPattern(t, "*,*,*\n*,*,*\n*,*,*\n\n*,*,*\n*,*,*\n*,*,*", "B3/S23")
	before := len(p.Store.Clauses())

	maxChange := 5
	err := Preprocess(p, Constraints{
		PopulationAtLeast: []PopulationConstraint{{Times: TimeRange{0}, Population: 1}},
		MaxChange:         &maxChange,
		ForceChange:       []ForceChangeConstraint{{T0: 0, T1: 1}},
		Method:            transition.Naive,
	})

	require.NoError(t, err)
	assert.Greater(t, len(p.Store.Clauses()), before)
}

func TestPreprocessSkipEvolutionOmitsTransitionClauses(t *testing.T) {
	withEvolution := newTestPattern(t, "*,*,*\n*,*,*\n*,*,*\n\n*,*,*\n*,*,*\n*,*,*", "B3/S23")
	withoutEvolution := newTestPattern(t, "*,*,*\n*,*,*\n*,*,*\n\n*,*,*\n*,*,*\n*,*,*", "B3/S23")

	require.NoError(t, Preprocess(withEvolution, Constraints{Method: transition.Naive}))
	require.NoError(t, Preprocess(withoutEvolution, Constraints{Method: transition.Naive, SkipEvolution: true}))

	assert.Greater(t, len(withEvolution.Store.Clauses()), len(withoutEvolution.Store.Clauses()))
}

func TestPreprocessPropagatesSymmetryErrors(t *testing.T) {
	p := newTestPattern(t, "*,*\n*,*", "B3/S23")
	err := Preprocess(p, Constraints{
		Symmetries: []Symmetry{{Transform: "NOPE", DX: 0, DY: 0, Period: 0}},
	})
	assert.Error(t, err)
}
