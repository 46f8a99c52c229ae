package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/totalistic/lifesearch/internal/grid"
	"github.com/totalistic/lifesearch/internal/literal"
)

func TestCellPairsFromTransformationRO2PairsOppositeCorners(t *testing.T) {
	p := newTestPattern(t, "*,*\n*,*", "B3/S23")
	pairs, err := p.CellPairsFromTransformation(Symmetry{Transform: "RO2", Period: 0})
	require.NoError(t, err)
	assert.NotEmpty(t, pairs)
	assert.Contains(t, pairs, [2]literal.Lit{p.Grid[0][1][1], p.Grid[0][2][2]})

	w, h, _ := grid.Dims(p.Grid)
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)
}

func TestCellPairsFromTransformationUnknownTransform(t *testing.T) {
	p := newTestPattern(t, "0,0\n0,0", "B3/S23")
	_, err := p.CellPairsFromTransformation(Symmetry{Transform: "XX", Period: 0})
	var unknown *ErrUnknownTransform
	assert.ErrorAs(t, err, &unknown)
}

func TestForceSymmetryUnifiesCellsAcrossAxis(t *testing.T) {
	p := newTestPattern(t, "*,*\n*,*", "B3/S23")
	require.NoError(t, p.ForceSymmetry(Symmetry{Transform: "RE-", Period: 0}))
	assert.Equal(t, p.Grid[0][1][1], p.Grid[0][2][1])
}

func TestForceSymmetryRewritesGridInPlace(t *testing.T) {
	p := newTestPattern(t, "*,*\n*,*", "B3/S23")
	require.NoError(t, p.ForceSymmetry(Symmetry{Transform: "RE-", Period: 0}))

	// RE- reflects each cell with its vertical mirror image (same column,
	// row flipped top-to-bottom); once unified, both must read back as the
	// same literal rather than the two distinct wildcards they started as.
	assert.Equal(t, p.Grid[0][1][1], p.Grid[0][2][1])
	assert.Equal(t, p.Grid[0][1][2], p.Grid[0][2][2])
}

func TestForceAsymmetryAddsBlockingClauses(t *testing.T) {
	p := newTestPattern(t, "*,*\n*,*", "B3/S23")
	before := len(p.Store.Clauses())
	require.NoError(t, p.ForceAsymmetry(Symmetry{Transform: "RO1", Period: 0}))
	assert.Greater(t, len(p.Store.Clauses()), before)
}

func TestForcePeriodIsShorthandForRO0Symmetry(t *testing.T) {
	viaShorthand := newTestPattern(t, "*,*\n*,*\n\n*,*\n*,*", "B3/S23")
	viaSymmetry := newTestPattern(t, "*,*\n*,*\n\n*,*\n*,*", "B3/S23")

	require.NoError(t, viaShorthand.ForcePeriod(1, 1, 0))
	require.NoError(t, viaSymmetry.ForceSymmetry(Symmetry{Transform: "RO0", DX: 1, DY: 0, Period: 1}))

	assert.Equal(t, len(viaSymmetry.Store.Clauses()), len(viaShorthand.Store.Clauses()))
}

func TestRO0IdentityWithZeroTranslationPairsEachCellWithItself(t *testing.T) {
	x, y := transforms["RO0"].forward(3, 5, 0, 0, 10, 10)
	assert.Equal(t, 3, x)
	assert.Equal(t, 5, y)
}
