package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/totalistic/lifesearch/internal/clause"
	"github.com/totalistic/lifesearch/internal/grid"
	"github.com/totalistic/lifesearch/internal/literal"
)

func newTestPattern(t *testing.T, text, rulestring string) *Pattern {
	t.Helper()
	raw, ignore, err := grid.Parse(text)
	require.NoError(t, err)
	bgRaw, bgIgnore, err := grid.Parse("0")
	require.NoError(t, err)
	p, err := New(raw, ignore, bgRaw, bgIgnore, rulestring)
	require.NoError(t, err)
	return p
}

func TestNewEmbedsForegroundInsideBackground(t *testing.T) {
	p := newTestPattern(t, "0,1\n1,0", "B3/S23")
	w, h, d := grid.Dims(p.Grid)
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)
	assert.Equal(t, 1, d)
	assert.Equal(t, literal.False, p.Grid[0][0][0])
}

func TestNumberOfCellsCountsDistinctVariablesOnly(t *testing.T) {
	p := newTestPattern(t, "*,*\n*,0", "B3/S23")
	assert.Equal(t, 3, p.NumberOfCells())
}

func TestForcePopulationAtLeastAddsClauses(t *testing.T) {
	p := newTestPattern(t, "*,*\n*,*", "B3/S23")
	before := len(p.Store.Clauses())
	ok := p.ForcePopulationAtLeast(TimeRange{0}, 2)
	assert.True(t, ok)
	assert.Greater(t, len(p.Store.Clauses()), before)
}

func TestForceChangeRejectsIdenticalGenerations(t *testing.T) {
	p := newTestPattern(t, "0,0\n0,0\n\n0,0\n0,0", "B3/S23")
	require.NoError(t, p.ForceChange(0, 1))
	clauses := p.Store.Clauses()
	require.NotEmpty(t, clauses)

	// Every cell is False in both generations, so each "cells equal"
	// indicator is forced true and the final blocking clause cannot hold.
	blocking := clauses[len(clauses)-1]
	require.Len(t, blocking, 16)
	for _, notEqual := range blocking {
		assert.Contains(t, clauses, clause.Clause{literal.False, literal.False, notEqual.Negate()})
	}
}

func TestDeterministicTrueForFullyConstantGrid(t *testing.T) {
	p := newTestPattern(t, "0,0\n0,0\n\n0,0\n0,0", "B3/S23")
	assert.True(t, p.Deterministic())
}

func TestDeterministicFalseWhenFreeCellUnresolved(t *testing.T) {
	p := newTestPattern(t, "0,0\n0,0\n\n*',0\n0,0", "B3/S23")
	assert.False(t, p.Deterministic())
}

func TestBackgroundNontrivialReportsTileSize(t *testing.T) {
	p := newTestPattern(t, "0,0\n0,0", "B3/S23")
	assert.False(t, p.BackgroundNontrivial())
}

func TestForceDistinctBlocksRepeatedSolution(t *testing.T) {
	p := newTestPattern(t, "*,*\n*,*", "B3/S23")
	var solution []literal.Lit
	for _, row := range p.Grid[0] {
		for _, cell := range row {
			if cell.IsConstant() {
				continue
			}
			solution = append(solution, cell)
		}
	}
	before := len(p.Store.Clauses())
	p.ForceDistinct(solution, true)
	assert.Greater(t, len(p.Store.Clauses()), before)
}
