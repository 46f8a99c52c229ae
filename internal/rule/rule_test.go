package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/totalistic/lifesearch/internal/literal"
)

func TestParseConwayLife(t *testing.T) {
	table, vars, err := Parse("B3/S23", 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, vars)

	assert.Equal(t, literal.True, table["B3c"])
	assert.Equal(t, literal.True, table["B3e"])
	assert.Equal(t, literal.True, table["B3k"])
	assert.Equal(t, literal.True, table["B3a"])
	assert.Equal(t, literal.True, table["B3i"])
	assert.Equal(t, literal.True, table["B3n"])
	assert.Equal(t, literal.True, table["B3y"])
	assert.Equal(t, literal.True, table["B3q"])
	assert.Equal(t, literal.True, table["B3j"])
	assert.Equal(t, literal.True, table["B3r"])
	assert.Equal(t, literal.False, table["B4a"])

	assert.Equal(t, literal.True, table["S2c"])
	assert.Equal(t, literal.True, table["S3c"])
	assert.Equal(t, literal.False, table["S4c"])
	assert.Equal(t, literal.False, table["S1c"])
}

func TestParseAlternateOrder(t *testing.T) {
	table, _, err := Parse("23/3", 0)
	assert.NoError(t, err)
	assert.Equal(t, literal.True, table["S2c"])
	assert.Equal(t, literal.True, table["B3c"])
}

func TestParseBSForm(t *testing.T) {
	table, _, err := Parse("S23B3", 0)
	assert.NoError(t, err)
	assert.Equal(t, literal.True, table["S2c"])
	assert.Equal(t, literal.True, table["B3c"])
}

func TestParseHighLife(t *testing.T) {
	table, _, err := Parse("B36/S23", 0)
	assert.NoError(t, err)
	for _, ch := range possibleTransitions["6"] {
		assert.Equal(t, literal.True, table[Transition("B6"+string(ch))])
	}
}

func TestParseRestrictedCharacters(t *testing.T) {
	table, _, err := Parse("B3-ck/S23", 0)
	assert.NoError(t, err)
	assert.Equal(t, literal.False, table["B3c"])
	assert.Equal(t, literal.False, table["B3k"])
	assert.Equal(t, literal.True, table["B3e"])
}

func TestParsePartialRuleAllocatesVariables(t *testing.T) {
	table, vars, err := Parse("pB3/S23", 0)
	assert.NoError(t, err)
	assert.True(t, vars > 0)
	assert.True(t, table["B0c"].Var() > 1 || table["B0c"] == literal.False)
}

func TestParseInvalidRulestring(t *testing.T) {
	_, _, err := Parse("Q3/S23", 0)
	assert.Error(t, err)
}

func TestCanonicalCodeMatchesUnderRotation(t *testing.T) {
	base := [8]int{-1, 1, -1, 1, -1, 1, -1, -1}
	code, err := CanonicalCode(base)
	assert.NoError(t, err)

	rotated := [8]int{base[6], base[7], base[0], base[1], base[2], base[3], base[4], base[5]}
	rotatedCode, err := CanonicalCode(rotated)
	assert.NoError(t, err)
	assert.Equal(t, code, rotatedCode)
}

func TestCanonicalCodeUnknownPattern(t *testing.T) {
	_, err := CanonicalCode([8]int{2, 2, 2, 2, 2, 2, 2, 2})
	assert.Error(t, err)
}

func TestTransitionFromCellsBirth(t *testing.T) {
	transition, err := TransitionFromCells(true, [8]int{1, 1, 1, -1, -1, -1, -1, -1})
	assert.NoError(t, err)
	assert.Equal(t, byte('B'), transition[0])
	assert.Equal(t, byte('3'), transition[1])
}

func TestStringRoundTripsCompactRulestring(t *testing.T) {
	table, _, err := Parse("B3/S23", 0)
	assert.NoError(t, err)
	assert.Equal(t, "B3/S23", table.String())
}
