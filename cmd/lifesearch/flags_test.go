package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totalistic/lifesearch/internal/pattern"
)

func TestParseSymmetryDecodesAllFields(t *testing.T) {
	s, err := parseSymmetry("RO2,1,-1,2")
	require.NoError(t, err)
	assert.Equal(t, pattern.Symmetry{Transform: "RO2", DX: 1, DY: -1, Period: 2}, s)
}

func TestParseSymmetryRejectsWrongFieldCount(t *testing.T) {
	_, err := parseSymmetry("RO2,1,2")
	assert.Error(t, err)
}

func TestParseSymmetryRejectsNonIntegerField(t *testing.T) {
	_, err := parseSymmetry("RO2,x,0,0")
	assert.Error(t, err)
}

func TestParsePopulationDecodesMultipleTimes(t *testing.T) {
	pc, err := parsePopulation("0|1|2:5")
	require.NoError(t, err)
	assert.Equal(t, pattern.TimeRange{0, 1, 2}, pc.Times)
	assert.Equal(t, 5, pc.Population)
}

func TestParsePopulationRejectsMissingColon(t *testing.T) {
	_, err := parsePopulation("0 5")
	assert.Error(t, err)
}

func TestParseForceChangeDecodesPair(t *testing.T) {
	fc, err := parseForceChange("0,3")
	require.NoError(t, err)
	assert.Equal(t, pattern.ForceChangeConstraint{T0: 0, T1: 3}, fc)
}

func TestParseForceChangeRejectsWrongFieldCount(t *testing.T) {
	_, err := parseForceChange("0,1,2")
	assert.Error(t, err)
}
