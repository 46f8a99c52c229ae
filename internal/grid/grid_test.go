package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/totalistic/lifesearch/internal/literal"
)

func TestParseSingleGeneration(t *testing.T) {
	raw, ignore, err := Parse("0,1,0\n1,1,1\n0,1,0")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(raw))
	assert.Equal(t, 3, len(raw[0]))
	assert.Equal(t, []string{"0", "1", "0"}, raw[0][0])
	assert.False(t, ignore[0][0][0])
}

func TestParseMultipleGenerations(t *testing.T) {
	raw, _, err := Parse("0,1\n1,0\n\n1,0\n0,1")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(raw))
}

func TestParseIgnoreSuffix(t *testing.T) {
	raw, ignore, err := Parse("1',0")
	assert.NoError(t, err)
	assert.Equal(t, "1", raw[0][0][0])
	assert.True(t, ignore[0][0][0])
	assert.False(t, ignore[0][0][1])
}

func TestParseStripsComments(t *testing.T) {
	raw, _, err := Parse("0,1 # a comment\n1,0")
	assert.NoError(t, err)
	assert.Equal(t, "1", raw[0][0][1])
}

func TestParseNonCuboidalRejected(t *testing.T) {
	_, _, err := Parse("0,1,0\n1,1")
	assert.ErrorIs(t, err, ErrNonCuboidal)
}

func TestNeighboursWrapsIntoBackground(t *testing.T) {
	foreground := Grid{{{1}}}
	background := Grid{{{literal.False}}}
	n := Neighbours(foreground, 0, 0, 0, background)
	for _, l := range n {
		assert.Equal(t, literal.False, l)
	}
}

func TestEmbedSurroundsWithBackground(t *testing.T) {
	foreground := Grid{{{1, 2}, {3, 4}}}
	background := Grid{{{literal.False}}}
	embedded := Embed(foreground, background)
	w, h, d := Dims(embedded)
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)
	assert.Equal(t, 1, d)
	assert.Equal(t, literal.Lit(1), embedded[0][1][1])
	assert.Equal(t, literal.False, embedded[0][0][0])
}
