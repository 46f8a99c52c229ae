package clause

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/totalistic/lifesearch/internal/literal"
)

func TestFreshIsMonotonic(t *testing.T) {
	s := NewStore()
	a := s.Fresh()
	b := s.Fresh()
	assert.Less(t, a, b)
}

func TestWriteDIMACSDropsTrueClause(t *testing.T) {
	s := NewStore()
	s.Append(Clause{literal.True, 2})
	s.Append(Clause{2, 3})

	var buf bytes.Buffer
	require := assert.New(t)
	require.NoError(s.WriteDIMACS(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal("p cnf 2 1", lines[0])
	require.Equal(2, len(lines))
}

func TestWriteDIMACSDedupesAndRemaps(t *testing.T) {
	s := NewStore()
	a := literal.Lit(s.Fresh())
	b := literal.Lit(s.Fresh())
	s.Append(Clause{a, b})
	s.Append(Clause{b, a}) // same clause, different order

	var buf bytes.Buffer
	assert.NoError(t, s.WriteDIMACS(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "p cnf 2 1", lines[0])
	assert.Equal(t, 2, len(lines))
}

func TestWriteDIMACSDropsTautology(t *testing.T) {
	s := NewStore()
	a := literal.Lit(s.Fresh())
	s.Append(Clause{a, -a})
	s.Append(Clause{a})

	var buf bytes.Buffer
	assert.NoError(t, s.WriteDIMACS(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "p cnf 1 1", lines[0])
	assert.Equal(t, 2, len(lines))
}

func TestReserveBumpsCounter(t *testing.T) {
	s := NewStore()
	s.Reserve(10)
	assert.Equal(t, 11, s.Fresh())
}

func TestReserveIgnoresLowerId(t *testing.T) {
	s := NewStore()
	s.Fresh()
	before := s.NumVars()
	s.Reserve(1)
	assert.Equal(t, before, s.NumVars())
}

func TestWriteDIMACSDropsConstantFalse(t *testing.T) {
	s := NewStore()
	a := literal.Lit(s.Fresh())
	s.Append(Clause{a, literal.False})

	var buf bytes.Buffer
	assert.NoError(t, s.WriteDIMACS(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "1 0", lines[1])
}
