package pattern

import (
	"fmt"

	"github.com/totalistic/lifesearch/internal/grid"
	"github.com/totalistic/lifesearch/internal/literal"
	"github.com/totalistic/lifesearch/internal/rule"
)

// RemoveRedundancies coalesces cells that share an identical parent
// signature (predecessor plus D4-canonicalized neighbor set): the second
// and later cells with the same signature are unified with the first, and
// any cell whose parents are already fully constant is unified directly
// with its rule-table transition literal, sparing the transition encoder
// from re-deriving the same constraint repeatedly. Grounded on
// SearchPattern.py:remove_redundancies.
func (p *Pattern) RemoveRedundancies() error {
	if err := removeRedundanciesIn(p, p.Background, p.BgIgnore, p.Background, true); err != nil {
		return err
	}
	return removeRedundanciesIn(p, p.Grid, p.Ignore, p.Background, false)
}

func removeRedundanciesIn(p *Pattern, g grid.Grid, ignore grid.Ignore, background grid.Grid, isBackground bool) error {
	parents := make(map[string]literal.Lit)
	var toForceEqual [][2]literal.Lit

	duration := len(g)
	for t := 0; t < duration; t++ {
		if !isBackground && t == 0 {
			continue
		}
		for y, row := range g[t] {
			for x, cell := range row {
				if ignore[t][y][x] {
					continue
				}

				pt := t - 1
				if isBackground {
					pt = modInt(t-1, duration)
				}
				predecessor := g[pt][y][x]
				neighbours := grid.Neighbours(g, x, y, pt, background)
				canonical := sortNeighbours(neighbours)

				signature := append([]literal.Lit{predecessor}, canonical...)
				key := signatureKey(signature)

				if existing, ok := parents[key]; ok {
					g[t][y][x] = existing
					toForceEqual = append(toForceEqual, [2]literal.Lit{existing, cell})
					ignore[t][y][x] = true
					continue
				}

				if allConstant(signature) {
					letter := "B"
					if predecessor == literal.True {
						letter = "S"
					}
					var raw [8]int
					for i, n := range neighbours {
						raw[i] = signOf(n)
					}
					code, err := rule.CanonicalCode(raw)
					if err != nil {
						return err
					}
					child := p.Rule[rule.Transition(letter+code)]
					if !isConstant(cell) {
						g[t][y][x] = child
					}
					toForceEqual = append(toForceEqual, [2]literal.Lit{cell, child})
					ignore[t][y][x] = true
					parents[key] = g[t][y][x]
				} else {
					parents[key] = cell
				}
			}
		}
	}
	return p.forceEqual(toForceEqual)
}

func isConstant(l literal.Lit) bool { return l == literal.True || l == literal.False }

func allConstant(lits []literal.Lit) bool {
	for _, l := range lits {
		if !isConstant(l) {
			return false
		}
	}
	return true
}

func signOf(l literal.Lit) int {
	if l == literal.True {
		return 1
	}
	return -1
}

// neighbourSymmetries holds the eight D4 reorderings of an 8-element
// clockwise neighbor tuple, matching rules.py:sort_neighbours exactly.
var neighbourSymmetries = [8][8]int{
	{0, 1, 2, 3, 4, 5, 6, 7},
	{6, 7, 0, 1, 2, 3, 4, 5},
	{4, 5, 6, 7, 0, 1, 2, 3},
	{2, 3, 4, 5, 6, 7, 0, 1},
	{6, 5, 4, 3, 2, 1, 0, 7},
	{0, 7, 6, 5, 4, 3, 2, 1},
	{2, 1, 0, 7, 6, 5, 4, 3},
	{4, 3, 2, 1, 0, 7, 6, 5},
}

// sortNeighbours returns the lexicographically greatest of the eight D4
// reorderings of neighbours, giving symmetric neighborhoods an identical
// signature regardless of which rotation they were read off in.
func sortNeighbours(neighbours [8]literal.Lit) []literal.Lit {
	best := applyPermutation(neighbours, neighbourSymmetries[0])
	for _, perm := range neighbourSymmetries[1:] {
		candidate := applyPermutation(neighbours, perm)
		if lexGreater(candidate, best) {
			best = candidate
		}
	}
	return best
}

func applyPermutation(neighbours [8]literal.Lit, perm [8]int) []literal.Lit {
	out := make([]literal.Lit, 8)
	for i, idx := range perm {
		out[i] = neighbours[idx]
	}
	return out
}

func lexGreater(a, b []literal.Lit) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

func signatureKey(lits []literal.Lit) string {
	buf := make([]byte, 0, len(lits)*6)
	for _, l := range lits {
		buf = append(buf, []byte(fmt.Sprintf("%d,", l))...)
	}
	return string(buf)
}
