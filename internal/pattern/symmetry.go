package pattern

import (
	"fmt"
	"strings"

	"github.com/totalistic/lifesearch/internal/literal"
)

// Symmetry names one of the eight D4 dihedral transformations, together
// with a translation offset and the period it applies over in time — a
// "moving" symmetry shifts the pattern in space each time it recurs.
type Symmetry struct {
	Transform string // "RO0".."RO3", "RE-", "RE|", `RE\`, "RE/"
	DX, DY    int
	Period    int
}

// transformFunc computes an image coordinate given a source coordinate, the
// symmetry's translation, and the grid's width/height.
type transformFunc func(x, y, xt, yt, width, height int) (int, int)

type transformPair struct {
	forward, inverse transformFunc
}

// transforms implements the eight D4 orientations exactly as
// SearchPattern.py:cell_pairs_from_transformation defines them: four
// rotations (RO0..RO3) and four reflections (RE-, RE\, RE|, RE/). Each
// lambda pair there takes the *untranslated* cell coordinate and adds the
// translation to the transformed result, not to the input — mirrored here
// literally rather than composed generically.
var transforms = map[string]transformPair{
	"RO0": {
		forward: func(x, y, xt, yt, width, height int) (int, int) { return x + xt, y + yt },
		inverse: func(x, y, xt, yt, width, height int) (int, int) { return x - xt, y - yt },
	},
	"RO1": {
		forward: func(x, y, xt, yt, width, height int) (int, int) { return (height - 1) - y + xt, x + yt },
		inverse: func(x, y, xt, yt, width, height int) (int, int) { return y - yt, (height - 1) - (x - xt) },
	},
	"RO2": {
		forward: func(x, y, xt, yt, width, height int) (int, int) { return (width - 1) - x + xt, (height - 1) - y + yt },
		inverse: func(x, y, xt, yt, width, height int) (int, int) { return (width - 1) - (x - xt), (height - 1) - (y - yt) },
	},
	"RO3": {
		forward: func(x, y, xt, yt, width, height int) (int, int) { return y + xt, (height - 1) - x + yt },
		inverse: func(x, y, xt, yt, width, height int) (int, int) { return (height - 1) - (y - yt), x - xt },
	},
	"RE-": {
		forward: func(x, y, xt, yt, width, height int) (int, int) { return x + xt, (height - 1) - y + yt },
		inverse: func(x, y, xt, yt, width, height int) (int, int) { return x - xt, (height - 1) - (y - yt) },
	},
	`RE\`: {
		forward: func(x, y, xt, yt, width, height int) (int, int) { return y + xt, x + yt },
		inverse: func(x, y, xt, yt, width, height int) (int, int) { return y - yt, x - xt },
	},
	"RE|": {
		forward: func(x, y, xt, yt, width, height int) (int, int) { return (width - 1) - x + xt, y + yt },
		inverse: func(x, y, xt, yt, width, height int) (int, int) { return (width - 1) - (x - xt), y - yt },
	},
	"RE/": {
		forward: func(x, y, xt, yt, width, height int) (int, int) { return (height - 1) - y + xt, (height - 1) - x + yt },
		inverse: func(x, y, xt, yt, width, height int) (int, int) { return (height - 1) - (y - yt), (height - 1) - (x - xt) },
	},
}

// ErrUnknownTransform is returned for a Symmetry naming an unsupported
// transform string.
type ErrUnknownTransform struct {
	Transform string
}

func (e *ErrUnknownTransform) Error() string {
	return fmt.Sprintf("pattern: unknown symmetry transform %q", e.Transform)
}

// CellPairsFromTransformation returns every (cell, image-of-cell) pair the
// symmetry identifies, resolving an image cell that falls outside the
// foreground grid against the (already time/space-offset) background grid.
// Grounded on SearchPattern.py:cell_pairs_from_transformation.
func (p *Pattern) CellPairsFromTransformation(s Symmetry) ([][2]literal.Lit, error) {
	transform, ok := transforms[strings.ToUpper(s.Transform)]
	if !ok {
		return nil, &ErrUnknownTransform{s.Transform}
	}

	width := len(p.Grid[0][0])
	height := len(p.Grid[0])
	duration := len(p.Grid)
	bgWidth := len(p.Background[0][0])
	bgHeight := len(p.Background[0])
	bgDuration := len(p.Background)

	var pairs [][2]literal.Lit
	for x0 := 0; x0 < width; x0++ {
		for y0 := 0; y0 < height; y0++ {
			for t := 0; t < duration; t++ {
				cell0 := p.Grid[t][y0][x0]

				if t < duration-s.Period {
					x1, y1 := transform.forward(x0, y0, s.DX, s.DY, width, height)
					var other literal.Lit
					if x1 >= 0 && x1 < width && y1 >= 0 && y1 < height {
						other = p.Grid[t+s.Period][y1][x1]
					} else {
						other = p.Background[mod(t+s.Period, bgDuration)][mod(y1, bgHeight)][mod(x1, bgWidth)]
					}
					pairs = append(pairs, [2]literal.Lit{cell0, other})
				}
				if t >= s.Period {
					x1, y1 := transform.inverse(x0, y0, s.DX, s.DY, width, height)
					var other literal.Lit
					if x1 >= 0 && x1 < width && y1 >= 0 && y1 < height {
						other = p.Grid[t-s.Period][y1][x1]
					} else {
						other = p.Background[mod(t-s.Period, bgDuration)][mod(y1, bgHeight)][mod(x1, bgWidth)]
					}
					pairs = append(pairs, [2]literal.Lit{cell0, other})
				}
			}
		}
	}
	return pairs, nil
}

func mod(a, b int) int {
	if b == 0 {
		return 0
	}
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// ForceSymmetry unifies every cell with its image under s.
func (p *Pattern) ForceSymmetry(s Symmetry) error {
	pairs, err := p.CellPairsFromTransformation(s)
	if err != nil {
		return err
	}
	return p.forceEqual(pairs)
}

// ForcePeriod is shorthand for ForceSymmetry with the identity rotation
// RO0, translated by (dx, dy) every p generations.
func (p *Pattern) ForcePeriod(period, dx, dy int) error {
	return p.ForceSymmetry(Symmetry{Transform: "RO0", DX: dx, DY: dy, Period: period})
}

// ForceAsymmetry forbids s from being an exact symmetry of the pattern.
func (p *Pattern) ForceAsymmetry(s Symmetry) error {
	pairs, err := p.CellPairsFromTransformation(s)
	if err != nil {
		return err
	}
	ForceUnequal(p.Store, pairs)
	return nil
}
