package pattern

import (
	"github.com/totalistic/lifesearch/internal/grid"
	"github.com/totalistic/lifesearch/internal/transition"
)

// ForceEvolution adds the clauses constraining every non-ignored cell after
// generation 0, plus every non-ignored background cell, to obey the rule
// table under method. Grounded on SearchPattern.py:force_evolution: it
// walks the same two loops (foreground skipping t==0, background over every
// generation) and delegates the per-cell encoding to transition.Encoder
// rather than force_transition's inline per-method branching.
func (p *Pattern) ForceEvolution(method transition.Method) error {
	encoder, err := transition.New(p.Store, p.Rule, method)
	if err != nil {
		return err
	}

	width, height, duration := grid.Dims(p.Grid)
	for t := 1; t < duration; t++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if p.Ignore[t][y][x] {
					continue
				}
				cell := p.Grid[t][y][x]
				predecessor := p.Grid[t-1][y][x]
				neighbours := grid.Neighbours(p.Grid, x, y, t-1, p.Background)
				encoder.Encode(cell, predecessor, neighbours)
			}
		}
	}

	bgWidth, bgHeight, bgDuration := grid.Dims(p.Background)
	for t := 0; t < bgDuration; t++ {
		for y := 0; y < bgHeight; y++ {
			for x := 0; x < bgWidth; x++ {
				if p.BgIgnore[t][y][x] {
					continue
				}
				cell := p.Background[t][y][x]
				predecessor := p.Background[modInt(t-1, bgDuration)][y][x]
				neighbours := grid.Neighbours(p.Background, x, y, modInt(t-1, bgDuration), p.Background)
				encoder.Encode(cell, predecessor, neighbours)
			}
		}
	}

	return nil
}
