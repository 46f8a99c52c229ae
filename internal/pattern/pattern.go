// Package pattern orchestrates a search pattern's whole lifecycle: variable
// numbering, symmetry and redundancy constraints, population/change bounds,
// determinism checking, and blocking-clause generation for "find another
// solution" searches. It is the Go counterpart of SearchPattern.py.
package pattern

import (
	"fmt"
	"strconv"

	"github.com/totalistic/lifesearch/internal/cardinality"
	"github.com/totalistic/lifesearch/internal/clause"
	"github.com/totalistic/lifesearch/internal/grid"
	"github.com/totalistic/lifesearch/internal/literal"
	"github.com/totalistic/lifesearch/internal/rule"
)

// Pattern is a fully prepared search instance: a numbered grid, its
// background, the rule table they share variables with, and the clause
// store and cardinality cache collecting the constraints imposed on them.
type Pattern struct {
	Store      *clause.Store
	Card       *cardinality.Encoder
	Grid       grid.Grid
	Ignore     grid.Ignore
	Background grid.Grid
	BgIgnore   grid.Ignore
	Rule       rule.Table

	equality *equality
}

// New builds a Pattern from parsed-but-unnumbered foreground and background
// grids and a rulestring, performing the same variable-numbering pass as
// SearchPattern.py:prepare_variables (shared named variables, per-occurrence
// "*" wildcards, explicit numeric variable references, "0"/"1" constants),
// then embeds the foreground one cell deep in the (time/space-offset)
// background exactly as SearchPattern.__init__ does.
func New(foreground grid.Raw, ignore grid.Ignore, background grid.Raw, bgIgnore grid.Ignore, rulestring string) (*Pattern, error) {
	store := clause.NewStore()
	named := make(map[string]literal.Lit)

	resolve := func(cell string) literal.Lit {
		tok := literal.ParseToken(cell)
		var base literal.Lit
		switch tok.Name {
		case "0":
			base = literal.False
		case "1":
			base = literal.True
		case literal.Wildcard:
			base = store.FreshLit()
		default:
			if v, ok := named[tok.Name]; ok {
				base = v
			} else if n, err := strconv.Atoi(tok.Name); err == nil {
				store.Reserve(n)
				base = literal.Lit(n)
				named[tok.Name] = base
			} else {
				base = store.FreshLit()
				named[tok.Name] = base
			}
		}
		if tok.Negated {
			base = base.Negate()
		}
		return base
	}

	numberGrid := func(raw grid.Raw) grid.Grid {
		out := make(grid.Grid, len(raw))
		for t, generation := range raw {
			out[t] = make([][]literal.Lit, len(generation))
			for y, row := range generation {
				out[t][y] = make([]literal.Lit, len(row))
				for x, cell := range row {
					out[t][y][x] = resolve(cell)
				}
			}
		}
		return out
	}

	numberedForeground := numberGrid(foreground)
	numberedBackground := numberGrid(background)

	ruleTable, newVarCount, err := rule.Parse(rulestring, store.NumVars())
	if err != nil {
		return nil, err
	}
	store.Reserve(newVarCount)

	offsetBackground := grid.OffsetBackground(numberedBackground, 1, 1, 0)
	embedded := grid.Embed(numberedForeground, offsetBackground)

	offsetBgIgnore := offsetIgnore(bgIgnore, 1, 1, 0)
	embeddedIgnore := embedIgnore(ignore, offsetBgIgnore, len(numberedForeground[0][0]), len(numberedForeground[0]))

	p := &Pattern{
		Store:      store,
		Card:       cardinality.New(store),
		Grid:       embedded,
		Ignore:     embeddedIgnore,
		Background: numberedBackground,
		BgIgnore:   bgIgnore,
		Rule:       ruleTable,
		equality:   newEquality(),
	}
	return p, nil
}

func offsetIgnore(g grid.Ignore, xOffset, yOffset, tOffset int) grid.Ignore {
	duration := len(g)
	if duration == 0 {
		return g
	}
	height := len(g[0])
	width := len(g[0][0])
	out := make(grid.Ignore, duration)
	for t := 0; t < duration; t++ {
		out[t] = make([][]bool, height)
		for y := 0; y < height; y++ {
			out[t][y] = make([]bool, width)
			for x := 0; x < width; x++ {
				out[t][y][x] = g[modInt(t+tOffset, duration)][modInt(y+yOffset, height)][modInt(x+xOffset, width)]
			}
		}
	}
	return out
}

func embedIgnore(fg, bg grid.Ignore, width, height int) grid.Ignore {
	duration := len(fg)
	bgWidth := len(bg[0][0])
	bgHeight := len(bg[0])
	bgDuration := len(bg)

	out := make(grid.Ignore, duration)
	for t := 0; t < duration; t++ {
		out[t] = make([][]bool, height+2)
		for y := 0; y < height+2; y++ {
			out[t][y] = make([]bool, width+2)
			for x := 0; x < width+2; x++ {
				if x >= 1 && x <= width && y >= 1 && y <= height {
					out[t][y][x] = fg[t][y-1][x-1]
				} else {
					out[t][y][x] = bg[modInt(t, bgDuration)][modInt(y, bgHeight)][modInt(x, bgWidth)]
				}
			}
		}
	}
	return out
}

func modInt(a, b int) int {
	if b == 0 {
		return 0
	}
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// NumberOfCells reports the number of distinct, non-constant variables
// appearing in the grid — the pattern's cell count for reporting purposes.
func (p *Pattern) NumberOfCells() int {
	seen := make(map[int]struct{})
	for _, generation := range p.Grid {
		for _, row := range generation {
			for _, cell := range row {
				if cell.IsConstant() {
					continue
				}
				seen[cell.Var()] = struct{}{}
			}
		}
	}
	return len(seen)
}

// forceEqual unifies every pair in pairs and immediately rewrites the
// search grid, background grid, and rule table through the resulting
// substitution, exactly as SearchPattern.py:force_equal does at the tail of
// the same call (it never defers the rewrite to a later pass). Every caller
// that unifies cells — ForceSymmetry, redundancy removal — must go through
// this rather than calling p.equality.ForceEqual directly, or the
// substitution never reaches anything that reads p.Grid/p.Background/p.Rule.
func (p *Pattern) forceEqual(pairs [][2]literal.Lit) error {
	if err := p.equality.ForceEqual(pairs); err != nil {
		return err
	}
	p.equality.ApplyGrid(p.Grid)
	p.equality.ApplyGrid(p.Background)
	p.equality.ApplyRule(p.Rule)
	return nil
}

// ForceAtLeast, ForceAtMost, and ForceExactly delegate to the cardinality
// encoder over the given literals.
func (p *Pattern) ForceAtLeast(lits []literal.Lit, k int) bool  { return p.Card.ForceAtLeast(lits, k) }
func (p *Pattern) ForceAtMost(lits []literal.Lit, k int) bool   { return p.Card.ForceAtMost(lits, k) }
func (p *Pattern) ForceExactly(lits []literal.Lit, k int) bool  { return p.Card.ForceExactly(lits, k) }

// TimeRange describes a set of generations (spec.md calls these "times")
// that a population constraint applies over.
type TimeRange []int

// ForcePopulationAtLeast constrains the total live-cell count across times
// to be at least population.
func (p *Pattern) ForcePopulationAtLeast(times TimeRange, population int) bool {
	return p.ForceAtLeast(p.populationLiterals(times), population)
}

// ForcePopulationAtMost constrains the total live-cell count across times to
// be at most population.
func (p *Pattern) ForcePopulationAtMost(times TimeRange, population int) bool {
	return p.ForceAtMost(p.populationLiterals(times), population)
}

// ForcePopulationExactly constrains the total live-cell count across times
// to be exactly population.
func (p *Pattern) ForcePopulationExactly(times TimeRange, population int) bool {
	return p.ForceExactly(p.populationLiterals(times), population)
}

func (p *Pattern) populationLiterals(times TimeRange) []literal.Lit {
	var lits []literal.Lit
	for _, t := range times {
		for _, row := range p.Grid[t] {
			lits = append(lits, row...)
		}
	}
	return lits
}

// ForceChange asserts that at least one cell differs between generations
// t0 and t1.
func (p *Pattern) ForceChange(t0, t1 int) error {
	width := len(p.Grid[0][0])
	height := len(p.Grid[0])
	var pairs [][2]literal.Lit
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			pairs = append(pairs, [2]literal.Lit{p.Grid[t0][y][x], p.Grid[t1][y][x]})
		}
	}
	ForceUnequal(p.Store, pairs)
	return nil
}

// ForceMaxChange bounds, for every generation after the first, how many
// cells may differ from generation 0.
func (p *Pattern) ForceMaxChange(maxChange int) {
	p.forceMaxDelta(maxChange, true, true)
}

// ForceMaxDecay bounds, for every generation after the first, how many
// cells may have died relative to generation 0 (without counting births).
func (p *Pattern) ForceMaxDecay(maxDecay int) {
	p.forceMaxDelta(maxDecay, false, true)
}

// ForceMaxGrowth bounds, for every generation after the first, how many
// cells may have been born relative to generation 0 (without counting
// deaths).
func (p *Pattern) ForceMaxGrowth(maxGrowth int) {
	p.forceMaxDelta(maxGrowth, true, false)
}

// forceMaxDelta implements the shared shape of force_max_change/decay/growth:
// for each generation t>0, define one indicator per cell capturing the
// relevant one- or two-directional difference from generation 0, then bound
// their count.
func (p *Pattern) forceMaxDelta(bound int, countBirths, countDeaths bool) {
	width := len(p.Grid[0][0])
	height := len(p.Grid[0])
	duration := len(p.Grid)

	for t := 1; t < duration; t++ {
		var indicators []literal.Lit
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				cellT := p.Grid[t][y][x]
				cell0 := p.Grid[0][y][x]
				indicator := p.Store.FreshLit()
				if countBirths {
					p.Store.Append(literal.Implies([]literal.Lit{cellT, cell0.Negate()}, indicator))
				}
				if countDeaths {
					p.Store.Append(literal.Implies([]literal.Lit{cellT.Negate(), cell0}, indicator))
				}
				indicators = append(indicators, indicator)
			}
		}
		p.ForceAtMost(indicators, bound)
	}
}

// ForceDistinct emits one blocking clause ruling out a previously found
// solution, restricted to generation 0 (plus background and rule) when
// determined is true, and to every generation otherwise. Grounded on
// SearchPattern.py:force_distinct.
func (p *Pattern) ForceDistinct(solution []literal.Lit, determined bool) {
	variables := make(map[int]struct{})
	for t, generation := range p.Grid {
		if t == 0 || !determined {
			for _, row := range generation {
				for _, cell := range row {
					variables[cell.Var()] = struct{}{}
				}
			}
		}
	}
	for _, generation := range p.Background {
		for _, row := range generation {
			for _, cell := range row {
				variables[cell.Var()] = struct{}{}
			}
		}
	}
	for _, l := range p.Rule {
		variables[l.Var()] = struct{}{}
	}

	blocking := make(clause.Clause, 0, len(solution))
	for _, l := range solution {
		if _, ok := variables[l.Var()]; ok {
			blocking = append(blocking, l.Negate())
		}
	}
	p.Store.Append(blocking)
}

// Deterministic reports whether generation 0 (combined with the rule and
// background) determines every later cell by fixed-point propagation: a
// cell becomes determined once its predecessor and all eight neighbors (or
// the cell itself, in generation 0) are determined and its transition isn't
// ignored. This follows spec.md's prose description rather than the
// original's narrower 2x2-corner check.
func (p *Pattern) Deterministic() bool {
	duration := len(p.Grid)
	height := len(p.Grid[0])
	width := len(p.Grid[0][0])

	determined := make([][][]bool, duration)
	determinedVars := make(map[int]struct{})
	for t := range determined {
		determined[t] = make([][]bool, height)
		for y := range determined[t] {
			determined[t][y] = make([]bool, width)
		}
	}

	for {
		changed := false
		for t := 0; t < duration; t++ {
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					if determined[t][y][x] {
						continue
					}
					cell := p.Grid[t][y][x]
					if cell.IsConstant() {
						determined[t][y][x] = true
						changed = true
						continue
					}
					v := cell.Var()
					if t == 0 {
						determined[t][y][x] = true
						determinedVars[v] = struct{}{}
						changed = true
						continue
					}
					if _, ok := determinedVars[v]; ok {
						determined[t][y][x] = true
						changed = true
						continue
					}
					if p.Ignore[t][y][x] {
						continue
					}
					if p.allParentsDetermined(determined, t, x, y, width, height) {
						determined[t][y][x] = true
						determinedVars[v] = struct{}{}
						changed = true
					}
				}
			}
		}
		if !changed {
			break
		}
	}

	for t := 0; t < duration; t++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if !determined[t][y][x] {
					return false
				}
			}
		}
	}
	return true
}

var parentOffsets = [9][2]int{
	{0, 0}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

func (p *Pattern) allParentsDetermined(determined [][][]bool, t, x, y, width, height int) bool {
	for _, offset := range parentOffsets {
		nx, ny := x+offset[0], y+offset[1]
		if nx < 0 || nx >= width || ny < 0 || ny >= height {
			continue // resolved against background, which is always ground-truth determined
		}
		if !determined[t-1][ny][nx] {
			return false
		}
	}
	return true
}

// BackgroundNontrivial reports whether the background tile is larger than
// a single cell in either spatial dimension.
func (p *Pattern) BackgroundNontrivial() bool {
	return len(p.Background[0]) > 1 || len(p.Background[0][0]) > 1
}

// ErrUnrecognizedFormat is returned by the lifesearch command's solution
// formatter (formatSolution) for a format other than "rle", "csv", or "blk".
type ErrUnrecognizedFormat struct {
	Format string
}

func (e *ErrUnrecognizedFormat) Error() string {
	return fmt.Sprintf("pattern: output format %q not recognized", e.Format)
}
