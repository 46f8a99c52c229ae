package pattern

import "github.com/totalistic/lifesearch/internal/transition"

// PopulationConstraint pairs a TimeRange with the population bound to apply
// over it (spec.md's population-at-most/at-least/exactly options).
type PopulationConstraint struct {
	Times      TimeRange
	Population int
}

// ForceChangeConstraint names the pair of generations a ForceChange call
// should act on.
type ForceChangeConstraint struct {
	T0, T1 int
}

// Constraints bundles every optional preprocessing step preprocess() walks
// through in sequence, so that a single Preprocess call can reproduce
// main.py:preprocess's exact ordering.
type Constraints struct {
	Symmetries        []Symmetry
	Asymmetries       []Symmetry
	PopulationAtMost  []PopulationConstraint
	PopulationAtLeast []PopulationConstraint
	PopulationExactly []PopulationConstraint
	MaxChange         *int
	MaxDecay          *int
	MaxGrowth         *int
	ForceChange       []ForceChangeConstraint
	Method            transition.Method
	SkipEvolution     bool
}

// Preprocess applies c to p in the same order main.py:preprocess
// does: grid-shaping constraints first (symmetry, then redundancy removal,
// since redundancy removal only pays off once symmetry has unified cells),
// then the purely clause-adding constraints, and finally the evolution rule
// itself (last, since it is by far the largest source of clauses and every
// earlier step may still shrink the grid it has to cover).
func Preprocess(p *Pattern, c Constraints) error {
	for _, s := range c.Symmetries {
		if err := p.ForceSymmetry(s); err != nil {
			return err
		}
	}

	if err := p.RemoveRedundancies(); err != nil {
		return err
	}

	for _, s := range c.Asymmetries {
		if err := p.ForceAsymmetry(s); err != nil {
			return err
		}
	}
	for _, pc := range c.PopulationAtMost {
		p.ForcePopulationAtMost(pc.Times, pc.Population)
	}
	for _, pc := range c.PopulationAtLeast {
		p.ForcePopulationAtLeast(pc.Times, pc.Population)
	}
	for _, pc := range c.PopulationExactly {
		p.ForcePopulationExactly(pc.Times, pc.Population)
	}
	if c.MaxChange != nil {
		p.ForceMaxChange(*c.MaxChange)
	}
	if c.MaxDecay != nil {
		p.ForceMaxDecay(*c.MaxDecay)
	}
	if c.MaxGrowth != nil {
		p.ForceMaxGrowth(*c.MaxGrowth)
	}
	for _, fc := range c.ForceChange {
		if err := p.ForceChange(fc.T0, fc.T1); err != nil {
			return err
		}
	}

	if c.SkipEvolution {
		return nil
	}
	return p.ForceEvolution(c.Method)
}
