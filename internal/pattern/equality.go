package pattern

import (
	"fmt"

	"github.com/totalistic/lifesearch/internal/clause"
	"github.com/totalistic/lifesearch/internal/literal"
	"github.com/totalistic/lifesearch/internal/rule"
)

// ErrUnsat is raised when a force_equal substitution would require a
// variable to equal its own negation — unsatisfiable before the SAT solver
// ever runs, matching SearchPattern.py's UnsatInPreprocessing.
type ErrUnsat struct {
	Reason string
}

func (e *ErrUnsat) Error() string {
	return fmt.Sprintf("pattern: unsatisfiable during preprocessing: %s", e.Reason)
}

// equality is the substitution arena backing force_equal: a map from a
// variable to the literal it has been aliased to, plus the reverse index
// ("replaces") of which variables currently point at a given target, so
// that unifying that target elsewhere can rewire all of its dependents in
// one pass. Grounded on SearchPattern.py:force_equal.
type equality struct {
	replacement map[int]literal.Lit
	replaces    map[int][]int
}

func newEquality() *equality {
	return &equality{
		replacement: make(map[int]literal.Lit),
		replaces:    make(map[int][]int),
	}
}

func sign(l literal.Lit) int {
	if l < 0 {
		return -1
	}
	return 1
}

func (eq *equality) followChain(l literal.Lit) literal.Lit {
	for !l.IsConstant() {
		v, polarity := l.Decompose()
		rep, ok := eq.replacement[v]
		if !ok {
			break
		}
		l = literal.FromVarPolarity(rep.Var(), polarity*sign(rep))
	}
	return l
}

// ForceEqual unifies every pair in pairs, always eliminating the
// larger-numbered variable in favor of the smaller (or a constant), and
// rewiring any variable that already pointed at the eliminated one.
func (eq *equality) ForceEqual(pairs [][2]literal.Lit) error {
	for _, pair := range pairs {
		var0, neg0 := pair[0].Decompose()
		var1, neg1 := pair[1].Decompose()

		larger, smaller := var0, var1
		if larger < smaller {
			larger, smaller = smaller, larger
		}
		cell0 := literal.Lit(larger)
		cell1 := literal.FromVarPolarity(smaller, neg0*neg1)

		cell0 = eq.followChain(cell0)
		cell1 = eq.followChain(cell1)

		if cell0 == cell1 {
			continue
		}
		if cell0 == cell1.Negate() {
			return &ErrUnsat{"force_equal on two already-opposite literals"}
		}
		if cell0.IsConstant() {
			cell0, cell1 = cell1, cell0
		}

		v0, neg0b := cell0.Decompose()
		cell1 = literal.FromVarPolarity(cell1.Var(), sign(cell1)*neg0b)
		v0Bare := v0

		if !cell1.IsConstant() {
			if _, ok := eq.replaces[cell1.Var()]; !ok {
				eq.replaces[cell1.Var()] = nil
			}
		}

		if dependents, ok := eq.replaces[v0Bare]; ok {
			for _, dependentVar := range dependents {
				oldRep := eq.replacement[dependentVar]
				newRep := literal.FromVarPolarity(cell1.Var(), sign(cell1)*sign(oldRep))
				eq.replacement[dependentVar] = newRep
				if !cell1.IsConstant() {
					eq.replaces[cell1.Var()] = append(eq.replaces[cell1.Var()], dependentVar)
				}
			}
			delete(eq.replaces, v0Bare)
		}

		eq.replacement[v0Bare] = cell1
		if !cell1.IsConstant() {
			eq.replaces[cell1.Var()] = append(eq.replaces[cell1.Var()], v0Bare)
		}
	}
	return nil
}

// Apply rewrites a single literal through the current substitution arena.
func (eq *equality) Apply(l literal.Lit) literal.Lit {
	if l.IsConstant() {
		return l
	}
	return eq.followChain(l)
}

// ApplyGrid rewrites every cell of g in place.
func (eq *equality) ApplyGrid(g [][][]literal.Lit) {
	for t, generation := range g {
		for y, row := range generation {
			for x, cell := range row {
				g[t][y][x] = eq.Apply(cell)
			}
		}
	}
}

// ApplyRule rewrites every transition's literal in place.
func (eq *equality) ApplyRule(table rule.Table) {
	for transition, l := range table {
		table[transition] = eq.Apply(l)
	}
}

// ForceUnequal emits clauses forbidding every pair in pairs from being
// simultaneously equal: one "cells_equal" indicator per pair, asserting at
// least one pair actually differs. Grounded on
// SearchPattern.py:force_unequal.
func ForceUnequal(store *clause.Store, pairs [][2]literal.Lit) {
	blocking := make(clause.Clause, 0, len(pairs))
	for _, pair := range pairs {
		equalVar := store.FreshLit()
		store.Append(literal.Implies([]literal.Lit{pair[0], pair[1]}, equalVar))
		store.Append(literal.Implies([]literal.Lit{pair[0].Negate(), pair[1].Negate()}, equalVar))
		blocking = append(blocking, equalVar.Negate())
	}
	store.Append(blocking)
}
