package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/totalistic/lifesearch/internal/pattern"
)

// parseSymmetry decodes "Transform,dx,dy,period" (e.g. "RO2,0,0,0") into a
// pattern.Symmetry.
func parseSymmetry(spec string) (pattern.Symmetry, error) {
	fields := strings.Split(spec, ",")
	if len(fields) != 4 {
		return pattern.Symmetry{}, fmt.Errorf("symmetry %q: want \"transform,dx,dy,period\"", spec)
	}
	dx, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return pattern.Symmetry{}, fmt.Errorf("symmetry %q: bad dx: %w", spec, err)
	}
	dy, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return pattern.Symmetry{}, fmt.Errorf("symmetry %q: bad dy: %w", spec, err)
	}
	period, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return pattern.Symmetry{}, fmt.Errorf("symmetry %q: bad period: %w", spec, err)
	}
	return pattern.Symmetry{Transform: strings.TrimSpace(fields[0]), DX: dx, DY: dy, Period: period}, nil
}

// parsePopulation decodes "t0|t1|...:population" (e.g. "0|1:5") into a
// pattern.PopulationConstraint.
func parsePopulation(spec string) (pattern.PopulationConstraint, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return pattern.PopulationConstraint{}, fmt.Errorf("population %q: want \"times:population\"", spec)
	}
	population, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return pattern.PopulationConstraint{}, fmt.Errorf("population %q: bad population: %w", spec, err)
	}
	var times pattern.TimeRange
	for _, field := range strings.Split(parts[0], "|") {
		t, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return pattern.PopulationConstraint{}, fmt.Errorf("population %q: bad time %q: %w", spec, field, err)
		}
		times = append(times, t)
	}
	return pattern.PopulationConstraint{Times: times, Population: population}, nil
}

// parseForceChange decodes "t0,t1" into a pattern.ForceChangeConstraint.
func parseForceChange(spec string) (pattern.ForceChangeConstraint, error) {
	fields := strings.Split(spec, ",")
	if len(fields) != 2 {
		return pattern.ForceChangeConstraint{}, fmt.Errorf("force-change %q: want \"t0,t1\"", spec)
	}
	t0, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return pattern.ForceChangeConstraint{}, fmt.Errorf("force-change %q: bad t0: %w", spec, err)
	}
	t1, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return pattern.ForceChangeConstraint{}, fmt.Errorf("force-change %q: bad t1: %w", spec, err)
	}
	return pattern.ForceChangeConstraint{T0: t0, T1: t1}, nil
}
