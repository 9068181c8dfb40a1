package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// speedTolerance is the absolute tolerance of projectile speed assertions.
const speedTolerance = 1e-6

// AssertionError is returned when an assertion fails. It carries the
// firing lines for context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Firings  []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Firings) > 0 {
		fmt.Fprintf(&buf, "\nFirings:\n")
		for i, line := range e.Firings {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, line)
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(r *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(r, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(r.Firings(), a)
	case AssertTraceOrder:
		return assertTraceOrder(r.Firings(), a)
	case AssertTraceCount:
		return assertTraceCount(r.Firings(), a)
	case AssertEmitterState:
		return assertEmitterState(r, a)
	case AssertProjectile:
		return assertProjectile(r, a)
	case AssertGeneration:
		return assertGeneration(r, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertTraceContains(firings []string, a Assertion) error {
	if slices.Contains(firings, a.Line) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: a.Line,
		Actual:   "not found in trace",
		Firings:  firings,
	}
}

// assertTraceOrder checks that a.Lines appear in order; other lines may
// come between them.
func assertTraceOrder(firings []string, a Assertion) error {
	next := 0
	for _, line := range firings {
		if next < len(a.Lines) && line == a.Lines[next] {
			next++
		}
	}
	if next == len(a.Lines) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("lines in order: %q", a.Lines),
		Actual:   fmt.Sprintf("matched %d of %d, first missing %q", next, len(a.Lines), a.Lines[next]),
		Firings:  firings,
	}
}

func assertTraceCount(firings []string, a Assertion) error {
	count := 0
	for _, line := range firings {
		if strings.HasPrefix(line, a.Line) {
			count++
		}
	}
	if count == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d lines starting with %q", *a.Count, a.Line),
		Actual:   fmt.Sprintf("%d lines", count),
		Firings:  firings,
	}
}

func assertEmitterState(r *Result, a Assertion) error {
	if _, ok := r.Projectiles[a.Projectile]; !ok {
		return fmt.Errorf("unknown projectile %q", a.Projectile)
	}
	name, remaining := r.StateOf(a.Projectile)
	if name != a.Emitter {
		return &AssertionError{
			Type:     AssertEmitterState,
			Expected: fmt.Sprintf("%s carries %s", a.Projectile, a.Emitter),
			Actual:   fmt.Sprintf("%s carries %s", a.Projectile, name),
		}
	}
	if a.Remaining != nil && remaining != *a.Remaining {
		return &AssertionError{
			Type:     AssertEmitterState,
			Expected: fmt.Sprintf("%s remaining=%d", a.Projectile, *a.Remaining),
			Actual:   fmt.Sprintf("%s remaining=%d", a.Projectile, remaining),
		}
	}
	return nil
}

func assertProjectile(r *Result, a Assertion) error {
	p, ok := r.Projectiles[a.Projectile]
	if !ok {
		return fmt.Errorf("unknown projectile %q", a.Projectile)
	}
	if a.Speed != nil && math.Abs(p.Speed()-*a.Speed) > speedTolerance {
		return &AssertionError{
			Type:     AssertProjectile,
			Expected: fmt.Sprintf("%s speed %g", a.Projectile, *a.Speed),
			Actual:   fmt.Sprintf("%s speed %g", a.Projectile, p.Speed()),
		}
	}
	if a.Deleted != nil && p.Deleted != *a.Deleted {
		return &AssertionError{
			Type:     AssertProjectile,
			Expected: fmt.Sprintf("%s deleted=%t", a.Projectile, *a.Deleted),
			Actual:   fmt.Sprintf("%s deleted=%t", a.Projectile, p.Deleted),
		}
	}
	return nil
}

func assertGeneration(r *Result, a Assertion) error {
	gen := r.Generation
	if a.Emitters != nil && len(gen.Emitters) != *a.Emitters {
		return &AssertionError{
			Type:     AssertGeneration,
			Expected: fmt.Sprintf("%d emitters", *a.Emitters),
			Actual:   fmt.Sprintf("%d emitters", len(gen.Emitters)),
		}
	}
	if a.Triggers != nil && len(gen.Triggers) != *a.Triggers {
		return &AssertionError{
			Type:     AssertGeneration,
			Expected: fmt.Sprintf("%d triggers", *a.Triggers),
			Actual:   fmt.Sprintf("%d triggers", len(gen.Triggers)),
		}
	}
	return nil
}
