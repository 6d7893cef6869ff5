package kepler

import (
	"strings"

	errorsmod "cosmossdk.io/errors"
)

// Method identifies one of the Kepler equation solvers
type Method int

const (
	FixedPoint Method = iota
	Newton
	Bisection
	GoldenSection
)

// Methods returns every solver in a stable order
func Methods() []Method {
	return []Method{Newton, GoldenSection, Bisection, FixedPoint}
}

// String returns the CLI name of the method
func (m Method) String() string {
	switch m {
	case FixedPoint:
		return "fixed-point"
	case Newton:
		return "newton"
	case Bisection:
		return "bisection"
	case GoldenSection:
		return "golden-section"
	default:
		return "unknown"
	}
}

// Title returns a human readable label used in reports and plots
func (m Method) Title() string {
	switch m {
	case FixedPoint:
		return "Fixed-point iteration"
	case Newton:
		return "Newton-Raphson"
	case Bisection:
		return "Bisection"
	case GoldenSection:
		return "Golden section"
	default:
		return "Unknown"
	}
}

// Valid reports whether m is one of the defined methods
func (m Method) Valid() bool {
	return m >= FixedPoint && m <= GoldenSection
}

// Func returns the solver function for the method
func (m Method) Func() (Func, error) {
	switch m {
	case FixedPoint:
		return SolveFixedPoint, nil
	case Newton:
		return SolveNewton, nil
	case Bisection:
		return SolveBisection, nil
	case GoldenSection:
		return SolveGoldenSection, nil
	default:
		return nil, errorsmod.Wrapf(ErrUnknownMethod, "method %d", int(m))
	}
}

// ParseMethod maps a CLI name to a Method
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fixed-point", "fixedpoint", "iterations", "iteration":
		return FixedPoint, nil
	case "newton", "newton-raphson":
		return Newton, nil
	case "bisection":
		return Bisection, nil
	case "golden-section", "golden", "goldensection":
		return GoldenSection, nil
	default:
		return 0, errorsmod.Wrapf(ErrUnknownMethod, "%q (use: fixed-point, newton, bisection, golden-section)", name)
	}
}

// ParseMethods parses a list of names, ignoring duplicates. An empty list yields all methods.
func ParseMethods(names []string) ([]Method, error) {
	if len(names) == 0 {
		return Methods(), nil
	}

	seen := make(map[Method]bool, len(names))
	methods := make([]Method, 0, len(names))
	for _, name := range names {
		m, err := ParseMethod(name)
		if err != nil {
			return nil, err
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		methods = append(methods, m)
	}
	return methods, nil
}
