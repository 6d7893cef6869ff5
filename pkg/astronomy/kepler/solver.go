// Package kepler solves Kepler's equation E - e*sin(E) = M for the eccentric
// anomaly of an elliptical orbit.
//
// Four independent root finders are provided. Each is a pure function with the
// same signature, selected through the Method enum.
package kepler

import (
	"math"

	errorsmod "cosmossdk.io/errors"
)

const (
	// DefaultTolerance is the convergence tolerance used when none is given
	DefaultTolerance = 1e-6

	// DefaultFixedPointIterations is the smallest fixed-point cap. The cap grows
	// with e so that every valid eccentricity converges.
	DefaultFixedPointIterations = 1000

	// MaxFixedPointIterations bounds the derived fixed-point cap
	MaxFixedPointIterations = 5_000_000

	// DefaultNewtonIterations caps the Newton-Raphson iteration
	DefaultNewtonIterations = 100

	// DefaultBracketIterations caps bisection and golden-section narrowing
	DefaultBracketIterations = 200

	twoPi = 2 * math.Pi

	epsilon = 0x1p-52
)

// Phi is the golden ratio
var Phi = (1 + math.Sqrt(5)) / 2

// Func is the common signature shared by every solver
type Func func(meanAnomaly, eccentricity float64, opts ...Option) (float64, error)

// Options tunes a solve
type Options struct {
	Tolerance     float64
	MaxIterations int // 0 selects the per-method default
}

// Option mutates Options
type Option func(*Options)

// WithTolerance sets the convergence tolerance
func WithTolerance(tol float64) Option {
	return func(o *Options) { o.Tolerance = tol }
}

// WithMaxIterations overrides the per-method iteration cap
func WithMaxIterations(n int) Option {
	return func(o *Options) { o.MaxIterations = n }
}

func buildOptions(defaultCap int, opts []Option) Options {
	o := Options{Tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultCap
	}
	return o
}

// Solve dispatches to the solver selected by method
func Solve(method Method, meanAnomaly, eccentricity float64, opts ...Option) (float64, error) {
	solve, err := method.Func()
	if err != nil {
		return math.NaN(), err
	}
	return solve(meanAnomaly, eccentricity, opts...)
}

// Residual returns E - e*sin(E) - M
func Residual(E, meanAnomaly, eccentricity float64) float64 {
	return E - eccentricity*math.Sin(E) - meanAnomaly
}

// MeanAnomaly inverts Kepler's equation: M = E - e*sin(E)
func MeanAnomaly(E, eccentricity float64) float64 {
	return E - eccentricity*math.Sin(E)
}

// checkInputs validates the shared preconditions. done is true when the
// answer is known without iterating.
func checkInputs(meanAnomaly, eccentricity float64, o Options) (E float64, done bool, err error) {
	if math.IsNaN(eccentricity) || eccentricity < 0 || eccentricity >= 1 {
		return math.NaN(), true, errorsmod.Wrapf(ErrInvalidEccentricity, "e=%g", eccentricity)
	}
	if math.IsNaN(o.Tolerance) || o.Tolerance <= 0 {
		return math.NaN(), true, errorsmod.Wrapf(ErrInvalidTolerance, "tol=%g", o.Tolerance)
	}
	if math.IsNaN(meanAnomaly) || math.IsInf(meanAnomaly, 0) {
		return math.NaN(), true, errorsmod.Wrapf(ErrInvalidMeanAnomaly, "M=%g", meanAnomaly)
	}
	// Circular orbit: E = M exactly
	if eccentricity == 0 {
		return meanAnomaly, true, nil
	}
	return 0, false, nil
}

// SolveFixedPoint iterates E = e*sin(E) + M starting from E = M.
// The map is a contraction with constant e, so the error after a step of size d is
// at most e/(1-e)*d. Iteration stops once both d and that bound are within the
// tolerance; convergence is linear and slows as e grows.
func SolveFixedPoint(meanAnomaly, eccentricity float64, opts ...Option) (float64, error) {
	o := buildOptions(0, opts)
	if E, done, err := checkInputs(meanAnomaly, eccentricity, o); done {
		return E, err
	}

	step := fixedPointStep(meanAnomaly, eccentricity, o.Tolerance)
	if o.MaxIterations <= 0 {
		o.MaxIterations = fixedPointIterations(eccentricity, step)
	}

	E := meanAnomaly
	for i := 0; i < o.MaxIterations; i++ {
		next := eccentricity*math.Sin(E) + meanAnomaly
		if math.Abs(next-E) <= step {
			return next, nil
		}
		E = next
	}

	return E, errorsmod.Wrapf(ErrNonConvergence, "fixed-point: M=%g e=%g after %d iterations", meanAnomaly, eccentricity, o.MaxIterations)
}

// fixedPointStep is the largest step that still bounds the error by tol. It is
// kept above the rounding noise of E so the iteration cannot cycle between
// neighbouring floats.
func fixedPointStep(meanAnomaly, eccentricity, tol float64) float64 {
	step := tol
	if eccentricity > 0.5 {
		step = tol * (1 - eccentricity) / eccentricity
	}
	noise := 4 * epsilon * (1 + math.Abs(meanAnomaly))
	return math.Max(step, noise)
}

// fixedPointIterations returns a cap that the contraction is guaranteed to
// meet: the first step is at most e and each step shrinks by a factor e.
func fixedPointIterations(eccentricity, step float64) int {
	n := math.Ceil(math.Log(step/eccentricity)/math.Log(eccentricity)) + 10
	switch {
	case math.IsNaN(n) || n < DefaultFixedPointIterations:
		return DefaultFixedPointIterations
	case n > MaxFixedPointIterations:
		return MaxFixedPointIterations
	}
	return int(n)
}

// SolveNewton applies Newton-Raphson starting from E = M.
// The derivative 1 - e*cos(E) is bounded below by 1 - e > 0. Since the root
// satisfies |E - M| = e*|sin(E)| <= e, iterates are kept inside [M-e, M+e];
// near e = 1 and small M the raw first step would otherwise jump past π.
func SolveNewton(meanAnomaly, eccentricity float64, opts ...Option) (float64, error) {
	o := buildOptions(DefaultNewtonIterations, opts)
	if E, done, err := checkInputs(meanAnomaly, eccentricity, o); done {
		return E, err
	}

	lo, hi := meanAnomaly-eccentricity, meanAnomaly+eccentricity
	E := meanAnomaly
	for i := 0; i < o.MaxIterations; i++ {
		next := E + (meanAnomaly-(E-eccentricity*math.Sin(E)))/(1-eccentricity*math.Cos(E))
		next = math.Min(math.Max(next, lo), hi)
		if math.Abs(next-E) < o.Tolerance {
			return next, nil
		}
		E = next
	}

	return E, errorsmod.Wrapf(ErrNonConvergence, "newton: M=%g e=%g after %d iterations", meanAnomaly, eccentricity, o.MaxIterations)
}

// SolveBisection halves the bracket [0, 2π] until it is narrower than the tolerance
func SolveBisection(meanAnomaly, eccentricity float64, opts ...Option) (float64, error) {
	return solveBracket("bisection", meanAnomaly, eccentricity, func(a, b float64) float64 {
		return (a + b) / 2
	}, opts)
}

// SolveGoldenSection narrows [0, 2π] like bisection but probes the point a + (b-a)/φ.
// Only that single interior point is evaluated, so this is a biased bisection on
// the sign of f rather than a golden-section minimisation.
func SolveGoldenSection(meanAnomaly, eccentricity float64, opts ...Option) (float64, error) {
	return solveBracket("golden-section", meanAnomaly, eccentricity, func(a, b float64) float64 {
		return a + (b-a)/Phi
	}, opts)
}

func solveBracket(name string, meanAnomaly, eccentricity float64, probe func(a, b float64) float64, opts []Option) (float64, error) {
	o := buildOptions(DefaultBracketIterations, opts)
	if E, done, err := checkInputs(meanAnomaly, eccentricity, o); done {
		return E, err
	}

	f := func(E float64) float64 {
		return Residual(E, meanAnomaly, eccentricity)
	}

	a, b := 0.0, twoPi
	fa, fb := f(a), f(b)
	switch {
	case fa == 0:
		return a, nil
	case fb == 0:
		return b, nil
	case fa*fb > 0:
		return math.NaN(), errorsmod.Wrapf(ErrDegenerateBracket, "%s: M=%g e=%g f(0)=%g f(2π)=%g", name, meanAnomaly, eccentricity, fa, fb)
	}

	for i := 0; b-a > o.Tolerance; i++ {
		if i >= o.MaxIterations {
			return (a + b) / 2, errorsmod.Wrapf(ErrNonConvergence, "%s: M=%g e=%g bracket width %g after %d iterations", name, meanAnomaly, eccentricity, b-a, o.MaxIterations)
		}
		c := probe(a, b)
		fc := f(c)
		if fc == 0 {
			return c, nil
		}
		if fa*fc < 0 {
			b = c
		} else {
			a, fa = c, fc
		}
	}

	return (a + b) / 2, nil
}
