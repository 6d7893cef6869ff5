// Package sampler evolves an elliptical orbit over one revolution on a uniform
// time grid, solving Kepler's equation per sample with one or more methods.
package sampler

import (
	"context"
	"math"
	"runtime"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/oxygene76/keplerorbit/pkg/astronomy/kepler"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/orbital"
)

// Codespace is the error codespace for sampler configuration errors
const Codespace = "sampler"

// DefaultSamples is the grid size used by the reference runs
const DefaultSamples = 1000

// ErrInvalidSampleCount is returned when fewer than two samples are requested
var ErrInvalidSampleCount = errorsmod.Register(Codespace, 2, "sample count must be at least 2")

// Sampler runs the solver suite over a time grid for one orbit
type Sampler struct {
	elements  orbital.Elements
	samples   int
	workers   int
	solveOpts []kepler.Option
	logger    zerolog.Logger
}

// Option configures a Sampler
type Option func(*Sampler)

// WithWorkers bounds the number of goroutines solving samples concurrently
func WithWorkers(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithSolverOptions forwards options to every Kepler solve
func WithSolverOptions(opts ...kepler.Option) Option {
	return func(s *Sampler) { s.solveOpts = append(s.solveOpts, opts...) }
}

// WithLogger sets the logger used for per-method progress
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Sampler) { s.logger = logger }
}

// New validates the orbit and returns a sampler for n samples
func New(elements orbital.Elements, n int, opts ...Option) (*Sampler, error) {
	if err := elements.Validate(); err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, errorsmod.Wrapf(ErrInvalidSampleCount, "got %d", n)
	}

	s := &Sampler{
		elements: elements,
		samples:  n,
		workers:  runtime.GOMAXPROCS(0),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Elements returns the orbit being sampled
func (s *Sampler) Elements() orbital.Elements {
	return s.elements
}

// TimeGrid returns n evenly spaced instants from 0 to period inclusive.
// At least two samples are required to include both ends.
func TimeGrid(period float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, errorsmod.Wrapf(ErrInvalidSampleCount, "got %d", n)
	}
	t := floats.Span(make([]float64, n), 0, period)
	t[n-1] = period
	return t, nil
}

// MeanAnomalies returns M = 2π·t/T for every instant
func MeanAnomalies(elements orbital.Elements, t []float64) []float64 {
	M := make([]float64, len(t))
	for i, ti := range t {
		M[i] = elements.MeanAnomalyAt(ti)
	}
	return M
}

// Run solves the full grid with each requested method. No methods means all of them.
// A failing sample is recorded on its trajectory and the remaining samples continue;
// only an unknown method or a cancelled context fails the run.
func (s *Sampler) Run(ctx context.Context, methods ...kepler.Method) (*Result, error) {
	if len(methods) == 0 {
		methods = kepler.Methods()
	}
	for _, m := range methods {
		if !m.Valid() {
			return nil, errorsmod.Wrapf(kepler.ErrUnknownMethod, "method %d", int(m))
		}
	}

	t, err := TimeGrid(s.elements.Period, s.samples)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Elements:    s.elements,
		Time:        t,
		MeanAnomaly: MeanAnomalies(s.elements, t),
	}

	for _, m := range methods {
		start := time.Now()
		trajectory, err := s.solve(ctx, m, result.MeanAnomaly)
		if err != nil {
			return nil, err
		}
		s.logger.Debug().
			Str("method", m.String()).
			Int("samples", s.samples).
			Int("failures", len(trajectory.Errors)).
			Dur("duration", time.Since(start)).
			Msg("solved grid")
		result.Trajectories = append(result.Trajectories, trajectory)
	}

	return result, nil
}

func (s *Sampler) solve(ctx context.Context, method kepler.Method, M []float64) (*Trajectory, error) {
	n := len(M)
	tr := newTrajectory(method, n)
	sampleErrs := make([]error, n)

	workers := s.workers
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				sampleErrs[i] = s.solveSample(tr, i, M[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, err := range sampleErrs {
		if err != nil {
			tr.Errors = append(tr.Errors, SampleError{Method: method, Index: i, MeanAnomaly: M[i], Err: err})
		}
	}
	return tr, nil
}

// solveSample writes only index i of the trajectory
func (s *Sampler) solveSample(tr *Trajectory, i int, M float64) error {
	E, err := kepler.Solve(tr.Method, M, s.elements.Eccentricity, s.solveOpts...)
	if err != nil {
		tr.setNaN(i)
		return err
	}
	state := s.elements.StateAt(E)
	tr.EccentricAnomaly[i] = state.EccentricAnomaly
	tr.TrueAnomaly[i] = state.TrueAnomaly
	tr.Radius[i] = state.Radius
	tr.RadialVelocity[i] = state.RadialVelocity
	tr.TransversalVelocity[i] = state.TransversalVel
	tr.Speed[i] = state.Speed
	return nil
}

func (tr *Trajectory) setNaN(i int) {
	nan := math.NaN()
	tr.EccentricAnomaly[i] = nan
	tr.TrueAnomaly[i] = nan
	tr.Radius[i] = nan
	tr.RadialVelocity[i] = nan
	tr.TransversalVelocity[i] = nan
	tr.Speed[i] = nan
}
