package sampler

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/keplerorbit/pkg/astronomy/correction"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/kepler"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/orbital"
)

var moon = orbital.Elements{
	Eccentricity:  0.0549,
	Period:        27.321661 * 24 * 3600,
	SemiMajorAxis: 384748,
	Mu:            4902.800066,
}

func TestTimeGrid(t *testing.T) {
	grid, err := TimeGrid(moon.Period, DefaultSamples)
	require.NoError(t, err)

	require.Len(t, grid, DefaultSamples)
	assert.Equal(t, 0.0, grid[0])
	assert.Equal(t, moon.Period, grid[len(grid)-1])
	for i := 1; i < len(grid); i++ {
		assert.Greater(t, grid[i], grid[i-1])
	}

	M := MeanAnomalies(moon, grid)
	assert.Equal(t, 0.0, M[0])
	assert.Equal(t, 2*math.Pi, M[len(M)-1])
}

func TestTimeGridRejectsShortGrid(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		grid, err := TimeGrid(moon.Period, n)
		assert.ErrorIs(t, err, ErrInvalidSampleCount, "n=%d", n)
		assert.Nil(t, grid)
	}

	grid, err := TimeGrid(moon.Period, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, moon.Period}, grid)
}

func TestRunAllMethods(t *testing.T) {
	s, err := New(moon, DefaultSamples, WithWorkers(4))
	require.NoError(t, err)

	result, err := s.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, result.Err())
	require.Len(t, result.Trajectories, len(kepler.Methods()))

	newton, ok := result.Trajectory(kepler.Newton)
	require.True(t, ok)

	for _, tr := range result.Trajectories {
		require.Len(t, tr.EccentricAnomaly, DefaultSamples)
		for i, E := range tr.EccentricAnomaly {
			M := result.MeanAnomaly[i]
			assert.LessOrEqual(t, math.Abs(kepler.Residual(E, M, moon.Eccentricity)), kepler.DefaultTolerance,
				"%s sample %d", tr.Method, i)
			assert.InDelta(t, newton.EccentricAnomaly[i], E, 10*kepler.DefaultTolerance, "%s sample %d", tr.Method, i)
			assert.Greater(t, tr.Radius[i], 0.0)
			assert.Greater(t, tr.Speed[i], 0.0)
		}
	}

	final := result.FinalE()
	require.Len(t, final, 4)
	for _, mv := range final {
		assert.InDelta(t, 2*math.Pi, mv.Value, kepler.DefaultTolerance, mv.Method.String())
	}
}

func TestRunSubsetPreservesOrder(t *testing.T) {
	s, err := New(moon, 50)
	require.NoError(t, err)

	result, err := s.Run(context.Background(), kepler.Bisection, kepler.FixedPoint)
	require.NoError(t, err)

	final := result.FinalE()
	require.Len(t, final, 2)
	assert.Equal(t, kepler.Bisection, final[0].Method)
	assert.Equal(t, kepler.FixedPoint, final[1].Method)

	_, ok := result.Trajectory(kepler.Newton)
	assert.False(t, ok)
	_, err = result.Bundle(kepler.Newton)
	assert.ErrorIs(t, err, kepler.ErrUnknownMethod)
}

func TestRunRecordsSampleFailures(t *testing.T) {
	s, err := New(moon, 10, WithSolverOptions(kepler.WithMaxIterations(1)))
	require.NoError(t, err)

	result, err := s.Run(context.Background(), kepler.Newton)
	require.NoError(t, err)

	tr, ok := result.Trajectory(kepler.Newton)
	require.True(t, ok)

	// only the grid ends converge in a single Newton step
	assert.Len(t, tr.Errors, 8)
	assert.Equal(t, 0.0, tr.EccentricAnomaly[0])
	assert.True(t, math.IsNaN(tr.EccentricAnomaly[5]))
	assert.True(t, math.IsNaN(tr.Speed[5]))
	assert.Equal(t, 5, tr.Errors[4].Index)

	err = result.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, kepler.ErrNonConvergence))
}

func TestRunHonoursCancellation(t *testing.T) {
	s, err := New(moon, DefaultSamples)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsUnknownMethod(t *testing.T) {
	s, err := New(moon, 10)
	require.NoError(t, err)

	_, err = s.Run(context.Background(), kepler.Method(9))
	assert.ErrorIs(t, err, kepler.ErrUnknownMethod)
}

func TestNewValidates(t *testing.T) {
	_, err := New(moon, 1)
	assert.ErrorIs(t, err, ErrInvalidSampleCount)

	hyperbolic := moon
	hyperbolic.Eccentricity = 1.2
	_, err = New(hyperbolic, 10)
	assert.ErrorIs(t, err, orbital.ErrInvalidElements)
}

func TestBundleIsIndependentCopy(t *testing.T) {
	s, err := New(moon, 100)
	require.NoError(t, err)

	result, err := s.Run(context.Background(), kepler.Newton)
	require.NoError(t, err)

	bundle, err := result.Bundle(kepler.Newton)
	require.NoError(t, err)
	fixed := bundle.Corrected(correction.DefaultThreshold)

	// M[0] = 0 collapses at the cycle start and takes the second sample's value
	assert.Equal(t, result.MeanAnomaly[1], fixed.MeanAnomaly[0])
	assert.Equal(t, 0.0, result.MeanAnomaly[0])
	assert.Equal(t, 0.0, bundle.MeanAnomaly[0])

	tr, _ := result.Trajectory(kepler.Newton)
	assert.Equal(t, tr.EccentricAnomaly[1], fixed.EccentricAnomaly[0])
	assert.Equal(t, 0.0, tr.EccentricAnomaly[0])
	assert.Equal(t, 100, fixed.Len())
}

func TestCircularOrbitTrajectory(t *testing.T) {
	circular := moon
	circular.Eccentricity = 0

	s, err := New(circular, 64)
	require.NoError(t, err)

	result, err := s.Run(context.Background())
	require.NoError(t, err)

	for _, tr := range result.Trajectories {
		assert.Equal(t, result.MeanAnomaly, tr.EccentricAnomaly, tr.Method.String())
		for i := range tr.Radius {
			assert.InDelta(t, circular.SemiMajorAxis, tr.Radius[i], 1e-6)
			assert.InDelta(t, 0, tr.RadialVelocity[i], 1e-15)
		}
	}
}
