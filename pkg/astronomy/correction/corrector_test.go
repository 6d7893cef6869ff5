package correction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixBoundariesReplacesNearZeroEnds(t *testing.T) {
	series := []float64{1e-9, 0.5, 1.0, 1.5, 0}
	fixed := FixBoundaries(series, DefaultThreshold)

	assert.Equal(t, []float64{0.5, 0.5, 1.0, 1.5, 1.5}, fixed)
	// the input is never modified
	assert.Equal(t, []float64{1e-9, 0.5, 1.0, 1.5, 0}, series)
}

func TestFixBoundariesLeavesRegularSeries(t *testing.T) {
	series := []float64{0.1, 0.2, 0.3}
	assert.Equal(t, series, FixBoundaries(series, DefaultThreshold))
}

func TestFixBoundariesShortSeries(t *testing.T) {
	assert.Equal(t, []float64{0}, FixBoundaries([]float64{0}, DefaultThreshold))
	assert.Empty(t, FixBoundaries(nil, DefaultThreshold))
}

func TestBundleCorrectedDoesNotTouchSource(t *testing.T) {
	source := Bundle{
		Time:                []float64{0, 1, 2},
		MeanAnomaly:         []float64{0, 3, 6},
		EccentricAnomaly:    []float64{0, 3.1, 6.2},
		TrueAnomaly:         []float64{0, 3.2, 6.25},
		Radius:              []float64{10, 12, 10},
		RadialVelocity:      []float64{0, -0.1, 0},
		TransversalVelocity: []float64{1, 0.9, 1},
		Speed:               []float64{1, 0.91, 1},
	}

	fixed := source.Corrected(DefaultThreshold)

	assert.Equal(t, []float64{3, 3, 6}, fixed.MeanAnomaly)
	assert.Equal(t, []float64{3.1, 3.1, 6.2}, fixed.EccentricAnomaly)
	assert.Equal(t, []float64{3.2, 3.2, 6.25}, fixed.TrueAnomaly)
	assert.Equal(t, source.RadialVelocity, fixed.RadialVelocity)
	assert.Equal(t, 3, fixed.Len())

	assert.Equal(t, 0.0, source.MeanAnomaly[0])
	assert.Equal(t, 0.0, source.EccentricAnomaly[0])

	fixed.Radius[0] = 99
	assert.Equal(t, 10.0, source.Radius[0])
}
