// Package correction patches the first and last samples of periodic output
// series that numerically collapse to zero at the orbit cycle boundaries.
//
// The fix-up is for display only. It works on copies and never feeds back into
// the solver inputs.
package correction

// DefaultThreshold is the near-zero level below which a boundary sample is replaced
const DefaultThreshold = 1e-6

// Bundle holds co-indexed output series for one solver method
type Bundle struct {
	Time                []float64 `json:"time"`
	MeanAnomaly         []float64 `json:"mean_anomaly"`
	EccentricAnomaly    []float64 `json:"eccentric_anomaly"`
	TrueAnomaly         []float64 `json:"true_anomaly"`
	Radius              []float64 `json:"radius"`
	RadialVelocity      []float64 `json:"radial_velocity"`
	TransversalVelocity []float64 `json:"transversal_velocity"`
	Speed               []float64 `json:"speed"`
}

// Len returns the number of samples in the bundle
func (b Bundle) Len() int {
	return len(b.Time)
}

// Clone deep-copies every series
func (b Bundle) Clone() Bundle {
	return Bundle{
		Time:                clone(b.Time),
		MeanAnomaly:         clone(b.MeanAnomaly),
		EccentricAnomaly:    clone(b.EccentricAnomaly),
		TrueAnomaly:         clone(b.TrueAnomaly),
		Radius:              clone(b.Radius),
		RadialVelocity:      clone(b.RadialVelocity),
		TransversalVelocity: clone(b.TransversalVelocity),
		Speed:               clone(b.Speed),
	}
}

// Corrected returns a copy of the bundle with the angular series fixed at both ends.
// Radial velocity legitimately crosses zero and the remaining series are strictly
// positive, so they are copied unchanged.
func (b Bundle) Corrected(threshold float64) Bundle {
	out := b.Clone()
	out.MeanAnomaly = FixBoundaries(out.MeanAnomaly, threshold)
	out.EccentricAnomaly = FixBoundaries(out.EccentricAnomaly, threshold)
	out.TrueAnomaly = FixBoundaries(out.TrueAnomaly, threshold)
	return out
}

// FixBoundaries returns a copy of series where a first or last element below
// threshold is replaced by its neighbour. Series shorter than two are returned as copies.
func FixBoundaries(series []float64, threshold float64) []float64 {
	out := clone(series)
	n := len(out)
	if n < 2 {
		return out
	}
	if out[0] < threshold {
		out[0] = out[1]
	}
	if out[n-1] < threshold {
		out[n-1] = out[n-2]
	}
	return out
}

func clone(series []float64) []float64 {
	if series == nil {
		return nil
	}
	out := make([]float64, len(series))
	copy(out, series)
	return out
}
