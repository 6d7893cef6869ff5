package orbital

import (
	"math"
)

// TrueAnomaly converts an eccentric anomaly to the true anomaly.
// The two-argument arctangent keeps the quadrant over the whole revolution.
func TrueAnomaly(E, e float64) float64 {
	return 2 * math.Atan2(
		math.Sqrt(1+e)*math.Sin(E/2),
		math.Sqrt(1-e)*math.Cos(E/2),
	)
}

// TrueAnomalyHalfAngle is the tangent half-angle form 2·atan(β·tan(E/2)).
// The result lies in (-π, π]; at E = π (mod 2π) tan(E/2) diverges and π is returned.
func TrueAnomalyHalfAngle(E, e float64) float64 {
	half := math.Remainder(E/2, math.Pi)
	if math.Abs(half) == math.Pi/2 {
		return math.Pi
	}
	beta := math.Sqrt((1 + e) / (1 - e))
	return 2 * math.Atan(beta*math.Tan(half))
}

// RadiusVector returns r = p / (1 + e·cos ν)
func RadiusVector(nu, a, e float64) float64 {
	p := a * (1 - e*e)
	return p / (1 + e*math.Cos(nu))
}

// RadialVelocity returns Vr = sqrt(μ/p)·e·sin ν
func RadialVelocity(nu, a, e, mu float64) float64 {
	p := a * (1 - e*e)
	return math.Sqrt(mu/p) * e * math.Sin(nu)
}

// TransversalVelocity returns Vn = sqrt(μ/p)·(1 + e·cos ν)
func TransversalVelocity(nu, a, e, mu float64) float64 {
	p := a * (1 - e*e)
	return math.Sqrt(mu/p) * (1 + e*math.Cos(nu))
}

// Speed returns the magnitude of the velocity from its radial and transversal components
func Speed(vr, vn float64) float64 {
	return math.Hypot(vr, vn)
}
