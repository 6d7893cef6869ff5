package analysis

import (
	"math"

	"github.com/oxygene76/keplerorbit/internal/types"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/kepler"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/orbital"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/sampler"
)

// PhysicsTolerance bounds the relative drift of conserved quantities
const PhysicsTolerance = 1e-9

// Validate checks a run against the properties every solver must satisfy:
// residual within tol, agreement with the first method within 10·tol, a
// non-decreasing E(M), exact cycle boundaries, agreement of the two true-anomaly
// forms, and conservation of energy and angular momentum along the first
// method's trajectory.
func Validate(result *sampler.Result, tol float64) *types.ValidationReport {
	report := &types.ValidationReport{}
	if len(result.Trajectories) == 0 {
		return report
	}

	e := result.Elements.Eccentricity
	reference := result.Trajectories[0]
	n := len(result.MeanAnomaly)

	for _, tr := range result.Trajectories {
		method := tr.Method.String()

		report.Add(check("failures", method, float64(len(tr.Errors)), 0))

		var residual, deviation, decrease float64
		for i, E := range tr.EccentricAnomaly {
			if !isFinite(E) {
				continue
			}
			residual = math.Max(residual, math.Abs(kepler.Residual(E, result.MeanAnomaly[i], e)))
			if ref := reference.EccentricAnomaly[i]; isFinite(ref) {
				deviation = math.Max(deviation, math.Abs(E-ref))
			}
			if i > 0 && isFinite(tr.EccentricAnomaly[i-1]) {
				decrease = math.Max(decrease, tr.EccentricAnomaly[i-1]-E)
			}
		}
		report.Add(check("max_residual", method, residual, tol))
		if tr != reference {
			report.Add(check("agreement", method, deviation, 10*tol))
		}
		report.Add(check("monotonic", method, decrease, tol))

		report.Add(check("boundary_start", method, math.Abs(tr.EccentricAnomaly[0]-result.MeanAnomaly[0]), tol))
		report.Add(check("boundary_end", method, math.Abs(tr.EccentricAnomaly[n-1]-result.MeanAnomaly[n-1]), tol))
	}

	elements := result.Elements
	energy, h := elements.SpecificEnergy(), elements.AngularMomentum()
	var energyDrift, momentumDrift float64
	for i, nu := range reference.TrueAnomaly {
		if !isFinite(nu) {
			continue
		}
		v, r := reference.Speed[i], reference.Radius[i]
		energyDrift = math.Max(energyDrift, math.Abs((v*v/2-elements.Mu/r-energy)/energy))

		pos := elements.PerifocalPosition(nu)
		vel := elements.PerifocalVelocity(nu)
		momentumDrift = math.Max(momentumDrift, math.Abs(pos.Cross(vel).Magnitude()-h)/h)
	}
	report.Add(check("energy_conservation", reference.Method.String(), energyDrift, PhysicsTolerance))
	report.Add(check("true_anomaly_forms", reference.Method.String(), trueAnomalyDeviation(elements.Eccentricity, reference), PhysicsTolerance))
	report.Add(check("angular_momentum", reference.Method.String(), momentumDrift, PhysicsTolerance))

	first, last := reference.TrueAnomaly[0], reference.TrueAnomaly[n-1]
	if isFinite(first) && isFinite(last) {
		gap := elements.PerifocalPosition(first).Distance(elements.PerifocalPosition(last)) / elements.SemiMajorAxis
		report.Add(check("orbit_closure", reference.Method.String(), gap, 10*tol))
	}

	return report
}

// trueAnomalyDeviation compares the atan2 true anomaly of every sample with the
// tangent half-angle form, modulo 2π
func trueAnomalyDeviation(e float64, tr *sampler.Trajectory) float64 {
	var deviation float64
	for i, E := range tr.EccentricAnomaly {
		if !isFinite(E) || !isFinite(tr.TrueAnomaly[i]) {
			continue
		}
		diff := math.Remainder(tr.TrueAnomaly[i]-orbital.TrueAnomalyHalfAngle(E, e), 2*math.Pi)
		deviation = math.Max(deviation, math.Abs(diff))
	}
	return deviation
}

func check(name, method string, value, limit float64) types.ValidationCheck {
	return types.ValidationCheck{
		Name:   name,
		Method: method,
		Value:  value,
		Limit:  limit,
		Passed: value <= limit,
	}
}
