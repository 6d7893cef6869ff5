package orbital

import (
	"math"

	errorsmod "cosmossdk.io/errors"

	astromath "github.com/oxygene76/keplerorbit/pkg/astronomy/math"
)

// Codespace is the error codespace for orbit configuration errors
const Codespace = "orbital"

// ErrInvalidElements is returned by Validate for an orbit that is not a proper ellipse
var ErrInvalidElements = errorsmod.Register(Codespace, 2, "invalid orbital elements")

// Elements is the immutable two-body orbit configuration
type Elements struct {
	Eccentricity  float64 // e - Eccentricity [0, 1)
	Period        float64 // T - Orbital period (s)
	SemiMajorAxis float64 // a - Semi-major axis (km)
	Mu            float64 // μ - Gravitational parameter of the central body (km³/s²)
}

// State is the position and velocity of the orbiting body at one instant
type State struct {
	EccentricAnomaly float64 // E (rad)
	TrueAnomaly      float64 // ν (rad)
	Radius           float64 // r (km)
	RadialVelocity   float64 // Vr (km/s)
	TransversalVel   float64 // Vn (km/s)
	Speed            float64 // V (km/s)
}

// Validate checks that the elements describe a bound elliptical orbit
func (oe Elements) Validate() error {
	switch {
	case math.IsNaN(oe.Eccentricity) || oe.Eccentricity < 0 || oe.Eccentricity >= 1:
		return errorsmod.Wrapf(ErrInvalidElements, "eccentricity %g outside [0, 1)", oe.Eccentricity)
	case !(oe.Period > 0) || math.IsInf(oe.Period, 0):
		return errorsmod.Wrapf(ErrInvalidElements, "period %g must be positive", oe.Period)
	case !(oe.SemiMajorAxis > 0) || math.IsInf(oe.SemiMajorAxis, 0):
		return errorsmod.Wrapf(ErrInvalidElements, "semi-major axis %g must be positive", oe.SemiMajorAxis)
	case !(oe.Mu > 0) || math.IsInf(oe.Mu, 0):
		return errorsmod.Wrapf(ErrInvalidElements, "gravitational parameter %g must be positive", oe.Mu)
	}
	return nil
}

// SemiLatusRectum returns p = a(1 - e²)
func (oe Elements) SemiLatusRectum() float64 {
	return oe.SemiMajorAxis * (1 - oe.Eccentricity*oe.Eccentricity)
}

// GetPerigee returns the periapsis distance
func (oe Elements) GetPerigee() float64 {
	return oe.SemiMajorAxis * (1 - oe.Eccentricity)
}

// GetApogee returns the apoapsis distance
func (oe Elements) GetApogee() float64 {
	return oe.SemiMajorAxis * (1 + oe.Eccentricity)
}

// MeanMotion returns 2π/T in rad/s
func (oe Elements) MeanMotion() float64 {
	return 2 * math.Pi / oe.Period
}

// MeanAnomalyAt returns M = 2π·t/T
func (oe Elements) MeanAnomalyAt(t float64) float64 {
	return t / oe.Period * 2 * math.Pi
}

// StateAt derives the full state from an eccentric anomaly
func (oe Elements) StateAt(E float64) State {
	nu := TrueAnomaly(E, oe.Eccentricity)
	vr := RadialVelocity(nu, oe.SemiMajorAxis, oe.Eccentricity, oe.Mu)
	vn := TransversalVelocity(nu, oe.SemiMajorAxis, oe.Eccentricity, oe.Mu)
	return State{
		EccentricAnomaly: E,
		TrueAnomaly:      nu,
		Radius:           RadiusVector(nu, oe.SemiMajorAxis, oe.Eccentricity),
		RadialVelocity:   vr,
		TransversalVel:   vn,
		Speed:            Speed(vr, vn),
	}
}

// PerifocalPosition returns the position in the orbital plane with X towards periapsis
func (oe Elements) PerifocalPosition(nu float64) astromath.Vector3 {
	r := RadiusVector(nu, oe.SemiMajorAxis, oe.Eccentricity)
	return astromath.Vector3{X: r * math.Cos(nu), Y: r * math.Sin(nu)}
}

// PerifocalVelocity returns the velocity in the orbital plane
func (oe Elements) PerifocalVelocity(nu float64) astromath.Vector3 {
	factor := math.Sqrt(oe.Mu / oe.SemiLatusRectum())
	return astromath.Vector3{
		X: -factor * math.Sin(nu),
		Y: factor * (oe.Eccentricity + math.Cos(nu)),
	}
}

// AngularMomentum returns the specific angular momentum h = sqrt(μp)
func (oe Elements) AngularMomentum() float64 {
	return math.Sqrt(oe.Mu * oe.SemiLatusRectum())
}

// SpecificEnergy returns the vis-viva energy -μ/(2a)
func (oe Elements) SpecificEnergy() float64 {
	return -oe.Mu / (2 * oe.SemiMajorAxis)
}

// PeriodFromMu returns the Keplerian period 2π·sqrt(a³/μ)
func PeriodFromMu(semiMajorAxis, mu float64) float64 {
	return 2 * math.Pi * math.Sqrt(math.Pow(semiMajorAxis, 3)/mu)
}
