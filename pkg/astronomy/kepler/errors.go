package kepler

import (
	errorsmod "cosmossdk.io/errors"
)

// Codespace is the error codespace used by the Kepler solvers
const Codespace = "kepler"

var (
	// ErrInvalidEccentricity is returned when e is outside [0, 1)
	ErrInvalidEccentricity = errorsmod.Register(Codespace, 2, "eccentricity must be in [0, 1)")

	// ErrNonConvergence is returned when a solver exhausts its iteration cap
	ErrNonConvergence = errorsmod.Register(Codespace, 3, "solver did not converge")

	// ErrDegenerateBracket is returned when [0, 2π] does not bracket a root
	ErrDegenerateBracket = errorsmod.Register(Codespace, 4, "initial bracket does not contain a root")

	// ErrInvalidTolerance is returned for tolerance <= 0 or NaN
	ErrInvalidTolerance = errorsmod.Register(Codespace, 5, "tolerance must be positive")

	// ErrInvalidMeanAnomaly is returned for NaN or infinite mean anomaly
	ErrInvalidMeanAnomaly = errorsmod.Register(Codespace, 6, "mean anomaly must be finite")

	// ErrUnknownMethod is returned for an unrecognised solver method
	ErrUnknownMethod = errorsmod.Register(Codespace, 7, "unknown solver method")
)
