package types

import (
	"time"
)

// OrbitReport summarises one orbit evolution run
type OrbitReport struct {
	ID           string          `json:"id"`
	Orbit        OrbitParameters `json:"orbit"`
	Samples      int             `json:"samples"`
	Tolerance    float64         `json:"tolerance"`
	OutputMethod string          `json:"output_method"`
	Methods      []MethodSummary `json:"methods"`
	Series       []SeriesStats   `json:"series"`
	Errors       []string        `json:"errors,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
	Duration     time.Duration   `json:"duration"`
}

// OrbitParameters echoes the physical inputs of the run
type OrbitParameters struct {
	Name          string  `json:"name"`
	Eccentricity  float64 `json:"eccentricity"`
	Period        float64 `json:"period"`          // seconds
	SemiMajorAxis float64 `json:"semi_major_axis"` // km
	Mu            float64 `json:"mu"`              // km³/s²
	MeanMotion    float64 `json:"mean_motion"`     // rad/s
	Perigee       float64 `json:"perigee"`         // km
	Apogee        float64 `json:"apogee"`          // km
}

// MethodSummary describes the outcome of one Kepler solver over the grid
type MethodSummary struct {
	Method      string   `json:"method"`
	Title       string   `json:"title"`
	FinalE      *float64 `json:"final_e,omitempty"` // nil when the last sample failed
	MaxResidual float64  `json:"max_residual"`
	Failures    int      `json:"failures"`
}

// SeriesStats holds descriptive statistics of one output series
type SeriesStats struct {
	Name   string  `json:"name"`
	Unit   string  `json:"unit"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ValidationReport collects numerical property checks over a run
type ValidationReport struct {
	Checks []ValidationCheck `json:"checks"`
	Passed bool              `json:"passed"`
}

// ValidationCheck is a single measured property against its limit
type ValidationCheck struct {
	Name   string  `json:"name"`
	Method string  `json:"method,omitempty"`
	Value  float64 `json:"value"`
	Limit  float64 `json:"limit"`
	Passed bool    `json:"passed"`
}

// Add appends a check and updates the overall verdict
func (r *ValidationReport) Add(check ValidationCheck) {
	if len(r.Checks) == 0 {
		r.Passed = true
	}
	r.Checks = append(r.Checks, check)
	r.Passed = r.Passed && check.Passed
}

// Failed returns the checks that did not pass
func (r *ValidationReport) Failed() []ValidationCheck {
	var failed []ValidationCheck
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}
