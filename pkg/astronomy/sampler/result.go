package sampler

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"go.uber.org/multierr"

	"github.com/oxygene76/keplerorbit/pkg/astronomy/correction"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/kepler"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/orbital"
)

// SampleError records a failed solve at one grid index
type SampleError struct {
	Method      kepler.Method
	Index       int
	MeanAnomaly float64
	Err         error
}

func (e SampleError) Error() string {
	return fmt.Sprintf("%s sample %d (M=%g): %v", e.Method, e.Index, e.MeanAnomaly, e.Err)
}

func (e SampleError) Unwrap() error {
	return e.Err
}

// Trajectory holds the per-sample solution of one method. Failed samples are NaN.
type Trajectory struct {
	Method              kepler.Method
	EccentricAnomaly    []float64
	TrueAnomaly         []float64
	Radius              []float64
	RadialVelocity      []float64
	TransversalVelocity []float64
	Speed               []float64
	Errors              []SampleError
}

func newTrajectory(method kepler.Method, n int) *Trajectory {
	return &Trajectory{
		Method:              method,
		EccentricAnomaly:    make([]float64, n),
		TrueAnomaly:         make([]float64, n),
		Radius:              make([]float64, n),
		RadialVelocity:      make([]float64, n),
		TransversalVelocity: make([]float64, n),
		Speed:               make([]float64, n),
	}
}

// Err combines every sample error, or returns nil
func (tr *Trajectory) Err() error {
	var err error
	for _, se := range tr.Errors {
		err = multierr.Append(err, se)
	}
	return err
}

// FinalE returns the eccentric anomaly at the last sample
func (tr *Trajectory) FinalE() float64 {
	return tr.EccentricAnomaly[len(tr.EccentricAnomaly)-1]
}

// MethodValue labels a scalar with the method that produced it
type MethodValue struct {
	Method kepler.Method
	Value  float64
}

// Result is the output of one sampler run
type Result struct {
	Elements     orbital.Elements
	Time         []float64
	MeanAnomaly  []float64
	Trajectories []*Trajectory
}

// Trajectory returns the solution for a method, if it was run
func (r *Result) Trajectory(method kepler.Method) (*Trajectory, bool) {
	for _, tr := range r.Trajectories {
		if tr.Method == method {
			return tr, true
		}
	}
	return nil, false
}

// FinalE returns the last-sample eccentric anomaly of every method, in run order
func (r *Result) FinalE() []MethodValue {
	values := make([]MethodValue, 0, len(r.Trajectories))
	for _, tr := range r.Trajectories {
		values = append(values, MethodValue{Method: tr.Method, Value: tr.FinalE()})
	}
	return values
}

// Err combines the sample errors of all methods
func (r *Result) Err() error {
	var err error
	for _, tr := range r.Trajectories {
		err = multierr.Append(err, tr.Err())
	}
	return err
}

// Bundle copies the co-indexed series of one method for post-processing.
// The copy can be corrected without affecting the result.
func (r *Result) Bundle(method kepler.Method) (correction.Bundle, error) {
	tr, ok := r.Trajectory(method)
	if !ok {
		return correction.Bundle{}, errorsmod.Wrapf(kepler.ErrUnknownMethod, "%s was not run", method)
	}
	return correction.Bundle{
		Time:                r.Time,
		MeanAnomaly:         r.MeanAnomaly,
		EccentricAnomaly:    tr.EccentricAnomaly,
		TrueAnomaly:         tr.TrueAnomaly,
		Radius:              tr.Radius,
		RadialVelocity:      tr.RadialVelocity,
		TransversalVelocity: tr.TransversalVelocity,
		Speed:               tr.Speed,
	}.Clone(), nil
}
