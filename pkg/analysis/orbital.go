package analysis

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/oxygene76/keplerorbit/internal/types"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/correction"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/kepler"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/orbital"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/sampler"
	"github.com/oxygene76/keplerorbit/pkg/utils"
)

// Manager handles orbit evolution runs and their reporting
type Manager struct {
	logger zerolog.Logger
}

// NewManager creates a new analysis manager
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{logger: logger}
}

// Analysis is the outcome of AnalyzeOrbit
type Analysis struct {
	Result *sampler.Result
	Method kepler.Method
	Output correction.Bundle // corrected copy of Method's series
	Report *types.OrbitReport
}

// AnalyzeOrbit runs every configured solver over one revolution and prepares
// the corrected output series of the configured output method.
func (m *Manager) AnalyzeOrbit(ctx context.Context, config *utils.Config) (*Analysis, error) {
	start := time.Now()

	methods, err := config.Methods()
	if err != nil {
		return nil, err
	}
	outputMethod, err := config.OutputMethod()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(methods, outputMethod) {
		methods = append(methods, outputMethod)
	}

	elements := config.Elements()
	m.checkPeriod(config)

	s, err := sampler.New(elements, config.Solver.Samples,
		sampler.WithWorkers(config.Resources.MaxCPUCores),
		sampler.WithSolverOptions(config.SolverOptions()...),
		sampler.WithLogger(m.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler: %w", err)
	}

	m.logger.Info().
		Str("orbit", config.Orbit.Name).
		Int("samples", config.Solver.Samples).
		Int("methods", len(methods)).
		Msg("starting orbit evolution")

	result, err := s.Run(ctx, methods...)
	if err != nil {
		return nil, fmt.Errorf("orbit evolution failed: %w", err)
	}

	bundle, err := result.Bundle(outputMethod)
	if err != nil {
		return nil, err
	}
	output := bundle.Corrected(config.Solver.CorrectionThreshold)

	report := m.buildReport(config, result, outputMethod, output)
	report.Duration = time.Since(start)

	for _, tr := range result.Trajectories {
		if len(tr.Errors) > 0 {
			m.logger.Warn().Str("method", tr.Method.String()).Int("failures", len(tr.Errors)).Msg("samples failed to solve")
		}
	}
	m.logger.Info().Dur("duration", report.Duration).Msg("orbit evolution completed")

	return &Analysis{
		Result: result,
		Method: outputMethod,
		Output: output,
		Report: report,
	}, nil
}

// checkPeriod warns when T disagrees with Kepler's third law for the configured
// a and μ. The built-in lunar orbit is exempt: it pairs the Earth-Moon a and T
// with the Moon's own μ. It reports whether a warning was logged.
func (m *Manager) checkPeriod(config *utils.Config) bool {
	if config.Orbit == utils.DefaultConfig().Orbit {
		return false
	}
	elements := config.Elements()
	keplerian := orbital.PeriodFromMu(elements.SemiMajorAxis, elements.Mu)
	if math.Abs(keplerian-elements.Period)/elements.Period <= 0.05 {
		return false
	}
	m.logger.Warn().
		Float64("period", elements.Period).
		Float64("keplerian_period", keplerian).
		Msg("period differs from 2π·sqrt(a³/μ) by more than 5%")
	return true
}

func (m *Manager) buildReport(config *utils.Config, result *sampler.Result, method kepler.Method, output correction.Bundle) *types.OrbitReport {
	elements := result.Elements
	report := &types.OrbitReport{
		ID: fmt.Sprintf("orbit_%d", time.Now().Unix()),
		Orbit: types.OrbitParameters{
			Name:          config.Orbit.Name,
			Eccentricity:  elements.Eccentricity,
			Period:        elements.Period,
			SemiMajorAxis: elements.SemiMajorAxis,
			Mu:            elements.Mu,
			MeanMotion:    elements.MeanMotion(),
			Perigee:       elements.GetPerigee(),
			Apogee:        elements.GetApogee(),
		},
		Samples:      len(result.Time),
		Tolerance:    config.Solver.Tolerance,
		OutputMethod: method.String(),
		Timestamp:    time.Now(),
	}

	for _, tr := range result.Trajectories {
		report.Methods = append(report.Methods, summarizeMethod(result, tr))
		for _, se := range tr.Errors {
			report.Errors = append(report.Errors, se.Error())
		}
	}

	report.Series = []types.SeriesStats{
		seriesStats("mean_anomaly", "rad", output.MeanAnomaly),
		seriesStats("eccentric_anomaly", "rad", output.EccentricAnomaly),
		seriesStats("true_anomaly", "rad", output.TrueAnomaly),
		seriesStats("radius", "km", output.Radius),
		seriesStats("radial_velocity", "km/s", output.RadialVelocity),
		seriesStats("transversal_velocity", "km/s", output.TransversalVelocity),
		seriesStats("speed", "km/s", output.Speed),
	}

	return report
}

func summarizeMethod(result *sampler.Result, tr *sampler.Trajectory) types.MethodSummary {
	summary := types.MethodSummary{
		Method:   tr.Method.String(),
		Title:    tr.Method.Title(),
		Failures: len(tr.Errors),
	}
	if final := tr.FinalE(); isFinite(final) {
		summary.FinalE = &final
	}

	e := result.Elements.Eccentricity
	for i, E := range tr.EccentricAnomaly {
		if !isFinite(E) {
			continue
		}
		summary.MaxResidual = math.Max(summary.MaxResidual, math.Abs(kepler.Residual(E, result.MeanAnomaly[i], e)))
	}
	return summary
}

// seriesStats computes descriptive statistics over the finite samples
func seriesStats(name, unit string, series []float64) types.SeriesStats {
	values := finite(series)
	stats := types.SeriesStats{Name: name, Unit: unit}
	if len(values) == 0 {
		return stats
	}
	stats.Mean, stats.StdDev = stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		stats.StdDev = 0
	}
	stats.Min = floats.Min(values)
	stats.Max = floats.Max(values)
	return stats
}

func finite(series []float64) []float64 {
	values := make([]float64, 0, len(series))
	for _, v := range series {
		if isFinite(v) {
			values = append(values, v)
		}
	}
	return values
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
