package analysis

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/keplerorbit/internal/types"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/kepler"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/sampler"
	"github.com/oxygene76/keplerorbit/pkg/utils"
)

func testConfig(t *testing.T) *utils.Config {
	t.Helper()
	config := utils.DefaultConfig()
	config.Solver.Samples = 200
	config.Output.Dir = t.TempDir()
	return config
}

func TestAnalyzeOrbit(t *testing.T) {
	config := testConfig(t)
	manager := NewManager(zerolog.Nop())

	a, err := manager.AnalyzeOrbit(context.Background(), config)
	require.NoError(t, err)

	assert.Equal(t, kepler.Newton, a.Method)
	assert.Equal(t, 200, a.Output.Len())
	require.Len(t, a.Report.Methods, 4)
	assert.Empty(t, a.Report.Errors)

	for _, summary := range a.Report.Methods {
		require.NotNil(t, summary.FinalE, summary.Method)
		assert.InDelta(t, 2*math.Pi, *summary.FinalE, kepler.DefaultTolerance, summary.Method)
		assert.LessOrEqual(t, summary.MaxResidual, kepler.DefaultTolerance, summary.Method)
		assert.Zero(t, summary.Failures)
	}

	// the output copy is corrected, the sampler result is not
	assert.Equal(t, a.Output.MeanAnomaly[1], a.Output.MeanAnomaly[0])
	assert.Equal(t, 0.0, a.Result.MeanAnomaly[0])

	radius := findSeries(t, a.Report.Series, "radius")
	assert.InDelta(t, config.Elements().GetPerigee(), radius.Min, 50)
	assert.InDelta(t, config.Elements().GetApogee(), radius.Max, 50)
}

func TestAnalyzeOrbitAddsOutputMethod(t *testing.T) {
	config := testConfig(t)
	config.Solver.Methods = []string{"bisection"}
	config.Output.Method = "golden-section"

	a, err := NewManager(zerolog.Nop()).AnalyzeOrbit(context.Background(), config)
	require.NoError(t, err)

	require.Len(t, a.Result.Trajectories, 2)
	assert.Equal(t, kepler.GoldenSection, a.Method)
}

func TestValidateRun(t *testing.T) {
	s, err := sampler.New(utils.DefaultConfig().Elements(), 500)
	require.NoError(t, err)
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	report := Validate(result, kepler.DefaultTolerance)
	assert.True(t, report.Passed, "%+v", report.Failed())
	assert.Empty(t, report.Failed())
	assert.NotEmpty(t, report.Checks)
}

func TestValidateFlagsFailures(t *testing.T) {
	s, err := sampler.New(utils.DefaultConfig().Elements(), 20,
		sampler.WithSolverOptions(kepler.WithMaxIterations(1)))
	require.NoError(t, err)
	result, err := s.Run(context.Background(), kepler.Newton)
	require.NoError(t, err)

	report := Validate(result, kepler.DefaultTolerance)
	assert.False(t, report.Passed)

	failed := report.Failed()
	require.NotEmpty(t, failed)
	assert.Equal(t, "failures", failed[0].Name)
}

func TestValidateHighEccentricity(t *testing.T) {
	elements := utils.DefaultConfig().Elements()
	for _, e := range []float64{0.95, 0.99} {
		elements.Eccentricity = e
		s, err := sampler.New(elements, 400)
		require.NoError(t, err)
		result, err := s.Run(context.Background())
		require.NoError(t, err)

		report := Validate(result, kepler.DefaultTolerance)
		assert.True(t, report.Passed, "e=%v: %+v", e, report.Failed())
	}
}

func TestValidateTrueAnomalyForms(t *testing.T) {
	s, err := sampler.New(utils.DefaultConfig().Elements(), 101)
	require.NoError(t, err)
	result, err := s.Run(context.Background(), kepler.Newton)
	require.NoError(t, err)

	report := Validate(result, kepler.DefaultTolerance)
	forms := findCheck(t, report, "true_anomaly_forms")
	assert.True(t, forms.Passed)

	// a corrupted true anomaly is caught
	result.Trajectories[0].TrueAnomaly[30] += 1e-3
	forms = findCheck(t, Validate(result, kepler.DefaultTolerance), "true_anomaly_forms")
	assert.False(t, forms.Passed)
	assert.InDelta(t, 1e-3, forms.Value, 1e-9)
}

func TestCheckPeriod(t *testing.T) {
	var buf bytes.Buffer
	manager := NewManager(zerolog.New(&buf))

	assert.False(t, manager.checkPeriod(utils.DefaultConfig()))
	assert.Empty(t, buf.String())

	earth := utils.DefaultConfig()
	earth.Orbit.Mu = 398600.4418
	assert.False(t, manager.checkPeriod(earth))

	mismatched := utils.DefaultConfig()
	mismatched.Orbit.Eccentricity = 0.2
	assert.True(t, manager.checkPeriod(mismatched))
	assert.Contains(t, buf.String(), "keplerian_period")
}

func TestWriteCSV(t *testing.T) {
	a, err := NewManager(zerolog.Nop()).AnalyzeOrbit(context.Background(), testConfig(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, a.Output))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 201)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "0", records[1][0])
}

func TestWriteFinalE(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFinalE(&buf, []sampler.MethodValue{
		{Method: kepler.Newton, Value: 2 * math.Pi},
		{Method: kepler.Bisection, Value: 1.5},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"Method Newton-Raphson: E = 6.28318531",
		"Method Bisection: E = 1.50000000",
	}, lines)
}

func TestExport(t *testing.T) {
	config := testConfig(t)
	config.Output.JSON = true
	config.Output.Plots = true

	manager := NewManager(zerolog.Nop())
	a, err := manager.AnalyzeOrbit(context.Background(), config)
	require.NoError(t, err)

	files, err := manager.Export(a, config.Output)
	require.NoError(t, err)
	assert.Contains(t, files, filepath.Join(config.Output.Dir, "orbit_newton.csv"))
	assert.Contains(t, files, filepath.Join(config.Output.Dir, "anomalies.png"))
	assert.Len(t, files, 7)

	for _, f := range files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), f)
	}

	data, err := os.ReadFile(filepath.Join(config.Output.Dir, "report.json"))
	require.NoError(t, err)
	var report types.OrbitReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "Moon", report.Orbit.Name)
	assert.Equal(t, "newton", report.OutputMethod)
	assert.InDelta(t, 2*math.Pi/config.Orbit.Period, report.Orbit.MeanMotion, 1e-18)
}

func findCheck(t *testing.T, report *types.ValidationReport, name string) types.ValidationCheck {
	t.Helper()
	for _, c := range report.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %s not found", name)
	return types.ValidationCheck{}
}

func findSeries(t *testing.T, series []types.SeriesStats, name string) types.SeriesStats {
	t.Helper()
	for _, s := range series {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("series %s not found", name)
	return types.SeriesStats{}
}
