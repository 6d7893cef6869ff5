package analysis

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const secondsPerDay = 24 * 3600

var (
	colorBlue   = color.RGBA{B: 255, A: 255}
	colorRed    = color.RGBA{R: 255, A: 255}
	colorGreen  = color.RGBA{G: 128, A: 255}
	colorOrange = color.RGBA{R: 255, G: 165, A: 255}
	colorPink   = color.RGBA{R: 255, G: 105, B: 180, A: 255}
)

type curve struct {
	label string
	y     []float64
	color color.Color
}

// RenderPlots draws the anomalies and the radius/velocity series of the
// analysis output as PNG files in dir
func RenderPlots(dir string, a *Analysis) ([]string, error) {
	out := a.Output
	days := make([]float64, out.Len())
	for i, t := range out.Time {
		days[i] = t / secondsPerDay
	}

	anomalies, err := newPlot(
		fmt.Sprintf("Anomalies over one revolution (%s)", a.Method.Title()),
		"Time (days)", "Anomaly (rad)",
		days,
		curve{"Mean anomaly M(t)", out.MeanAnomaly, colorBlue},
		curve{"Eccentric anomaly E(t)", out.EccentricAnomaly, colorRed},
		curve{"True anomaly ν(t)", out.TrueAnomaly, colorGreen},
	)
	if err != nil {
		return nil, err
	}
	anomalies.Y.Tick.Marker = plot.ConstantTicks([]plot.Tick{
		{Value: 0, Label: "0"},
		{Value: math.Pi / 2, Label: "π/2"},
		{Value: math.Pi, Label: "π"},
		{Value: 3 * math.Pi / 2, Label: "3π/2"},
		{Value: 2 * math.Pi, Label: "2π"},
	})

	panels := []struct {
		file string
		p    func() (*plot.Plot, error)
	}{
		{"anomalies.png", func() (*plot.Plot, error) { return anomalies, nil }},
		{"radius.png", func() (*plot.Plot, error) {
			return newPlot("Radius vector", "Time (days)", "r (km)", days, curve{"r(t)", out.Radius, colorBlue})
		}},
		{"radial_velocity.png", func() (*plot.Plot, error) {
			return newPlot("Radial velocity", "Time (days)", "Vr (km/s)", days, curve{"Vr(t)", out.RadialVelocity, colorRed})
		}},
		{"transversal_velocity.png", func() (*plot.Plot, error) {
			return newPlot("Transversal velocity", "Time (days)", "Vn (km/s)", days, curve{"Vn(t)", out.TransversalVelocity, colorOrange})
		}},
		{"speed.png", func() (*plot.Plot, error) {
			return newPlot("Speed", "Time (days)", "V (km/s)", days, curve{"V(t)", out.Speed, colorPink})
		}},
	}

	var files []string
	for _, panel := range panels {
		p, err := panel.p()
		if err != nil {
			return files, err
		}
		path := filepath.Join(dir, panel.file)
		if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
			return files, fmt.Errorf("failed to save plot %s: %w", path, err)
		}
		files = append(files, path)
	}
	return files, nil
}

func newPlot(title, xLabel, yLabel string, x []float64, curves ...curve) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	for _, c := range curves {
		line, err := plotter.NewLine(points(x, c.y))
		if err != nil {
			return nil, fmt.Errorf("failed to build %q: %w", c.label, err)
		}
		line.Color = c.color
		p.Add(line)
		p.Legend.Add(c.label, line)
	}
	p.Legend.Top = true
	return p, nil
}

// points pairs x and y, dropping failed (non-finite) samples
func points(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(x))
	for i := range x {
		if i >= len(y) || !isFinite(y[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: x[i], Y: y[i]})
	}
	return pts
}
