package analysis

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/oxygene76/keplerorbit/pkg/astronomy/correction"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/sampler"
	"github.com/oxygene76/keplerorbit/pkg/utils"
)

// csvHeader names the exported columns in order
var csvHeader = []string{"t", "M", "E", "nu", "r", "Vr", "Vn", "V"}

// WriteCSV writes one row per sample of the bundle
func WriteCSV(w io.Writer, b correction.Bundle) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	columns := [][]float64{
		b.Time, b.MeanAnomaly, b.EccentricAnomaly, b.TrueAnomaly,
		b.Radius, b.RadialVelocity, b.TransversalVelocity, b.Speed,
	}
	for _, col := range columns {
		if len(col) != b.Len() {
			return fmt.Errorf("series length mismatch: %d != %d", len(col), b.Len())
		}
	}

	record := make([]string, len(columns))
	for i := 0; i < b.Len(); i++ {
		for j, col := range columns {
			record[j] = strconv.FormatFloat(col[i], 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteFinalE prints the last-sample eccentric anomaly of each method
func WriteFinalE(w io.Writer, values []sampler.MethodValue) error {
	for _, mv := range values {
		if _, err := fmt.Fprintf(w, "Method %s: E = %.8f\n", mv.Method.Title(), mv.Value); err != nil {
			return err
		}
	}
	return nil
}

// Export writes the enabled outputs of an analysis into dir and returns the created files
func (m *Manager) Export(a *Analysis, output utils.OutputConfig) ([]string, error) {
	if err := os.MkdirAll(output.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var files []string
	if output.CSV {
		path := filepath.Join(output.Dir, fmt.Sprintf("orbit_%s.csv", a.Method))
		if err := writeFile(path, func(w io.Writer) error { return WriteCSV(w, a.Output) }); err != nil {
			return files, err
		}
		files = append(files, path)
	}

	if output.JSON {
		path := filepath.Join(output.Dir, "report.json")
		if err := writeFile(path, func(w io.Writer) error { return WriteJSON(w, a.Report) }); err != nil {
			return files, err
		}
		files = append(files, path)
	}

	if output.Plots {
		plots, err := RenderPlots(output.Dir, a)
		files = append(files, plots...)
		if err != nil {
			return files, err
		}
	}

	for _, f := range files {
		m.logger.Info().Str("file", f).Msg("wrote output")
	}
	return files, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
