package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oxygene76/keplerorbit/pkg/analysis"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/kepler"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/sampler"
	"github.com/oxygene76/keplerorbit/pkg/utils"
)

func (c *cli) bindFlag(key string, flag *pflag.Flag) {
	if err := c.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind %s: %v", key, err))
	}
}

func (c *cli) initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			written, err := utils.SaveConfig(c.config, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to: %s\n", written)
			return nil
		},
	}

	cmd.Flags().String("path", "", "destination (default is $HOME/.keplerorbit/config.yaml)")

	return cmd
}

func (c *cli) solveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve Kepler's equation for a single mean anomaly",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("method")
			M, _ := cmd.Flags().GetFloat64("mean-anomaly")

			method, err := kepler.ParseMethod(name)
			if err != nil {
				return err
			}

			elements := c.config.Elements()
			E, err := kepler.Solve(method, M, elements.Eccentricity, c.config.SolverOptions()...)
			if err != nil {
				return err
			}
			state := elements.StateAt(E)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Method\t%s\n", method.Title())
			fmt.Fprintf(w, "M\t%.8f rad\n", M)
			fmt.Fprintf(w, "E\t%.8f rad\n", E)
			fmt.Fprintf(w, "Residual\t%.3e\n", kepler.Residual(E, M, elements.Eccentricity))
			fmt.Fprintf(w, "ν\t%.8f rad\n", state.TrueAnomaly)
			fmt.Fprintf(w, "r\t%.3f km\n", state.Radius)
			fmt.Fprintf(w, "Vr\t%.6f km/s\n", state.RadialVelocity)
			fmt.Fprintf(w, "Vn\t%.6f km/s\n", state.TransversalVel)
			fmt.Fprintf(w, "V\t%.6f km/s\n", state.Speed)
			return w.Flush()
		},
	}

	cmd.Flags().String("method", "newton", "solver method")
	cmd.Flags().Float64("mean-anomaly", 0, "mean anomaly M in radians")
	if err := cmd.MarkFlagRequired("mean-anomaly"); err != nil {
		panic(fmt.Sprintf("mark mean-anomaly required: %v", err))
	}

	return cmd
}

func (c *cli) compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Run the solvers over one revolution and compare the final eccentric anomaly",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.run(cmd)
			if err != nil {
				return err
			}

			if err := analysis.WriteFinalE(cmd.OutOrStdout(), result.FinalE()); err != nil {
				return err
			}
			if err := result.Err(); err != nil {
				c.logger.Warn().Err(err).Msg("some samples failed to solve")
			}
			return nil
		},
	}
}

func (c *cli) orbitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orbit",
		Short: "Compute the full orbit evolution and export the corrected series",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := analysis.NewManager(c.logger)

			a, err := manager.AnalyzeOrbit(cmd.Context(), c.config)
			if err != nil {
				return err
			}

			files, err := manager.Export(a, c.config.Output)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := analysis.WriteFinalE(out, a.Result.FinalE()); err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(out, "Wrote %s\n", f)
			}
			return nil
		},
	}

	cmd.Flags().String("output-dir", "", "directory for exported files")
	cmd.Flags().String("method", "", "method whose trajectory is exported")
	cmd.Flags().Bool("csv", true, "export the corrected series as CSV")
	cmd.Flags().Bool("json", false, "export the run report as JSON")
	cmd.Flags().Bool("plots", false, "render PNG plots")

	c.bindFlag("output.dir", cmd.Flags().Lookup("output-dir"))
	c.bindFlag("output.method", cmd.Flags().Lookup("method"))
	c.bindFlag("output.csv", cmd.Flags().Lookup("csv"))
	c.bindFlag("output.json", cmd.Flags().Lookup("json"))
	c.bindFlag("output.plots", cmd.Flags().Lookup("plots"))

	return cmd
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check solver residuals, agreement and conservation laws over one revolution",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.run(cmd)
			if err != nil {
				return err
			}

			report := analysis.Validate(result, c.config.Solver.Tolerance)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CHECK\tMETHOD\tVALUE\tLIMIT\tSTATUS")
			for _, check := range report.Checks {
				status := "ok"
				if !check.Passed {
					status = "FAIL"
				}
				fmt.Fprintf(w, "%s\t%s\t%.3e\t%.3e\t%s\n", check.Name, check.Method, check.Value, check.Limit, status)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if !report.Passed {
				return fmt.Errorf("%d of %d checks failed", len(report.Failed()), len(report.Checks))
			}
			return nil
		},
	}
}

// run samples the configured orbit with the configured methods
func (c *cli) run(cmd *cobra.Command) (*sampler.Result, error) {
	methods, err := c.config.Methods()
	if err != nil {
		return nil, err
	}

	s, err := sampler.New(c.config.Elements(), c.config.Solver.Samples,
		sampler.WithWorkers(c.config.Resources.MaxCPUCores),
		sampler.WithSolverOptions(c.config.SolverOptions()...),
		sampler.WithLogger(c.logger),
	)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Float64("eccentricity", c.config.Orbit.Eccentricity).
		Int("samples", c.config.Solver.Samples).
		Float64("period_days", c.config.Orbit.Period/86400).
		Msg("sampling orbit")

	return s.Run(cmd.Context(), methods...)
}
