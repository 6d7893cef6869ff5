package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oxygene76/keplerorbit/pkg/utils"
)

// cli carries the state shared by every command of one invocation
type cli struct {
	v       *viper.Viper
	cfgFile string
	verbose bool

	config *utils.Config
	logger zerolog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "keplerorbit",
		Short: "Two-body Keplerian orbit evolution",
		Long: `Computes the evolution of an elliptical two-body orbit over one revolution.
Kepler's equation is solved by fixed-point iteration, Newton-Raphson,
bisection and golden-section search, and the true anomaly, radius vector
and velocity components are derived from the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig(cmd)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.keplerorbit/config.yaml)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "verbose output")
	flags.Float64("eccentricity", 0, "orbit eccentricity e in [0, 1)")
	flags.Float64("period", 0, "orbital period T in seconds")
	flags.Float64("semi-major-axis", 0, "semi-major axis a in km")
	flags.Float64("mu", 0, "gravitational parameter μ in km³/s²")
	flags.Int("samples", 0, "number of time samples over one revolution")
	flags.Float64("tolerance", 0, "solver convergence tolerance")
	flags.StringSlice("methods", nil, "solver methods (fixed-point, newton, bisection, golden-section)")
	flags.Int("workers", 0, "concurrent solver workers (0 = all CPUs)")

	c.bindFlag("orbit.eccentricity", flags.Lookup("eccentricity"))
	c.bindFlag("orbit.period", flags.Lookup("period"))
	c.bindFlag("orbit.semi_major_axis", flags.Lookup("semi-major-axis"))
	c.bindFlag("orbit.mu", flags.Lookup("mu"))
	c.bindFlag("solver.samples", flags.Lookup("samples"))
	c.bindFlag("solver.tolerance", flags.Lookup("tolerance"))
	c.bindFlag("solver.methods", flags.Lookup("methods"))
	c.bindFlag("resources.max_cpu_cores", flags.Lookup("workers"))

	rootCmd.AddCommand(
		c.initCmd(),
		c.solveCmd(),
		c.compareCmd(),
		c.orbitCmd(),
		c.validateCmd(),
	)

	return rootCmd
}

func (c *cli) initConfig(cmd *cobra.Command) error {
	config, err := utils.LoadConfig(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.config = config

	level := config.Client.LogLevel
	if c.verbose {
		level = "debug"
	}
	logger, err := utils.NewLogger(level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	c.logger = logger

	if used := c.v.ConfigFileUsed(); used != "" {
		c.logger.Debug().Str("file", used).Msg("using config file")
	}
	return nil
}
