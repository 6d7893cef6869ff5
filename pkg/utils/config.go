package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/oxygene76/keplerorbit/pkg/astronomy/correction"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/kepler"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/orbital"
	"github.com/oxygene76/keplerorbit/pkg/astronomy/sampler"
)

// EnvPrefix is the prefix for environment overrides, e.g. KEPLERORBIT_ORBIT_ECCENTRICITY
const EnvPrefix = "KEPLERORBIT"

// Config represents the toolkit configuration
type Config struct {
	Orbit     OrbitConfig     `yaml:"orbit" mapstructure:"orbit"`
	Solver    SolverConfig    `yaml:"solver" mapstructure:"solver"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Client    ClientConfig    `yaml:"client" mapstructure:"client"`
	Resources ResourcesConfig `yaml:"resources" mapstructure:"resources"`
}

// OrbitConfig contains the physical parameters of the orbit
type OrbitConfig struct {
	Name          string  `yaml:"name" mapstructure:"name"`
	Eccentricity  float64 `yaml:"eccentricity" mapstructure:"eccentricity"`
	Period        float64 `yaml:"period" mapstructure:"period"`                   // seconds
	SemiMajorAxis float64 `yaml:"semi_major_axis" mapstructure:"semi_major_axis"` // km
	Mu            float64 `yaml:"mu" mapstructure:"mu"`                           // km³/s²
}

// SolverConfig contains Kepler solver and grid settings
type SolverConfig struct {
	Methods             []string `yaml:"methods" mapstructure:"methods"`
	Tolerance           float64  `yaml:"tolerance" mapstructure:"tolerance"`
	MaxIterations       int      `yaml:"max_iterations" mapstructure:"max_iterations"`
	Samples             int      `yaml:"samples" mapstructure:"samples"`
	CorrectionThreshold float64  `yaml:"correction_threshold" mapstructure:"correction_threshold"`
}

// OutputConfig contains reporting settings
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Method string `yaml:"method" mapstructure:"method"`
	CSV    bool   `yaml:"csv" mapstructure:"csv"`
	JSON   bool   `yaml:"json" mapstructure:"json"`
	Plots  bool   `yaml:"plots" mapstructure:"plots"`
}

// ClientConfig contains process-level settings
type ClientConfig struct {
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// ResourcesConfig contains resource limits
type ResourcesConfig struct {
	MaxCPUCores int `yaml:"max_cpu_cores" mapstructure:"max_cpu_cores"`
}

// DefaultConfig returns the lunar orbit configuration. The semi-major axis and
// period are those of the Earth-Moon orbit while Mu is the Moon's own
// gravitational parameter, so T does not follow from a and Mu; the series use T
// as given.
func DefaultConfig() *Config {
	return &Config{
		Orbit: OrbitConfig{
			Name:          "Moon",
			Eccentricity:  0.0549,
			Period:        27.321661 * 24 * 3600,
			SemiMajorAxis: 384748,
			Mu:            4902.800066,
		},
		Solver: SolverConfig{
			Methods:             []string{"newton", "golden-section", "bisection", "fixed-point"},
			Tolerance:           kepler.DefaultTolerance,
			MaxIterations:       0,
			Samples:             sampler.DefaultSamples,
			CorrectionThreshold: correction.DefaultThreshold,
		},
		Output: OutputConfig{
			Dir:    "output",
			Method: "newton",
			CSV:    true,
			JSON:   false,
			Plots:  false,
		},
		Client: ClientConfig{
			LogLevel: "info",
		},
		Resources: ResourcesConfig{
			MaxCPUCores: 0,
		},
	}
}

// SetDefaults registers every default key on v so environment overrides apply
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("orbit.name", d.Orbit.Name)
	v.SetDefault("orbit.eccentricity", d.Orbit.Eccentricity)
	v.SetDefault("orbit.period", d.Orbit.Period)
	v.SetDefault("orbit.semi_major_axis", d.Orbit.SemiMajorAxis)
	v.SetDefault("orbit.mu", d.Orbit.Mu)
	v.SetDefault("solver.methods", d.Solver.Methods)
	v.SetDefault("solver.tolerance", d.Solver.Tolerance)
	v.SetDefault("solver.max_iterations", d.Solver.MaxIterations)
	v.SetDefault("solver.samples", d.Solver.Samples)
	v.SetDefault("solver.correction_threshold", d.Solver.CorrectionThreshold)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.method", d.Output.Method)
	v.SetDefault("output.csv", d.Output.CSV)
	v.SetDefault("output.json", d.Output.JSON)
	v.SetDefault("output.plots", d.Output.Plots)
	v.SetDefault("client.log_level", d.Client.LogLevel)
	v.SetDefault("resources.max_cpu_cores", d.Resources.MaxCPUCores)
}

// LoadConfig reads configuration into v from path, or from the standard
// locations when path is empty. A missing file yields the defaults.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig writes configuration as YAML, to the default location when path is empty
func SaveConfig(config *Config, path string) (string, error) {
	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if err := config.Elements().Validate(); err != nil {
		return err
	}

	if config.Solver.Samples < 2 {
		return fmt.Errorf("solver samples must be at least 2, got %d", config.Solver.Samples)
	}

	if !(config.Solver.Tolerance > 0) {
		return fmt.Errorf("solver tolerance must be positive, got %g", config.Solver.Tolerance)
	}

	if config.Solver.MaxIterations < 0 {
		return fmt.Errorf("solver max iterations cannot be negative")
	}

	if config.Solver.CorrectionThreshold < 0 {
		return fmt.Errorf("correction threshold cannot be negative")
	}

	if _, err := config.Methods(); err != nil {
		return err
	}

	if _, err := config.OutputMethod(); err != nil {
		return err
	}

	if config.Resources.MaxCPUCores < 0 {
		return fmt.Errorf("max CPU cores cannot be negative")
	}

	return nil
}

// Elements returns the orbit as solver input
func (c *Config) Elements() orbital.Elements {
	return orbital.Elements{
		Eccentricity:  c.Orbit.Eccentricity,
		Period:        c.Orbit.Period,
		SemiMajorAxis: c.Orbit.SemiMajorAxis,
		Mu:            c.Orbit.Mu,
	}
}

// Methods returns the configured solver methods
func (c *Config) Methods() ([]kepler.Method, error) {
	return kepler.ParseMethods(c.Solver.Methods)
}

// OutputMethod returns the method whose trajectory is exported
func (c *Config) OutputMethod() (kepler.Method, error) {
	return kepler.ParseMethod(c.Output.Method)
}

// SolverOptions returns the options passed to each Kepler solve
func (c *Config) SolverOptions() []kepler.Option {
	opts := []kepler.Option{kepler.WithTolerance(c.Solver.Tolerance)}
	if c.Solver.MaxIterations > 0 {
		opts = append(opts, kepler.WithMaxIterations(c.Solver.MaxIterations))
	}
	return opts
}

// GetConfigPath returns the path to the default config file
func GetConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".keplerorbit"), nil
}
