// Package config loads simulation run configuration from YAML files,
// applying defaults before validation so a minimal file is enough to get
// a sensible run.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anttiluode/NeuralFieldPatternExplorer/internal/field"
)

// Config is the root configuration document.
type Config struct {
	// Logging controls operational log verbosity.
	Logging LoggingConfig `yaml:"logging"`

	// Run controls the CLI driver's batch loop.
	Run RunConfig `yaml:"run"`

	// Simulation is handed to the controller's Configure call.
	Simulation field.Params `yaml:"simulation"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	// Level is "info" (default) or "debug".
	Level string `yaml:"level"`
}

// RunConfig configures the headless driver loop.
type RunConfig struct {
	// Steps is the total number of time steps to simulate.
	Steps int `yaml:"steps"`

	// BatchSize is how many steps run between snapshot reports.
	BatchSize int `yaml:"batch_size"`

	// Energy attaches the power diagnostic to reported snapshots.
	Energy bool `yaml:"energy"`
}

// Default returns the configuration used when no file is supplied: a 32³
// grid over a 10-unit box, Mexican-hat coupling, Euler stepping and a
// centered bump seed.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Run:     RunConfig{Steps: 500, BatchSize: 50},
		Simulation: field.Params{
			Grid: field.GridParams{
				Nx: 32, Ny: 32, Nz: 32,
				Lx: 10, Ly: 10, Lz: 10,
			},
			Kernel: field.KernelParams{
				ExcAmp: 1.0, ExcWidth: 1.0,
				InhAmp: 0.5, InhWidth: 3.0,
			},
			Dynamics: field.Dynamics{
				Dt:          0.05,
				Method:      field.MethodEuler,
				Convolution: field.ConvAuto,
			},
			Nonlinearity: field.Nonlinearity{Beta: 4.0, Theta: 0.5},
			Drive:        field.DriveSpec{Type: field.DriveNone},
			Seed:         field.Seed{Kind: field.SeedBump, Amplitude: 1.0, Width: 2.0},
			HistoryDepth: 50,
		},
	}
}

// Load reads path and merges it over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the driver settings. Simulation parameters are validated
// by the controller itself at Configure time.
func (c Config) Validate() error {
	if c.Run.Steps <= 0 {
		return fmt.Errorf("config: run.steps must be positive, got %d", c.Run.Steps)
	}
	if c.Run.BatchSize <= 0 {
		return fmt.Errorf("config: run.batch_size must be positive, got %d", c.Run.BatchSize)
	}
	switch c.Logging.Level {
	case "", "info", "debug":
	default:
		return fmt.Errorf("config: unknown logging level %q", c.Logging.Level)
	}
	return nil
}
