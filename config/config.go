// Package config loads run configuration for the CLI drivers.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// HullWhiteConfig parameterizes the Monte Carlo scenario block.
type HullWhiteConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	A            float64 `mapstructure:"a"`
	Sigma        float64 `mapstructure:"sigma"`
	HorizonYears float64 `mapstructure:"horizon_years"`
	Steps        int     `mapstructure:"steps"`
	Paths        int     `mapstructure:"paths"`
	Seed         uint64  `mapstructure:"seed"`
}

// RunConfig drives a full valuation run.
type RunConfig struct {
	CurvePath     string `mapstructure:"curve_path"`
	PortfolioPath string `mapstructure:"portfolio_path"`

	ParallelShiftsBps []float64 `mapstructure:"parallel_shifts_bps"`
	TwistShiftsBps    []float64 `mapstructure:"twist_shifts_bps"`
	TwistPivotYear    float64   `mapstructure:"twist_pivot_year"`

	HullWhite HullWhiteConfig `mapstructure:"hull_white"`

	Confidences []float64 `mapstructure:"confidences"`

	RateBumpBps   float64 `mapstructure:"rate_bump_bps"`
	HazardBumpBps float64 `mapstructure:"hazard_bump_bps"`
	FXBumpPct     float64 `mapstructure:"fx_bump_pct"`

	Workers int `mapstructure:"workers"`

	OutputCSVPath  string `mapstructure:"output_csv_path"`
	OutputJSONPath string `mapstructure:"output_json_path"`
}

// Load reads a RunConfig from a YAML/TOML/JSON file, applying engine
// defaults for unset fields.
func Load(path string) (RunConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("parallel_shifts_bps", []float64{-100, -50, 0, 50, 100})
	v.SetDefault("twist_pivot_year", 5.0)
	v.SetDefault("confidences", []float64{0.99})
	v.SetDefault("rate_bump_bps", 1.0)
	v.SetDefault("hazard_bump_bps", 1.0)
	v.SetDefault("fx_bump_pct", 0.01)
	v.SetDefault("workers", 1)
	v.SetDefault("hull_white.a", 0.03)
	v.SetDefault("hull_white.sigma", 0.01)
	v.SetDefault("hull_white.horizon_years", 1.0)
	v.SetDefault("hull_white.steps", 12)
	v.SetDefault("hull_white.paths", 500)
	v.SetDefault("hull_white.seed", 42)

	if err := v.ReadInConfig(); err != nil {
		return RunConfig{}, fmt.Errorf("config.Load: %w", err)
	}
	var cfg RunConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return RunConfig{}, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration for fatal inconsistencies.
func (c RunConfig) Validate() error {
	if c.CurvePath == "" {
		return fmt.Errorf("config: curve_path is required")
	}
	if c.PortfolioPath == "" {
		return fmt.Errorf("config: portfolio_path is required")
	}
	for _, conf := range c.Confidences {
		if conf <= 0 || conf >= 1 {
			return fmt.Errorf("config: confidence %g must be between 0 and 1", conf)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be non-negative, got %d", c.Workers)
	}
	if c.HullWhite.Enabled {
		if c.HullWhite.A <= 0 {
			return fmt.Errorf("config: hull_white.a must be positive, got %g", c.HullWhite.A)
		}
		if c.HullWhite.Sigma < 0 {
			return fmt.Errorf("config: hull_white.sigma must be non-negative, got %g", c.HullWhite.Sigma)
		}
		if c.HullWhite.Steps <= 0 || c.HullWhite.Paths <= 0 || c.HullWhite.HorizonYears <= 0 {
			return fmt.Errorf("config: hull_white horizon/steps/paths must be positive")
		}
	}
	return nil
}
