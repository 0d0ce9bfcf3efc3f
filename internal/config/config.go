// Package config loads the application configuration in three layers:
// built-in defaults, an optional YAML file, then environment variables
// with the EQRISK_ prefix. Later layers win.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"eqrisk/internal/risk"
	"eqrisk/internal/sizing"
)

// envPrefix namespaces the environment variables, e.g. EQRISK_LOGGING_LEVEL.
const envPrefix = "EQRISK"

// Config is the complete application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required"`
}

// AnalysisConfig holds the risk analysis parameters.
type AnalysisConfig struct {
	NumPaths        int     `yaml:"num_paths" envconfig:"NUM_PATHS" validate:"gt=0"`
	NumSteps        int     `yaml:"num_steps" envconfig:"NUM_STEPS" validate:"gt=0"`
	ConfidenceLevel float64 `yaml:"confidence_level" envconfig:"CONFIDENCE_LEVEL" validate:"gt=0,lt=1"`

	ChannelWidth     float64 `yaml:"channel_width" envconfig:"CHANNEL_WIDTH" validate:"gt=0"`
	ChannelMinWindow int     `yaml:"channel_min_window" envconfig:"CHANNEL_MIN_WINDOW" validate:"gte=2"`
	ChannelMaxWindow int     `yaml:"channel_max_window" envconfig:"CHANNEL_MAX_WINDOW" validate:"gtefield=ChannelMinWindow"`
	ChannelStep      int     `yaml:"channel_step" envconfig:"CHANNEL_STEP" validate:"gt=0"`

	VaRWindow int `yaml:"var_window" envconfig:"VAR_WINDOW" validate:"gt=0"`

	WinRate            float64 `yaml:"win_rate" envconfig:"WIN_RATE" validate:"gt=0,lt=1"`
	MaxPositionPct     float64 `yaml:"max_position_pct" envconfig:"MAX_POSITION_PCT" validate:"gt=0,lte=1"`
	TargetPortfolioVol float64 `yaml:"target_portfolio_vol" envconfig:"TARGET_PORTFOLIO_VOL" validate:"gt=0"`

	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	MaxConcurrency int           `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY" validate:"gt=0"`
}

// OutputConfig controls where and how reports are written.
type OutputConfig struct {
	Dir    string `yaml:"dir" envconfig:"DIR" validate:"required"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=csv json both"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/eqrisk.log",
		},
		Analysis: AnalysisConfig{
			NumPaths:           1000,
			NumSteps:           252,
			ConfidenceLevel:    0.95,
			ChannelWidth:       2.0,
			ChannelMinWindow:   20,
			ChannelMaxWindow:   120,
			ChannelStep:        10,
			VaRWindow:          252,
			WinRate:            0.52,
			MaxPositionPct:     0.05,
			TargetPortfolioVol: 0.15,
			Timeout:            30 * time.Second,
			MaxConcurrency:     4,
		},
		Output: OutputConfig{
			Dir:    "reports",
			Format: "both",
		},
	}
}

// Load builds the configuration. The YAML file at path overlays the
// defaults (skipped when path is empty or the file does not exist), and
// environment variables overlay both.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// AnalysisParams converts the configuration into analyzer parameters.
func (c *Config) AnalysisParams() risk.Params {
	p := risk.DefaultParams()
	p.NumPaths = c.Analysis.NumPaths
	p.NumSteps = c.Analysis.NumSteps
	p.ConfidenceLevel = c.Analysis.ConfidenceLevel
	p.ChannelWidth = c.Analysis.ChannelWidth
	p.ChannelMinWindow = c.Analysis.ChannelMinWindow
	p.ChannelMaxWindow = c.Analysis.ChannelMaxWindow
	p.ChannelStep = c.Analysis.ChannelStep
	p.VaRWindow = c.Analysis.VaRWindow
	p.Sizing = sizing.Params{
		WinRate:            c.Analysis.WinRate,
		MaxPositionPct:     c.Analysis.MaxPositionPct,
		TargetPortfolioVol: c.Analysis.TargetPortfolioVol,
	}
	p.Timeout = c.Analysis.Timeout
	p.MaxConcurrency = c.Analysis.MaxConcurrency
	return p
}
