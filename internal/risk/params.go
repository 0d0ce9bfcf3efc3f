package risk

import (
	"time"

	"eqrisk/internal/channel"
	"eqrisk/internal/montecarlo"
	"eqrisk/internal/sizing"
	"eqrisk/internal/tailrisk"
)

// DefaultAnalysisTimeout bounds a single-symbol analysis.
const DefaultAnalysisTimeout = 30 * time.Second

// MinBars is the smallest usable price history: two bars yield one return.
const MinBars = 2

// Params configures an Analyzer run.
type Params struct {
	// Monte Carlo ensemble shape.
	NumPaths int `json:"num_paths"`
	NumSteps int `json:"num_steps"`

	// ConfidenceLevel for regression and correlation intervals.
	ConfidenceLevel float64 `json:"confidence_level"`

	// Channel fitting.
	ChannelWidth     float64 `json:"channel_width"`
	ChannelMinWindow int     `json:"channel_min_window"`
	ChannelMaxWindow int     `json:"channel_max_window"`
	ChannelStep      int     `json:"channel_step"`

	// Tail risk.
	VaRWindow int       `json:"var_window"`
	VaRLevels []float64 `json:"var_levels"`

	Sizing sizing.Params `json:"sizing"`

	Timeout        time.Duration `json:"timeout"`
	MaxConcurrency int           `json:"max_concurrency"`
}

// DefaultParams returns the production analysis configuration.
func DefaultParams() Params {
	return Params{
		NumPaths:         1000,
		NumSteps:         252,
		ConfidenceLevel:  0.95,
		ChannelWidth:     channel.DefaultWidth,
		ChannelMinWindow: 20,
		ChannelMaxWindow: 120,
		ChannelStep:      10,
		VaRWindow:        tailrisk.DefaultWindow,
		VaRLevels:        tailrisk.DefaultConfidenceLevels,
		Sizing:           sizing.DefaultParams(),
		Timeout:          DefaultAnalysisTimeout,
		MaxConcurrency:   4,
	}
}

// IsValid reports whether the parameters describe a runnable analysis.
func (p Params) IsValid() bool {
	if p.NumPaths <= 0 || p.NumSteps <= 0 {
		return false
	}
	if p.ConfidenceLevel <= 0 || p.ConfidenceLevel >= 1 {
		return false
	}
	if p.ChannelWidth <= 0 || p.ChannelMinWindow < MinBars || p.ChannelMaxWindow < p.ChannelMinWindow {
		return false
	}
	if p.Timeout <= 0 || p.MaxConcurrency <= 0 {
		return false
	}
	return true
}

// monteCarloConfig builds the simulator configuration for the estimated
// daily drift and volatility.
func (p Params) monteCarloConfig(mc montecarlo.Params, dailyVol float64) montecarlo.Config {
	return montecarlo.DefaultConfig(p.NumPaths, p.NumSteps, mc.Drift, dailyVol)
}
