// Package sizing converts model predictions into risk-budgeted portfolio
// weights and aggregates portfolio-level exposure metrics. It implements a
// half-Kelly rule scaled by signal confidence and a volatility target,
// capped at a maximum per-position weight.
package sizing

import (
	"math"

	"eqrisk/internal/stats"
)

// Direction of a sized position.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
	Flat  Direction = "FLAT"
)

// minPrediction is the smallest absolute prediction treated as a signal;
// anything below is noise and sizes to flat.
const minPrediction = 0.001

// Params holds the sizing policy knobs.
type Params struct {
	WinRate            float64 `json:"win_rate"`
	MaxPositionPct     float64 `json:"max_position_pct"`
	TargetPortfolioVol float64 `json:"target_portfolio_vol"`
}

// DefaultParams returns the production sizing policy: a 52% assumed win
// rate, 5% per-position cap, and a 15% annualized portfolio vol target.
func DefaultParams() Params {
	return Params{
		WinRate:            0.52,
		MaxPositionPct:     0.05,
		TargetPortfolioVol: 0.15,
	}
}

// RiskMetrics carries the intermediate quantities behind a sizing decision.
type RiskMetrics struct {
	Edge               float64 `json:"edge"`
	KellyFraction      float64 `json:"kelly_fraction"`
	AnnualizedVol      float64 `json:"annualized_vol"`
	TargetPortfolioVol float64 `json:"target_portfolio_vol"`
}

// Result is a risk-budgeted position size.
type Result struct {
	RawKellyWeight       float64     `json:"raw_kelly_weight"`
	ConfidenceMultiplier float64     `json:"confidence_multiplier"`
	VolatilityMultiplier float64     `json:"volatility_multiplier"`
	FinalWeight          float64     `json:"final_weight"`
	Direction            Direction   `json:"direction"`
	RiskMetrics          RiskMetrics `json:"risk_metrics"`
}

// SizePosition converts a prediction, its confidence, and the instrument's
// annualized volatility into a portfolio weight.
//
// The weight is half-Kelly on the prediction edge, ramped by confidence
// (50% of Kelly at confidence 0.25 up to 100% at 0.95, floored at 30%),
// scaled down -- never up -- by the ratio of the portfolio vol target to the
// instrument vol, and clamped to +-MaxPositionPct.
//
// Degenerate inputs (non-positive or non-finite volatility, or a prediction
// below the noise floor) size to flat rather than dividing by zero.
func SizePosition(confidence, prediction, volatility float64, p Params) Result {
	flat := Result{
		Direction: Flat,
		RiskMetrics: RiskMetrics{
			AnnualizedVol:      volatility,
			TargetPortfolioVol: p.TargetPortfolioVol,
		},
	}
	if volatility <= 0 || !stats.IsFinite(volatility) {
		return flat
	}
	if math.Abs(prediction) < minPrediction {
		return flat
	}

	edge := math.Abs(prediction)
	kellyFraction := (2*p.WinRate - 1) * (edge / volatility)
	rawKelly := kellyFraction * 0.5 // half-Kelly

	confidenceMultiplier := clamp(0.5+(confidence-0.25)*(0.5/0.7), 0.3, 1.0)

	volatilityMultiplier := 1.0
	if v := p.TargetPortfolioVol / volatility; v < 1 {
		volatilityMultiplier = v
	}

	weight := math.Abs(rawKelly * confidenceMultiplier * volatilityMultiplier)
	if prediction < 0 {
		weight = -weight
	}
	weight = clamp(weight, -p.MaxPositionPct, p.MaxPositionPct)

	direction := Long
	if prediction < 0 {
		direction = Short
	}

	return Result{
		RawKellyWeight:       rawKelly,
		ConfidenceMultiplier: confidenceMultiplier,
		VolatilityMultiplier: volatilityMultiplier,
		FinalWeight:          weight,
		Direction:            direction,
		RiskMetrics: RiskMetrics{
			Edge:               edge,
			KellyFraction:      kellyFraction,
			AnnualizedVol:      volatility,
			TargetPortfolioVol: p.TargetPortfolioVol,
		},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
