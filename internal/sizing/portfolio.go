package sizing

import (
	"fmt"
	"math"

	"eqrisk/internal/stats"
)

// DefaultRiskFreeRate is the annualized risk-free rate used for Sharpe
// calculations when the caller does not override it.
const DefaultRiskFreeRate = 0.04

// NormalizeWeights scales every weight by maxGrossExposure/sum(|w|) when the
// gross exposure exceeds the cap, and returns the weights unchanged
// otherwise. The input map is not mutated.
func NormalizeWeights(weights map[string]float64, maxGrossExposure float64) map[string]float64 {
	gross := 0.0
	for _, w := range weights {
		gross += math.Abs(w)
	}

	out := make(map[string]float64, len(weights))
	scale := 1.0
	if gross > maxGrossExposure && gross > 0 {
		scale = maxGrossExposure / gross
	}
	for k, w := range weights {
		out[k] = w * scale
	}
	return out
}

// PortfolioMetrics aggregates exposure, return, risk and concentration
// measures for a weighted portfolio.
type PortfolioMetrics struct {
	GrossExposure      float64 `json:"gross_exposure"`
	NetExposure        float64 `json:"net_exposure"`
	LongExposure       float64 `json:"long_exposure"`
	ShortExposure      float64 `json:"short_exposure"`
	ExpectedReturn     float64 `json:"expected_return"`
	ExpectedVolatility float64 `json:"expected_volatility"`
	ExpectedSharpe     float64 `json:"expected_sharpe"`
	HerfindahlIndex    float64 `json:"herfindahl_index"`
	EffectivePositions float64 `json:"effective_positions"`
}

// ComputePortfolioMetrics computes exposure and risk aggregates over
// parallel weight/return/volatility arrays. Expected volatility uses the
// zero-correlation simplification sqrt(sum (w*vol)^2); the Sharpe ratio
// deducts one month of the risk-free rate. Mismatched array lengths are a
// programmer error and return a hard error.
func ComputePortfolioMetrics(weights, expectedReturns, volatilities []float64, riskFreeRate float64) (PortfolioMetrics, error) {
	if len(weights) != len(expectedReturns) || len(weights) != len(volatilities) {
		return PortfolioMetrics{}, &stats.ValidationError{
			Field: "weights",
			Message: fmt.Sprintf("mismatched array lengths: weights=%d returns=%d volatilities=%d",
				len(weights), len(expectedReturns), len(volatilities)),
		}
	}

	var m PortfolioMetrics
	sumWeights := 0.0
	sumSquaredWeights := 0.0
	varianceSum := 0.0

	for i, w := range weights {
		m.GrossExposure += math.Abs(w)
		m.NetExposure += w
		if w > 0 {
			m.LongExposure += w
		} else {
			m.ShortExposure += -w
		}
		m.ExpectedReturn += w * expectedReturns[i]
		wv := w * volatilities[i]
		varianceSum += wv * wv
		sumWeights += w
		sumSquaredWeights += w * w
	}

	m.ExpectedVolatility = math.Sqrt(varianceSum)
	if m.ExpectedVolatility > 0 {
		m.ExpectedSharpe = (m.ExpectedReturn - riskFreeRate/12) / m.ExpectedVolatility
	}

	if sumWeights != 0 {
		m.HerfindahlIndex = sumSquaredWeights / (sumWeights * sumWeights)
	}
	if m.GrossExposure > 0 && m.HerfindahlIndex > 0 {
		m.EffectivePositions = 1 / m.HerfindahlIndex
	}

	return m, nil
}

// Turnover is half the sum of absolute weight changes over the union of
// instrument keys, so a full portfolio swap scores 1.0.
func Turnover(prevWeights, currWeights map[string]float64) float64 {
	sum := 0.0
	seen := make(map[string]bool, len(prevWeights))
	for k, prev := range prevWeights {
		seen[k] = true
		sum += math.Abs(currWeights[k] - prev)
	}
	for k, curr := range currWeights {
		if !seen[k] {
			sum += math.Abs(curr)
		}
	}
	return sum / 2
}
