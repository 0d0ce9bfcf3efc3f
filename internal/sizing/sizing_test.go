package sizing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eqrisk/internal/stats"
)

func TestSizePosition_FlatOnDegenerateInputs(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name       string
		confidence float64
		prediction float64
		volatility float64
	}{
		{name: "zero volatility", confidence: 0.6, prediction: 0.02, volatility: 0},
		{name: "negative volatility", confidence: 0.6, prediction: 0.02, volatility: -0.1},
		{name: "NaN volatility", confidence: 0.6, prediction: 0.02, volatility: math.NaN()},
		{name: "infinite volatility", confidence: 0.6, prediction: 0.02, volatility: math.Inf(1)},
		{name: "prediction below noise floor", confidence: 0.6, prediction: 0.0001, volatility: 0.25},
		{name: "zero prediction", confidence: 0.6, prediction: 0, volatility: 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := SizePosition(tt.confidence, tt.prediction, tt.volatility, p)
			assert.Equal(t, Flat, r.Direction)
			assert.Zero(t, r.FinalWeight)
		})
	}
}

func TestSizePosition_LongScenario(t *testing.T) {
	p := DefaultParams()
	p.WinRate = 0.55

	r := SizePosition(0.6, 0.02, 0.25, p)

	assert.Equal(t, Long, r.Direction)
	assert.Greater(t, r.FinalWeight, 0.0)
	assert.LessOrEqual(t, r.FinalWeight, 0.05)

	// Reproduce the chain by hand
	kelly := (2*0.55 - 1) * (0.02 / 0.25)
	rawKelly := kelly * 0.5
	confMult := 0.5 + (0.6-0.25)*(0.5/0.7)
	volMult := 0.15 / 0.25

	assert.InDelta(t, rawKelly, r.RawKellyWeight, 1e-12)
	assert.InDelta(t, confMult, r.ConfidenceMultiplier, 1e-12)
	assert.InDelta(t, volMult, r.VolatilityMultiplier, 1e-12)
	assert.InDelta(t, rawKelly*confMult*volMult, r.FinalWeight, 1e-12)
}

func TestSizePosition_ShortMirrorsLong(t *testing.T) {
	p := DefaultParams()

	long := SizePosition(0.7, 0.03, 0.3, p)
	short := SizePosition(0.7, -0.03, 0.3, p)

	assert.Equal(t, Short, short.Direction)
	assert.InDelta(t, -long.FinalWeight, short.FinalWeight, 1e-12)
}

func TestSizePosition_ConfidenceRamp(t *testing.T) {
	p := DefaultParams()

	atFloor := SizePosition(0.0, 0.02, 0.25, p)
	assert.InDelta(t, 0.3, atFloor.ConfidenceMultiplier, 1e-12, "ramp floors at 30%")

	atLow := SizePosition(0.25, 0.02, 0.25, p)
	assert.InDelta(t, 0.5, atLow.ConfidenceMultiplier, 1e-12)

	atHigh := SizePosition(0.95, 0.02, 0.25, p)
	assert.InDelta(t, 1.0, atHigh.ConfidenceMultiplier, 1e-12)

	beyond := SizePosition(1.5, 0.02, 0.25, p)
	assert.InDelta(t, 1.0, beyond.ConfidenceMultiplier, 1e-12, "ramp caps at 100%")
}

func TestSizePosition_VolMultiplierNeverScalesUp(t *testing.T) {
	p := DefaultParams()

	quiet := SizePosition(0.6, 0.02, 0.05, p) // vol below target
	assert.InDelta(t, 1.0, quiet.VolatilityMultiplier, 1e-12)

	noisy := SizePosition(0.6, 0.02, 0.60, p)
	assert.InDelta(t, 0.25, noisy.VolatilityMultiplier, 1e-12)
}

func TestSizePosition_CapsAtMaxPosition(t *testing.T) {
	p := DefaultParams()
	p.WinRate = 0.9 // huge edge to force the cap

	r := SizePosition(0.95, 0.5, 0.05, p)
	assert.InDelta(t, p.MaxPositionPct, r.FinalWeight, 1e-12)
}

func TestNormalizeWeights(t *testing.T) {
	weights := map[string]float64{"AAA": 0.6, "BBB": -0.8} // gross 1.4

	normalized := NormalizeWeights(weights, 1.0)
	gross := math.Abs(normalized["AAA"]) + math.Abs(normalized["BBB"])
	assert.InDelta(t, 1.0, gross, 1e-12)
	assert.InDelta(t, 0.6/1.4, normalized["AAA"], 1e-12)
	assert.InDelta(t, -0.8/1.4, normalized["BBB"], 1e-12)

	// Under the cap: unchanged
	small := map[string]float64{"AAA": 0.2, "BBB": -0.3}
	assert.Equal(t, small, NormalizeWeights(small, 1.0))

	// Input map is not mutated
	assert.InDelta(t, 0.6, weights["AAA"], 1e-12)
}

func TestComputePortfolioMetrics_Exposures(t *testing.T) {
	m, err := ComputePortfolioMetrics(
		[]float64{0.1, -0.05},
		[]float64{0.02, 0.01},
		[]float64{0.2, 0.3},
		DefaultRiskFreeRate,
	)
	require.NoError(t, err)

	assert.InDelta(t, 0.15, m.GrossExposure, 1e-12)
	assert.InDelta(t, 0.05, m.NetExposure, 1e-12)
	assert.InDelta(t, 0.10, m.LongExposure, 1e-12)
	assert.InDelta(t, 0.05, m.ShortExposure, 1e-12)

	assert.InDelta(t, 0.1*0.02+(-0.05)*0.01, m.ExpectedReturn, 1e-12)
	expectedVol := math.Sqrt(0.02*0.02 + 0.015*0.015)
	assert.InDelta(t, expectedVol, m.ExpectedVolatility, 1e-12)
	assert.InDelta(t, (m.ExpectedReturn-0.04/12)/expectedVol, m.ExpectedSharpe, 1e-12)
}

func TestComputePortfolioMetrics_Concentration(t *testing.T) {
	m, err := ComputePortfolioMetrics(
		[]float64{0.25, 0.25, 0.25, 0.25},
		[]float64{0.01, 0.01, 0.01, 0.01},
		[]float64{0.2, 0.2, 0.2, 0.2},
		DefaultRiskFreeRate,
	)
	require.NoError(t, err)

	assert.InDelta(t, 0.25, m.HerfindahlIndex, 1e-12, "equal weights: HHI = 1/n")
	assert.InDelta(t, 4.0, m.EffectivePositions, 1e-12)
}

func TestComputePortfolioMetrics_MismatchedLengths(t *testing.T) {
	_, err := ComputePortfolioMetrics([]float64{0.1}, []float64{0.01, 0.02}, []float64{0.2}, 0.04)
	require.Error(t, err)

	var ve *stats.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "weights", ve.Field)
}

func TestComputePortfolioMetrics_ZeroVolatility(t *testing.T) {
	m, err := ComputePortfolioMetrics([]float64{0.1}, []float64{0.02}, []float64{0}, 0.04)
	require.NoError(t, err)
	assert.Zero(t, m.ExpectedSharpe, "zero volatility must not divide")
}

func TestTurnover(t *testing.T) {
	prev := map[string]float64{"AAA": 0.05, "BBB": -0.03}
	curr := map[string]float64{"AAA": 0.02, "CCC": 0.04}

	// |0.02-0.05| + |0-(-0.03)| + |0.04| = 0.10 -> turnover 0.05
	assert.InDelta(t, 0.05, Turnover(prev, curr), 1e-12)

	assert.Zero(t, Turnover(prev, prev))
	assert.InDelta(t, 0.04, Turnover(nil, map[string]float64{"AAA": 0.08}), 1e-12)
}
