package tailrisk

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seededReturns produces a reproducible pseudo-normal return series with
// the given daily volatility.
func seededReturns(n int, dailyVol float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64() * dailyVol
	}
	return out
}

func TestInverseNormalCDF(t *testing.T) {
	tests := []struct {
		p        float64
		expected float64
	}{
		{p: 0.5, expected: 0},
		{p: 0.05, expected: -1.6449},
		{p: 0.01, expected: -2.3263},
		{p: 0.95, expected: 1.6449},
		{p: 0.975, expected: 1.9600},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.expected, InverseNormalCDF(tt.p), 5e-4, "p=%v", tt.p)
	}

	assert.True(t, math.IsInf(InverseNormalCDF(0), -1))
	assert.True(t, math.IsInf(InverseNormalCDF(1), 1))
}

func TestHistoricalVaR_KnownQuantile(t *testing.T) {
	// 100 evenly spaced returns from -0.05 to +0.049: the 5% quantile
	// sits near the 5th-smallest value.
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = -0.05 + float64(i)*0.001
	}

	m := HistoricalVaR(returns, 0.95)
	assert.InDelta(t, 0.04505, m.VaR, 1e-9)
	assert.GreaterOrEqual(t, m.ES, m.VaR, "expected shortfall is at least the VaR")

	// Tail mean over returns <= -VaR: {-0.050 ... -0.046}
	assert.InDelta(t, 0.048, m.ES, 1e-9)
}

func TestHistoricalVaR_EmptyTailFallsBackToVaR(t *testing.T) {
	returns := []float64{0.01, 0.02, 0.03, 0.04}
	m := HistoricalVaR(returns, 0.95)
	// All returns positive: VaR is negative (a gain) and the tail below
	// -VaR may be empty, in which case ES equals VaR.
	if m.ES != m.VaR {
		assert.GreaterOrEqual(t, m.ES, m.VaR)
	}
}

func TestParametricVaR_ZeroMean(t *testing.T) {
	// Symmetric two-point series: mean 0, sample stddev computable by hand.
	returns := make([]float64, 200)
	for i := range returns {
		if i%2 == 0 {
			returns[i] = 0.01
		} else {
			returns[i] = -0.01
		}
	}
	sigma := 0.01 * math.Sqrt(200.0/199.0)

	m := ParametricVaR(returns, 0.95)
	z := InverseNormalCDF(0.05)
	assert.InDelta(t, -z*sigma, m.VaR, 1e-9)
	assert.InDelta(t, sigma*normalPDF(z)/0.05, m.ES, 1e-9)
	assert.Greater(t, m.ES, m.VaR, "normal ES always exceeds VaR at the same level")
}

func TestCompute_InsufficientData(t *testing.T) {
	estimates, fit := Compute(seededReturns(50, 0.01, 1), nil, 0)
	assert.Nil(t, estimates)
	assert.Nil(t, fit)
}

func TestCompute_DefaultLevels(t *testing.T) {
	returns := seededReturns(600, 0.012, 7)

	estimates, fit := Compute(returns, nil, 0)
	require.Len(t, estimates, 2)
	require.NotNil(t, fit)

	assert.InDelta(t, 0.95, estimates[0].Confidence, 1e-12)
	assert.InDelta(t, 0.99, estimates[1].Confidence, 1e-12)

	for _, e := range estimates {
		assert.Greater(t, e.Historical.VaR, 0.0)
		assert.GreaterOrEqual(t, e.Historical.ES, e.Historical.VaR)
		assert.Greater(t, e.Parametric.VaR, 0.0)
		assert.Greater(t, e.Parametric.ES, e.Parametric.VaR)
		require.NotNil(t, e.GARCH)
		assert.GreaterOrEqual(t, e.GARCH.VaR, 0.0)
		assert.GreaterOrEqual(t, e.GARCH.ES, 0.0)
	}

	// 99% losses dominate 95% losses method by method.
	assert.Greater(t, estimates[1].Historical.VaR, estimates[0].Historical.VaR)
	assert.Greater(t, estimates[1].Parametric.VaR, estimates[0].Parametric.VaR)
}

func TestFitGARCH_InsufficientData(t *testing.T) {
	_, err := FitGARCH(seededReturns(50, 0.01, 1))
	require.Error(t, err)
}

func TestFitGARCH_ZeroVariance(t *testing.T) {
	flat := make([]float64, 300)
	_, err := FitGARCH(flat)
	require.Error(t, err)
}

func TestFitGARCH_ParameterRanges(t *testing.T) {
	returns := seededReturns(500, 0.015, 11)

	fit, err := FitGARCH(returns)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, fit.Alpha, garchAlphaMin)
	assert.LessOrEqual(t, fit.Alpha, garchAlphaMax)
	assert.GreaterOrEqual(t, fit.Beta, garchBetaMin)
	assert.LessOrEqual(t, fit.Beta, garchBetaMax)
	assert.Less(t, fit.Persistence, garchMaxPersis)
	assert.Greater(t, fit.Omega, 0.0)
	assert.Equal(t, 500, fit.NumObs)
	assert.Len(t, fit.ConditionalVol, 252)

	require.True(t, fit.HalfLife.Valid)
	assert.InDelta(t, math.Log(0.5)/math.Log(fit.Persistence), fit.HalfLife.Float, 1e-9)

	// Variance targeting: the implied unconditional vol matches the
	// sample vol of the input by construction.
	require.True(t, fit.UnconditionalVol.Valid)
	assert.Greater(t, fit.UnconditionalVol.Float, 0.0)
}

func TestFitGARCH_ForecastMeanReversion(t *testing.T) {
	returns := seededReturns(500, 0.015, 11)

	fit, err := FitGARCH(returns)
	require.NoError(t, err)
	require.True(t, fit.UnconditionalVol.Valid)

	uncond := fit.UnconditionalVol.Float
	d1 := math.Abs(fit.Forecast.H1 - uncond)
	d10 := math.Abs(fit.Forecast.H10 - uncond)
	assert.LessOrEqual(t, d10, d1+1e-12, "longer horizons sit closer to the long-run level")
}

func TestFitGARCH_ClusteredSeriesPersistence(t *testing.T) {
	// A volatility-clustered series: 250 quiet days, 125 noisy, 125 quiet.
	returns := make([]float64, 0, 500)
	returns = append(returns, seededReturns(250, 0.005, 3)...)
	returns = append(returns, seededReturns(125, 0.03, 4)...)
	returns = append(returns, seededReturns(125, 0.005, 5)...)

	fit, err := FitGARCH(returns)
	require.NoError(t, err)
	assert.Greater(t, fit.Persistence, 0.8, "clustered variance demands high persistence")
}

func TestRollingVaRSeries(t *testing.T) {
	returns := seededReturns(300, 0.01, 21)

	s, err := RollingVaRSeries(returns, 0.99, 252)
	require.NoError(t, err)

	require.Len(t, s.ActualReturns, 48)
	require.Len(t, s.HistoricalVaR, 48)
	require.Len(t, s.ParametricVaR, 48)
	assert.InDelta(t, 0.99, s.Confidence, 1e-12)
	assert.Equal(t, 252, s.Window)

	// First entry reproduces a direct single-window computation.
	m := HistoricalVaR(returns[:252], 0.99)
	assert.InDelta(t, m.VaR, s.HistoricalVaR[0], 1e-12)
	p := ParametricVaR(returns[:252], 0.99)
	assert.InDelta(t, p.VaR, s.ParametricVaR[0], 1e-12)
	assert.InDelta(t, returns[252], s.ActualReturns[0], 1e-12)
}

func TestRollingVaRSeries_TooShort(t *testing.T) {
	_, err := RollingVaRSeries(seededReturns(260, 0.01, 1), 0.99, 252)
	require.Error(t, err)
}

func BenchmarkFitGARCH(b *testing.B) {
	returns := seededReturns(500, 0.015, 11)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := FitGARCH(returns); err != nil {
			b.Fatal(err)
		}
	}
}
