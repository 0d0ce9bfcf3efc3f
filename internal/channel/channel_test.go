package channel

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearPrices(n int, a, b float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a + b*float64(i)
	}
	return out
}

func TestFitChannel_PerfectLinearSeries(t *testing.T) {
	prices := linearPrices(50, 100, 0.5)

	fit, err := FitChannel(prices, DefaultWidth)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, fit.Slope, 1e-9)
	assert.InDelta(t, 100, fit.Intercept, 1e-9)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)
	assert.InDelta(t, 0.0, fit.Sigma, 1e-9)
	assert.Equal(t, 50, fit.N)
}

func TestFitChannel_Bands(t *testing.T) {
	// Prices oscillate around a flat line at 100
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 100
		if i%2 == 0 {
			prices[i] = 102
		} else {
			prices[i] = 98
		}
	}

	fit, err := FitChannel(prices, 2.0)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, fit.Slope, 0.05)
	assert.Greater(t, fit.Sigma, 1.0)
	assert.InDelta(t, fit.Midline(10)+2*fit.Sigma, fit.Upper(10), 1e-12)
	assert.InDelta(t, fit.Midline(10)-2*fit.Sigma, fit.Lower(10), 1e-12)
}

func TestFitChannel_TooFewPrices(t *testing.T) {
	_, err := FitChannel([]float64{100}, 2.0)
	require.Error(t, err)

	_, err = FitChannel(nil, 2.0)
	require.Error(t, err)
}

func TestFitChannel_TwoPointsZeroSigma(t *testing.T) {
	fit, err := FitChannel([]float64{100, 110}, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, 10, fit.Slope, 1e-12)
	assert.Zero(t, fit.Sigma, "sigma requires n > 2")
}

func TestFindOptimalWindow_PrefersTrendyTail(t *testing.T) {
	// Noisy first half, perfectly linear second half: the scan should pick
	// a window confined to the linear tail.
	prices := make([]float64, 120)
	for i := 0; i < 60; i++ {
		prices[i] = 100 + 5*math.Sin(float64(i)*1.1)
	}
	for i := 60; i < 120; i++ {
		prices[i] = 100 + float64(i-60)
	}

	window, fit := FindOptimalWindow(prices, 20, 100, 10, 2.0)

	assert.LessOrEqual(t, window, 60)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)
	assert.InDelta(t, 1.0, fit.Slope, 1e-9)
}

func TestFindOptimalWindow_ClampsToData(t *testing.T) {
	prices := linearPrices(30, 50, 1)

	window, fit := FindOptimalWindow(prices, 20, 500, 20, 2.0)
	assert.Equal(t, 20, window)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)
}

func TestFindOptimalWindow_FallbackOnShortSeries(t *testing.T) {
	prices := linearPrices(5, 10, 2)

	window, fit := FindOptimalWindow(prices, 20, 100, 10, 2.0)
	assert.Equal(t, 5, window, "falls back to the full series when shorter than minWindow")
	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
}

func TestApplyToSeries_FullSeries(t *testing.T) {
	n := 30
	dates := make([]time.Time, n)
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i)
	}
	closes := linearPrices(n, 100, 1)

	series, err := ApplyToSeries(dates, closes, 2.0, 0)
	require.NoError(t, err)
	require.Len(t, series.Points, n)

	for i, p := range series.Points {
		require.True(t, p.Midline.Valid, "full-series fit covers every date")
		assert.InDelta(t, closes[i], p.Midline.Float, 1e-9)
		assert.InDelta(t, p.Midline.Float, p.Upper.Float, 1e-9, "zero sigma collapses the bands")
	}
}

func TestApplyToSeries_TrailingWindowPadsHead(t *testing.T) {
	n := 50
	dates := make([]time.Time, n)
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i)
	}
	closes := linearPrices(n, 100, 0.5)

	series, err := ApplyToSeries(dates, closes, 2.0, 20)
	require.NoError(t, err)
	require.Len(t, series.Points, n)

	for i := 0; i < 30; i++ {
		assert.False(t, series.Points[i].Midline.Valid, "dates before the window are missing")
		assert.False(t, series.Points[i].Upper.Valid)
		assert.False(t, series.Points[i].Lower.Valid)
	}
	for i := 30; i < n; i++ {
		require.True(t, series.Points[i].Midline.Valid)
		assert.InDelta(t, closes[i], series.Points[i].Midline.Float, 1e-9)
	}
	assert.Equal(t, 20, series.Fit.N)
}

func TestApplyToSeries_MismatchedLengths(t *testing.T) {
	dates := []time.Time{time.Now()}
	_, err := ApplyToSeries(dates, []float64{100, 101}, 2.0, 0)
	require.Error(t, err)
}
