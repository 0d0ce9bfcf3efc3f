// Package channel fits standard-deviation regression channels over close
// prices. A channel is an OLS line of price against the bar index with
// parallel bands at +-k residual standard deviations, used as a chart
// overlay and trend-quality measure.
package channel

import (
	"fmt"
	"math"
	"time"

	"eqrisk/internal/stats"
)

// DefaultWidth is the band half-width in residual standard deviations.
const DefaultWidth = 2.0

// Fit is a regression channel over a price window.
type Fit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Sigma     float64 `json:"sigma"`
	RSquared  float64 `json:"r_squared"`
	Width     float64 `json:"width"`
	N         int     `json:"n"`
}

// Midline evaluates the fitted regression line at index i.
func (f Fit) Midline(i int) float64 {
	return f.Intercept + f.Slope*float64(i)
}

// Upper evaluates the upper band at index i.
func (f Fit) Upper(i int) float64 {
	return f.Midline(i) + f.Width*f.Sigma
}

// Lower evaluates the lower band at index i.
func (f Fit) Lower(i int) float64 {
	return f.Midline(i) - f.Width*f.Sigma
}

// FitChannel regresses prices against the integer index 0..n-1:
//
//	slope     = cov(index, price) / var(index)
//	intercept = mean(price) - slope * mean(index)
//
// with sample (n-1) moments, residual sigma sqrt(sum(resid^2)/(n-1)) when
// n > 2 and 0 otherwise, and r^2 from the Pearson correlation of index and
// price. Returns an error when fewer than 2 prices are supplied.
func FitChannel(prices []float64, k float64) (Fit, error) {
	n := len(prices)
	if n < 2 {
		return Fit{}, &stats.ValidationError{
			Field:   "prices",
			Message: fmt.Sprintf("channel fit requires at least 2 prices, got %d", n),
			Value:   n,
		}
	}

	index := make([]float64, n)
	for i := range index {
		index[i] = float64(i)
	}

	varIndex := stats.SampleVariance(index)
	slope := stats.Covariance(index, prices) / varIndex
	intercept := stats.Mean(prices) - slope*stats.Mean(index)

	sigma := 0.0
	if n > 2 {
		sumSquared := 0.0
		for i, p := range prices {
			resid := p - (intercept + slope*float64(i))
			sumSquared += resid * resid
		}
		sigma = math.Sqrt(sumSquared / float64(n-1))
	}

	r := stats.Correlation(index, prices)

	return Fit{
		Slope:     slope,
		Intercept: intercept,
		Sigma:     sigma,
		RSquared:  r * r,
		Width:     k,
		N:         n,
	}, nil
}

// FindOptimalWindow fits a channel on each trailing window of size
// minWindow, minWindow+step, ..., maxWindow (clamped to the available data)
// and returns the window size and fit with the highest r^2. When no window
// fits, it falls back to the smaller of minWindow and the full series.
func FindOptimalWindow(prices []float64, minWindow, maxWindow, step int, k float64) (int, Fit) {
	n := len(prices)
	if step < 1 {
		step = 1
	}
	if maxWindow > n {
		maxWindow = n
	}

	bestWindow := 0
	var bestFit Fit
	bestR2 := -1.0

	for w := minWindow; w <= maxWindow; w += step {
		fit, err := FitChannel(prices[n-w:], k)
		if err != nil {
			continue
		}
		if fit.RSquared > bestR2 {
			bestR2 = fit.RSquared
			bestWindow = w
			bestFit = fit
		}
	}

	if bestWindow == 0 {
		fallback := minWindow
		if n < fallback {
			fallback = n
		}
		fit, err := FitChannel(prices[n-fallback:], k)
		if err != nil {
			return fallback, Fit{Width: k}
		}
		return fallback, fit
	}
	return bestWindow, bestFit
}

// SeriesPoint carries the channel overlay values for one date. Dates before
// the fitted window start are missing.
type SeriesPoint struct {
	Date    time.Time   `json:"date"`
	Close   float64     `json:"close"`
	Midline stats.Value `json:"midline"`
	Upper   stats.Value `json:"upper"`
	Lower   stats.Value `json:"lower"`
}

// Series is a channel fit applied over a dated close series.
type Series struct {
	Fit    Fit           `json:"fit"`
	Points []SeriesPoint `json:"points"`
}

// ApplyToSeries fits a channel over the trailing windowSize closes (or the
// full series when windowSize <= 0 or exceeds the data) and evaluates the
// bands at every date in the window. Dates preceding the window are emitted
// with missing band values so the output stays parallel to the input.
func ApplyToSeries(dates []time.Time, closes []float64, k float64, windowSize int) (Series, error) {
	n := len(closes)
	if n != len(dates) {
		return Series{}, &stats.ValidationError{
			Field:   "dates",
			Message: fmt.Sprintf("mismatched series lengths: dates=%d closes=%d", len(dates), n),
		}
	}

	start := 0
	if windowSize > 0 && windowSize < n {
		start = n - windowSize
	}

	fit, err := FitChannel(closes[start:], k)
	if err != nil {
		return Series{}, err
	}

	points := make([]SeriesPoint, n)
	for i := range closes {
		points[i] = SeriesPoint{Date: dates[i], Close: closes[i]}
		if i < start {
			continue
		}
		j := i - start
		points[i].Midline = stats.Some(fit.Midline(j))
		points[i].Upper = stats.Some(fit.Upper(j))
		points[i].Lower = stats.Some(fit.Lower(j))
	}

	return Series{Fit: fit, Points: points}, nil
}
