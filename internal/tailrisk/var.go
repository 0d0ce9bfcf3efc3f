package tailrisk

import (
	"fmt"

	"eqrisk/internal/stats"
)

const (
	// DefaultWindow is the lookback window for historical simulation.
	DefaultWindow = 252

	// MinSampleSize is the minimum number of returns for any tail
	// statistic. Empirical quantiles on fewer observations are noise.
	MinSampleSize = 100
)

// DefaultConfidenceLevels are the reporting levels for VaR and ES.
var DefaultConfidenceLevels = []float64{0.95, 0.99}

// Measure pairs a Value at Risk estimate with its Expected Shortfall,
// both as positive loss fractions.
type Measure struct {
	VaR float64 `json:"var"`
	ES  float64 `json:"es"`
}

// Estimate carries the three per-method measures at one confidence level.
// GARCH is nil when no GARCH(1,1) fit was available for the series.
type Estimate struct {
	Confidence float64  `json:"confidence"`
	Historical Measure  `json:"historical"`
	Parametric Measure  `json:"parametric"`
	GARCH      *Measure `json:"garch,omitempty"`
}

// HistoricalVaR computes the empirical (1-confidence) quantile of the
// returns as a positive loss, with ES as the mean of the returns at or
// below the VaR threshold. When the tail is empty the ES falls back to
// the VaR itself.
func HistoricalVaR(returns []float64, confidence float64) Measure {
	alpha := 1 - confidence
	sorted := stats.SortedCopy(returns)
	v := -stats.Quantile(sorted, alpha)

	tailSum := 0.0
	tailN := 0
	for _, r := range returns {
		if r <= -v {
			tailSum += r
			tailN++
		}
	}
	es := v
	if tailN > 0 {
		es = -tailSum / float64(tailN)
	}
	return Measure{VaR: v, ES: es}
}

// ParametricVaR computes VaR and ES under a normal model with the sample
// mean and sample (n-1) standard deviation of the returns:
//
//	VaR = -(mu + z*sigma)          z = quantile(alpha)
//	ES  = -(mu - sigma*phi(z)/alpha)
func ParametricVaR(returns []float64, confidence float64) Measure {
	alpha := 1 - confidence
	mu := stats.Mean(returns)
	sigma := stats.SampleStdDev(returns)
	z := InverseNormalCDF(alpha)
	return Measure{
		VaR: -(mu + z*sigma),
		ES:  -(mu - sigma*normalPDF(z)/alpha),
	}
}

// Compute produces VaR and ES estimates for each confidence level over
// the trailing window of returns, along with the GARCH(1,1) fit behind
// the GARCH measures. The GARCH measures use the fitted one-step
// conditional volatility and are clamped at zero; when the fit fails
// they fall back to the parametric measures and the returned fit is
// nil. Returns nil estimates when fewer than MinSampleSize returns are
// supplied.
func Compute(returns []float64, levels []float64, window int) ([]Estimate, *GARCHResult) {
	if len(returns) < MinSampleSize {
		return nil, nil
	}
	if len(levels) == 0 {
		levels = DefaultConfidenceLevels
	}
	if window <= 0 {
		window = DefaultWindow
	}

	recent := returns
	if len(returns) > window {
		recent = returns[len(returns)-window:]
	}

	fit, fitErr := FitGARCH(returns)
	if fitErr != nil {
		fit = nil
	}

	out := make([]Estimate, 0, len(levels))
	for _, cl := range levels {
		e := Estimate{
			Confidence: cl,
			Historical: HistoricalVaR(recent, cl),
			Parametric: ParametricVaR(recent, cl),
		}

		g := e.Parametric
		if fit != nil {
			g = garchMeasure(fit, cl)
		}
		if g.VaR < 0 {
			g.VaR = 0
		}
		if g.ES < 0 {
			g.ES = 0
		}
		e.GARCH = &g

		out = append(out, e)
	}
	return out, fit
}

// Series is a rolling VaR backtest track: at each date from the end of
// the first full window onward, the VaR estimated from the preceding
// window is paired with the return actually realized on that date.
type Series struct {
	ActualReturns []float64 `json:"actual_returns"`
	HistoricalVaR []float64 `json:"historical_var"`
	ParametricVaR []float64 `json:"parametric_var"`
	Confidence    float64   `json:"confidence"`
	Window        int       `json:"window"`
}

// RollingVaRSeries computes historical and parametric VaR on each
// trailing window for backtesting. Requires window+20 observations so
// the track has a meaningful length.
func RollingVaRSeries(returns []float64, confidence float64, window int) (Series, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	n := len(returns)
	if n < window+20 {
		return Series{}, fmt.Errorf("rolling VaR requires at least %d observations, got %d", window+20, n)
	}

	alpha := 1 - confidence
	z := InverseNormalCDF(alpha)

	s := Series{
		ActualReturns: make([]float64, 0, n-window),
		HistoricalVaR: make([]float64, 0, n-window),
		ParametricVaR: make([]float64, 0, n-window),
		Confidence:    confidence,
		Window:        window,
	}

	for t := window; t < n; t++ {
		lookback := returns[t-window : t]

		sorted := stats.SortedCopy(lookback)
		s.HistoricalVaR = append(s.HistoricalVaR, -stats.Quantile(sorted, alpha))

		mu := stats.Mean(lookback)
		sigma := stats.SampleStdDev(lookback)
		s.ParametricVaR = append(s.ParametricVaR, -(mu + z*sigma))

		s.ActualReturns = append(s.ActualReturns, returns[t])
	}
	return s, nil
}
