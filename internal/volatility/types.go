package volatility

import (
	"time"

	"eqrisk/internal/stats"
)

// TradingDaysPerYear is the annualization basis for daily statistics.
const TradingDaysPerYear = 252

// Default estimator parameters.
const (
	// DefaultRangeWindow is the trailing window for the Parkinson and
	// Garman-Klass range estimators.
	DefaultRangeWindow = 20

	// LambdaFast and LambdaSlow are the two configured EWMA decay rates.
	LambdaFast = 0.94
	LambdaSlow = 0.97
)

// PriceBar is a single day's OHLC observation. Open, High and Low are
// optional for the close-to-close estimators; the range estimators require
// all four fields to be positive.
type PriceBar struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// HasRange reports whether the bar carries a usable high/low range.
func (b PriceBar) HasRange() bool {
	return b.High > 0 && b.Low > 0 && b.High >= b.Low
}

// HasOHLC reports whether the bar carries a full open/high/low/close set.
func (b PriceBar) HasOHLC() bool {
	return b.HasRange() && b.Open > 0 && b.Close > 0
}

// Point bundles the parallel estimator values for one date. Estimators that
// have not warmed up for the date are missing.
type Point struct {
	Date        time.Time   `json:"date"`
	Historical  stats.Value `json:"historical"`
	Rolling20   stats.Value `json:"rolling_20"`
	Rolling60   stats.Value `json:"rolling_60"`
	Rolling120  stats.Value `json:"rolling_120"`
	EWMA94      stats.Value `json:"ewma_94"`
	EWMA97      stats.Value `json:"ewma_97"`
	Parkinson   stats.Value `json:"parkinson"`
	GarmanKlass stats.Value `json:"garman_klass"`
}
