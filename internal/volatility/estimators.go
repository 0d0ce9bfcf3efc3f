package volatility

import (
	"math"

	"eqrisk/internal/stats"
)

// Returns computes natural-log close-to-close returns for a bar series.
// The result has length len(bars)-1. Closes must be strictly positive.
func Returns(bars []PriceBar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return stats.LogReturns(closes)
}

// Historical computes annualized volatility as the sample (n-1) standard
// deviation of log returns scaled by sqrt(252). Missing when fewer than
// 2 returns are available.
func Historical(returns []float64) stats.Value {
	if len(returns) < 2 {
		return stats.None()
	}
	return stats.Some(annualize(stats.SampleVariance(returns)))
}

// Rolling computes trailing-window historical volatility. The first
// window-1 entries are missing.
func Rolling(returns []float64, window int) []stats.Value {
	if window < 2 {
		window = 2
	}
	out := make([]stats.Value, len(returns))
	for i := range returns {
		if i < window-1 {
			out[i] = stats.None()
			continue
		}
		out[i] = Historical(returns[i-window+1 : i+1])
	}
	return out
}

// EWMA computes the recursive exponentially weighted variance
//
//	v_0 = r_0^2
//	v_t = lambda*v_{t-1} + (1-lambda)*r_t^2
//
// and reports sqrt(v_t * 252) at each step. The recursion is a biased
// exponential average, deliberately without Bessel correction.
func EWMA(returns []float64, lambda float64) []stats.Value {
	if len(returns) == 0 {
		return nil
	}
	out := make([]stats.Value, len(returns))
	variance := returns[0] * returns[0]
	out[0] = stats.Some(annualize(variance))
	for i := 1; i < len(returns); i++ {
		variance = lambda*variance + (1-lambda)*returns[i]*returns[i]
		out[i] = stats.Some(annualize(variance))
	}
	return out
}

// Parkinson computes the range-based Parkinson estimator over a trailing
// window of bars:
//
//	sqrt( (1/(4 ln 2)) * mean( ln(high/low)^2 ) * 252 )
//
// A point is missing until the window is full or when any bar in the window
// lacks a usable high/low range.
func Parkinson(bars []PriceBar, window int) []stats.Value {
	if window < 1 {
		window = 1
	}
	terms := make([]float64, len(bars))
	usable := make([]bool, len(bars))
	for i, b := range bars {
		if !b.HasRange() {
			continue
		}
		hl := math.Log(b.High / b.Low)
		terms[i] = hl * hl
		usable[i] = true
	}

	const factor = 1.0 / (4.0 * math.Ln2)
	return windowedEstimate(terms, usable, window, func(meanTerm float64) float64 {
		return annualize(factor * meanTerm)
	})
}

// GarmanKlass computes the range-based Garman-Klass estimator over a
// trailing window of bars:
//
//	sqrt( mean( 0.5*hl^2 - (2 ln 2 - 1)*co^2 ) * 252 )
//
// with hl = ln(high/low) and co = ln(close/open). A point is missing until
// the window is full or when any bar in the window lacks full OHLC data.
// The per-bar term can be negative on large close-to-open moves; a window
// whose mean term goes negative is reported as missing rather than as an
// imaginary volatility.
func GarmanKlass(bars []PriceBar, window int) []stats.Value {
	if window < 1 {
		window = 1
	}
	terms := make([]float64, len(bars))
	usable := make([]bool, len(bars))
	for i, b := range bars {
		if !b.HasOHLC() {
			continue
		}
		hl := math.Log(b.High / b.Low)
		co := math.Log(b.Close / b.Open)
		terms[i] = 0.5*hl*hl - (2*math.Ln2-1)*co*co
		usable[i] = true
	}

	return windowedEstimate(terms, usable, window, func(meanTerm float64) float64 {
		if meanTerm < 0 {
			return math.NaN() // demoted to missing by stats.Some
		}
		return annualize(meanTerm)
	})
}

// windowedEstimate applies finish to the trailing-window mean of terms,
// emitting missing values for warmup and for windows containing unusable
// bars.
func windowedEstimate(terms []float64, usable []bool, window int, finish func(float64) float64) []stats.Value {
	out := make([]stats.Value, len(terms))
	for i := range terms {
		if i < window-1 {
			out[i] = stats.None()
			continue
		}
		sum := 0.0
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if !usable[j] {
				ok = false
				break
			}
			sum += terms[j]
		}
		if !ok {
			out[i] = stats.None()
			continue
		}
		out[i] = stats.Some(finish(sum / float64(window)))
	}
	return out
}

// annualize converts a daily variance to annualized volatility.
func annualize(dailyVariance float64) float64 {
	return math.Sqrt(dailyVariance * TradingDaysPerYear)
}
