package volatility

import (
	"time"

	"eqrisk/internal/stats"
)

// ComputeMeasures assembles one Point per date from the second bar onward,
// combining every estimator in parallel. Bars must be ordered by strictly
// increasing date with positive closes. Returns an empty series when fewer
// than 2 bars are supplied.
func ComputeMeasures(bars []PriceBar) []Point {
	if len(bars) < 2 {
		return nil
	}

	returns := Returns(bars)
	rolling20 := Rolling(returns, 20)
	rolling60 := Rolling(returns, 60)
	rolling120 := Rolling(returns, 120)
	ewma94 := EWMA(returns, LambdaFast)
	ewma97 := EWMA(returns, LambdaSlow)
	parkinson := Parkinson(bars, DefaultRangeWindow)
	garmanKlass := GarmanKlass(bars, DefaultRangeWindow)

	points := make([]Point, len(returns))
	for i := range returns {
		points[i] = Point{
			Date:        bars[i+1].Date,
			Historical:  Historical(returns[:i+1]),
			Rolling20:   rolling20[i],
			Rolling60:   rolling60[i],
			Rolling120:  rolling120[i],
			EWMA94:      ewma94[i],
			EWMA97:      ewma97[i],
			// Range estimators are aligned to the bar, which is offset by
			// one from the return index.
			Parkinson:   parkinson[i+1],
			GarmanKlass: garmanKlass[i+1],
		}
	}
	return points
}

// Percentile reports where current sits within a set of historical values,
// as the fraction of valid values less than or equal to current, on a
// 0-100 scale. Returns 0 when no valid historical values exist.
func Percentile(current float64, historical []stats.Value) float64 {
	valid := stats.ValidValues(historical)
	if len(valid) == 0 {
		return 0
	}
	count := 0
	for _, v := range valid {
		if v <= current {
			count++
		}
	}
	return float64(count) / float64(len(valid)) * 100
}

// CompareAroundEvent computes historical volatility over the windowDays
// returns immediately before and immediately after the located event date.
// dates must be parallel to returns. Both results are 0 when the event date
// is not found or sits fewer than windowDays returns from the start of the
// series. The after-window is truncated at the end of the series.
func CompareAroundEvent(returns []float64, dates []time.Time, eventDate time.Time, windowDays int) (before, after float64) {
	if len(returns) != len(dates) || windowDays <= 0 {
		return 0, 0
	}

	idx := -1
	for i, d := range dates {
		if d.Equal(eventDate) {
			idx = i
			break
		}
	}
	if idx < windowDays {
		return 0, 0
	}

	end := idx + windowDays
	if end > len(returns) {
		end = len(returns)
	}

	if v := Historical(returns[idx-windowDays : idx]); v.Valid {
		before = v.Float
	}
	if v := Historical(returns[idx:end]); v.Valid {
		after = v.Float
	}
	return before, after
}
