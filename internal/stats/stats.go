package stats

import (
	"math"
	"sort"
)

// Mean computes the arithmetic mean. Returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleVariance computes variance with the n-1 (Bessel-corrected)
// denominator. Returns 0 when fewer than 2 values are provided.
func SampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sumSquared := 0.0
	for _, v := range values {
		d := v - mean
		sumSquared += d * d
	}
	return sumSquared / float64(len(values)-1)
}

// PopulationVariance computes variance with the n denominator.
// Returns 0 for an empty slice.
func PopulationVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	sumSquared := 0.0
	for _, v := range values {
		d := v - mean
		sumSquared += d * d
	}
	return sumSquared / float64(len(values))
}

// SampleStdDev is the square root of SampleVariance.
func SampleStdDev(values []float64) float64 {
	return math.Sqrt(SampleVariance(values))
}

// PopulationStdDev is the square root of PopulationVariance.
func PopulationStdDev(values []float64) float64 {
	return math.Sqrt(PopulationVariance(values))
}

// Covariance computes sample covariance (n-1 denominator) between two
// equal-length series. Returns 0 when the lengths differ or fewer than
// 2 pairs are available.
func Covariance(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	meanX := Mean(x)
	meanY := Mean(y)
	sum := 0.0
	for i := range x {
		sum += (x[i] - meanX) * (y[i] - meanY)
	}
	return sum / float64(len(x)-1)
}

// Correlation computes the Pearson correlation coefficient. Returns 0 when
// either series has zero variance or the lengths differ.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	sx := SampleStdDev(x)
	sy := SampleStdDev(y)
	if sx == 0 || sy == 0 {
		return 0
	}
	return Covariance(x, y) / (sx * sy)
}

// LogReturns computes natural-log returns from consecutive prices:
// r_i = ln(price_i / price_{i-1}). The caller must guarantee strictly
// positive prices. The result has length len(prices)-1; a slice shorter
// than 2 yields an empty result.
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = math.Log(prices[i] / prices[i-1])
	}
	return returns
}

// Quantile returns the value at quantile q (0..1) of an already-sorted
// slice, using linear interpolation between adjacent order statistics.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	index := q * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// SortedCopy returns an ascending-sorted copy of values.
func SortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
