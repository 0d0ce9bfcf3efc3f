package montecarlo

import (
	"math"

	"eqrisk/internal/stats"
)

// DefaultDistributionBins is the default histogram resolution.
const DefaultDistributionBins = 60

// Bin is one histogram bucket over terminal prices. Density normalizes the
// count by ensemble size and bin width so the histogram can be overlaid on
// an analytic density.
type Bin struct {
	Price   float64 `json:"price"` // bin center
	Count   int     `json:"count"`
	Density float64 `json:"density"`
}

// Summary holds the percentile spread and mean of terminal prices.
// Invariant: P5 <= P25 <= P50 <= P75 <= P95.
type Summary struct {
	P5   float64 `json:"p5"`
	P25  float64 `json:"p25"`
	P50  float64 `json:"p50"`
	P75  float64 `json:"p75"`
	P95  float64 `json:"p95"`
	Mean float64 `json:"mean"`
}

// FinalDistribution bins the terminal prices of a path ensemble. The bin
// range is percentile-trimmed: the 2nd..98th percentile span of sorted
// terminal prices, extended by 10% on each side, divided into numBins
// uniform buckets. Values outside the trimmed range are clamped into the
// edge bins. Returns nil for an empty ensemble.
func FinalDistribution(paths []Path, numBins int) []Bin {
	if len(paths) == 0 {
		return nil
	}
	if numBins <= 0 {
		numBins = DefaultDistributionBins
	}

	finals := make([]float64, len(paths))
	for i, p := range paths {
		finals[i] = p[len(p)-1]
	}
	sorted := stats.SortedCopy(finals)

	lo := stats.Quantile(sorted, 0.02)
	hi := stats.Quantile(sorted, 0.98)
	span := hi - lo
	lo -= span * 0.10
	hi += span * 0.10
	if hi <= lo {
		// Degenerate ensemble: every terminal price identical
		return []Bin{{Price: lo, Count: len(finals), Density: 0}}
	}

	binWidth := (hi - lo) / float64(numBins)
	bins := make([]Bin, numBins)
	for i := range bins {
		bins[i].Price = lo + (float64(i)+0.5)*binWidth
	}
	for _, v := range finals {
		idx := int((v - lo) / binWidth)
		if idx < 0 {
			idx = 0
		}
		if idx >= numBins {
			idx = numBins - 1
		}
		bins[idx].Count++
	}

	norm := float64(len(finals)) * binWidth
	for i := range bins {
		bins[i].Density = float64(bins[i].Count) / norm
	}
	return bins
}

// TheoreticalDistribution evaluates the analytic log-normal terminal-price
// density implied by GBM at each bin center, for overlay against the
// simulated histogram. In log-price space the distribution has mean
// drift*finalTime and variance volatility^2*finalTime.
func TheoreticalDistribution(startPrice, finalTime, drift, volatility float64, bins []Bin) []Bin {
	out := make([]Bin, len(bins))
	m := drift * finalTime
	sigma := volatility * math.Sqrt(finalTime)
	for i, b := range bins {
		out[i] = Bin{Price: b.Price}
		if b.Price <= 0 || sigma <= 0 || startPrice <= 0 {
			continue
		}
		z := (math.Log(b.Price/startPrice) - m) / sigma
		out[i].Density = math.Exp(-0.5*z*z) / (b.Price * sigma * math.Sqrt(2*math.Pi))
	}
	return out
}

// Percentiles summarizes the terminal prices of a path ensemble using
// nearest-rank indexing (floor(n*q)). Returns a zero summary for an empty
// ensemble.
func Percentiles(paths []Path) Summary {
	if len(paths) == 0 {
		return Summary{}
	}

	finals := make([]float64, len(paths))
	for i, p := range paths {
		finals[i] = p[len(p)-1]
	}
	sorted := stats.SortedCopy(finals)

	return Summary{
		P5:   nearestRank(sorted, 0.05),
		P25:  nearestRank(sorted, 0.25),
		P50:  nearestRank(sorted, 0.50),
		P75:  nearestRank(sorted, 0.75),
		P95:  nearestRank(sorted, 0.95),
		Mean: stats.Mean(sorted),
	}
}

func nearestRank(sorted []float64, q float64) float64 {
	idx := int(math.Floor(float64(len(sorted)) * q))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
