package montecarlo

import (
	"math"

	"eqrisk/internal/stats"
)

// Bounds on the per-step log return. The clamp keeps a single extreme draw
// from overflowing or underflowing the exponential.
const (
	maxStepLogReturn = 5.0
	minStepLogReturn = -5.0
)

// DefaultOversampleFactor is how many candidate paths are generated per
// requested path when outlier filtering is enabled.
const DefaultOversampleFactor = 1.3

// Params holds drift and variance estimates for a return series.
type Params struct {
	MeanReturn float64 `json:"mean_return"`
	Variance   float64 `json:"variance"`
	Drift      float64 `json:"drift"`
}

// EstimateParameters derives GBM parameters from a daily log-return series.
// The variance uses the population (n) convention, and the drift carries the
// Ito correction: drift = mean - variance/2.
func EstimateParameters(returns []float64) Params {
	mean := stats.Mean(returns)
	variance := stats.PopulationVariance(returns)
	return Params{
		MeanReturn: mean,
		Variance:   variance,
		Drift:      mean - 0.5*variance,
	}
}

// Config controls a simulation run.
type Config struct {
	NumPaths         int     `json:"num_paths"`
	NumSteps         int     `json:"num_steps"`
	Drift            float64 `json:"drift"`
	Volatility       float64 `json:"volatility"`
	Dt               float64 `json:"dt"`
	FilterOutliers   bool    `json:"filter_outliers"`
	OversampleFactor float64 `json:"oversample_factor"`
}

// DefaultConfig returns a simulation configuration with outlier filtering
// enabled, a unit time step, and the standard oversampling factor.
func DefaultConfig(numPaths, numSteps int, drift, volatility float64) Config {
	return Config{
		NumPaths:         numPaths,
		NumSteps:         numSteps,
		Drift:            drift,
		Volatility:       volatility,
		Dt:               1,
		FilterOutliers:   true,
		OversampleFactor: DefaultOversampleFactor,
	}
}

// Path is one simulated price trajectory; index is the step, so the length
// is numSteps+1 and Path[0] is the seed price.
type Path []float64

// Result is a simulated path ensemble. When outlier filtering discards too
// many candidates the ensemble holds fewer than Requested paths; the counts
// expose the shortfall instead of hiding it.
type Result struct {
	Paths     []Path `json:"paths"`
	Requested int    `json:"requested"`
	Generated int    `json:"generated"`
	Kept      int    `json:"kept"`
}

// FinalPrices returns the terminal price of each path.
func (r Result) FinalPrices() []float64 {
	finals := make([]float64, len(r.Paths))
	for i, p := range r.Paths {
		finals[i] = p[len(p)-1]
	}
	return finals
}

// Simulate generates a GBM path ensemble from startPrice. With filtering
// enabled it oversamples by cfg.OversampleFactor, drops paths whose terminal
// price falls more than 3 population standard deviations from the ensemble
// mean, and truncates to cfg.NumPaths survivors in generation order. Paths
// that go non-finite or non-positive at any step are discarded outright.
//
// The contract is "at most NumPaths, possibly fewer": aggressive filtering
// on a short ensemble can leave a shortfall, reported via Result counts.
func Simulate(startPrice float64, cfg Config, src NormalSource) Result {
	result := Result{Requested: cfg.NumPaths}
	if cfg.NumPaths <= 0 || cfg.NumSteps <= 0 || startPrice <= 0 || src == nil {
		return result
	}

	dt := cfg.Dt
	if dt <= 0 {
		dt = 1
	}
	oversample := cfg.OversampleFactor
	if oversample < 1 {
		oversample = DefaultOversampleFactor
	}

	generate := cfg.NumPaths
	if cfg.FilterOutliers {
		generate = int(math.Ceil(float64(cfg.NumPaths) * oversample))
	}
	result.Generated = generate

	stepDrift := (cfg.Drift - 0.5*cfg.Volatility*cfg.Volatility) * dt
	stepVol := cfg.Volatility * math.Sqrt(dt)

	paths := make([]Path, 0, generate)
	for p := 0; p < generate; p++ {
		path := make(Path, cfg.NumSteps+1)
		path[0] = startPrice
		price := startPrice
		valid := true
		for step := 1; step <= cfg.NumSteps; step++ {
			logReturn := clamp(stepDrift+stepVol*src.Norm(), minStepLogReturn, maxStepLogReturn)
			price *= math.Exp(logReturn)
			if !stats.IsFinite(price) || price <= 0 {
				valid = false
				break
			}
			path[step] = price
		}
		if valid {
			paths = append(paths, path)
		}
	}

	if cfg.FilterOutliers && len(paths) > cfg.NumPaths {
		paths = filterOutliers(paths, cfg.NumPaths)
	}
	if len(paths) > cfg.NumPaths {
		paths = paths[:cfg.NumPaths]
	}

	result.Paths = paths
	result.Kept = len(paths)
	return result
}

// filterOutliers keeps paths whose terminal price lies within 3 population
// standard deviations of the ensemble mean, truncated to limit survivors in
// generation order.
func filterOutliers(paths []Path, limit int) []Path {
	finals := make([]float64, len(paths))
	for i, p := range paths {
		finals[i] = p[len(p)-1]
	}
	mean := stats.Mean(finals)
	stdDev := stats.PopulationStdDev(finals)
	if stdDev == 0 {
		if len(paths) > limit {
			return paths[:limit]
		}
		return paths
	}

	kept := make([]Path, 0, limit)
	for i, p := range paths {
		if math.Abs(finals[i]-mean) <= 3*stdDev {
			kept = append(kept, p)
			if len(kept) == limit {
				break
			}
		}
	}
	return kept
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
