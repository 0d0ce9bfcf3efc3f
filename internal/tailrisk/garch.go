package tailrisk

import (
	"errors"
	"math"

	"eqrisk/internal/stats"
	"eqrisk/internal/volatility"
)

// Grid-search bounds for the GARCH(1,1) fit. Omega is not searched
// directly: it is pinned by variance targeting so the unconditional
// variance matches the sample variance for every candidate.
const (
	garchAlphaMin  = 0.01
	garchAlphaMax  = 0.25
	garchBetaMin   = 0.50
	garchBetaMax   = 0.98
	garchGridStep  = 0.01
	garchMaxPersis = 0.999
)

// conditionalVolWindow bounds the reported conditional volatility track.
const conditionalVolWindow = 252

// GARCHForecast holds annualized volatility forecasts at 1, 5 and 10
// trading days ahead.
type GARCHForecast struct {
	H1  float64 `json:"h1"`
	H5  float64 `json:"h5"`
	H10 float64 `json:"h10"`
}

// GARCHResult is a fitted GARCH(1,1) variance model
//
//	h_t = omega + alpha*eps_{t-1}^2 + beta*h_{t-1}
//
// over demeaned daily log returns.
type GARCHResult struct {
	Omega       float64 `json:"omega"`
	Alpha       float64 `json:"alpha"`
	Beta        float64 `json:"beta"`
	Persistence float64 `json:"persistence"`

	// HalfLife is the number of days for a volatility shock to decay by
	// half; missing when persistence is outside (0, 1).
	HalfLife stats.Value `json:"half_life"`

	// UnconditionalVol is the annualized long-run volatility implied by
	// the parameters; missing when persistence >= 1.
	UnconditionalVol stats.Value `json:"unconditional_vol"`

	// ConditionalVol is the annualized conditional volatility track for
	// the most recent conditionalVolWindow observations.
	ConditionalVol []float64 `json:"conditional_vol"`

	// NextVolatility is the one-step-ahead daily conditional volatility.
	NextVolatility float64 `json:"next_volatility"`

	Forecast      GARCHForecast `json:"forecast"`
	Mean          float64       `json:"mean"`
	LogLikelihood float64       `json:"log_likelihood"`
	NumObs        int           `json:"num_obs"`
}

// FitGARCH fits a GARCH(1,1) to daily log returns by maximizing the
// Gaussian log-likelihood over an (alpha, beta) grid, with omega set by
// variance targeting and the recursion seeded at the sample variance.
// Returns an error when fewer than MinSampleSize returns are supplied or
// the series has zero variance.
func FitGARCH(returns []float64) (*GARCHResult, error) {
	n := len(returns)
	if n < MinSampleSize {
		return nil, errors.New("insufficient returns for GARCH fit")
	}

	mean := stats.Mean(returns)
	eps := make([]float64, n)
	for i, r := range returns {
		eps[i] = r - mean
	}
	sampleVar := stats.SampleVariance(returns)
	if sampleVar <= 0 {
		return nil, errors.New("zero return variance")
	}

	bestAlpha, bestBeta := 0.0, 0.0
	bestLL := math.Inf(-1)
	for a := garchAlphaMin; a <= garchAlphaMax+1e-9; a += garchGridStep {
		for b := garchBetaMin; b <= garchBetaMax+1e-9; b += garchGridStep {
			if a+b >= garchMaxPersis {
				continue
			}
			omega := sampleVar * (1 - a - b)
			ll := garchLogLikelihood(eps, omega, a, b, sampleVar)
			if ll > bestLL {
				bestLL = ll
				bestAlpha = a
				bestBeta = b
			}
		}
	}
	if math.IsInf(bestLL, -1) {
		return nil, errors.New("GARCH likelihood did not evaluate")
	}

	persistence := bestAlpha + bestBeta
	omega := sampleVar * (1 - persistence)

	// Conditional variance track and one-step forecast.
	h := make([]float64, n)
	h[0] = sampleVar
	for t := 1; t < n; t++ {
		h[t] = omega + bestAlpha*eps[t-1]*eps[t-1] + bestBeta*h[t-1]
	}
	nextVar := omega + bestAlpha*eps[n-1]*eps[n-1] + bestBeta*h[n-1]

	condVol := make([]float64, 0, conditionalVolWindow)
	start := 0
	if n > conditionalVolWindow {
		start = n - conditionalVolWindow
	}
	for _, v := range h[start:] {
		condVol = append(condVol, annualizeVariance(v))
	}

	result := &GARCHResult{
		Omega:          omega,
		Alpha:          bestAlpha,
		Beta:           bestBeta,
		Persistence:    persistence,
		ConditionalVol: condVol,
		NextVolatility: math.Sqrt(nextVar),
		Mean:           mean,
		LogLikelihood:  bestLL,
		NumObs:         n,
	}

	if persistence > 0 && persistence < 1 {
		result.HalfLife = stats.Some(math.Log(0.5) / math.Log(persistence))
		uncondVar := omega / (1 - persistence)
		result.UnconditionalVol = stats.Some(annualizeVariance(uncondVar))

		// Multi-step forecasts mean-revert toward the unconditional
		// variance at rate persistence per day.
		forecastVar := func(k int) float64 {
			return uncondVar + math.Pow(persistence, float64(k-1))*(nextVar-uncondVar)
		}
		result.Forecast = GARCHForecast{
			H1:  annualizeVariance(forecastVar(1)),
			H5:  annualizeVariance(forecastVar(5)),
			H10: annualizeVariance(forecastVar(10)),
		}
	} else {
		result.Forecast = GARCHForecast{
			H1:  annualizeVariance(nextVar),
			H5:  annualizeVariance(nextVar),
			H10: annualizeVariance(nextVar),
		}
	}

	return result, nil
}

// garchLogLikelihood evaluates the Gaussian log-likelihood of the
// demeaned returns under the given parameters, seeding h_0 at h0.
func garchLogLikelihood(eps []float64, omega, alpha, beta, h0 float64) float64 {
	ll := 0.0
	h := h0
	for t, e := range eps {
		if t > 0 {
			prev := eps[t-1]
			h = omega + alpha*prev*prev + beta*h
		}
		if h <= 0 {
			return math.Inf(-1)
		}
		ll += -0.5 * (math.Log(2*math.Pi) + math.Log(h) + e*e/h)
	}
	return ll
}

// garchMeasure converts the one-step conditional volatility forecast into
// a normal-model VaR and ES at the given confidence level.
func garchMeasure(fit *GARCHResult, confidence float64) Measure {
	alpha := 1 - confidence
	z := InverseNormalCDF(alpha)
	vol := fit.NextVolatility
	return Measure{
		VaR: -(fit.Mean + z*vol),
		ES:  -(fit.Mean - vol*normalPDF(z)/alpha),
	}
}

func annualizeVariance(dailyVariance float64) float64 {
	return math.Sqrt(dailyVariance * volatility.TradingDaysPerYear)
}
