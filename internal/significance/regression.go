package significance

import (
	"math"

	"eqrisk/internal/stats"
)

// MinSampleSize is the minimum number of paired observations for a
// regression or correlation estimate.
const MinSampleSize = 30

// BetaResult holds a market-model regression of stock returns on benchmark
// returns with significance statistics for the beta coefficient.
type BetaResult struct {
	N                int     `json:"n"`
	DF               int     `json:"df"`
	Alpha            float64 `json:"alpha"`
	RSquared         float64 `json:"r_squared"`
	ResidualVariance float64 `json:"residual_variance"`
	Beta             Result  `json:"beta"`
}

// BetaStatistics regresses stock returns on market returns:
//
//	beta  = cov(stock, market) / var(market)
//	alpha = mean(stock) - beta * mean(market)
//
// with sample (n-1) moments throughout, standard error of beta
// sqrt(residualVariance / (var(market)*(n-2))) and n-2 degrees of freedom.
// Returns nil when the series lengths differ, fewer than MinSampleSize
// observations are supplied, or the market variance is zero.
func BetaStatistics(stockReturns, marketReturns []float64, level float64) *BetaResult {
	n := len(stockReturns)
	if n != len(marketReturns) || n < MinSampleSize {
		return nil
	}

	varMarket := stats.SampleVariance(marketReturns)
	if varMarket == 0 {
		return nil
	}
	varStock := stats.SampleVariance(stockReturns)
	cov := stats.Covariance(stockReturns, marketReturns)

	beta := cov / varMarket
	alpha := stats.Mean(stockReturns) - beta*stats.Mean(marketReturns)

	rSquared := 0.0
	if varStock > 0 {
		rSquared = cov * cov / (varMarket * varStock)
	}
	residualVariance := varStock * (1 - rSquared)

	df := n - 2
	standardError := math.Sqrt(residualVariance / (varMarket * float64(df)))

	betaStat := TStatistic(beta, standardError, df)
	betaStat.ConfidenceInterval = ConfidenceInterval(beta, standardError, df, level)

	return &BetaResult{
		N:                n,
		DF:               df,
		Alpha:            alpha,
		RSquared:         rSquared,
		ResidualVariance: residualVariance,
		Beta:             betaStat,
	}
}

// CorrelationResult holds a Pearson correlation estimate with significance
// statistics and a Fisher-z confidence interval.
type CorrelationResult struct {
	N                  int      `json:"n"`
	DF                 int      `json:"df"`
	Correlation        float64  `json:"correlation"`
	TStatistic         float64  `json:"t_statistic"`
	PValue             float64  `json:"p_value"`
	SignificanceLevel  string   `json:"significance_level"`
	ConfidenceInterval Interval `json:"confidence_interval"`
}

// CorrelationStatistics computes the Pearson correlation between two series
// with t = r*sqrt((n-2)/(1-r^2)) on n-2 degrees of freedom. The confidence
// interval is built in Fisher-z space (z = atanh(r), SE = 1/sqrt(n-3)) and
// mapped back with tanh. Returns nil when the lengths differ or fewer than
// MinSampleSize observations are supplied.
func CorrelationStatistics(x, y []float64, level float64) *CorrelationResult {
	n := len(x)
	if n != len(y) || n < MinSampleSize {
		return nil
	}

	r := stats.Correlation(x, y)
	df := n - 2

	var t float64
	if denom := 1 - r*r; denom > 1e-12 {
		t = r * math.Sqrt(float64(df)/denom)
	} else if r != 0 {
		// Perfectly collinear series: arbitrarily large t
		t = math.Copysign(1e6, r)
	}
	p := pValueForT(t, df)

	z := 0.5 * math.Log((1+r)/(1-r))
	seZ := 1 / math.Sqrt(float64(n-3))
	crit := tCritical(dfInf, 1-level)
	ci := Interval{
		Lower: math.Tanh(z - crit*seZ),
		Upper: math.Tanh(z + crit*seZ),
	}
	if !stats.IsFinite(z) {
		// r == +-1 exactly: the interval collapses to the point estimate
		ci = Interval{Lower: r, Upper: r}
	}

	return &CorrelationResult{
		N:                  n,
		DF:                 df,
		Correlation:        r,
		TStatistic:         t,
		PValue:             p,
		SignificanceLevel:  marker(p),
		ConfidenceInterval: ci,
	}
}
