package significance

import "math"

// Significance markers attached to p-values.
const (
	MarkerStrong   = "***"
	MarkerModerate = "**"
	MarkerWeak     = "*"
	MarkerNone     = "not significant"
)

// Interval is a two-sided confidence interval.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Result bundles a coefficient estimate with its significance statistics.
type Result struct {
	Coefficient        float64  `json:"coefficient"`
	StandardError      float64  `json:"standard_error"`
	TStatistic         float64  `json:"t_statistic"`
	PValue             float64  `json:"p_value"`
	ConfidenceInterval Interval `json:"confidence_interval"`
	SignificanceLevel  string   `json:"significance_level"`
}

// TStatistic computes t = coefficient/standardError with an approximate
// two-tailed p-value. A zero standard error yields a not-significant result
// with p=1 instead of a division by zero.
func TStatistic(coefficient, standardError float64, df int) Result {
	if standardError == 0 {
		return Result{
			Coefficient:       coefficient,
			PValue:            1,
			SignificanceLevel: MarkerNone,
		}
	}

	t := coefficient / standardError
	p := pValueForT(t, df)
	return Result{
		Coefficient:       coefficient,
		StandardError:     standardError,
		TStatistic:        t,
		PValue:            p,
		SignificanceLevel: marker(p),
	}
}

// pValueForT approximates the two-tailed p-value of a t statistic. Above
// 120 degrees of freedom the t distribution is close enough to normal that
// the CDF approximation applies; below, the statistic is bucketed against
// the critical-value table into {0.001, 0.01, 0.05, 0.10, 0.20}.
func pValueForT(t float64, df int) float64 {
	abs := math.Abs(t)
	if df > 120 {
		return 2 * (1 - NormalCDF(abs))
	}

	// 3.291 is the two-tailed normal critical value at p=0.001
	switch {
	case abs >= 3.291:
		return 0.001
	case abs >= tCritical(df, 0.01):
		return 0.01
	case abs >= tCritical(df, 0.05):
		return 0.05
	case abs >= tCritical(df, 0.10):
		return 0.10
	default:
		return 0.20
	}
}

func marker(p float64) string {
	switch {
	case p < 0.001:
		return MarkerStrong
	case p < 0.01:
		return MarkerModerate
	case p < 0.05:
		return MarkerWeak
	default:
		return MarkerNone
	}
}

// NormalCDF evaluates the standard normal CDF using the Abramowitz-Stegun
// rational polynomial approximation (26.2.17), accurate to about 7.5e-8.
func NormalCDF(x float64) float64 {
	if x < 0 {
		return 1 - NormalCDF(-x)
	}

	const (
		b0 = 0.2316419
		b1 = 0.319381530
		b2 = -0.356563782
		b3 = 1.781477937
		b4 = -1.821255978
		b5 = 1.330274429
	)

	t := 1 / (1 + b0*x)
	pdf := math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
	poly := t * (b1 + t*(b2+t*(b3+t*(b4+t*b5))))
	return 1 - pdf*poly
}

// ConfidenceInterval builds a two-sided interval at the given confidence
// level (e.g. 0.95): estimate +- tCritical(df, 1-level) * standardError.
func ConfidenceInterval(estimate, standardError float64, df int, level float64) Interval {
	crit := tCritical(df, 1-level)
	return Interval{
		Lower: estimate - crit*standardError,
		Upper: estimate + crit*standardError,
	}
}
