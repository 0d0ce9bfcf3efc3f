// Package volatility turns a daily price history into parallel annualized
// volatility series.
//
// Estimators:
//
//  1. Historical: expanding-window sample standard deviation of log returns
//  2. Rolling: trailing-window historical volatility (20/60/120 days)
//  3. EWMA: recursive exponentially weighted variance (lambda 0.94 and 0.97)
//  4. Parkinson: range-based estimator from intraday high/low
//  5. Garman-Klass: range-based estimator from open/high/low/close
//
// All estimators annualize with a fixed 252 trading-day year. Points that
// have not warmed up are reported as missing stats.Value entries, never as
// fabricated numbers.
//
// Variance conventions are intentionally mixed: the historical and rolling
// estimators use the sample (n-1) convention while the EWMA recursion is a
// biased exponential average. Each estimator documents its own convention.
package volatility
