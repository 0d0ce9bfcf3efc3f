// Package stats provides the shared statistics primitives used by every
// analytics component: means, variances under both the sample (n-1) and
// population (n) conventions, covariance, correlation, log returns, and
// quantiles.
//
// The two variance conventions are exposed as separate functions on purpose.
// Different estimators in this codebase are specified with different
// denominators (historical volatility uses the sample convention, Monte Carlo
// parameter estimation uses the population convention), and keeping the
// choice explicit at every call site avoids convention drift.
//
// The package also defines Value, an explicit optional float64 used to
// represent "not yet computable" points in rolling series. Components return
// Value instead of letting NaN propagate through comparisons.
package stats
