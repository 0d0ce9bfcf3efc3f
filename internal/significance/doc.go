// Package significance computes beta and correlation regressions against a
// benchmark series with t-statistics, p-values and confidence intervals.
//
// Exact Student-t tail probabilities are deliberately out of scope: p-values
// come from the normal-CDF approximation above 120 degrees of freedom and
// from a coarse critical-value table below, which is all the downstream
// display layer needs.
package significance
