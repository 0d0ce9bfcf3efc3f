// Package tailrisk computes downside risk statistics over log-return
// series: Value at Risk and Expected Shortfall by historical simulation,
// a parametric normal model, and a GARCH(1,1) conditional-volatility
// model. All VaR and ES values are reported as positive loss fractions,
// so a 99% VaR of 0.02 means a 2% one-day loss.
package tailrisk
