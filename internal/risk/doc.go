// Package risk ties the volatility, simulation, significance, sizing,
// channel and tail-risk components into per-symbol reports. Sections
// whose inputs are missing or insufficient are skipped with a warning
// rather than failing the report.
package risk
