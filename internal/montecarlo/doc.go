// Package montecarlo simulates forward price paths under geometric Brownian
// motion and summarizes the resulting terminal-price distribution.
//
// The only source of randomness is the NormalSource supplied by the caller;
// tests inject a fixed-seed source for reproducible paths. Production code
// uses NewBoxMullerSource over math/rand.
package montecarlo
