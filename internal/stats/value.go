package stats

import "math"

// Value is an optional float64. It replaces the NaN sentinel for rolling
// estimators that have not warmed up yet: a missing point is {0, false},
// never a fabricated number.
type Value struct {
	Float float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Some returns a present Value. Non-finite inputs are demoted to missing so
// that NaN and Inf never cross a package boundary.
func Some(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Float: f, Valid: true}
}

// None returns a missing Value.
func None() Value {
	return Value{}
}

// ValidationError reports structurally invalid input, such as mismatched
// parallel array lengths. Insufficient or degenerate data never produces
// one; those cases return missing values instead.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	return ve.Message
}

// ValidValues extracts the present, finite values from a series of optional
// values, preserving order.
func ValidValues(values []Value) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid && !math.IsNaN(v.Float) && !math.IsInf(v.Float, 0) {
			out = append(out, v.Float)
		}
	}
	return out
}
