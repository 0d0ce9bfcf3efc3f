package montecarlo

import (
	"math"
	"math/rand"
)

// NormalSource draws standard-normal variates. Implementations need not be
// safe for concurrent use; each simulation owns its source.
type NormalSource interface {
	Norm() float64
}

// boxMullerSource generates standard-normal variates with the Box-Muller
// transform over a uniform generator, caching the spare variate from each
// pair of uniform draws.
type boxMullerSource struct {
	rng      *rand.Rand
	spare    float64
	hasSpare bool
}

// NewBoxMullerSource returns a seeded Box-Muller normal source.
func NewBoxMullerSource(seed int64) NormalSource {
	return &boxMullerSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *boxMullerSource) Norm() float64 {
	if s.hasSpare {
		s.hasSpare = false
		return s.spare
	}

	// Two independent uniforms; u1 bounded away from 0 for the log
	u1 := s.rng.Float64()
	for u1 == 0 {
		u1 = s.rng.Float64()
	}
	u2 := s.rng.Float64()

	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2

	s.spare = r * math.Sin(theta)
	s.hasSpare = true
	return r * math.Cos(theta)
}
