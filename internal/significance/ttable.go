package significance

// Tabulated two-tailed t critical values. Lookups snap to the nearest
// tabulated degrees-of-freedom row; anything above 120 df uses the normal
// (infinite-df) row.
var tCriticalTable = map[int]map[float64]float64{
	30:    {0.10: 1.697, 0.05: 2.042, 0.01: 2.750},
	60:    {0.10: 1.671, 0.05: 2.000, 0.01: 2.660},
	120:   {0.10: 1.658, 0.05: 1.980, 0.01: 2.617},
	dfInf: {0.10: 1.645, 0.05: 1.960, 0.01: 2.576},
}

// dfInf marks the infinite-df (standard normal) row.
const dfInf = 1 << 20

var tabulatedDFs = []int{30, 60, 120}

// tCritical returns the two-tailed critical value for the given degrees of
// freedom and significance level, snapping df to the nearest tabulated row
// and alpha to the nearest tabulated level.
func tCritical(df int, alpha float64) float64 {
	return tCriticalTable[snapDF(df)][snapAlpha(alpha)]
}

func snapDF(df int) int {
	if df > 120 {
		return dfInf
	}
	best := tabulatedDFs[0]
	for _, cand := range tabulatedDFs {
		if abs(df-cand) < abs(df-best) {
			best = cand
		}
	}
	return best
}

func snapAlpha(alpha float64) float64 {
	levels := []float64{0.10, 0.05, 0.01}
	best := levels[0]
	for _, cand := range levels {
		if absF(alpha-cand) < absF(alpha-best) {
			best = cand
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
