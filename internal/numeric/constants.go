package numeric

import (
	"fmt"
	"math"

	"procap/domain/core"
)

// MovingRangeD2 is d2 for a span of two consecutive individuals.
const MovingRangeD2 = 1.128

// d2Table holds the ASTM E2587 range bias-correction constants, index m.
var d2Table = [...]float64{
	2:  1.128,
	3:  1.693,
	4:  2.059,
	5:  2.326,
	6:  2.534,
	7:  2.704,
	8:  2.847,
	9:  2.970,
	10: 3.078,
	11: 3.173,
	12: 3.258,
	13: 3.336,
	14: 3.407,
	15: 3.472,
	16: 3.532,
	17: 3.588,
	18: 3.640,
	19: 3.689,
	20: 3.735,
	21: 3.778,
	22: 3.819,
	23: 3.858,
	24: 3.895,
	25: 3.931,
}

// d2Slope extrapolates beyond the table along the 20..25 secant.
const d2Slope = (3.931 - 3.735) / 5

// D2 returns the range bias-correction constant for subgroup size m.
// Tabulated values are exact for 2 <= m <= 25; larger m is extrapolated
// linearly as d2(25) + 0.0392*(m-25).
func D2(m int) (float64, error) {
	switch {
	case m < 2:
		return 0, fmt.Errorf("%w: d2 requires m >= 2, got %d", core.ErrInvalidSubgroupSize, m)
	case m < len(d2Table):
		return d2Table[m], nil
	default:
		return d2Table[25] + d2Slope*float64(m-25), nil
	}
}

// C4 returns the standard-deviation bias-correction constant
// sqrt(2/(m-1))·Γ(m/2)/Γ((m-1)/2). For m <= 1 it is defined as 1.
func C4(m int) float64 {
	if m <= 1 {
		return 1
	}
	k := float64(m)
	return math.Sqrt(2/(k-1)) * math.Exp(LogGamma(k/2)-LogGamma((k-1)/2))
}
