package indices

import (
	"fmt"
	"math"

	"procap/domain/capability"
	"procap/domain/core"
	"procap/internal/numeric"
)

const ppmPerPercent = 10_000

// Tail computes the expected out-of-spec percentages from the long-term
// sigma under a normal model. Only tails with a defined limit are set;
// yield is 100 minus the defined tails.
func Tail(spec capability.Specification, ps capability.ProcessStatistics) (capability.TailMetrics, error) {
	if !spec.HasLimits() {
		return capability.TailMetrics{YieldPercent: 100}, nil
	}
	sigma := ps.SigmaLongTerm()
	if math.IsNaN(sigma) {
		return capability.TailMetrics{}, fmt.Errorf("%w: overall sigma is undefined", core.ErrInsufficientData)
	}
	if sigma <= 0 {
		return capability.TailMetrics{}, fmt.Errorf("tail metrics: %w", core.ErrZeroVariance)
	}
	mu := ps.Center()

	var below, above float64
	if lsl, ok := spec.LSL.Get(); ok {
		below = numeric.NormalCDF((lsl-mu)/sigma) * 100
	}
	if usl, ok := spec.USL.Get(); ok {
		above = (1 - numeric.NormalCDF((usl-mu)/sigma)) * 100
	}
	return TailFromPercentages(spec, below, above), nil
}

// TailFromPercentages builds TailMetrics from externally computed tail
// percentages, used by the non-normal fitting path.
func TailFromPercentages(spec capability.Specification, below, above float64) capability.TailMetrics {
	tm := capability.TailMetrics{YieldPercent: 100}
	var total float64
	if spec.LSL.IsSet() {
		tm.PercentBelowLSL = capability.Some(below)
		tm.PPMBelowLSL = capability.Some(below * ppmPerPercent)
		total += below
	}
	if spec.USL.IsSet() {
		tm.PercentAboveUSL = capability.Some(above)
		tm.PPMAboveUSL = capability.Some(above * ppmPerPercent)
		total += above
	}
	tm.TotalPPM = total * ppmPerPercent
	tm.YieldPercent = 100 - total
	return tm
}
