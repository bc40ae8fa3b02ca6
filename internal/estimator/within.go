package estimator

import (
	"math"

	"procap/domain/capability"
	"procap/internal/numeric"

	"github.com/montanaflynn/stats"
)

// WithinEstimate is the within-subgroup dispersion for one method.
// Sigma is NaN whenever Available is false.
type WithinEstimate struct {
	Sigma     float64
	Subgroups int
	DF        float64
	Available bool
}

// Subgroups splits sample into floor(n/m) contiguous subgroups of size m;
// the trailing remainder is discarded. m > n yields no subgroups.
func Subgroups(sample []float64, m int) [][]float64 {
	if m < 1 {
		return nil
	}
	k := len(sample) / m
	groups := make([][]float64, k)
	for i := 0; i < k; i++ {
		groups[i] = sample[i*m : (i+1)*m]
	}
	return groups
}

// EstimateWithin dispatches on method. Unknown methods fall back to the
// range-based estimator.
func EstimateWithin(sample []float64, m int, method capability.WithinMethod) WithinEstimate {
	switch method {
	case capability.WithinStdDev:
		return withinStdDev(sample, m)
	case capability.WithinPooled:
		return withinPooled(sample, m)
	case capability.WithinMovingRange:
		return withinMovingRange(sample)
	default:
		return withinRange(sample, m)
	}
}

func unavailable(subgroups int) WithinEstimate {
	return WithinEstimate{Sigma: math.NaN(), Subgroups: subgroups}
}

// withinRange is R̄/d2(m). Degrees of freedom follow the usual 0.9·k·(m-1)
// approximation for range-based estimates.
func withinRange(sample []float64, m int) WithinEstimate {
	groups := Subgroups(sample, m)
	d2, err := numeric.D2(m)
	if err != nil || len(groups) == 0 {
		return unavailable(len(groups))
	}
	ranges := make([]float64, len(groups))
	for i, g := range groups {
		lo, _ := stats.Min(g)
		hi, _ := stats.Max(g)
		ranges[i] = hi - lo
	}
	rBar, _ := stats.Mean(ranges)
	return WithinEstimate{
		Sigma:     rBar / d2,
		Subgroups: len(groups),
		DF:        dfFloor(0.9 * float64(len(groups)*(m-1))),
		Available: true,
	}
}

// withinStdDev is s̄/c4(m).
func withinStdDev(sample []float64, m int) WithinEstimate {
	groups := Subgroups(sample, m)
	if m < 2 || len(groups) == 0 {
		return unavailable(len(groups))
	}
	sds := make([]float64, len(groups))
	for i, g := range groups {
		sds[i], _ = stats.StandardDeviationSample(g)
	}
	sBar, _ := stats.Mean(sds)
	return WithinEstimate{
		Sigma:     sBar / numeric.C4(m),
		Subgroups: len(groups),
		DF:        dfFloor(float64(len(groups) * (m - 1))),
		Available: true,
	}
}

// withinPooled is sqrt(ΣΣ(x-x̄ᵢ)² / Σ(m-1)).
func withinPooled(sample []float64, m int) WithinEstimate {
	groups := Subgroups(sample, m)
	if m < 2 || len(groups) == 0 {
		return unavailable(len(groups))
	}
	var ss float64
	for _, g := range groups {
		gm, _ := stats.Mean(g)
		for _, x := range g {
			ss += (x - gm) * (x - gm)
		}
	}
	df := float64(len(groups) * (m - 1))
	return WithinEstimate{
		Sigma:     math.Sqrt(ss / df),
		Subgroups: len(groups),
		DF:        df,
		Available: true,
	}
}

// withinMovingRange is MR̄/1.128 over consecutive individuals. Its
// effective degrees of freedom are about 0.62·(n-1).
func withinMovingRange(sample []float64) WithinEstimate {
	n := len(sample)
	if n < 2 {
		return unavailable(n)
	}
	mr := make([]float64, n-1)
	for i := 1; i < n; i++ {
		mr[i-1] = math.Abs(sample[i] - sample[i-1])
	}
	mrBar, _ := stats.Mean(mr)
	return WithinEstimate{
		Sigma:     mrBar / numeric.MovingRangeD2,
		Subgroups: n,
		DF:        dfFloor(0.62 * float64(n-1)),
		Available: true,
	}
}

func dfFloor(df float64) float64 {
	return math.Max(df, 1)
}
