// Package estimator turns a measurement sample into ProcessStatistics:
// central tendency, overall and within-subgroup dispersion, shape moments
// and a normality verdict.
package estimator

import (
	"fmt"
	"math"

	"procap/domain/capability"
	"procap/domain/core"

	"github.com/montanaflynn/stats"
)

// madScale makes the median absolute deviation a consistent estimator of
// sigma for normal data.
const madScale = 1.4826

// Compute runs the estimator once over sample. m is the subgroup size;
// it is ignored by the moving-range method.
func Compute(sample []float64, m int, settings capability.EstimatorSettings) (capability.ProcessStatistics, error) {
	if err := checkSample(sample); err != nil {
		return capability.ProcessStatistics{}, err
	}
	if m < 1 {
		return capability.ProcessStatistics{}, fmt.Errorf("%w: %d", core.ErrInvalidSubgroupSize, m)
	}
	// unknown methods were rejected when the Config was built; anything
	// that still gets here is estimated range-based
	method, err := capability.ParseWithinMethod(string(settings.Within))
	if err != nil {
		method = capability.WithinRange
	}
	settings.Within = method

	mean, _ := stats.Mean(sample)
	median, _ := stats.Median(sample)
	minVal, _ := stats.Min(sample)
	maxVal, _ := stats.Max(sample)
	stdDev, err := stats.StandardDeviationSample(sample)
	if err != nil {
		return capability.ProcessStatistics{}, fmt.Errorf("overall sigma: %w", err)
	}
	mad, _ := stats.MedianAbsoluteDeviationPopulation(sample)

	within := EstimateWithin(sample, m, method)
	skew, kurt := Moments(sample, mean)

	return capability.ProcessStatistics{
		N:               len(sample),
		SubgroupSize:    m,
		Subgroups:       within.Subgroups,
		Mean:            mean,
		Median:          median,
		Min:             minVal,
		Max:             maxVal,
		StdDevOverall:   stdDev,
		StdDevRobust:    madScale * mad,
		StdDevWithin:    within.Sigma,
		WithinAvailable: within.Available,
		WithinMethod:    method,
		WithinDF:        within.DF,
		Skewness:        skew,
		ExcessKurtosis:  kurt,
		Normality:       TestNormality(len(sample), skew, kurt),
		Settings:        settings,
	}, nil
}

// checkSample rejects samples no sigma can be computed from.
func checkSample(sample []float64) error {
	switch {
	case len(sample) == 0:
		return core.ErrEmptySample
	case len(sample) < 2:
		return fmt.Errorf("%w: overall sigma needs n >= 2, got %d", core.ErrInsufficientData, len(sample))
	}
	for i, v := range sample {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w (index %d)", core.ErrInvalidSample, i)
		}
	}
	return nil
}

// Moments returns the population skewness m3/m2^1.5 and excess kurtosis
// m4/m2²-3 without small-sample bias correction. A constant sample yields
// (0, 0).
func Moments(sample []float64, mean float64) (skewness, excessKurtosis float64) {
	n := float64(len(sample))
	var m2, m3, m4 float64
	for _, x := range sample {
		d := x - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	m2 /= n
	m3 /= n
	m4 /= n
	if m2 == 0 {
		return 0, 0
	}
	return m3 / math.Pow(m2, 1.5), m4/(m2*m2) - 3
}
