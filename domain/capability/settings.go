package capability

import (
	"strings"

	"procap/domain/core"
)

// MeanEstimator selects the process center used by the index calculator.
type MeanEstimator string

const (
	MeanArithmetic MeanEstimator = "mean"
	MeanMedian     MeanEstimator = "median"
)

// SigmaEstimator selects the long-term dispersion family.
type SigmaEstimator string

const (
	SigmaClassical SigmaEstimator = "classical"
	SigmaRobust    SigmaEstimator = "robust"
)

// WithinMethod selects how within-subgroup sigma is estimated.
type WithinMethod string

const (
	WithinRange       WithinMethod = "range"
	WithinStdDev      WithinMethod = "stdev"
	WithinPooled      WithinMethod = "pooled"
	WithinMovingRange WithinMethod = "moving_range"
)

// CIMethod selects how confidence intervals are produced.
type CIMethod string

const (
	CIAnalytic            CIMethod = "analytic"
	CIBootstrapPercentile CIMethod = "bootstrap_percentile"
	CIBootstrapBCa        CIMethod = "bootstrap_bca"
)

// NonNormalStrategy selects the distribution-fitting fallback.
type NonNormalStrategy string

const (
	NonNormalNone      NonNormalStrategy = "none"
	NonNormalAuto      NonNormalStrategy = "auto"
	NonNormalLogNormal NonNormalStrategy = "lognormal"
	NonNormalWeibull   NonNormalStrategy = "weibull"
)

// ParseMeanEstimator parses a mean estimator name.
func ParseMeanEstimator(s string) (MeanEstimator, error) {
	switch MeanEstimator(normalize(s)) {
	case MeanArithmetic, "":
		return MeanArithmetic, nil
	case MeanMedian:
		return MeanMedian, nil
	}
	return "", core.NewValidationError("estimators.mean", "unknown mean estimator "+quote(s))
}

// ParseSigmaEstimator parses a sigma estimator family; "mad" is accepted
// as an alias for robust.
func ParseSigmaEstimator(s string) (SigmaEstimator, error) {
	switch normalize(s) {
	case string(SigmaClassical), "":
		return SigmaClassical, nil
	case string(SigmaRobust), "mad":
		return SigmaRobust, nil
	}
	return "", core.NewValidationError("estimators.sigma", "unknown sigma estimator "+quote(s))
}

// ParseWithinMethod parses a within-subgroup method. An empty string yields
// the range-based default.
func ParseWithinMethod(s string) (WithinMethod, error) {
	switch normalize(s) {
	case string(WithinRange), "":
		return WithinRange, nil
	case string(WithinStdDev), "stddev":
		return WithinStdDev, nil
	case string(WithinPooled):
		return WithinPooled, nil
	case string(WithinMovingRange), "movingrange", "individuals":
		return WithinMovingRange, nil
	}
	return "", core.NewValidationError("estimators.within", "unknown within-subgroup method "+quote(s))
}

// ParseCIMethod parses a confidence interval method.
func ParseCIMethod(s string) (CIMethod, error) {
	switch normalize(s) {
	case string(CIAnalytic), "":
		return CIAnalytic, nil
	case string(CIBootstrapPercentile), "percentile":
		return CIBootstrapPercentile, nil
	case string(CIBootstrapBCa), "bca":
		return CIBootstrapBCa, nil
	}
	return "", core.NewValidationError("interval.method", "unknown confidence interval method "+quote(s))
}

// ParseNonNormalStrategy parses a non-normal strategy.
func ParseNonNormalStrategy(s string) (NonNormalStrategy, error) {
	switch NonNormalStrategy(normalize(s)) {
	case NonNormalNone, "":
		return NonNormalNone, nil
	case NonNormalAuto:
		return NonNormalAuto, nil
	case NonNormalLogNormal:
		return NonNormalLogNormal, nil
	case NonNormalWeibull:
		return NonNormalWeibull, nil
	}
	return "", core.NewValidationError("nonnormal.strategy", "unknown non-normal strategy "+quote(s))
}

// IsBootstrap reports whether the method resamples.
func (m CIMethod) IsBootstrap() bool {
	return m == CIBootstrapPercentile || m == CIBootstrapBCa
}

// UsesSubgroups reports whether the method partitions the sample into
// fixed-size subgroups. Moving range treats the sample as individuals.
func (m WithinMethod) UsesSubgroups() bool {
	return m != WithinMovingRange
}

// EstimatorSettings determines which formulas the estimator applies.
type EstimatorSettings struct {
	Mean   MeanEstimator
	Sigma  SigmaEstimator
	Within WithinMethod
}

// DefaultEstimatorSettings returns arithmetic mean, classical sigma and
// range-based within estimation.
func DefaultEstimatorSettings() EstimatorSettings {
	return EstimatorSettings{Mean: MeanArithmetic, Sigma: SigmaClassical, Within: WithinRange}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "-", "_")
}

func quote(s string) string {
	return "\"" + s + "\""
}
