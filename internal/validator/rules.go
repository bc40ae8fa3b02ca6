package validator

import (
	"fmt"

	"procap/domain/capability"
	"procap/domain/validation"
)

// Sample-size tiers.
const (
	criticalSampleSize = 10
	smallSampleSize    = 25
	marginalSampleSize = 50
	moderateSampleSize = 100
)

const (
	minSubgroups       = 25
	minToleranceWidth  = 1e-3
	rangeSmallSubgroup = 4
	rangeLargeSubgroup = 10
	fewResamples       = 1000
	manyResamples      = 10000
)

func finding(sev validation.Severity, code validation.Code, field, msg, action string) validation.ValidationError {
	return validation.ValidationError{Field: field, Message: msg, Severity: sev, Action: action, Code: code}
}

// SpecificationRules checks the relationships between the limits and the
// target.
func SpecificationRules(in Input) validation.Result {
	spec := in.Config.Spec
	var out validation.Result

	lsl, hasLSL := spec.LSL.Get()
	usl, hasUSL := spec.USL.Get()
	target, hasTarget := spec.Target.Get()

	if !hasLSL && !hasUSL {
		out = append(out, finding(validation.SeverityWarning, validation.CodeNoLimits, "specification",
			"no specification limits are set; no capability indices can be computed",
			"set at least one of LSL or USL"))
	}
	if hasLSL && hasUSL {
		if lsl >= usl {
			out = append(out, finding(validation.SeverityError, validation.CodeLSLNotBelowUSL, "specification.lsl",
				fmt.Sprintf("LSL (%g) must be below USL (%g)", lsl, usl),
				"swap or correct the limits"))
		} else if usl-lsl < minToleranceWidth {
			out = append(out, finding(validation.SeverityWarning, validation.CodeToleranceTooSmall, "specification",
				fmt.Sprintf("tolerance width %g is below %g", usl-lsl, minToleranceWidth),
				"check the limit units"))
		}
		if hasTarget && (target <= lsl || target >= usl) {
			out = append(out, finding(validation.SeverityError, validation.CodeTargetOutOfRange, "specification.target",
				fmt.Sprintf("target %g is outside (%g, %g)", target, lsl, usl),
				"place the target between the limits"))
		}
	}
	if hasTarget && hasLSL != hasUSL {
		out = append(out, finding(validation.SeverityInfo, validation.CodeOneSidedTarget, "specification.target",
			"a target on a one-sided specification is ignored; Cpm is unavailable", ""))
	}
	return out
}

// SampleSizeRules grades n against the reliability tiers.
func SampleSizeRules(in Input) validation.Result {
	n := in.SampleSize
	const field = "sample.size"
	switch {
	case n < 1:
		return validation.Result{finding(validation.SeverityError, validation.CodeSampleEmpty, field,
			"the sample is empty", "provide measurement data")}
	case n < criticalSampleSize:
		return validation.Result{finding(validation.SeverityError, validation.CodeSampleSizeCritical, field,
			fmt.Sprintf("n=%d is too small for a capability study", n),
			fmt.Sprintf("collect at least %d measurements, ideally %d or more", smallSampleSize, moderateSampleSize))}
	case n < smallSampleSize:
		return validation.Result{finding(validation.SeverityWarning, validation.CodeSampleSizeSmall, field,
			fmt.Sprintf("n=%d gives very wide confidence intervals", n),
			fmt.Sprintf("collect at least %d measurements", smallSampleSize))}
	case n < marginalSampleSize:
		return validation.Result{finding(validation.SeverityWarning, validation.CodeSampleSizeMarginal, field,
			fmt.Sprintf("n=%d is marginal for capability estimates", n),
			fmt.Sprintf("collect at least %d measurements", marginalSampleSize))}
	case n < moderateSampleSize:
		return validation.Result{finding(validation.SeverityInfo, validation.CodeSampleSizeModerate, field,
			fmt.Sprintf("n=%d is adequate; %d or more is recommended", n, moderateSampleSize), "")}
	}
	return nil
}

// SubgroupRules checks the subgroup size against the within estimator.
func SubgroupRules(in Input) validation.Result {
	cfg := in.Config
	method := cfg.Estimators.Within
	if !method.UsesSubgroups() {
		return nil
	}
	m := cfg.SubgroupSize
	var out validation.Result

	if m < 2 {
		out = append(out, finding(validation.SeverityError, validation.CodeSubgroupSizeInvalid, "subgroup.size",
			fmt.Sprintf("subgroup size %d cannot estimate within-subgroup sigma with the %s method", m, method),
			"use a subgroup size of at least 2 or the moving-range method for individuals"))
	} else if in.SampleSize > 0 {
		k := in.SampleSize / m
		switch {
		case k == 0:
			out = append(out, finding(validation.SeverityError, validation.CodeSubgroupNone, "subgroup.size",
				fmt.Sprintf("subgroup size %d exceeds the sample size %d; within-subgroup sigma is unavailable", m, in.SampleSize),
				"reduce the subgroup size"))
		case k < minSubgroups:
			out = append(out, finding(validation.SeverityWarning, validation.CodeSubgroupCountLow, "subgroup.count",
				fmt.Sprintf("only %d subgroups of size %d; within-subgroup sigma is unreliable", k, m),
				fmt.Sprintf("collect at least %d subgroups", minSubgroups)))
		}
	}

	if method == capability.WithinRange && m >= 2 {
		switch {
		case m < rangeSmallSubgroup:
			out = append(out, finding(validation.SeverityInfo, validation.CodeSubgroupRangeSmall, "subgroup.size",
				fmt.Sprintf("range-based sigma with subgroup size %d uses little of the data", m), ""))
		case m > rangeLargeSubgroup:
			out = append(out, finding(validation.SeverityWarning, validation.CodeSubgroupRangeLarge, "estimators.within",
				fmt.Sprintf("range-based sigma loses efficiency for subgroup size %d", m),
				"use the stdev or pooled method"))
		}
	}
	return out
}

// IntervalRules checks the interval method's preconditions and cost.
func IntervalRules(in Input) validation.Result {
	cfg := in.Config
	var out validation.Result
	if cfg.CIMethod == capability.CIAnalytic && in.SampleSize >= 1 && in.SampleSize < smallSampleSize {
		out = append(out, finding(validation.SeverityWarning, validation.CodeAnalyticSmallSample, "interval.method",
			fmt.Sprintf("analytic intervals assume n >= %d, got %d", smallSampleSize, in.SampleSize),
			"use a bootstrap interval method"))
	}
	if cfg.CIMethod.IsBootstrap() {
		switch {
		case cfg.Resamples < fewResamples:
			out = append(out, finding(validation.SeverityWarning, validation.CodeBootstrapFew, "interval.resamples",
				fmt.Sprintf("%d resamples give unstable interval bounds", cfg.Resamples),
				fmt.Sprintf("use at least %d resamples", fewResamples)))
		case cfg.Resamples > manyResamples:
			out = append(out, finding(validation.SeverityInfo, validation.CodeBootstrapMany, "interval.resamples",
				fmt.Sprintf("%d resamples will be slow with little gain in precision", cfg.Resamples), ""))
		}
	}
	return out
}

// NonNormalRules flags fitting on too little data.
func NonNormalRules(in Input) validation.Result {
	cfg := in.Config
	if cfg.NonNormal == capability.NonNormalNone || cfg.NonNormal == "" {
		return nil
	}
	if in.SampleSize < cfg.MinFitSampleSize {
		return validation.Result{finding(validation.SeverityWarning, validation.CodeNonNormalSampleSmall, "nonnormal.strategy",
			fmt.Sprintf("distribution fitting on n=%d is unreliable below %d", in.SampleSize, cfg.MinFitSampleSize),
			"collect more data or use the normal model")}
	}
	return nil
}
