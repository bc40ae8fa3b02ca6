// Package validator checks a capability configuration and the sample it
// will run on, producing severity-tagged findings. Every rule group runs on
// every pass; findings are concatenated in group order and never stop the
// pass early.
package validator

import (
	"procap/domain/capability"
	"procap/domain/validation"
)

// Input is what the configuration rules see.
type Input struct {
	Config     capability.Config
	SampleSize int
}

// Rule is one independent group of checks.
type Rule func(in Input) validation.Result

// Rules are run in this order by ValidateConfiguration.
var Rules = []Rule{
	SpecificationRules,
	SampleSizeRules,
	SubgroupRules,
	IntervalRules,
	NonNormalRules,
}

// ValidateConfiguration runs every configuration rule group and returns
// the concatenated findings.
func ValidateConfiguration(cfg capability.Config, n int) validation.Result {
	in := Input{Config: cfg, SampleSize: n}
	result := validation.Result{}
	for _, rule := range Rules {
		result = append(result, rule(in)...)
	}
	return result
}

// ValidateSample adds findings that depend on the data itself rather than
// only on its size. Zero variance is judged on the selected long-term
// sigma, so a robust sigma with MAD = 0 is reported too.
func ValidateSample(cfg capability.Config, ps capability.ProcessStatistics) validation.Result {
	result := validation.Result{}
	if ps.N >= 2 && ps.SigmaLongTerm() == 0 {
		result = append(result, validation.ValidationError{
			Field:    "sample",
			Message:  "long-term sigma is zero; long-term indices and tail metrics are undefined",
			Severity: validation.SeverityError,
			Action:   "check the gauge resolution or collect data over a longer period",
			Code:     validation.CodeZeroVariance,
		})
	}
	if cfg.CIMethod == capability.CIAnalytic && ps.Normality.Evaluated && !ps.Normality.IsNormal {
		result = append(result, validation.ValidationError{
			Field:    "interval.method",
			Message:  "normality is rejected (D'Agostino K² p < 0.05); analytic intervals assume normal data",
			Severity: validation.SeverityWarning,
			Action:   "use a bootstrap interval method or a non-normal strategy",
			Code:     validation.CodeAnalyticNonNormal,
		})
	}
	return result
}
