package validation

import "fmt"

// Severity ranks a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Code identifies a validation rule outcome.
type Code string

const (
	CodeLSLNotBelowUSL       Code = "SPEC_LSL_NOT_BELOW_USL"
	CodeTargetOutOfRange     Code = "SPEC_TARGET_OUT_OF_RANGE"
	CodeNoLimits             Code = "SPEC_NO_LIMITS"
	CodeOneSidedTarget       Code = "SPEC_ONE_SIDED_TARGET"
	CodeToleranceTooSmall    Code = "SPEC_TOLERANCE_TOO_SMALL"
	CodeSampleEmpty          Code = "SAMPLE_EMPTY"
	CodeSampleSizeCritical   Code = "SAMPLE_SIZE_CRITICAL"
	CodeSampleSizeSmall      Code = "SAMPLE_SIZE_SMALL"
	CodeSampleSizeMarginal   Code = "SAMPLE_SIZE_MARGINAL"
	CodeSampleSizeModerate   Code = "SAMPLE_SIZE_MODERATE"
	CodeSubgroupSizeInvalid  Code = "SUBGROUP_SIZE_INVALID"
	CodeSubgroupNone         Code = "SUBGROUP_NONE"
	CodeSubgroupCountLow     Code = "SUBGROUP_COUNT_LOW"
	CodeSubgroupRangeSmall   Code = "SUBGROUP_RANGE_SMALL"
	CodeSubgroupRangeLarge   Code = "SUBGROUP_RANGE_LARGE"
	CodeAnalyticSmallSample  Code = "CI_ANALYTIC_SMALL_SAMPLE"
	CodeAnalyticNonNormal    Code = "CI_ANALYTIC_NON_NORMAL"
	CodeBootstrapFew         Code = "CI_BOOTSTRAP_FEW_RESAMPLES"
	CodeBootstrapMany        Code = "CI_BOOTSTRAP_MANY_RESAMPLES"
	CodeNonNormalSampleSmall Code = "NONNORMAL_FIT_SAMPLE_SMALL"
	CodeZeroVariance         Code = "DATA_ZERO_VARIANCE"
)

// ValidationError is one finding of a validation pass. Field is a dotted
// path into the configuration (e.g. "specification.lsl").
type ValidationError struct {
	Field    string
	Message  string
	Severity Severity
	Action   string
	Code     Code
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s] %s: %s", e.Severity, e.Code, e.Field, e.Message)
}

// Result is the ordered list produced by one validation pass.
type Result []ValidationError

// HasErrors reports whether any finding is error-severity.
func (r Result) HasErrors() bool {
	for _, e := range r {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// BySeverity returns the findings of one severity, preserving order.
func (r Result) BySeverity(s Severity) Result {
	var out Result
	for _, e := range r {
		if e.Severity == s {
			out = append(out, e)
		}
	}
	return out
}

// Codes lists the finding codes in order.
func (r Result) Codes() []Code {
	codes := make([]Code, len(r))
	for i, e := range r {
		codes[i] = e.Code
	}
	return codes
}

// HasCode reports whether a finding with code exists.
func (r Result) HasCode(code Code) bool {
	for _, e := range r {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Summary renders a one-line count per severity.
func (r Result) Summary() string {
	return fmt.Sprintf("%d error(s), %d warning(s), %d info",
		len(r.BySeverity(SeverityError)), len(r.BySeverity(SeverityWarning)), len(r.BySeverity(SeverityInfo)))
}
