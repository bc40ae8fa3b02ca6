package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors: the caller handed the engine something it cannot compute on
	ErrInvalidInput          = errors.New("invalid input")
	ErrEmptySample           = fmt.Errorf("%w: empty sample", ErrInvalidInput)
	ErrInvalidSample         = fmt.Errorf("%w: sample contains NaN or infinite values", ErrInvalidInput)
	ErrInsufficientData      = fmt.Errorf("%w: insufficient data for analysis", ErrInvalidInput)
	ErrInvalidSpecification  = fmt.Errorf("%w: invalid specification limits", ErrInvalidInput)
	ErrInvalidSetting        = fmt.Errorf("%w: invalid setting", ErrInvalidInput)
	ErrInvalidSubgroupSize   = fmt.Errorf("%w: invalid subgroup size", ErrInvalidInput)
	ErrUnsupportedEstimation = fmt.Errorf("%w: unsupported estimation", ErrInvalidInput)

	// Numeric edge conditions: computable inputs whose result would be Inf/NaN
	ErrNumericEdge      = errors.New("numeric edge condition")
	ErrZeroVariance     = fmt.Errorf("%w: zero variance", ErrNumericEdge)
	ErrZeroTolerance    = fmt.Errorf("%w: zero tolerance", ErrNumericEdge)
	ErrSigmaUnavailable = fmt.Errorf("%w: within-subgroup sigma unavailable", ErrNumericEdge)
	ErrFitFailed        = fmt.Errorf("%w: distribution fit failed", ErrNumericEdge)
)

// NewValidationError reports a rejected setting value.
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidSetting, field, reason)
}

// NewSpecificationError reports an inconsistent set of specification limits.
func NewSpecificationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSpecification, reason)
}

// IsInputError reports whether err is a hard input-invalid failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNumericEdge reports whether err is a zero-variance style condition that
// callers should annotate rather than abort on.
func IsNumericEdge(err error) bool {
	return errors.Is(err, ErrNumericEdge)
}
