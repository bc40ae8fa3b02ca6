package capability

import (
	"encoding/json"
	"fmt"
	"math"
)

// Limit is an optional real value. The zero Limit is absent.
type Limit struct {
	value float64
	ok    bool
}

// Some returns a present limit.
func Some(v float64) Limit { return Limit{value: v, ok: true} }

// None returns an absent limit.
func None() Limit { return Limit{} }

// Get returns the value and whether it is present.
func (l Limit) Get() (float64, bool) { return l.value, l.ok }

// IsSet reports whether the limit is present.
func (l Limit) IsSet() bool { return l.ok }

// Value returns the value, or NaN when absent.
func (l Limit) Value() float64 {
	if !l.ok {
		return math.NaN()
	}
	return l.value
}

func (l Limit) String() string {
	if !l.ok {
		return "-"
	}
	return fmt.Sprintf("%g", l.value)
}

// MarshalJSON encodes an absent limit as null.
func (l Limit) MarshalJSON() ([]byte, error) {
	if !l.ok {
		return []byte("null"), nil
	}
	return json.Marshal(l.value)
}

func (l *Limit) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = Some(v)
	return nil
}

// Specification holds the engineering limits a process is judged against.
// Relationship invariants (LSL < USL, LSL < Target < USL) are reported by
// validation and enforced by the index calculator, not at construction, so
// that a bad specification can still be described back to the user.
type Specification struct {
	LSL    Limit
	USL    Limit
	Target Limit
	Unit   string
}

// TwoSided reports whether both limits are set.
func (s Specification) TwoSided() bool { return s.LSL.ok && s.USL.ok }

// UpperOnly reports whether only the upper limit is set.
func (s Specification) UpperOnly() bool { return s.USL.ok && !s.LSL.ok }

// LowerOnly reports whether only the lower limit is set.
func (s Specification) LowerOnly() bool { return s.LSL.ok && !s.USL.ok }

// HasLimits reports whether at least one limit is set.
func (s Specification) HasLimits() bool { return s.LSL.ok || s.USL.ok }

// Tolerance returns USL-LSL for two-sided specifications.
func (s Specification) Tolerance() (float64, bool) {
	if !s.TwoSided() {
		return 0, false
	}
	return s.USL.value - s.LSL.value, true
}

func (s Specification) String() string {
	return fmt.Sprintf("LSL=%s USL=%s T=%s %s", s.LSL, s.USL, s.Target, s.Unit)
}
