package capability

import (
	"encoding/json"
	"math"
)

// NormalityTest is the outcome of the D'Agostino K² omnibus test.
// Evaluated is false when the sample was too small to test.
type NormalityTest struct {
	Evaluated bool
	Statistic float64
	PValue    float64
	IsNormal  bool
}

// ProcessStatistics is an immutable snapshot produced by one estimator
// call. Mean is always the arithmetic mean; the median is exposed
// separately and only used as the center when MeanMedian was selected.
type ProcessStatistics struct {
	N            int
	SubgroupSize int
	Subgroups    int

	Mean   float64
	Median float64
	Min    float64
	Max    float64

	StdDevOverall float64
	StdDevRobust  float64

	// StdDevWithin is NaN when WithinAvailable is false.
	StdDevWithin    float64
	WithinAvailable bool
	WithinMethod    WithinMethod
	// WithinDF is the effective degrees of freedom of StdDevWithin.
	WithinDF float64

	Skewness       float64
	ExcessKurtosis float64
	Normality      NormalityTest

	Settings EstimatorSettings
}

// MarshalJSON writes an unavailable within sigma as null; encoding/json
// rejects NaN.
func (ps ProcessStatistics) MarshalJSON() ([]byte, error) {
	type plain ProcessStatistics
	out := struct {
		plain
		StdDevWithin *float64
	}{plain: plain(ps)}
	if ps.WithinAvailable && !math.IsNaN(ps.StdDevWithin) {
		v := ps.StdDevWithin
		out.StdDevWithin = &v
	}
	return json.Marshal(out)
}

// Center returns the location used by the index calculator.
func (ps ProcessStatistics) Center() float64 {
	if ps.Settings.Mean == MeanMedian {
		return ps.Median
	}
	return ps.Mean
}

// SigmaLongTerm returns the overall dispersion used for long-term indices
// and tail metrics.
func (ps ProcessStatistics) SigmaLongTerm() float64 {
	if ps.Settings.Sigma == SigmaRobust {
		return ps.StdDevRobust
	}
	return ps.StdDevOverall
}

// Basis distinguishes short-term (within) from long-term (overall) indices.
type Basis string

const (
	ShortTerm Basis = "short_term"
	LongTerm  Basis = "long_term"
)

// IndexName names a capability or performance index.
type IndexName string

const (
	Cp  IndexName = "Cp"
	Cpu IndexName = "Cpu"
	Cpl IndexName = "Cpl"
	Cpk IndexName = "Cpk"
	Cpm IndexName = "Cpm"
	Zst IndexName = "Zst"
	Pp  IndexName = "Pp"
	Ppu IndexName = "Ppu"
	Ppl IndexName = "Ppl"
	Ppk IndexName = "Ppk"
	Zlt IndexName = "Zlt"
)

// ConfidenceInterval brackets one index at a nominal coverage level.
type ConfidenceInterval struct {
	Lower  float64
	Upper  float64
	Level  float64
	Method CIMethod
}

// Contains reports whether v lies inside the closed interval.
func (ci ConfidenceInterval) Contains(v float64) bool {
	return ci.Lower <= v && v <= ci.Upper
}

// Width returns Upper-Lower.
func (ci ConfidenceInterval) Width() float64 {
	return ci.Upper - ci.Lower
}

// CapabilityIndex is one named metric. CI is nil until intervals are
// attached.
type CapabilityIndex struct {
	Name  IndexName
	Basis Basis
	Value float64
	CI    *ConfidenceInterval
}

// CapabilityIndices is the populated subset of indices for a
// specification. Callers must check presence with Get or Has; which keys
// exist depends on the sidedness of the specification.
type CapabilityIndices []CapabilityIndex

// Get returns the index with the given name.
func (ci CapabilityIndices) Get(name IndexName) (CapabilityIndex, bool) {
	for _, idx := range ci {
		if idx.Name == name {
			return idx, true
		}
	}
	return CapabilityIndex{}, false
}

// Has reports whether name was computed.
func (ci CapabilityIndices) Has(name IndexName) bool {
	_, ok := ci.Get(name)
	return ok
}

// Names lists the computed index names in order.
func (ci CapabilityIndices) Names() []IndexName {
	names := make([]IndexName, len(ci))
	for i, idx := range ci {
		names[i] = idx.Name
	}
	return names
}

// Basis returns the indices computed on the given basis.
func (ci CapabilityIndices) Basis(b Basis) CapabilityIndices {
	var out CapabilityIndices
	for _, idx := range ci {
		if idx.Basis == b {
			out = append(out, idx)
		}
	}
	return out
}

// Clone returns a copy that shares no interval pointers with ci.
func (ci CapabilityIndices) Clone() CapabilityIndices {
	if ci == nil {
		return nil
	}
	out := make(CapabilityIndices, len(ci))
	for i, idx := range ci {
		out[i] = idx
		if idx.CI != nil {
			c := *idx.CI
			out[i].CI = &c
		}
	}
	return out
}

// TailMetrics expresses the expected out-of-spec fraction. Tail fields are
// absent, not zero, when the corresponding limit is absent.
type TailMetrics struct {
	PercentBelowLSL Limit
	PercentAboveUSL Limit
	PPMBelowLSL     Limit
	PPMAboveUSL     Limit
	TotalPPM        float64
	YieldPercent    float64
}
