package fitting

import (
	"fmt"
	"math"

	"procap/domain/capability"
	"procap/domain/core"
	"procap/internal/indices"
)

// Percentile points of the ISO 22514-2 percentile method; they span ±3σ
// for a normal distribution.
const (
	pLower  = 0.00135
	pMedian = 0.5
	pUpper  = 0.99865
)

// Result is the non-normal capability assessment of one sample.
type Result struct {
	Selected   Fit
	Candidates []Fit
	Indices    capability.CapabilityIndices
	Tail       capability.TailMetrics
}

// Analyze selects a distribution and derives percentile-method indices
// and tail metrics from it.
func Analyze(spec capability.Specification, sample []float64, strategy capability.NonNormalStrategy) (Result, error) {
	best, candidates, err := Select(sample, strategy)
	if err != nil {
		return Result{}, err
	}
	idx, tail, err := PercentileIndices(spec, best)
	if err != nil {
		return Result{}, err
	}
	return Result{Selected: best, Candidates: candidates, Indices: idx, Tail: tail}, nil
}

// PercentileIndices computes long-term Pp, Ppu, Ppl and Ppk from the
// fitted 0.135 %, 50 % and 99.865 % quantiles, Zlt = 3·Ppk, and tail
// metrics from the fitted CDF.
func PercentileIndices(spec capability.Specification, fit Fit) (capability.CapabilityIndices, capability.TailMetrics, error) {
	if err := indices.CheckSpecification(spec); err != nil {
		return nil, capability.TailMetrics{}, err
	}
	if !spec.HasLimits() {
		return capability.CapabilityIndices{}, capability.TailMetrics{YieldPercent: 100}, nil
	}
	xLo, xMed, xHi := fit.Dist.Quantile(pLower), fit.Dist.Quantile(pMedian), fit.Dist.Quantile(pUpper)
	if !(xLo < xMed && xMed < xHi) {
		return nil, capability.TailMetrics{}, fmt.Errorf("%w: degenerate %s quantiles", core.ErrZeroVariance, fit.Family)
	}

	lsl, hasLSL := spec.LSL.Get()
	usl, hasUSL := spec.USL.Get()
	var out capability.CapabilityIndices
	add := func(name capability.IndexName, v float64) {
		out = append(out, capability.CapabilityIndex{Name: name, Basis: capability.LongTerm, Value: v})
	}
	var below, above float64
	switch {
	case hasLSL && hasUSL:
		ppu := (usl - xMed) / (xHi - xMed)
		ppl := (xMed - lsl) / (xMed - xLo)
		add(capability.Pp, (usl-lsl)/(xHi-xLo))
		add(capability.Ppu, ppu)
		add(capability.Ppl, ppl)
		add(capability.Ppk, math.Min(ppu, ppl))
	case hasUSL:
		ppu := (usl - xMed) / (xHi - xMed)
		add(capability.Ppu, ppu)
		add(capability.Ppk, ppu)
	case hasLSL:
		ppl := (xMed - lsl) / (xMed - xLo)
		add(capability.Ppl, ppl)
		add(capability.Ppk, ppl)
	}
	if ppk, ok := out.Get(capability.Ppk); ok {
		add(capability.Zlt, 3*ppk.Value)
	}
	if hasLSL {
		below = fit.Dist.CDF(lsl) * 100
	}
	if hasUSL {
		above = (1 - fit.Dist.CDF(usl)) * 100
	}
	return out, indices.TailFromPercentages(spec, below, above), nil
}
