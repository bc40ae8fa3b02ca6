// Package indices derives capability (short-term) and performance
// (long-term) indices and tail defect metrics from ProcessStatistics.
package indices

import (
	"errors"
	"fmt"
	"math"

	"procap/domain/capability"
	"procap/domain/core"
)

// family names the indices one basis produces.
type family struct {
	basis     capability.Basis
	potential capability.IndexName
	upper     capability.IndexName
	lower     capability.IndexName
	actual    capability.IndexName
	sigmaZ    capability.IndexName
}

var (
	shortTerm = family{capability.ShortTerm, capability.Cp, capability.Cpu, capability.Cpl, capability.Cpk, capability.Zst}
	longTerm  = family{capability.LongTerm, capability.Pp, capability.Ppu, capability.Ppl, capability.Ppk, capability.Zlt}
)

// CheckSpecification fails for limit relationships no index can be
// computed from: LSL >= USL, or a target outside (LSL, USL).
func CheckSpecification(spec capability.Specification) error {
	lsl, hasLSL := spec.LSL.Get()
	usl, hasUSL := spec.USL.Get()
	if hasLSL && hasUSL {
		if lsl == usl {
			return fmt.Errorf("%w: %w: LSL equals USL (%g)", core.ErrInvalidSpecification, core.ErrZeroTolerance, lsl)
		}
		if lsl > usl {
			return core.NewSpecificationError(fmt.Sprintf("LSL %g is not below USL %g", lsl, usl))
		}
		if t, ok := spec.Target.Get(); ok && (t <= lsl || t >= usl) {
			return core.NewSpecificationError(fmt.Sprintf("target %g is outside (%g, %g)", t, lsl, usl))
		}
	}
	return nil
}

// ShortTerm computes Cp, Cpu, Cpl, Cpk, Zst and, for a two-sided
// specification with a target, Cpm, all from the within-subgroup sigma.
func ShortTerm(spec capability.Specification, ps capability.ProcessStatistics) (capability.CapabilityIndices, error) {
	if err := CheckSpecification(spec); err != nil {
		return nil, err
	}
	if !spec.HasLimits() {
		return capability.CapabilityIndices{}, nil
	}
	if !ps.WithinAvailable || math.IsNaN(ps.StdDevWithin) {
		return nil, fmt.Errorf("%w: %d usable subgroups", core.ErrSigmaUnavailable, ps.Subgroups)
	}
	sigma := ps.StdDevWithin
	if sigma <= 0 {
		return nil, fmt.Errorf("short-term: %w", core.ErrZeroVariance)
	}
	out := compute(shortTerm, spec, ps.Center(), sigma)

	if t, ok := spec.Target.Get(); ok && spec.TwoSided() {
		tol, _ := spec.Tolerance()
		d := ps.Center() - t
		out = append(out, capability.CapabilityIndex{
			Name:  capability.Cpm,
			Basis: capability.ShortTerm,
			Value: tol / (6 * math.Sqrt(sigma*sigma+d*d)),
		})
	}
	return out, finite(out)
}

// LongTerm computes Pp, Ppu, Ppl, Ppk and Zlt from the overall sigma.
// There is no long-term Cpm.
func LongTerm(spec capability.Specification, ps capability.ProcessStatistics) (capability.CapabilityIndices, error) {
	if err := CheckSpecification(spec); err != nil {
		return nil, err
	}
	if !spec.HasLimits() {
		return capability.CapabilityIndices{}, nil
	}
	sigma := ps.SigmaLongTerm()
	if math.IsNaN(sigma) {
		return nil, fmt.Errorf("%w: overall sigma is undefined", core.ErrInsufficientData)
	}
	if sigma <= 0 {
		return nil, fmt.Errorf("long-term: %w", core.ErrZeroVariance)
	}
	out := compute(longTerm, spec, ps.Center(), sigma)
	return out, finite(out)
}

// Indices returns the short-term indices followed by the long-term ones.
// An invalid specification fails both; otherwise each basis that can be
// computed is returned alongside the joined errors of the others.
func Indices(spec capability.Specification, ps capability.ProcessStatistics) (capability.CapabilityIndices, error) {
	if err := CheckSpecification(spec); err != nil {
		return nil, err
	}
	st, stErr := ShortTerm(spec, ps)
	lt, ltErr := LongTerm(spec, ps)
	out := make(capability.CapabilityIndices, 0, len(st)+len(lt))
	out = append(out, st...)
	out = append(out, lt...)
	return out, errors.Join(stErr, ltErr)
}

func compute(f family, spec capability.Specification, mu, sigma float64) capability.CapabilityIndices {
	lsl, hasLSL := spec.LSL.Get()
	usl, hasUSL := spec.USL.Get()

	var out capability.CapabilityIndices
	add := func(name capability.IndexName, v float64) {
		out = append(out, capability.CapabilityIndex{Name: name, Basis: f.basis, Value: v})
	}

	switch {
	case hasLSL && hasUSL:
		upper := (usl - mu) / (3 * sigma)
		lower := (mu - lsl) / (3 * sigma)
		actual := math.Min(upper, lower)
		add(f.potential, (usl-lsl)/(6*sigma))
		add(f.upper, upper)
		add(f.lower, lower)
		add(f.actual, actual)
		add(f.sigmaZ, 3*actual)
	case hasUSL:
		upper := (usl - mu) / (3 * sigma)
		add(f.upper, upper)
		add(f.actual, upper)
		add(f.sigmaZ, 3*upper)
	case hasLSL:
		lower := (mu - lsl) / (3 * sigma)
		add(f.lower, lower)
		add(f.actual, lower)
		add(f.sigmaZ, 3*lower)
	}
	return out
}

func finite(out capability.CapabilityIndices) error {
	for _, idx := range out {
		if math.IsNaN(idx.Value) || math.IsInf(idx.Value, 0) {
			return fmt.Errorf("%w: %s is not finite", core.ErrNumericEdge, idx.Name)
		}
	}
	return nil
}
