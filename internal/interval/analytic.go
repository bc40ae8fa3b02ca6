package interval

import (
	"fmt"
	"math"

	"procap/domain/capability"
	"procap/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// Analytic attaches normal-theory intervals to every index. Cp and Pp use
// chi-square quantiles of sigma; the one-sided and actual indices use the
// delta-method standard error sqrt(1/(9n) + C²/(2ν)) with a Student-t
// critical value; Cpm uses Boyles' effective degrees of freedom; Zst and
// Zlt scale the Cpk and Ppk bounds by three.
func Analytic(in capability.CapabilityIndices, ps capability.ProcessStatistics, spec capability.Specification, level float64) (capability.CapabilityIndices, error) {
	if ps.N < 2 {
		return nil, fmt.Errorf("%w: analytic intervals need n >= 2", core.ErrInsufficientData)
	}
	alpha := 1 - level
	n := float64(ps.N)
	tCrit := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 1}.Quantile(1 - alpha/2)

	out := in.Clone()
	bounds := make(map[capability.IndexName]capability.ConfidenceInterval, len(out))
	for i, idx := range out {
		nu := degreesOfFreedom(idx.Basis, ps)
		var lo, hi float64
		switch idx.Name {
		case capability.Cp, capability.Pp:
			lo, hi = chiSquareBounds(idx.Value, nu, alpha)
		case capability.Cpm:
			nuStar := boylesDF(ps, spec)
			lo, hi = chiSquareBounds(idx.Value, nuStar, alpha)
		case capability.Zst, capability.Zlt:
			continue
		default:
			se := math.Sqrt(1/(9*n) + idx.Value*idx.Value/(2*nu))
			lo, hi = idx.Value-tCrit*se, idx.Value+tCrit*se
		}
		ci := clamp(capability.ConfidenceInterval{Lower: lo, Upper: hi, Level: level, Method: capability.CIAnalytic}, idx.Value)
		bounds[idx.Name] = ci
		out[i].CI = &ci
	}

	for i, idx := range out {
		var base capability.IndexName
		switch idx.Name {
		case capability.Zst:
			base = capability.Cpk
		case capability.Zlt:
			base = capability.Ppk
		default:
			continue
		}
		b, ok := bounds[base]
		if !ok {
			return nil, fmt.Errorf("%w: %s interval needs %s", core.ErrInsufficientData, idx.Name, base)
		}
		ci := clamp(capability.ConfidenceInterval{Lower: 3 * b.Lower, Upper: 3 * b.Upper, Level: level, Method: capability.CIAnalytic}, idx.Value)
		out[i].CI = &ci
	}
	return out, nil
}

// degreesOfFreedom is the within-subgroup effective df for short-term
// indices and n-1 for long-term ones.
func degreesOfFreedom(basis capability.Basis, ps capability.ProcessStatistics) float64 {
	if basis == capability.ShortTerm && ps.WithinDF >= 1 {
		return ps.WithinDF
	}
	return float64(ps.N - 1)
}

func chiSquareBounds(c, nu, alpha float64) (float64, float64) {
	chi := distuv.ChiSquared{K: nu}
	return c * math.Sqrt(chi.Quantile(alpha/2)/nu), c * math.Sqrt(chi.Quantile(1-alpha/2)/nu)
}

// boylesDF is n(1+δ²)²/(1+2δ²) with δ = (μ-T)/σ_within.
func boylesDF(ps capability.ProcessStatistics, spec capability.Specification) float64 {
	n := float64(ps.N)
	t, ok := spec.Target.Get()
	if !ok || ps.StdDevWithin <= 0 {
		return n - 1
	}
	d := (ps.Center() - t) / ps.StdDevWithin
	d2 := d * d
	return n * (1 + d2) * (1 + d2) / (1 + 2*d2)
}
