package interval

import (
	"context"
	"math"
	"sort"

	"procap/domain/capability"
	"procap/ports"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// streamName keys the RNG streams of bootstrap replicates.
const streamName = "bootstrap"

// Pipeline recomputes the indices of one resample. A replicate whose
// pipeline fails for every index is dropped.
type Pipeline func(sample []float64) (capability.CapabilityIndices, error)

// Bootstrap resamples with replacement R times, re-running pipeline on
// each resample, and takes percentile or BCa bounds per index. Replicate i
// always draws from stream (seed, i) and results are aggregated in index
// order, so any worker count yields the same interval.
type Bootstrap struct {
	RNG       ports.RNGPort
	Pipeline  Pipeline
	Resamples int
	Seed      int64
	Workers   int
	Level     float64
	Method    capability.CIMethod
}

// Attach returns a copy of in with bootstrap intervals attached.
func (b Bootstrap) Attach(ctx context.Context, in capability.CapabilityIndices, sample []float64) (capability.CapabilityIndices, error) {
	replicates, err := b.resample(ctx, sample)
	if err != nil {
		return nil, err
	}

	var jack map[capability.IndexName][]float64
	if b.Method == capability.CIBootstrapBCa {
		if jack, err = b.jackknife(ctx, sample); err != nil {
			return nil, err
		}
	}

	alpha := 1 - b.Level
	out := in.Clone()
	for i, idx := range out {
		draws := replicates[idx.Name]
		var lo, hi float64
		switch {
		case len(draws) < 2:
			lo, hi = idx.Value, idx.Value
		case b.Method == capability.CIBootstrapBCa:
			lo, hi = bcaBounds(draws, jack[idx.Name], idx.Value, alpha)
		default:
			lo, hi = percentileBounds(draws, alpha/2, 1-alpha/2)
		}
		ci := clamp(capability.ConfidenceInterval{Lower: lo, Upper: hi, Level: b.Level, Method: b.Method}, idx.Value)
		out[i].CI = &ci
	}
	return out, nil
}

// resample runs the replicates and returns, per index, the sorted finite
// replicate values.
func (b Bootstrap) resample(ctx context.Context, sample []float64) (map[capability.IndexName][]float64, error) {
	results := make([]capability.CapabilityIndices, b.Resamples)
	n := len(sample)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.Workers, 1))
	for i := 0; i < b.Resamples; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r, err := b.RNG.Stream(gctx, streamName, b.Seed, i)
			if err != nil {
				return err
			}
			rs := make([]float64, n)
			for j := range rs {
				rs[j] = sample[r.Intn(n)]
			}
			// partial results are kept; a fully failed replicate is dropped
			results[i], _ = b.Pipeline(rs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return collect(results), nil
}

// jackknife recomputes the indices with each observation left out once.
func (b Bootstrap) jackknife(ctx context.Context, sample []float64) (map[capability.IndexName][]float64, error) {
	n := len(sample)
	results := make([]capability.CapabilityIndices, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.Workers, 1))
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			loo := make([]float64, 0, n-1)
			loo = append(loo, sample[:i]...)
			loo = append(loo, sample[i+1:]...)
			results[i], _ = b.Pipeline(loo)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return collect(results), nil
}

func collect(results []capability.CapabilityIndices) map[capability.IndexName][]float64 {
	byName := make(map[capability.IndexName][]float64)
	for _, r := range results {
		for _, idx := range r {
			if math.IsNaN(idx.Value) || math.IsInf(idx.Value, 0) {
				continue
			}
			byName[idx.Name] = append(byName[idx.Name], idx.Value)
		}
	}
	for _, v := range byName {
		sort.Float64s(v)
	}
	return byName
}

// percentileBounds reads two empirical quantiles of sorted draws.
func percentileBounds(sorted []float64, pLo, pHi float64) (float64, float64) {
	return stat.Quantile(pLo, stat.Empirical, sorted, nil), stat.Quantile(pHi, stat.Empirical, sorted, nil)
}

// bcaBounds applies Efron's bias-corrected and accelerated adjustment:
// z0 from the share of replicates below the point estimate, a from the
// jackknife skewness, and adjusted levels Φ(z0 + (z0+z)/(1-a(z0+z))).
func bcaBounds(sorted, jack []float64, theta, alpha float64) (float64, float64) {
	r := float64(len(sorted))
	below := float64(sort.SearchFloat64s(sorted, theta))
	// keep z0 finite when every replicate falls on one side
	prop := math.Min(math.Max(below/r, 1/(r+1)), r/(r+1))
	z0 := distuv.UnitNormal.Quantile(prop)
	a := acceleration(jack)

	adjust := func(p float64) float64 {
		z := distuv.UnitNormal.Quantile(p)
		return distuv.UnitNormal.CDF(z0 + (z0+z)/(1-a*(z0+z)))
	}
	pLo, pHi := adjust(alpha/2), adjust(1-alpha/2)
	if math.IsNaN(pLo) || math.IsNaN(pHi) || pLo > pHi {
		return percentileBounds(sorted, alpha/2, 1-alpha/2)
	}
	return percentileBounds(sorted, clamp01(pLo), clamp01(pHi))
}

// acceleration is Σd³ / (6(Σd²)^1.5) with d = mean(jack) - jack_i.
func acceleration(jack []float64) float64 {
	if len(jack) < 3 {
		return 0
	}
	mean := stat.Mean(jack, nil)
	var s2, s3 float64
	for _, v := range jack {
		d := mean - v
		s2 += d * d
		s3 += d * d * d
	}
	if s2 == 0 {
		return 0
	}
	return s3 / (6 * math.Pow(s2, 1.5))
}

func clamp01(p float64) float64 {
	return math.Min(math.Max(p, 0), 1)
}
