// Package interval attaches a ConfidenceInterval to every capability index,
// either from normal sampling theory or by bootstrap resampling of the
// full estimator and index pipeline.
package interval

import (
	"context"
	"fmt"
	"math"

	"procap/domain/capability"
	"procap/domain/core"
	"procap/internal/estimator"
	"procap/internal/fitting"
	"procap/internal/indices"
	"procap/ports"
)

// Compute returns a copy of in with an interval attached to every index,
// using the method, level and bootstrap settings of cfg. The input
// collection is never modified.
func Compute(ctx context.Context, in capability.CapabilityIndices, sample []float64, cfg capability.Config, rng ports.RNGPort) (capability.CapabilityIndices, error) {
	if len(in) == 0 {
		return in.Clone(), nil
	}
	if !cfg.CIMethod.IsBootstrap() {
		ps, err := estimator.Compute(sample, cfg.SubgroupSize, cfg.Estimators)
		if err != nil {
			return nil, err
		}
		return Analytic(in, ps, cfg.Spec, cfg.ConfidenceLevel)
	}

	return bootstrap(ctx, in, sample, cfg, rng, NewPipeline(cfg))
}

// ComputePercentile attaches intervals to the percentile-method indices of
// fitting.Analyze. Analytic bounds treat the fitted 99.73 % spread like a
// six-sigma overall spread with n-1 degrees of freedom; bootstrap methods
// refit the distribution on every resample.
func ComputePercentile(ctx context.Context, in capability.CapabilityIndices, sample []float64, cfg capability.Config, rng ports.RNGPort) (capability.CapabilityIndices, error) {
	if len(in) == 0 {
		return in.Clone(), nil
	}
	if !cfg.CIMethod.IsBootstrap() {
		return Analytic(in, capability.ProcessStatistics{N: len(sample)}, cfg.Spec, cfg.ConfidenceLevel)
	}
	return bootstrap(ctx, in, sample, cfg, rng, NewPercentilePipeline(cfg))
}

func bootstrap(ctx context.Context, in capability.CapabilityIndices, sample []float64, cfg capability.Config, rng ports.RNGPort, pipeline Pipeline) (capability.CapabilityIndices, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: bootstrap intervals need an RNG port", core.ErrInvalidSetting)
	}
	if len(sample) < 2 {
		return nil, fmt.Errorf("%w: bootstrap needs n >= 2", core.ErrInsufficientData)
	}
	b := Bootstrap{
		RNG:       rng,
		Pipeline:  pipeline,
		Resamples: cfg.Resamples,
		Seed:      cfg.Seed,
		Workers:   cfg.Workers,
		Level:     cfg.ConfidenceLevel,
		Method:    cfg.CIMethod,
	}
	return b.Attach(ctx, in, sample)
}

// NewPipeline re-runs the estimator and both index bases for cfg. Indices
// from a basis that fails on a resample are omitted from that replicate.
func NewPipeline(cfg capability.Config) Pipeline {
	return func(sample []float64) (capability.CapabilityIndices, error) {
		ps, err := estimator.Compute(sample, cfg.SubgroupSize, cfg.Estimators)
		if err != nil {
			return nil, err
		}
		out, err := indices.Indices(cfg.Spec, ps)
		if err != nil && len(out) == 0 {
			return nil, err
		}
		return out, nil
	}
}

// NewPercentilePipeline refits cfg's non-normal strategy and recomputes
// the percentile-method indices.
func NewPercentilePipeline(cfg capability.Config) Pipeline {
	return func(sample []float64) (capability.CapabilityIndices, error) {
		res, err := fitting.Analyze(cfg.Spec, sample, cfg.NonNormal)
		if err != nil {
			return nil, err
		}
		return res.Indices, nil
	}
}

// clamp widens ci so that it contains the point estimate.
func clamp(ci capability.ConfidenceInterval, value float64) capability.ConfidenceInterval {
	if math.IsNaN(ci.Lower) || ci.Lower > value {
		ci.Lower = value
	}
	if math.IsNaN(ci.Upper) || ci.Upper < value {
		ci.Upper = value
	}
	return ci
}
