// Package testkit provides seeded sample generators and port fakes shared
// by the engine's tests.
package testkit

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"procap/adapters/rng"
	"procap/ports"
)

// NormalSample draws n values from N(mean, sd²).
func NormalSample(seed int64, n int, mean, sd float64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + sd*r.NormFloat64()
	}
	return out
}

// LogNormalSample draws n values whose logarithm is N(mu, sigma²).
func LogNormalSample(seed int64, n int, mu, sigma float64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Exp(mu + sigma*r.NormFloat64())
	}
	return out
}

// WeibullSample draws n values from Weibull(shape k, scale lambda) by
// inversion.
func WeibullSample(seed int64, n int, k, lambda float64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		u := r.Float64()
		for u == 0 {
			u = r.Float64()
		}
		out[i] = lambda * math.Pow(-math.Log(u), 1/k)
	}
	return out
}

// SubgroupedSample draws k subgroups of size m where each subgroup mean
// shifts by N(0, between²) around mean and units vary by N(0, within²).
func SubgroupedSample(seed int64, k, m int, mean, within, between float64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, 0, k*m)
	for g := 0; g < k; g++ {
		shift := between * r.NormFloat64()
		for j := 0; j < m; j++ {
			out = append(out, mean+shift+within*r.NormFloat64())
		}
	}
	return out
}

// Repeat builds a sample by concatenating pattern k times.
func Repeat(pattern []float64, k int) []float64 {
	out := make([]float64, 0, len(pattern)*k)
	for i := 0; i < k; i++ {
		out = append(out, pattern...)
	}
	return out
}

// RNGAdapter wraps the seeded RNG port and counts replicate streams handed
// out, so tests can assert how many resamples a computation drew.
type RNGAdapter struct {
	inner   *rng.SeededAdapter
	mu      sync.Mutex
	streams int
}

var _ ports.RNGPort = (*RNGAdapter)(nil)

// NewRNGAdapter creates a counting RNG port.
func NewRNGAdapter() *RNGAdapter {
	return &RNGAdapter{inner: rng.NewSeededAdapter()}
}

// SeededStream creates a deterministic random number generator for a named operation
func (r *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return r.inner.SeededStream(ctx, name, seed)
}

// Stream creates a deterministic RNG stream for one replicate
func (r *RNGAdapter) Stream(ctx context.Context, name string, baseSeed int64, index int) (*rand.Rand, error) {
	r.mu.Lock()
	r.streams++
	r.mu.Unlock()
	return r.inner.Stream(ctx, name, baseSeed, index)
}

// Streams returns how many replicate streams were requested.
func (r *RNGAdapter) Streams() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.streams
}
