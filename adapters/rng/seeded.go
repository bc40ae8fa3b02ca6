// Package rng implements ports.RNGPort on math/rand sources whose seeds are
// derived with SplitMix64, so every replicate gets an independent,
// reproducible stream.
package rng

import (
	"context"
	"math/rand"

	"procap/ports"
)

// SeededAdapter is stateless and safe for concurrent use; each call returns
// a fresh *rand.Rand that must not be shared between goroutines.
type SeededAdapter struct{}

var _ ports.RNGPort = (*SeededAdapter)(nil)

// NewSeededAdapter creates the default RNG port.
func NewSeededAdapter() *SeededAdapter {
	return &SeededAdapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *SeededAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(DeriveSeed(seed, hashString(name), 0))), nil
}

// Stream creates the generator for replicate index of a named operation
func (a *SeededAdapter) Stream(ctx context.Context, name string, baseSeed int64, index int) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(DeriveSeed(baseSeed, hashString(name), uint64(index)+1))), nil
}

// DeriveSeed mixes a base seed, a name hash and a replicate index through
// SplitMix64 finalizers.
func DeriveSeed(base int64, nameHash uint32, index uint64) int64 {
	z := splitmix64(uint64(base) ^ uint64(nameHash)<<32)
	z = splitmix64(z + index*0x9E3779B97F4A7C15)
	return int64(z >> 1)
}

func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
