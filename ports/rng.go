package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates the generator for the index-th replicate of a named
	// operation. The stream depends only on (name, baseSeed, index), so
	// replicates can run in any order or in parallel and still reproduce.
	Stream(ctx context.Context, name string, baseSeed int64, index int) (*rand.Rand, error)
}
