package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// SampleHash fingerprints the exact bit patterns of a measurement sample,
// in order. Two runs with equal SampleHash and configuration must produce
// identical reports.
func SampleHash(sample []float64) Hash {
	buf := make([]byte, 8*len(sample))
	for i, v := range sample {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return NewHash(buf)
}

// ComputeRunFingerprint combines a sample hash with a canonical description
// of the configuration that produced a run.
func ComputeRunFingerprint(sample Hash, configParts ...string) Hash {
	var data strings.Builder
	data.WriteString(sample.String())
	for _, part := range configParts {
		data.WriteByte('|')
		data.WriteString(part)
	}
	return NewHash([]byte(data.String()))
}
