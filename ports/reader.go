package ports

import (
	"context"
)

// SampleReaderPort provides read-only access to measurement data
type SampleReaderPort interface {
	// ReadSample returns the numeric values of one column in file order.
	// An empty column name selects the first column.
	ReadSample(ctx context.Context, column string) (*Sample, error)
}

// Sample is one column of measurements with its provenance
type Sample struct {
	Source string
	Column string
	Values []float64
	// Skipped counts blank cells that were left out of Values
	Skipped int
}
