package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestNormalCDFAtZero(t *testing.T) {
	assert.Equal(t, 0.5, NormalCDF(0))
}

func TestNormalCDFSymmetry(t *testing.T) {
	for z := 0.0; z <= 6; z += 0.05 {
		assert.InDelta(t, 1.0, NormalCDF(z)+NormalCDF(-z), 1e-6, "z=%g", z)
	}
}

func TestNormalCDFMatchesReference(t *testing.T) {
	for z := -6.0; z <= 6; z += 0.01 {
		want := distuv.UnitNormal.CDF(z)
		assert.InDelta(t, want, NormalCDF(z), 1e-7, "z=%g", z)
	}
}

func TestNormalCDFMonotonic(t *testing.T) {
	prev := NormalCDF(-8)
	for z := -8.0; z <= 8; z += 0.001 {
		cur := NormalCDF(z)
		if cur < prev {
			t.Fatalf("NormalCDF decreased at z=%g: %g < %g", z, cur, prev)
		}
		prev = cur
	}
}

func TestNormalCDFEdges(t *testing.T) {
	assert.Equal(t, 1.0, NormalCDF(math.Inf(1)))
	assert.Equal(t, 0.0, NormalCDF(math.Inf(-1)))
	assert.True(t, math.IsNaN(NormalCDF(math.NaN())))
	assert.InDelta(t, 0.00135, NormalCDF(-3), 1e-5)
	assert.InDelta(t, 0.97725, NormalCDF(2), 1e-5)
}
