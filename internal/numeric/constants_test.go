package numeric

import (
	"errors"
	"math"
	"testing"

	"procap/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestD2Tabulated(t *testing.T) {
	tests := []struct {
		m    int
		want float64
	}{
		{2, 1.128}, {3, 1.693}, {4, 2.059}, {5, 2.326}, {6, 2.534},
		{7, 2.704}, {8, 2.847}, {9, 2.970}, {10, 3.078},
		{15, 3.472}, {20, 3.735}, {25, 3.931},
	}
	for _, tt := range tests {
		got, err := D2(tt.m)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "d2(%d)", tt.m)
	}
}

func TestD2Extrapolation(t *testing.T) {
	d25, _ := D2(25)
	d30, err := D2(30)
	require.NoError(t, err)
	assert.InDelta(t, 3.931+5*0.0392, d30, 1e-12)
	assert.Greater(t, d30, d25)

	d26, _ := D2(26)
	assert.InDelta(t, 0.0392, d26-d25, 1e-12)
}

func TestD2RejectsSmallSubgroups(t *testing.T) {
	for _, m := range []int{-1, 0, 1} {
		_, err := D2(m)
		assert.True(t, errors.Is(err, core.ErrInvalidSubgroupSize), "m=%d", m)
	}
}

func TestC4KnownValues(t *testing.T) {
	tests := []struct {
		m    int
		want float64
	}{
		{2, 0.7979}, {3, 0.8862}, {4, 0.9213}, {5, 0.9400},
		{10, 0.9727}, {25, 0.9896},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, C4(tt.m), 5e-5, "c4(%d)", tt.m)
	}
}

func TestC4DegenerateGuard(t *testing.T) {
	assert.Equal(t, 1.0, C4(1))
	assert.Equal(t, 1.0, C4(0))
	assert.Equal(t, 1.0, C4(-3))
}

func TestC4ApproachesOne(t *testing.T) {
	prev := C4(2)
	for m := 3; m <= 200; m++ {
		cur := C4(m)
		assert.Greater(t, cur, prev, "c4 must increase, m=%d", m)
		assert.Less(t, cur, 1.0)
		prev = cur
	}
}

func TestLogGammaMatchesStdlib(t *testing.T) {
	for _, x := range []float64{0.1, 0.5, 1, 1.5, 2, 2.5, 7.3, 12.5, 50, 171} {
		want, _ := math.Lgamma(x)
		assert.InDelta(t, want, LogGamma(x), 1e-10*math.Max(1, math.Abs(want)), "x=%g", x)
	}
}

func TestGamma(t *testing.T) {
	assert.InDelta(t, 1.0, Gamma(1), 1e-12)
	assert.InDelta(t, 24.0, Gamma(5), 1e-9)
	assert.InDelta(t, math.Sqrt(math.Pi), Gamma(0.5), 1e-12)
	assert.InDelta(t, math.Gamma(-1.5), Gamma(-1.5), 1e-9)
	assert.True(t, math.IsNaN(Gamma(0)))
	assert.True(t, math.IsInf(LogGamma(-2), 1))
}
