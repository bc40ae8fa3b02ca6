package capability

import (
	"math"
	"testing"

	"procap/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultEstimatorSettings(), cfg.Estimators)
	assert.Equal(t, 5, cfg.SubgroupSize)
	assert.Equal(t, 0.95, cfg.ConfidenceLevel)
	assert.Equal(t, CIAnalytic, cfg.CIMethod)
	assert.Equal(t, 2000, cfg.Resamples)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.Equal(t, NonNormalNone, cfg.NonNormal)
	assert.False(t, cfg.Spec.HasLimits())
}

func TestWithLeavesReceiverUnchanged(t *testing.T) {
	base := MustConfig(WithLimits(Some(1), Some(2)))

	derived, err := base.With(WithLimits(Some(0), Some(5)), WithSubgroupSize(8), WithCIMethod("bca"))
	require.NoError(t, err)

	assert.Equal(t, Some(1), base.Spec.LSL)
	assert.Equal(t, 5, base.SubgroupSize)
	assert.Equal(t, CIAnalytic, base.CIMethod)

	assert.Equal(t, Some(0), derived.Spec.LSL)
	assert.Equal(t, 8, derived.SubgroupSize)
	assert.Equal(t, CIBootstrapBCa, derived.CIMethod)
}

func TestConfigRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"level", WithConfidenceLevel(0.8)},
		{"resamples", WithResamples(0)},
		{"workers", WithWorkers(0)},
		{"min fit", WithMinFitSampleSize(0)},
		{"ci method", WithCIMethod("jackknife")},
		{"within", WithWithinMethod("iqr")},
		{"nonnormal", WithNonNormal("gamma")},
		{"mean", WithMeanEstimator("mode")},
		{"sigma", WithSigmaEstimator("huber")},
		{"limit", WithUSL(Some(math.Inf(1)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(tt.opt)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidSetting)
			assert.Equal(t, Config{}, cfg)
		})
	}

	_, err := NewConfig(WithSubgroupSize(0))
	assert.ErrorIs(t, err, core.ErrInvalidSubgroupSize)
}

func TestInvertedLimitsAreAcceptedForValidation(t *testing.T) {
	cfg, err := NewConfig(WithLimits(Some(10), Some(5)))
	require.NoError(t, err)
	assert.True(t, cfg.Spec.TwoSided())
}

func TestEnumParsing(t *testing.T) {
	w, err := ParseWithinMethod("")
	require.NoError(t, err)
	assert.Equal(t, WithinRange, w)

	w, err = ParseWithinMethod(" Moving-Range ")
	require.NoError(t, err)
	assert.Equal(t, WithinMovingRange, w)
	assert.False(t, w.UsesSubgroups())

	s, err := ParseSigmaEstimator("MAD")
	require.NoError(t, err)
	assert.Equal(t, SigmaRobust, s)

	m, err := ParseCIMethod("percentile")
	require.NoError(t, err)
	assert.True(t, m.IsBootstrap())
	assert.False(t, CIAnalytic.IsBootstrap())

	_, err = ParseNonNormalStrategy("johnson")
	assert.ErrorIs(t, err, core.ErrInvalidSetting)
}

func TestCanonicalExcludesWorkers(t *testing.T) {
	a := MustConfig(WithWorkers(1), WithLimits(Some(0), Some(1)))
	b := MustConfig(WithWorkers(16), WithLimits(Some(0), Some(1)))
	c := MustConfig(WithWorkers(1), WithLimits(Some(0), Some(2)))

	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.NotEqual(t, a.Canonical(), c.Canonical())
}

func TestSpecificationHelpers(t *testing.T) {
	spec := Specification{LSL: Some(2), USL: Some(8)}
	assert.True(t, spec.TwoSided())
	tol, ok := spec.Tolerance()
	assert.True(t, ok)
	assert.Equal(t, 6.0, tol)

	upper := Specification{USL: Some(8)}
	assert.True(t, upper.UpperOnly())
	assert.False(t, upper.LowerOnly())
	_, ok = upper.Tolerance()
	assert.False(t, ok)

	assert.True(t, math.IsNaN(None().Value()))
	assert.Equal(t, "-", None().String())
}

func TestCapabilityIndicesHelpers(t *testing.T) {
	ci := &ConfidenceInterval{Lower: 1, Upper: 2}
	in := CapabilityIndices{
		{Name: Cp, Basis: ShortTerm, Value: 1.5, CI: ci},
		{Name: Pp, Basis: LongTerm, Value: 1.2},
	}
	assert.Equal(t, []IndexName{Cp, Pp}, in.Names())
	assert.Len(t, in.Basis(LongTerm), 1)

	clone := in.Clone()
	clone[0].CI.Lower = 0
	assert.Equal(t, 1.0, in[0].CI.Lower)

	_, ok := in.Get(Cpk)
	assert.False(t, ok)
	assert.True(t, ci.Contains(1.5))
	assert.Equal(t, 1.0, ci.Width())
}
