package app

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"procap/adapters/rng"
	"procap/domain/capability"
	"procap/domain/core"
	"procap/domain/validation"
	"procap/internal"
	apperrors "procap/internal/errors"
	"procap/internal/fitting"
	"procap/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

// MockRNGPort is a mock implementation of ports.RNGPort
type MockRNGPort struct {
	mock.Mock
}

func (m *MockRNGPort) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	args := m.Called(ctx, name, seed)
	r, _ := args.Get(0).(*rand.Rand)
	return r, args.Error(1)
}

func (m *MockRNGPort) Stream(ctx context.Context, name string, baseSeed int64, index int) (*rand.Rand, error) {
	args := m.Called(ctx, name, baseSeed, index)
	r, _ := args.Get(0).(*rand.Rand)
	return r, args.Error(1)
}

func newService() *CapabilityService {
	return NewCapabilityService(rng.NewSeededAdapter(), internal.NewLogger(internal.LogLevelError))
}

func studyConfig(t *testing.T, opts ...capability.Option) capability.Config {
	t.Helper()
	base := []capability.Option{
		capability.WithLimits(capability.Some(94), capability.Some(106)),
		capability.WithTarget(capability.Some(100)),
		capability.WithResamples(200),
	}
	cfg, err := capability.NewConfig(append(base, opts...)...)
	require.NoError(t, err)
	return cfg
}

func studySample() []float64 {
	return testkit.SubgroupedSample(5, 25, 5, 100.3, 1.1, 0.3)
}

func TestAnalyzeFullPipeline(t *testing.T) {
	svc := newService()
	cfg := studyConfig(t)

	report, err := svc.Analyze(context.Background(), cfg, studySample())
	require.NoError(t, err)

	assert.False(t, report.HasConditions(), "%v", report.Conditions)
	assert.False(t, report.Validation.HasErrors(), report.Validation.Summary())
	assert.Equal(t, 125, report.Statistics.N)
	assert.Equal(t, 25, report.Statistics.Subgroups)

	for _, name := range []capability.IndexName{capability.Cp, capability.Cpk, capability.Cpm, capability.Zst, capability.Pp, capability.Ppk, capability.Zlt} {
		idx, ok := report.Indices.Get(name)
		require.True(t, ok, "missing %s", name)
		require.NotNil(t, idx.CI, "no interval on %s", name)
		assert.True(t, idx.CI.Contains(idx.Value))
	}

	require.NotNil(t, report.Tail)
	assert.Less(t, report.Tail.TotalPPM, 1e6)
	assert.Greater(t, report.Tail.YieldPercent, 99.0)
	assert.Nil(t, report.NonNormal)
	assert.False(t, report.RunID.String() == "")
	assert.False(t, report.ComputedAt.IsZero())
}

func TestAnalyzeFingerprintIsStable(t *testing.T) {
	svc := newService()
	cfg := studyConfig(t)

	a, err := svc.Analyze(context.Background(), cfg, studySample())
	require.NoError(t, err)
	b, err := svc.Analyze(context.Background(), cfg, studySample())
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.NotEqual(t, a.RunID, b.RunID)

	other, err := cfg.With(capability.WithSubgroupSize(4))
	require.NoError(t, err)
	c, err := svc.Analyze(context.Background(), other, studySample())
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	svc := newService()

	_, err := svc.Analyze(context.Background(), studyConfig(t, capability.WithLimits(capability.Some(10), capability.Some(5))), studySample())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidSpecification)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = svc.Analyze(context.Background(), studyConfig(t), nil)
	assert.ErrorIs(t, err, core.ErrEmptySample)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestAnalyzeRecordsZeroVariance(t *testing.T) {
	sample := make([]float64, 50)
	for i := range sample {
		sample[i] = 100
	}
	report, err := newService().Analyze(context.Background(), studyConfig(t), sample)
	require.NoError(t, err)

	assert.Empty(t, report.Indices)
	assert.Nil(t, report.Tail)
	require.True(t, report.HasConditions())
	for _, c := range report.Conditions {
		assert.Equal(t, apperrors.CodeNumericEdge, c.Code, c.Message)
		assert.ErrorIs(t, c.Err, core.ErrZeroVariance)
		assert.True(t, apperrors.IsAppError(c.Err))
	}
	assert.True(t, report.Validation.HasCode(validation.CodeZeroVariance))
}

func TestAnalyzeWithoutLimits(t *testing.T) {
	cfg, err := capability.NewConfig()
	require.NoError(t, err)

	report, err := newService().Analyze(context.Background(), cfg, studySample())
	require.NoError(t, err)

	assert.Empty(t, report.Indices)
	require.NotNil(t, report.Tail)
	assert.Equal(t, 100.0, report.Tail.YieldPercent)
	assert.True(t, report.Validation.HasCode(validation.CodeNoLimits))
	assert.False(t, report.Validation.HasErrors())
}

func TestAnalyzeBootstrapIsReproducible(t *testing.T) {
	svc := newService()
	cfg := studyConfig(t, capability.WithCIMethod(capability.CIBootstrapPercentile), capability.WithSeed(17))

	a, err := svc.Analyze(context.Background(), cfg, studySample())
	require.NoError(t, err)
	b, err := svc.Analyze(context.Background(), cfg, studySample())
	require.NoError(t, err)

	require.Equal(t, a.Indices.Names(), b.Indices.Names())
	for i := range a.Indices {
		assert.Equal(t, *a.Indices[i].CI, *b.Indices[i].CI)
		assert.Equal(t, capability.CIBootstrapPercentile, a.Indices[i].CI.Method)
	}
	assert.True(t, a.Validation.HasCode(validation.CodeBootstrapFew))
}

func TestAnalyzeRNGFailureIsACondition(t *testing.T) {
	port := &MockRNGPort{}
	port.On("Stream", mock.Anything, "bootstrap", int64(42), mock.AnythingOfType("int")).
		Return(nil, errors.New("entropy source unavailable"))

	svc := NewCapabilityService(port, internal.NewLogger(internal.LogLevelError))
	cfg := studyConfig(t, capability.WithCIMethod(capability.CIBootstrapBCa))

	report, err := svc.Analyze(context.Background(), cfg, studySample())
	require.NoError(t, err)

	require.Len(t, report.Conditions, 1)
	assert.Equal(t, "interval", report.Conditions[0].Stage)
	assert.Equal(t, apperrors.CodeInternalError, report.Conditions[0].Code)
	assert.True(t, report.Indices.Has(capability.Cpk))
	for _, idx := range report.Indices {
		assert.Nil(t, idx.CI)
	}
	port.AssertCalled(t, "Stream", mock.Anything, "bootstrap", int64(42), mock.AnythingOfType("int"))
}

func TestAnalyzeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := studyConfig(t, capability.WithCIMethod(capability.CIBootstrapPercentile))

	_, err := newService().Analyze(ctx, cfg, studySample())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeNonNormal(t *testing.T) {
	dist := distuv.LogNormal{Mu: 0, Sigma: 0.5}
	sample := make([]float64, 200)
	for i := range sample {
		sample[i] = dist.Quantile((float64(i) + 0.5) / 200)
	}
	cfg, err := capability.NewConfig(
		capability.WithUSL(capability.Some(5)),
		capability.WithNonNormal(capability.NonNormalAuto),
		capability.WithWithinMethod(capability.WithinMovingRange),
	)
	require.NoError(t, err)

	report, err := newService().Analyze(context.Background(), cfg, sample)
	require.NoError(t, err)

	require.NotNil(t, report.NonNormal)
	assert.Equal(t, fitting.LogNormal, report.NonNormal.Selected.Family)
	assert.True(t, report.NonNormal.Indices.Has(capability.Ppk))
	for _, idx := range report.NonNormal.Indices {
		require.NotNil(t, idx.CI, "no interval on %s", idx.Name)
		assert.True(t, idx.CI.Contains(idx.Value))
	}
	ppk, _ := report.NonNormal.Indices.Get(capability.Ppk)
	zlt, ok := report.NonNormal.Indices.Get(capability.Zlt)
	require.True(t, ok)
	assert.InDelta(t, 3*ppk.Value, zlt.Value, 1e-12)
	assert.True(t, report.Validation.HasCode(validation.CodeAnalyticNonNormal))
	assert.False(t, math.IsNaN(report.NonNormal.Tail.TotalPPM))
}

func TestFacadeOperations(t *testing.T) {
	svc := newService()
	sample := testkit.NormalSample(3, 10, 50, 2)

	ps, err := svc.ComputeProcessStatistics(sample, 5, capability.DefaultEstimatorSettings())
	require.NoError(t, err)
	assert.True(t, ps.WithinAvailable)
	assert.False(t, math.IsNaN(ps.StdDevWithin))

	cfg := studyConfig(t, capability.WithLimits(capability.Some(40), capability.Some(60)), capability.WithTarget(capability.None()))
	res := svc.ValidateConfiguration(cfg, len(sample))
	assert.True(t, res.HasCode(validation.CodeSubgroupCountLow))

	idx, err := svc.ComputeCapabilityIndices(cfg.Spec, ps)
	require.NoError(t, err)
	withCI, err := svc.ComputeConfidenceIntervals(context.Background(), idx, sample, cfg)
	require.NoError(t, err)
	assert.Len(t, withCI, len(idx))

	tail, err := svc.ComputeTailMetrics(cfg.Spec, ps)
	require.NoError(t, err)
	assert.True(t, tail.PercentBelowLSL.IsSet())
}
