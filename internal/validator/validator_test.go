package validator

import (
	"testing"

	"procap/domain/capability"
	"procap/domain/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func config(t *testing.T, opts ...capability.Option) capability.Config {
	t.Helper()
	cfg, err := capability.NewConfig(opts...)
	require.NoError(t, err)
	return cfg
}

func limits(lsl, usl float64) capability.Option {
	return capability.WithLimits(capability.Some(lsl), capability.Some(usl))
}

func TestInvertedLimitsAreAnError(t *testing.T) {
	res := ValidateConfiguration(config(t, limits(10, 5)), 200)

	require.True(t, res.HasErrors())
	errs := res.BySeverity(validation.SeverityError)
	require.NotEmpty(t, errs)
	assert.Equal(t, validation.CodeLSLNotBelowUSL, errs[0].Code)
	assert.Equal(t, "specification.lsl", errs[0].Field)
}

func TestMissingLimitsWarnWithoutError(t *testing.T) {
	res := ValidateConfiguration(config(t), 200)

	assert.False(t, res.HasErrors())
	assert.True(t, res.HasCode(validation.CodeNoLimits))
	assert.Len(t, res.BySeverity(validation.SeverityWarning), 1)
}

func TestTwoSubgroupsWarnButDoNotError(t *testing.T) {
	res := ValidateConfiguration(config(t, limits(0, 10), capability.WithSubgroupSize(5)), 10)

	assert.True(t, res.HasCode(validation.CodeSubgroupCountLow))
	assert.False(t, res.HasCode(validation.CodeSubgroupNone))
	assert.False(t, res.HasErrors(), res.Summary())
}

func TestRulesAreAdditive(t *testing.T) {
	cfg := config(t,
		limits(10, 5),
		capability.WithTarget(capability.Some(20)),
		capability.WithSubgroupSize(12),
		capability.WithCIMethod(capability.CIBootstrapBCa),
		capability.WithResamples(200),
		capability.WithNonNormal(capability.NonNormalAuto),
	)
	res := ValidateConfiguration(cfg, 30)

	assert.Equal(t, []validation.Code{
		validation.CodeLSLNotBelowUSL,
		validation.CodeTargetOutOfRange,
		validation.CodeSampleSizeMarginal,
		validation.CodeSubgroupCountLow,
		validation.CodeSubgroupRangeLarge,
		validation.CodeBootstrapFew,
		validation.CodeNonNormalSampleSmall,
	}, res.Codes())
}

func TestSpecificationRules(t *testing.T) {
	tests := []struct {
		name string
		spec capability.Specification
		want []validation.Code
	}{
		{"valid two sided", capability.Specification{LSL: capability.Some(0), USL: capability.Some(10), Target: capability.Some(5)}, nil},
		{"target on limit", capability.Specification{LSL: capability.Some(0), USL: capability.Some(10), Target: capability.Some(10)}, []validation.Code{validation.CodeTargetOutOfRange}},
		{"equal limits", capability.Specification{LSL: capability.Some(3), USL: capability.Some(3)}, []validation.Code{validation.CodeLSLNotBelowUSL}},
		{"narrow tolerance", capability.Specification{LSL: capability.Some(1), USL: capability.Some(1.0005)}, []validation.Code{validation.CodeToleranceTooSmall}},
		{"one sided target", capability.Specification{USL: capability.Some(10), Target: capability.Some(5)}, []validation.Code{validation.CodeOneSidedTarget}},
		{"lower only", capability.Specification{LSL: capability.Some(1)}, nil},
		{"none", capability.Specification{}, []validation.Code{validation.CodeNoLimits}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := SpecificationRules(Input{Config: config(t, capability.WithSpecification(tt.spec)), SampleSize: 100})
			if tt.want == nil {
				assert.Empty(t, res)
				return
			}
			assert.Equal(t, tt.want, res.Codes())
		})
	}
}

func TestSampleSizeTiers(t *testing.T) {
	tests := []struct {
		n    int
		code validation.Code
		sev  validation.Severity
	}{
		{0, validation.CodeSampleEmpty, validation.SeverityError},
		{9, validation.CodeSampleSizeCritical, validation.SeverityError},
		{10, validation.CodeSampleSizeSmall, validation.SeverityWarning},
		{24, validation.CodeSampleSizeSmall, validation.SeverityWarning},
		{25, validation.CodeSampleSizeMarginal, validation.SeverityWarning},
		{49, validation.CodeSampleSizeMarginal, validation.SeverityWarning},
		{50, validation.CodeSampleSizeModerate, validation.SeverityInfo},
		{99, validation.CodeSampleSizeModerate, validation.SeverityInfo},
	}
	for _, tt := range tests {
		res := SampleSizeRules(Input{SampleSize: tt.n})
		require.Len(t, res, 1, "n=%d", tt.n)
		assert.Equal(t, tt.code, res[0].Code, "n=%d", tt.n)
		assert.Equal(t, tt.sev, res[0].Severity, "n=%d", tt.n)
	}
	assert.Empty(t, SampleSizeRules(Input{SampleSize: 100}))
}

func TestSubgroupRules(t *testing.T) {
	t.Run("size one with range", func(t *testing.T) {
		res := SubgroupRules(Input{Config: config(t, capability.WithSubgroupSize(1)), SampleSize: 200})
		assert.Equal(t, []validation.Code{validation.CodeSubgroupSizeInvalid}, res.Codes())
	})

	t.Run("size one with moving range", func(t *testing.T) {
		cfg := config(t, capability.WithSubgroupSize(1), capability.WithWithinMethod(capability.WithinMovingRange))
		assert.Empty(t, SubgroupRules(Input{Config: cfg, SampleSize: 200}))
	})

	t.Run("subgroup larger than sample", func(t *testing.T) {
		res := SubgroupRules(Input{Config: config(t, capability.WithSubgroupSize(8)), SampleSize: 5})
		assert.Equal(t, []validation.Code{validation.CodeSubgroupNone}, res.Codes())
		assert.True(t, res.HasErrors())
	})

	t.Run("small range subgroup", func(t *testing.T) {
		res := SubgroupRules(Input{Config: config(t, capability.WithSubgroupSize(3)), SampleSize: 300})
		assert.Equal(t, []validation.Code{validation.CodeSubgroupRangeSmall}, res.Codes())
		assert.Equal(t, validation.SeverityInfo, res[0].Severity)
	})

	t.Run("large subgroup is fine for stdev", func(t *testing.T) {
		cfg := config(t, capability.WithSubgroupSize(12), capability.WithWithinMethod(capability.WithinStdDev))
		assert.Empty(t, SubgroupRules(Input{Config: cfg, SampleSize: 600}))
	})
}

func TestIntervalRules(t *testing.T) {
	res := IntervalRules(Input{Config: config(t), SampleSize: 20})
	assert.Equal(t, []validation.Code{validation.CodeAnalyticSmallSample}, res.Codes())

	boot := config(t, capability.WithCIMethod(capability.CIBootstrapPercentile), capability.WithResamples(20000))
	res = IntervalRules(Input{Config: boot, SampleSize: 20})
	assert.Equal(t, []validation.Code{validation.CodeBootstrapMany}, res.Codes())

	boot = config(t, capability.WithCIMethod(capability.CIBootstrapPercentile))
	assert.Empty(t, IntervalRules(Input{Config: boot, SampleSize: 200}))
}

func TestNonNormalRules(t *testing.T) {
	assert.Empty(t, NonNormalRules(Input{Config: config(t), SampleSize: 10}))

	cfg := config(t, capability.WithNonNormal(capability.NonNormalWeibull), capability.WithMinFitSampleSize(50))
	assert.Empty(t, NonNormalRules(Input{Config: cfg, SampleSize: 50}))
	assert.Equal(t, []validation.Code{validation.CodeNonNormalSampleSmall}, NonNormalRules(Input{Config: cfg, SampleSize: 49}).Codes())
}

func TestValidateSample(t *testing.T) {
	cfg := config(t, limits(0, 10))

	ps := capability.ProcessStatistics{N: 30, StdDevOverall: 0}
	assert.Equal(t, []validation.Code{validation.CodeZeroVariance}, ValidateSample(cfg, ps).Codes())

	ps = capability.ProcessStatistics{N: 30, StdDevOverall: 1, Normality: capability.NormalityTest{Evaluated: true, PValue: 0.001}}
	assert.Equal(t, []validation.Code{validation.CodeAnalyticNonNormal}, ValidateSample(cfg, ps).Codes())

	boot, err := cfg.With(capability.WithCIMethod(capability.CIBootstrapBCa))
	require.NoError(t, err)
	assert.Empty(t, ValidateSample(boot, ps))
}

func TestValidateSampleUsesSelectedLongTermSigma(t *testing.T) {
	cfg := config(t, limits(0, 10))
	// more than half the values identical: MAD is zero, the sample sd is not
	ps := capability.ProcessStatistics{N: 30, StdDevOverall: 0.8, StdDevRobust: 0}

	ps.Settings = capability.EstimatorSettings{Sigma: capability.SigmaClassical}
	assert.False(t, ValidateSample(cfg, ps).HasCode(validation.CodeZeroVariance))

	ps.Settings = capability.EstimatorSettings{Sigma: capability.SigmaRobust}
	res := ValidateSample(cfg, ps)
	require.True(t, res.HasCode(validation.CodeZeroVariance))
	assert.True(t, res.HasErrors())
}
