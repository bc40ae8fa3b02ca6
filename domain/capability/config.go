package capability

import (
	"fmt"
	"math"
	"runtime"

	"procap/domain/core"
)

// Default values applied by NewConfig.
const (
	DefaultSubgroupSize     = 5
	DefaultConfidenceLevel  = 0.95
	DefaultResamples        = 2000
	DefaultSeed             = int64(42)
	DefaultMinFitSampleSize = 100
)

// SupportedConfidenceLevels lists the coverage levels an interval may use.
var SupportedConfidenceLevels = []float64{0.90, 0.95, 0.99}

// Config is the immutable input of one capability computation. Build it
// with NewConfig and derive variants with With; fields are read-only by
// convention and no method mutates the receiver.
type Config struct {
	Spec             Specification
	Estimators       EstimatorSettings
	SubgroupSize     int
	ConfidenceLevel  float64
	CIMethod         CIMethod
	Resamples        int
	Seed             int64
	Workers          int
	NonNormal        NonNormalStrategy
	MinFitSampleSize int
}

// Option adjusts a Config under construction.
type Option func(c *Config) error

// NewConfig returns a validated configuration with defaults applied before
// the options.
func NewConfig(options ...Option) (Config, error) {
	c := Config{
		Estimators:       DefaultEstimatorSettings(),
		SubgroupSize:     DefaultSubgroupSize,
		ConfidenceLevel:  DefaultConfidenceLevel,
		CIMethod:         CIAnalytic,
		Resamples:        DefaultResamples,
		Seed:             DefaultSeed,
		Workers:          runtime.GOMAXPROCS(0),
		NonNormal:        NonNormalNone,
		MinFitSampleSize: DefaultMinFitSampleSize,
	}
	return c.With(options...)
}

// With derives a new configuration from c. The receiver is left unchanged,
// and on error the zero Config is returned.
func (c Config) With(options ...Option) (Config, error) {
	next := c
	for _, option := range options {
		if err := option(&next); err != nil {
			return Config{}, err
		}
	}
	if err := next.normalize(); err != nil {
		return Config{}, err
	}
	return next, nil
}

// MustConfig is NewConfig for fixed, known-good option sets.
func MustConfig(options ...Option) Config {
	c, err := NewConfig(options...)
	if err != nil {
		panic(err)
	}
	return c
}

// normalize canonicalizes enumerated settings and rejects values outside
// their closed sets.
func (c *Config) normalize() error {
	var err error
	if c.Estimators.Mean, err = ParseMeanEstimator(string(c.Estimators.Mean)); err != nil {
		return err
	}
	if c.Estimators.Sigma, err = ParseSigmaEstimator(string(c.Estimators.Sigma)); err != nil {
		return err
	}
	if c.Estimators.Within, err = ParseWithinMethod(string(c.Estimators.Within)); err != nil {
		return err
	}
	if c.CIMethod, err = ParseCIMethod(string(c.CIMethod)); err != nil {
		return err
	}
	if c.NonNormal, err = ParseNonNormalStrategy(string(c.NonNormal)); err != nil {
		return err
	}
	for _, l := range []Limit{c.Spec.LSL, c.Spec.USL, c.Spec.Target} {
		if v, ok := l.Get(); ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
			return core.NewValidationError("specification", "limits must be finite")
		}
	}
	if c.SubgroupSize < 1 {
		return fmt.Errorf("%w: %d", core.ErrInvalidSubgroupSize, c.SubgroupSize)
	}
	if !supportedLevel(c.ConfidenceLevel) {
		return core.NewValidationError("interval.level", fmt.Sprintf("confidence level %g is not one of 0.90, 0.95, 0.99", c.ConfidenceLevel))
	}
	if c.Resamples < 1 {
		return core.NewValidationError("interval.resamples", "resample count must be positive")
	}
	if c.Workers < 1 {
		return core.NewValidationError("interval.workers", "worker count must be positive")
	}
	if c.MinFitSampleSize < 1 {
		return core.NewValidationError("nonnormal.min_fit_sample_size", "minimum fit sample size must be positive")
	}
	return nil
}

func supportedLevel(level float64) bool {
	for _, l := range SupportedConfidenceLevels {
		if math.Abs(level-l) < 1e-9 {
			return true
		}
	}
	return false
}

// Canonical returns a stable textual description used for run fingerprints.
// Workers is excluded because it never changes results.
func (c Config) Canonical() []string {
	return []string{
		"spec=" + c.Spec.String(),
		"mean=" + string(c.Estimators.Mean),
		"sigma=" + string(c.Estimators.Sigma),
		"within=" + string(c.Estimators.Within),
		fmt.Sprintf("m=%d", c.SubgroupSize),
		fmt.Sprintf("level=%g", c.ConfidenceLevel),
		"ci=" + string(c.CIMethod),
		fmt.Sprintf("resamples=%d", c.Resamples),
		fmt.Sprintf("seed=%d", c.Seed),
		"nonnormal=" + string(c.NonNormal),
		fmt.Sprintf("minfit=%d", c.MinFitSampleSize),
	}
}

// WithSpecification replaces the whole specification.
func WithSpecification(spec Specification) Option {
	return func(c *Config) error {
		c.Spec = spec
		return nil
	}
}

// WithLimits sets both specification limits; pass None() for an absent side.
func WithLimits(lsl, usl Limit) Option {
	return func(c *Config) error {
		c.Spec.LSL = lsl
		c.Spec.USL = usl
		return nil
	}
}

// WithLSL sets only the lower specification limit.
func WithLSL(lsl Limit) Option {
	return func(c *Config) error {
		c.Spec.LSL = lsl
		return nil
	}
}

// WithUSL sets only the upper specification limit.
func WithUSL(usl Limit) Option {
	return func(c *Config) error {
		c.Spec.USL = usl
		return nil
	}
}

// WithTarget sets the nominal target.
func WithTarget(target Limit) Option {
	return func(c *Config) error {
		c.Spec.Target = target
		return nil
	}
}

// WithUnit sets the measurement unit label.
func WithUnit(unit string) Option {
	return func(c *Config) error {
		c.Spec.Unit = unit
		return nil
	}
}

// WithEstimators replaces the estimator settings.
func WithEstimators(settings EstimatorSettings) Option {
	return func(c *Config) error {
		c.Estimators = settings
		return nil
	}
}

// WithMeanEstimator sets only the center estimator.
func WithMeanEstimator(m MeanEstimator) Option {
	return func(c *Config) error {
		c.Estimators.Mean = m
		return nil
	}
}

// WithSigmaEstimator sets only the long-term sigma family.
func WithSigmaEstimator(s SigmaEstimator) Option {
	return func(c *Config) error {
		c.Estimators.Sigma = s
		return nil
	}
}

// WithWithinMethod sets only the within-subgroup method.
func WithWithinMethod(method WithinMethod) Option {
	return func(c *Config) error {
		c.Estimators.Within = method
		return nil
	}
}

// WithSubgroupSize sets the subgroup size m.
func WithSubgroupSize(m int) Option {
	return func(c *Config) error {
		c.SubgroupSize = m
		return nil
	}
}

// WithConfidenceLevel sets the interval coverage level.
func WithConfidenceLevel(level float64) Option {
	return func(c *Config) error {
		c.ConfidenceLevel = level
		return nil
	}
}

// WithCIMethod sets the interval method.
func WithCIMethod(method CIMethod) Option {
	return func(c *Config) error {
		c.CIMethod = method
		return nil
	}
}

// WithResamples sets the bootstrap resample count.
func WithResamples(r int) Option {
	return func(c *Config) error {
		c.Resamples = r
		return nil
	}
}

// WithSeed sets the bootstrap seed.
func WithSeed(seed int64) Option {
	return func(c *Config) error {
		c.Seed = seed
		return nil
	}
}

// WithWorkers bounds bootstrap parallelism.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		c.Workers = n
		return nil
	}
}

// WithNonNormal sets the distribution-fitting strategy.
func WithNonNormal(strategy NonNormalStrategy) Option {
	return func(c *Config) error {
		c.NonNormal = strategy
		return nil
	}
}

// WithMinFitSampleSize sets the sample size below which fitting is flagged.
func WithMinFitSampleSize(n int) Option {
	return func(c *Config) error {
		c.MinFitSampleSize = n
		return nil
	}
}
