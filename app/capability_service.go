package app

import (
	"context"
	"time"

	"procap/domain/capability"
	"procap/domain/core"
	"procap/domain/validation"
	"procap/internal"
	apperrors "procap/internal/errors"
	"procap/internal/estimator"
	"procap/internal/fitting"
	"procap/internal/indices"
	"procap/internal/interval"
	"procap/internal/validator"
	"procap/ports"
)

// CapabilityService is the engine facade consumed by reporting and UI
// collaborators. Every method is a pure computation over its arguments;
// the service holds no per-call state.
type CapabilityService struct {
	rngPort ports.RNGPort
	logger  *internal.Logger
}

// Condition is a numeric edge case met during analysis. The affected
// results are left out of the report instead of carrying Inf or NaN.
type Condition struct {
	Stage   string `json:"stage"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Report contains the complete output of one Analyze call
type Report struct {
	RunID       core.RunID                   `json:"run_id"`
	Fingerprint core.Hash                    `json:"fingerprint"`
	Config      capability.Config            `json:"-"`
	Statistics  capability.ProcessStatistics `json:"statistics"`
	Indices     capability.CapabilityIndices `json:"indices"`
	Tail        *capability.TailMetrics      `json:"tail,omitempty"`
	NonNormal   *fitting.Result              `json:"nonnormal,omitempty"`
	Validation  validation.Result            `json:"validation"`
	Conditions  []Condition                  `json:"conditions,omitempty"`
	ComputedAt  core.Timestamp               `json:"computed_at"`
	RuntimeMs   int64                        `json:"runtime_ms"`
}

// HasConditions reports whether any numeric edge condition was recorded.
func (r *Report) HasConditions() bool {
	return len(r.Conditions) > 0
}

// NewCapabilityService creates the engine facade
func NewCapabilityService(rngPort ports.RNGPort, logger *internal.Logger) *CapabilityService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CapabilityService{
		rngPort: rngPort,
		logger:  logger.WithComponent("capability"),
	}
}

// ComputeProcessStatistics runs the estimator once over sample.
func (s *CapabilityService) ComputeProcessStatistics(sample []float64, subgroupSize int, settings capability.EstimatorSettings) (capability.ProcessStatistics, error) {
	return estimator.Compute(sample, subgroupSize, settings)
}

// ComputeCapabilityIndices derives the short- and long-term indices that
// spec's sidedness allows. Callers must check presence before reading.
func (s *CapabilityService) ComputeCapabilityIndices(spec capability.Specification, ps capability.ProcessStatistics) (capability.CapabilityIndices, error) {
	return indices.Indices(spec, ps)
}

// ComputeTailMetrics converts the long-term statistics into out-of-spec
// proportions, PPM and yield.
func (s *CapabilityService) ComputeTailMetrics(spec capability.Specification, ps capability.ProcessStatistics) (capability.TailMetrics, error) {
	return indices.Tail(spec, ps)
}

// ComputeConfidenceIntervals returns a copy of in with an interval on
// every index.
func (s *CapabilityService) ComputeConfidenceIntervals(ctx context.Context, in capability.CapabilityIndices, sample []float64, cfg capability.Config) (capability.CapabilityIndices, error) {
	return interval.Compute(ctx, in, sample, cfg, s.rngPort)
}

// ValidateConfiguration runs every configuration rule group.
func (s *CapabilityService) ValidateConfiguration(cfg capability.Config, sampleSize int) validation.Result {
	return validator.ValidateConfiguration(cfg, sampleSize)
}

// Analyze runs the full pipeline. Input-invalid failures abort with an
// INVALID_INPUT error; numeric edge conditions are recorded on the report
// and the results they affect are omitted; advisory findings only appear
// in Report.Validation.
func (s *CapabilityService) Analyze(ctx context.Context, cfg capability.Config, sample []float64) (*Report, error) {
	startTime := time.Now()
	report := &Report{
		RunID:       core.NewRunID(),
		Fingerprint: core.ComputeRunFingerprint(core.SampleHash(sample), cfg.Canonical()...),
		Config:      cfg,
		Validation:  s.ValidateConfiguration(cfg, len(sample)),
	}
	s.logger.Debug("run %s: n=%d %s", report.RunID, len(sample), report.Validation.Summary())

	ps, err := s.ComputeProcessStatistics(sample, cfg.SubgroupSize, cfg.Estimators)
	if err != nil {
		return nil, apperrors.Wrap(err, "process statistics")
	}
	report.Statistics = ps
	report.Validation = append(report.Validation, validator.ValidateSample(cfg, ps)...)

	idx, err := s.ComputeCapabilityIndices(cfg.Spec, ps)
	if err := s.record(report, "indices", true, err); err != nil {
		return nil, err
	}

	tail, err := s.ComputeTailMetrics(cfg.Spec, ps)
	if err := s.record(report, "tail", true, err); err != nil {
		return nil, err
	}
	if err == nil {
		report.Tail = &tail
	}

	if len(idx) > 0 {
		withCI, err := s.ComputeConfidenceIntervals(ctx, idx, sample, cfg)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err := s.record(report, "interval", false, err); err != nil {
			return nil, err
		}
		if err == nil {
			idx = withCI
		}
	}
	report.Indices = idx

	if cfg.NonNormal != capability.NonNormalNone {
		res, err := fitting.Analyze(cfg.Spec, sample, cfg.NonNormal)
		if err := s.record(report, "nonnormal", false, err); err != nil {
			return nil, err
		}
		if err == nil {
			s.logger.Debug("run %s: selected %s", report.RunID, res.Selected)
			withCI, err := interval.ComputePercentile(ctx, res.Indices, sample, cfg, s.rngPort)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if err := s.record(report, "nonnormal_interval", false, err); err != nil {
				return nil, err
			}
			if err == nil {
				res.Indices = withCI
			}
			report.NonNormal = &res
		}
	}

	report.ComputedAt = core.Now()
	report.RuntimeMs = time.Since(startTime).Milliseconds()
	s.logger.Info("run %s: %d indices, %d conditions, %s in %dms",
		report.RunID, len(report.Indices), len(report.Conditions), report.Validation.Summary(), report.RuntimeMs)
	return report, nil
}

// record files err as a condition. Input errors from a required stage
// abort the run instead; optional stages never abort it.
func (s *CapabilityService) record(report *Report, stage string, required bool, err error) error {
	if err == nil {
		return nil
	}
	appErr := apperrors.Classify(err, stage)
	if required && appErr.Code == apperrors.CodeInvalidInput {
		return appErr
	}
	s.logger.Warn("run %s: %v", report.RunID, appErr)
	report.Conditions = append(report.Conditions, Condition{
		Stage:   stage,
		Code:    appErr.Code,
		Message: err.Error(),
		Err:     appErr,
	})
	return nil
}
