package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"procap/domain/capability"
	"procap/internal/errors"

	"gopkg.in/yaml.v3"
)

// Environment variable prefix for every engine setting.
const envPrefix = "CAPABILITY_"

// Config represents the complete application configuration
type Config struct {
	Capability capability.Config
	Input      InputConfig
	LogLevel   string
}

// InputConfig locates the measurement column
type InputConfig struct {
	File   string
	Column string
	Sheet  string
}

// FileConfig is the YAML document accepted by LoadFile. Absent keys keep
// their defaults.
type FileConfig struct {
	Specification struct {
		LSL    *float64 `yaml:"lsl"`
		USL    *float64 `yaml:"usl"`
		Target *float64 `yaml:"target"`
		Unit   string   `yaml:"unit"`
	} `yaml:"specification"`
	Estimators struct {
		Mean   string `yaml:"mean"`
		Sigma  string `yaml:"sigma"`
		Within string `yaml:"within"`
	} `yaml:"estimators"`
	Subgroup struct {
		Size int `yaml:"size"`
	} `yaml:"subgroup"`
	Interval struct {
		Method    string  `yaml:"method"`
		Level     float64 `yaml:"level"`
		Resamples int     `yaml:"resamples"`
		Seed      *int64  `yaml:"seed"`
		Workers   int     `yaml:"workers"`
	} `yaml:"interval"`
	NonNormal struct {
		Strategy         string `yaml:"strategy"`
		MinFitSampleSize int    `yaml:"min_fit_sample_size"`
	} `yaml:"nonnormal"`
	Input struct {
		File   string `yaml:"file"`
		Column string `yaml:"column"`
		Sheet  string `yaml:"sheet"`
	} `yaml:"input"`
	LogLevel string `yaml:"log_level"`
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	return build(nil)
}

// LoadFile reads a YAML configuration; environment variables override the
// file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("read %s: %w", path, err))
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("parse %s: %w", path, err))
	}
	return build(&fc)
}

func build(fc *FileConfig) (*Config, error) {
	cfg := &Config{}
	var opts []capability.Option
	if fc != nil {
		opts = append(opts, fileOptions(fc)...)
		cfg.Input = InputConfig{File: fc.Input.File, Column: fc.Input.Column, Sheet: fc.Input.Sheet}
		cfg.LogLevel = fc.LogLevel
	}

	envOpts, err := loadEnvOptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load capability configuration")
	}
	opts = append(opts, envOpts...)

	cfg.Input = InputConfig{
		File:   getEnvOrDefault(envPrefix+"INPUT_FILE", cfg.Input.File),
		Column: getEnvOrDefault(envPrefix+"INPUT_COLUMN", cfg.Input.Column),
		Sheet:  getEnvOrDefault(envPrefix+"INPUT_SHEET", cfg.Input.Sheet),
	}
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)

	capCfg, err := capability.NewConfig(opts...)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	cfg.Capability = capCfg
	return cfg, nil
}

func fileOptions(fc *FileConfig) []capability.Option {
	var opts []capability.Option
	spec := fc.Specification
	opts = append(opts,
		capability.WithLimits(limit(spec.LSL), limit(spec.USL)),
		capability.WithTarget(limit(spec.Target)),
		capability.WithUnit(spec.Unit),
		capability.WithEstimators(capability.EstimatorSettings{
			Mean:   capability.MeanEstimator(fc.Estimators.Mean),
			Sigma:  capability.SigmaEstimator(fc.Estimators.Sigma),
			Within: capability.WithinMethod(fc.Estimators.Within),
		}),
	)
	if fc.Subgroup.Size != 0 {
		opts = append(opts, capability.WithSubgroupSize(fc.Subgroup.Size))
	}
	if fc.Interval.Method != "" {
		opts = append(opts, capability.WithCIMethod(capability.CIMethod(fc.Interval.Method)))
	}
	if fc.Interval.Level != 0 {
		opts = append(opts, capability.WithConfidenceLevel(fc.Interval.Level))
	}
	if fc.Interval.Resamples != 0 {
		opts = append(opts, capability.WithResamples(fc.Interval.Resamples))
	}
	if fc.Interval.Seed != nil {
		opts = append(opts, capability.WithSeed(*fc.Interval.Seed))
	}
	if fc.Interval.Workers != 0 {
		opts = append(opts, capability.WithWorkers(fc.Interval.Workers))
	}
	if fc.NonNormal.Strategy != "" {
		opts = append(opts, capability.WithNonNormal(capability.NonNormalStrategy(fc.NonNormal.Strategy)))
	}
	if fc.NonNormal.MinFitSampleSize != 0 {
		opts = append(opts, capability.WithMinFitSampleSize(fc.NonNormal.MinFitSampleSize))
	}
	return opts
}

func limit(v *float64) capability.Limit {
	if v == nil {
		return capability.None()
	}
	return capability.Some(*v)
}

// loadEnvOptions turns the CAPABILITY_* variables that are set into
// options. Malformed numbers are rejected rather than defaulted.
func loadEnvOptions() ([]capability.Option, error) {
	var opts []capability.Option

	limits := []struct {
		key   string
		apply func(capability.Limit) capability.Option
	}{
		{"LSL", capability.WithLSL},
		{"USL", capability.WithUSL},
		{"TARGET", capability.WithTarget},
	}
	for _, l := range limits {
		v, ok, err := getEnvLimit(envPrefix + l.key)
		if err != nil {
			return nil, err
		}
		if ok {
			opts = append(opts, l.apply(v))
		}
	}

	if v := os.Getenv(envPrefix + "UNIT"); v != "" {
		opts = append(opts, capability.WithUnit(v))
	}
	if v := os.Getenv(envPrefix + "MEAN_ESTIMATOR"); v != "" {
		opts = append(opts, capability.WithMeanEstimator(capability.MeanEstimator(v)))
	}
	if v := os.Getenv(envPrefix + "SIGMA_ESTIMATOR"); v != "" {
		opts = append(opts, capability.WithSigmaEstimator(capability.SigmaEstimator(v)))
	}
	if v := os.Getenv(envPrefix + "WITHIN_METHOD"); v != "" {
		opts = append(opts, capability.WithWithinMethod(capability.WithinMethod(v)))
	}
	if v := os.Getenv(envPrefix + "CI_METHOD"); v != "" {
		opts = append(opts, capability.WithCIMethod(capability.CIMethod(v)))
	}
	if v := os.Getenv(envPrefix + "NONNORMAL"); v != "" {
		opts = append(opts, capability.WithNonNormal(capability.NonNormalStrategy(v)))
	}

	ints := []struct {
		key   string
		apply func(int) capability.Option
	}{
		{"SUBGROUP_SIZE", capability.WithSubgroupSize},
		{"RESAMPLES", capability.WithResamples},
		{"WORKERS", capability.WithWorkers},
		{"MIN_FIT_SAMPLE_SIZE", capability.WithMinFitSampleSize},
	}
	for _, i := range ints {
		v, ok, err := getEnvInt(envPrefix + i.key)
		if err != nil {
			return nil, err
		}
		if ok {
			opts = append(opts, i.apply(v))
		}
	}

	if v, ok, err := getEnvFloat(envPrefix + "CONFIDENCE_LEVEL"); err != nil {
		return nil, err
	} else if ok {
		opts = append(opts, capability.WithConfidenceLevel(v))
	}
	if v := os.Getenv(envPrefix + "SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("%sSEED: %q is not an integer", envPrefix, v))
		}
		opts = append(opts, capability.WithSeed(seed))
	}
	return opts, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string) (int, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, errors.ConfigInvalid(fmt.Sprintf("%s: %q is not an integer", key, value))
	}
	return intValue, true, nil
}

func getEnvFloat(key string) (float64, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, errors.ConfigInvalid(fmt.Sprintf("%s: %q is not a number", key, value))
	}
	return floatValue, true, nil
}

// getEnvLimit parses a limit; "none" or "-" clears a limit set by a file.
func getEnvLimit(key string) (capability.Limit, bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	switch strings.ToLower(value) {
	case "":
		return capability.None(), false, nil
	case "none", "-":
		return capability.None(), true, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return capability.None(), false, errors.ConfigInvalid(fmt.Sprintf("%s: %q is not a number", key, value))
	}
	return capability.Some(v), true, nil
}
