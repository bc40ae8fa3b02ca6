package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"procap/adapters/excel"
	"procap/adapters/rng"
	"procap/app"
	"procap/domain/capability"
	"procap/domain/validation"
	"procap/internal"
	"procap/internal/config"
	apperrors "procap/internal/errors"
	"procap/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// overrides holds the command-line settings that take precedence over the
// environment and the config file.
type overrides struct {
	configPath string
	file       string
	column     string
	sheet      string
	logLevel   string

	lsl, usl, target float64
	subgroupSize     int
	within           string
	ciMethod         string
	level            float64
	resamples        int
	seed             int64
	workers          int
	nonNormal        string
	asJSON           bool
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "capability",
		Short:         "Process capability analysis for a measurement column",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newAnalyzeCmd(), newValidateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", apperrors.GetCode(err), err)
		os.Exit(1)
	}
}

func bindFlags(fs *pflag.FlagSet, o *overrides) {
	fs.StringVarP(&o.configPath, "config", "c", "", "YAML configuration file")
	fs.StringVarP(&o.file, "file", "f", "", "CSV or XLSX file holding the measurements")
	fs.StringVar(&o.column, "column", "", "Measurement column header (default: first column)")
	fs.StringVar(&o.sheet, "sheet", "", "Worksheet name for XLSX input")
	fs.StringVar(&o.logLevel, "log-level", "", "ERROR, WARN, INFO, DEBUG or TRACE")

	fs.Float64Var(&o.lsl, "lsl", 0, "Lower specification limit")
	fs.Float64Var(&o.usl, "usl", 0, "Upper specification limit")
	fs.Float64Var(&o.target, "target", 0, "Nominal target")
	fs.IntVarP(&o.subgroupSize, "subgroup-size", "m", capability.DefaultSubgroupSize, "Rational subgroup size")
	fs.StringVar(&o.within, "within", "", "Within-subgroup sigma method: range, stdev, pooled, moving_range")
	fs.StringVar(&o.ciMethod, "ci-method", "", "Interval method: analytic, bootstrap_percentile, bootstrap_bca")
	fs.Float64Var(&o.level, "level", capability.DefaultConfidenceLevel, "Confidence level: 0.90, 0.95 or 0.99")
	fs.IntVar(&o.resamples, "resamples", capability.DefaultResamples, "Bootstrap resample count")
	fs.Int64Var(&o.seed, "seed", capability.DefaultSeed, "Random seed for bootstrap resampling")
	fs.IntVar(&o.workers, "workers", 0, "Bootstrap worker count (default: GOMAXPROCS)")
	fs.StringVar(&o.nonNormal, "nonnormal", "", "Distribution fitting: none, auto, lognormal, weibull")
}

// options converts the flags the user actually set into config options.
func (o *overrides) options(fs *pflag.FlagSet) []capability.Option {
	var opts []capability.Option
	set := fs.Changed
	if set("lsl") {
		opts = append(opts, capability.WithLSL(capability.Some(o.lsl)))
	}
	if set("usl") {
		opts = append(opts, capability.WithUSL(capability.Some(o.usl)))
	}
	if set("target") {
		opts = append(opts, capability.WithTarget(capability.Some(o.target)))
	}
	if set("subgroup-size") {
		opts = append(opts, capability.WithSubgroupSize(o.subgroupSize))
	}
	if set("within") {
		opts = append(opts, capability.WithWithinMethod(capability.WithinMethod(o.within)))
	}
	if set("ci-method") {
		opts = append(opts, capability.WithCIMethod(capability.CIMethod(o.ciMethod)))
	}
	if set("level") {
		opts = append(opts, capability.WithConfidenceLevel(o.level))
	}
	if set("resamples") {
		opts = append(opts, capability.WithResamples(o.resamples))
	}
	if set("seed") {
		opts = append(opts, capability.WithSeed(o.seed))
	}
	if set("workers") {
		opts = append(opts, capability.WithWorkers(o.workers))
	}
	if set("nonnormal") {
		opts = append(opts, capability.WithNonNormal(capability.NonNormalStrategy(o.nonNormal)))
	}
	return opts
}

// load merges file, environment and flag settings, flags winning.
func (o *overrides) load(fs *pflag.FlagSet) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	capCfg, err := cfg.Capability.With(o.options(fs)...)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeConfigInvalid, err)
	}
	cfg.Capability = capCfg
	if o.file != "" {
		cfg.Input.File = o.file
	}
	if o.column != "" {
		cfg.Input.Column = o.column
	}
	if o.sheet != "" {
		cfg.Input.Sheet = o.sheet
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

func newAnalyzeCmd() *cobra.Command {
	o := &overrides{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute capability indices, tail metrics and confidence intervals",
		Long: `Read one measurement column and run the full capability analysis.

Settings are taken from CAPABILITY_* environment variables (a .env file is
loaded if present), then from --config, then from flags.

Example: capability analyze -f bore.csv --column diameter --lsl 9.95 --usl 10.05 -m 5 --ci-method bootstrap_bca`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.load(cmd.Flags())
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg, o.asJSON)
		},
	}
	bindFlags(cmd.Flags(), o)
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func newValidateCmd() *cobra.Command {
	o := &overrides{}
	var sampleSize int
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a configuration without computing anything",
		Long: `Run every configuration rule and list the findings.

With --file the sample size is taken from the data; otherwise --n is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.load(cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.Input.File != "" {
				sample, err := readSample(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				sampleSize = len(sample.Values)
			}
			logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel, internal.LogLevelWarn))
			svc := app.NewCapabilityService(rng.NewSeededAdapter(), logger)
			result := svc.ValidateConfiguration(cfg.Capability, sampleSize)

			fmt.Printf("Configuration: %s\n", cfg.Capability.Spec)
			fmt.Printf("Sample size: %d\n", sampleSize)
			printValidation(result)
			if result.HasErrors() {
				return apperrors.ConfigInvalid(result.Summary())
			}
			return nil
		},
	}
	bindFlags(cmd.Flags(), o)
	cmd.Flags().IntVar(&sampleSize, "n", 0, "Sample size to validate against")
	return cmd
}

func readSample(ctx context.Context, cfg *config.Config) (*ports.Sample, error) {
	if cfg.Input.File == "" {
		return nil, apperrors.ConfigInvalid("no input file: pass --file or set CAPABILITY_INPUT_FILE")
	}
	var reader ports.SampleReaderPort = excel.NewDataReader(cfg.Input.File).WithSheet(cfg.Input.Sheet)
	sample, err := reader.ReadSample(ctx, cfg.Input.Column)
	if err != nil {
		return nil, apperrors.Wrap(err, "read sample")
	}
	return sample, nil
}

func runAnalyze(ctx context.Context, cfg *config.Config, asJSON bool) error {
	sample, err := readSample(ctx, cfg)
	if err != nil {
		return err
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel, internal.LogLevelWarn))
	svc := app.NewCapabilityService(rng.NewSeededAdapter(), logger)
	report, err := svc.Analyze(ctx, cfg.Capability, sample.Values)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(sample, report)
	return nil
}

func printReport(sample *ports.Sample, report *app.Report) {
	ps := report.Statistics
	fmt.Printf("Run %s (%s)\n", report.RunID, report.Fingerprint)
	fmt.Printf("Source: %s [%s], %d values, %d blank cells skipped\n", sample.Source, sample.Column, len(sample.Values), sample.Skipped)
	fmt.Printf("Specification: %s\n\n", report.Config.Spec)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Mean\t%.6g\tMedian\t%.6g\n", ps.Mean, ps.Median)
	fmt.Fprintf(w, "Sigma (overall)\t%.6g\tSigma (robust)\t%.6g\n", ps.StdDevOverall, ps.StdDevRobust)
	within := "unavailable"
	if ps.WithinAvailable {
		within = fmt.Sprintf("%.6g (%s, df %.1f)", ps.StdDevWithin, ps.WithinMethod, ps.WithinDF)
	}
	fmt.Fprintf(w, "Sigma (within)\t%s\tSubgroups\t%d x %d\n", within, ps.Subgroups, ps.SubgroupSize)
	fmt.Fprintf(w, "Skewness\t%.4f\tExcess kurtosis\t%.4f\n", ps.Skewness, ps.ExcessKurtosis)
	if ps.Normality.Evaluated {
		fmt.Fprintf(w, "Normality K²\t%.4f\tp-value\t%.4g\n", ps.Normality.Statistic, ps.Normality.PValue)
	}
	w.Flush()

	if len(report.Indices) > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Index\tBasis\tValue\tInterval")
		for _, idx := range report.Indices {
			ci := "-"
			if idx.CI != nil {
				ci = fmt.Sprintf("[%.4f, %.4f] %g%% %s", idx.CI.Lower, idx.CI.Upper, idx.CI.Level*100, idx.CI.Method)
			}
			fmt.Fprintf(w, "%s\t%s\t%.4f\t%s\n", idx.Name, idx.Basis, idx.Value, ci)
		}
		w.Flush()
	}

	if report.Tail != nil {
		fmt.Println()
		printTail("Expected out of spec (normal)", *report.Tail)
	}
	if nn := report.NonNormal; nn != nil {
		fmt.Printf("\nFitted distribution: %s\n", nn.Selected)
		for _, idx := range nn.Indices {
			fmt.Printf("  %s\t%.4f\n", idx.Name, idx.Value)
		}
		printTail("Expected out of spec (fitted)", nn.Tail)
	}

	for _, c := range report.Conditions {
		fmt.Printf("\n⚠️  %s [%s]: %s", c.Stage, c.Code, c.Message)
	}
	if report.HasConditions() {
		fmt.Println()
	}
	printValidation(report.Validation)
	fmt.Printf("\nComputed in %dms\n", report.RuntimeMs)
}

func printTail(title string, t capability.TailMetrics) {
	fmt.Println(title)
	if v, ok := t.PPMBelowLSL.Get(); ok {
		fmt.Printf("  below LSL: %.4g%% (%.1f ppm)\n", t.PercentBelowLSL.Value(), v)
	}
	if v, ok := t.PPMAboveUSL.Get(); ok {
		fmt.Printf("  above USL: %.4g%% (%.1f ppm)\n", t.PercentAboveUSL.Value(), v)
	}
	fmt.Printf("  total: %.1f ppm, yield %.4f%%\n", t.TotalPPM, t.YieldPercent)
}

func printValidation(result validation.Result) {
	if len(result) == 0 {
		return
	}
	fmt.Printf("\nFindings: %s\n", result.Summary())
	for _, f := range result {
		fmt.Printf("  %-7s %-28s %s\n", f.Severity, f.Code, f.Message)
		if f.Action != "" {
			fmt.Printf("          → %s\n", f.Action)
		}
	}
}
