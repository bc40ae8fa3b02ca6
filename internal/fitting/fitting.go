// Package fitting fits candidate distributions to a sample for
// non-normal capability analysis and scores them with the
// Anderson-Darling statistic.
package fitting

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"procap/domain/capability"
	"procap/domain/core"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Family names a candidate distribution.
type Family string

const (
	Normal    Family = "normal"
	LogNormal Family = "lognormal"
	Weibull   Family = "weibull"
)

// minFitSample is the smallest sample any candidate is fitted to.
const minFitSample = 3

// Distribution is the part of a gonum distribution the capability
// calculations need.
type Distribution interface {
	CDF(x float64) float64
	Quantile(p float64) float64
}

// Fit is one fitted candidate. For Normal and LogNormal, P1 and P2 are
// (mu, sigma); for Weibull they are (shape, scale).
type Fit struct {
	Family          Family
	P1, P2          float64
	AndersonDarling float64
	Dist            Distribution `json:"-"`
}

func (f Fit) String() string {
	switch f.Family {
	case Weibull:
		return fmt.Sprintf("weibull(shape=%.4g, scale=%.4g) A²=%.4g", f.P1, f.P2, f.AndersonDarling)
	default:
		return fmt.Sprintf("%s(mu=%.4g, sigma=%.4g) A²=%.4g", f.Family, f.P1, f.P2, f.AndersonDarling)
	}
}

func checkFitSample(sample []float64) error {
	if len(sample) < minFitSample {
		return fmt.Errorf("%w: fitting needs n >= %d, got %d", core.ErrInsufficientData, minFitSample, len(sample))
	}
	return nil
}

func positive(sample []float64, family Family) error {
	for _, x := range sample {
		if x <= 0 {
			return fmt.Errorf("%w: %s needs strictly positive data, got %g", core.ErrFitFailed, family, x)
		}
	}
	return nil
}

// FitNormal fits N(mu, sigma²) by maximum likelihood.
func FitNormal(sample []float64) (Fit, error) {
	if err := checkFitSample(sample); err != nil {
		return Fit{}, err
	}
	mu, sigma := stat.PopMeanStdDev(sample, nil)
	if sigma <= 0 {
		return Fit{}, fmt.Errorf("%w: %w", core.ErrFitFailed, core.ErrZeroVariance)
	}
	return score(sample, Fit{Family: Normal, P1: mu, P2: sigma, Dist: distuv.Normal{Mu: mu, Sigma: sigma}}), nil
}

// FitLogNormal fits a lognormal by maximum likelihood on log(x).
func FitLogNormal(sample []float64) (Fit, error) {
	if err := checkFitSample(sample); err != nil {
		return Fit{}, err
	}
	if err := positive(sample, LogNormal); err != nil {
		return Fit{}, err
	}
	logs := make([]float64, len(sample))
	for i, x := range sample {
		logs[i] = math.Log(x)
	}
	mu, sigma := stat.PopMeanStdDev(logs, nil)
	if sigma <= 0 {
		return Fit{}, fmt.Errorf("%w: %w", core.ErrFitFailed, core.ErrZeroVariance)
	}
	return score(sample, Fit{Family: LogNormal, P1: mu, P2: sigma, Dist: distuv.LogNormal{Mu: mu, Sigma: sigma}}), nil
}

// FitWeibull fits a two-parameter Weibull by maximum likelihood, solving
// the shape equation with Newton's method on data rescaled to max 1.
func FitWeibull(sample []float64) (Fit, error) {
	if err := checkFitSample(sample); err != nil {
		return Fit{}, err
	}
	if err := positive(sample, Weibull); err != nil {
		return Fit{}, err
	}
	xMax := sample[0]
	for _, x := range sample {
		xMax = math.Max(xMax, x)
	}
	n := float64(len(sample))
	logs := make([]float64, len(sample))
	for i, x := range sample {
		logs[i] = math.Log(x / xMax)
	}
	meanLog, sdLog := stat.PopMeanStdDev(logs, nil)
	if sdLog <= 0 {
		return Fit{}, fmt.Errorf("%w: %w", core.ErrFitFailed, core.ErrZeroVariance)
	}

	// Gumbel moment estimate of the shape as the starting point
	k := math.Pi / (math.Sqrt(6) * sdLog)
	converged := false
	for iter := 0; iter < 100; iter++ {
		var s0, s1, s2 float64
		for _, l := range logs {
			w := math.Exp(k * l)
			s0 += w
			s1 += w * l
			s2 += w * l * l
		}
		g := s1/s0 - 1/k - meanLog
		dg := (s2*s0-s1*s1)/(s0*s0) + 1/(k*k)
		step := g / dg
		next := k - step
		for next <= 0 {
			step /= 2
			next = k - step
		}
		if math.Abs(next-k) < 1e-10*k {
			k = next
			converged = true
			break
		}
		k = next
	}
	if !converged || math.IsNaN(k) {
		return Fit{}, fmt.Errorf("%w: weibull shape did not converge", core.ErrFitFailed)
	}

	var s0 float64
	for _, l := range logs {
		s0 += math.Exp(k * l)
	}
	lambda := xMax * math.Pow(s0/n, 1/k)
	return score(sample, Fit{Family: Weibull, P1: k, P2: lambda, Dist: distuv.Weibull{K: k, Lambda: lambda}}), nil
}

func score(sample []float64, f Fit) Fit {
	f.AndersonDarling = AndersonDarling(sample, f.Dist)
	return f
}

// AndersonDarling returns A² = -n - (1/n)Σ(2i-1)[ln F(x₍ᵢ₎) + ln(1-F(x₍ₙ₊₁₋ᵢ₎))].
func AndersonDarling(sample []float64, dist Distribution) float64 {
	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)
	n := len(sorted)
	const eps = 1e-300
	var s float64
	for i := 0; i < n; i++ {
		lo := math.Max(dist.CDF(sorted[i]), eps)
		hi := math.Max(1-dist.CDF(sorted[n-1-i]), eps)
		s += float64(2*i+1) * (math.Log(lo) + math.Log(hi))
	}
	return -float64(n) - s/float64(n)
}

// Select fits the candidates allowed by strategy and returns the one with
// the lowest A² together with every candidate that could be fitted.
// Families that cannot be fitted (e.g. lognormal on non-positive data) are
// skipped under the auto strategy and fail a forced strategy.
func Select(sample []float64, strategy capability.NonNormalStrategy) (Fit, []Fit, error) {
	var fitters []func([]float64) (Fit, error)
	switch strategy {
	case capability.NonNormalAuto:
		fitters = []func([]float64) (Fit, error){FitNormal, FitLogNormal, FitWeibull}
	case capability.NonNormalLogNormal:
		fitters = []func([]float64) (Fit, error){FitLogNormal}
	case capability.NonNormalWeibull:
		fitters = []func([]float64) (Fit, error){FitWeibull}
	default:
		return Fit{}, nil, fmt.Errorf("%w: non-normal strategy %q selects no distribution", core.ErrUnsupportedEstimation, strategy)
	}

	var candidates []Fit
	var errs []error
	for _, fit := range fitters {
		f, err := fit(sample)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		candidates = append(candidates, f)
	}
	if len(candidates) == 0 {
		return Fit{}, nil, errors.Join(errs...)
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.AndersonDarling < best.AndersonDarling {
			best = c
		}
	}
	return best, candidates, nil
}
