// Package numeric holds the closed-form approximations the capability
// engine is built on: the standard normal CDF, the Lanczos gamma function
// and the d2/c4 bias-correction constants.
package numeric

import "math"

// Abramowitz & Stegun 7.1.26 coefficients for erf on x >= 0.
const (
	erfP  = 0.3275911
	erfA1 = 0.254829592
	erfA2 = -0.284496736
	erfA3 = 1.421413741
	erfA4 = -1.453152027
	erfA5 = 1.061405429
)

// erfPositive approximates erf(x) for x >= 0 with |error| <= 1.5e-7.
func erfPositive(x float64) float64 {
	t := 1 / (1 + erfP*x)
	poly := t * (erfA1 + t*(erfA2+t*(erfA3+t*(erfA4+t*erfA5))))
	return 1 - poly*math.Exp(-x*x)
}

// NormalCDF returns Φ(z) for the standard normal distribution in a single
// rational-approximation pass. Φ(0) is exactly 0.5 and Φ(-z) = 1-Φ(z) holds
// by construction.
func NormalCDF(z float64) float64 {
	switch {
	case math.IsNaN(z):
		return math.NaN()
	case z == 0:
		return 0.5
	case math.IsInf(z, 1):
		return 1
	case math.IsInf(z, -1):
		return 0
	}
	half := 0.5 * erfPositive(math.Abs(z)/math.Sqrt2)
	if z > 0 {
		return 0.5 + half
	}
	return 0.5 - half
}
