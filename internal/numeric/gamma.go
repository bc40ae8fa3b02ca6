package numeric

import "math"

// Lanczos approximation, g = 7, n = 9 (Numerical Recipes / Godfrey
// coefficients); relative error below 1e-15 for positive arguments.
const lanczosG = 7

var lanczosCoefficients = [...]float64{
	0.99999999999980993,
	676.5203681218851,
	-1259.1392167224028,
	771.32342877765313,
	-176.61502916214059,
	12.507343278686905,
	-0.13857109526572012,
	9.9843695780195716e-6,
	1.5056327351493116e-7,
}

// LogGamma returns ln|Γ(x)|. Arguments below 0.5 use the reflection
// formula; non-positive integers return +Inf.
func LogGamma(x float64) float64 {
	if x <= 0 && x == math.Floor(x) {
		return math.Inf(1)
	}
	if x < 0.5 {
		// Γ(x)Γ(1-x) = π / sin(πx)
		return math.Log(math.Pi/math.Abs(math.Sin(math.Pi*x))) - LogGamma(1-x)
	}
	x--
	a := lanczosCoefficients[0]
	t := x + lanczosG + 0.5
	for i := 1; i < len(lanczosCoefficients); i++ {
		a += lanczosCoefficients[i] / (x + float64(i))
	}
	return 0.5*math.Log(2*math.Pi) + (x+0.5)*math.Log(t) - t + math.Log(a)
}

// Gamma returns Γ(x) for x > 0 using the Lanczos approximation.
func Gamma(x float64) float64 {
	if x <= 0 && x == math.Floor(x) {
		return math.NaN()
	}
	if x < 0.5 {
		return math.Pi / (math.Sin(math.Pi*x) * Gamma(1-x))
	}
	return math.Exp(LogGamma(x))
}
