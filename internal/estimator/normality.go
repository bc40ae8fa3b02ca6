package estimator

import (
	"math"

	"procap/domain/capability"

	"gonum.org/v1/gonum/stat/distuv"
)

// minNormalitySample is the smallest n the K² transforms are defined for.
const minNormalitySample = 8

// normalityAlpha is the rejection level for the omnibus test.
const normalityAlpha = 0.05

// TestNormality runs D'Agostino's K² omnibus test from the population
// skewness √b1 and excess kurtosis b2-3.
func TestNormality(n int, skewness, excessKurtosis float64) capability.NormalityTest {
	if n < minNormalitySample {
		return capability.NormalityTest{}
	}
	fn := float64(n)

	// Skewness transform to Z1
	y := skewness * math.Sqrt((fn+1)*(fn+3)/(6*(fn-2)))
	beta2 := (3 * (fn*fn + 27*fn - 70) * (fn + 1) * (fn + 3)) / ((fn - 2) * (fn + 5) * (fn + 7) * (fn + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	if w2 <= 1 {
		return capability.NormalityTest{}
	}
	delta := 1 / math.Sqrt(math.Log(math.Sqrt(w2)))
	alpha := math.Sqrt(2 / (w2 - 1))
	ay := y / alpha
	z1 := delta * math.Log(ay+math.Sqrt(ay*ay+1))

	// Kurtosis transform to Z2 (Anscombe-Glynn)
	b2 := excessKurtosis + 3
	e := 3 * (fn - 1) / (fn + 1)
	v := 24 * fn * (fn - 2) * (fn - 3) / ((fn + 1) * (fn + 1) * (fn + 3) * (fn + 5))
	x := (b2 - e) / math.Sqrt(v)
	sqrtBeta1 := 6 * (fn*fn - 5*fn + 2) / ((fn + 7) * (fn + 9)) * math.Sqrt(6*(fn+3)*(fn+5)/(fn*(fn-2)*(fn-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	if a <= 4 {
		return capability.NormalityTest{}
	}
	term := 1 - 2/(9*a)
	den := 1 + x*math.Sqrt(2/(a-4))
	var z2 float64
	if den <= 0 {
		// cube root of a negative ratio; the sample is far in the heavy tail
		z2 = (term + math.Cbrt((1-2/a)/-den)) / math.Sqrt(2/(9*a))
	} else {
		z2 = (term - math.Cbrt((1-2/a)/den)) / math.Sqrt(2/(9*a))
	}

	k2 := z1*z1 + z2*z2
	p := distuv.ChiSquared{K: 2}.Survival(k2)
	return capability.NormalityTest{
		Evaluated: true,
		Statistic: k2,
		PValue:    p,
		IsNormal:  p > normalityAlpha,
	}
}
