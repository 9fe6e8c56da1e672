// Package mathutil provides the Kaiser window math for band-limited step
// design.
package mathutil

import (
	"math"
)

// BesselI0 returns I₀(x), the zeroth order modified Bessel function of the
// first kind, which shapes the Kaiser window. The Kaiser minBLEP tables
// evaluate it for 0 ≤ x ≤ β, with β around 10 for the default design.
//
// Below 3.75 the polynomial form of Abramowitz & Stegun 9.8.1 is used;
// above it the exponentially scaled form of 9.8.2.
func BesselI0(x float64) float64 {
	ax := math.Abs(x)

	if ax < besselSmallArgThreshold {
		t := x / besselSmallArgThreshold
		t *= t
		return 1.0 + t*(besselI0Coeff1+t*(besselI0Coeff2+t*(besselI0Coeff3+
			t*(besselI0Coeff4+t*(besselI0Coeff5+t*besselI0Coeff6)))))
	}

	t := besselSmallArgThreshold / ax
	scaled := besselI0AsympCoeff0 + t*(besselI0AsympCoeff1+t*(besselI0AsympCoeff2+
		t*(besselI0AsympCoeff3+t*(besselI0AsympCoeff4+t*(besselI0AsympCoeff5+
			t*(besselI0AsympCoeff6+t*(besselI0AsympCoeff7+t*besselI0AsympCoeff8)))))))

	return math.Exp(ax) * scaled / math.Sqrt(ax)
}

// KaiserBeta returns the Kaiser β that reaches the given sidelobe
// attenuation in dB (Kaiser & Schafer). Attenuations of 21 dB or less give
// β = 0, a rectangular window.
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff1 * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	default:
		return 0
	}
}

// KaiserAttenuation estimates the sidelobe attenuation in dB of a Kaiser
// window with an explicit β. It inverts the high attenuation branch of
// KaiserBeta and reports 0 for β near zero.
func KaiserAttenuation(beta float64) float64 {
	if beta < kaiserBetaMinThreshold {
		return 0
	}
	return kaiserBetaHighOffset + beta/kaiserBetaHighCoeff1
}
