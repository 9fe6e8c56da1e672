// Package analysis measures divider output: zero crossings, level, and how
// much of the spectrum lies away from the harmonics of a fundamental. The
// last one is the aliasing figure used by tests and the demo command.
package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-audio-divider/internal/filter"
	"github.com/tphakala/go-audio-divider/internal/simdops"
)

const (
	// Bins on either side of a harmonic that still count as harmonic. The
	// Blackman-Harris main lobe is 4 bins wide on each side.
	harmonicGuardBins = 6

	// Bins at the bottom of the spectrum excluded from every measurement,
	// covering DC and the DC blocker's settling.
	dcGuardBins = 6
)

// RisingCrossings returns every index i where x[i-1] < 0 and x[i] >= 0.
func RisingCrossings[F simdops.Float](x []F) []int {
	var idx []int
	for i := 1; i < len(x); i++ {
		if x[i-1] < 0 && x[i] >= 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

// Mean returns the arithmetic mean of x, or 0 for an empty slice.
func Mean[F simdops.Float](x []F) F {
	if len(x) == 0 {
		return 0
	}
	return simdops.For[F]().Sum(x) / F(len(x))
}

// RMS returns the root mean square of x, or 0 for an empty slice.
func RMS[F simdops.Float](x []F) F {
	if len(x) == 0 {
		return 0
	}
	ss := simdops.For[F]().DotProductUnsafe(x, x)
	return F(math.Sqrt(float64(ss) / float64(len(x))))
}

// Peak returns the largest absolute value in x.
func Peak[F simdops.Float](x []F) F {
	var p F
	for _, v := range x {
		if v < 0 {
			v = -v
		}
		p = max(p, v)
	}
	return p
}

// Spectrum returns the single-sided magnitude spectrum of x after a
// Blackman-Harris window, len(x)/2+1 bins. A full-scale sine at a bin
// center reads close to its amplitude.
func Spectrum(x []float64) []float64 {
	n := len(x)
	if n < 2 {
		return nil
	}

	window := filter.BlackmanHarrisWindow(n)
	gain := simdops.Float64Ops().Sum(window)
	windowed := make([]float64, n)
	copy(windowed, x)
	filter.ApplyWindow(windowed, window)

	coeffs := fourier.NewFFT(n).Coefficients(nil, windowed)
	mag := make([]float64, len(coeffs))
	for k, c := range coeffs {
		mag[k] = 2 * cmplx.Abs(c) / gain
	}
	return mag
}

// PeakFrequency returns the frequency of the strongest spectral component
// of x above DC, refined by parabolic interpolation between bins.
func PeakFrequency(x []float64, sampleRate float64) float64 {
	mag := Spectrum(x)
	if len(mag) <= dcGuardBins+1 {
		return 0
	}

	best := dcGuardBins
	for k := dcGuardBins; k < len(mag); k++ {
		if mag[k] > mag[best] {
			best = k
		}
	}

	offset := 0.0
	if best > 0 && best < len(mag)-1 {
		a, b, c := mag[best-1], mag[best], mag[best+1]
		if d := a - 2*b + c; d != 0 {
			offset = 0.5 * (a - c) / d
		}
	}
	return (float64(best) + offset) * sampleRate / float64(len(x))
}

// InharmonicRatio returns the fraction of the power of x (DC excluded) that
// lies more than a few bins away from every multiple of f0. A band-limited
// periodic signal scores near zero; aliasing raises the figure.
func InharmonicRatio(x []float64, sampleRate, f0 float64) float64 {
	mag := Spectrum(x)
	if len(mag) == 0 || f0 <= 0 {
		return 0
	}
	binHz := sampleRate / float64(len(x))

	var total, inharmonic float64
	for k := dcGuardBins; k < len(mag); k++ {
		p := mag[k] * mag[k]
		total += p

		f := float64(k) * binHz
		h := math.Round(f / f0)
		if h < 1 || math.Abs(f-h*f0) > harmonicGuardBins*binHz {
			inharmonic += p
		}
	}
	if total == 0 {
		return 0
	}
	return inharmonic / total
}
