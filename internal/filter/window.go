// Package filter provides the windows, the one-pole RC filter and the
// frequency response helpers used by the divider.
package filter

import (
	"math"

	"github.com/tphakala/go-audio-divider/internal/mathutil"
)

const (
	// Window normalization
	windowNormalizationFactor = 2.0

	// Sinc function constants
	sincCenterTap     = 1.0
	sincZeroThreshold = 1e-10
)

// 4-term Blackman-Harris coefficients (-92 dB sidelobes).
const (
	bhA0 = 0.35875
	bhA1 = 0.48829
	bhA2 = 0.14128
	bhA3 = 0.01168
)

// Sinc returns the normalized sinc function sin(πx)/(πx), with Sinc(0) = 1.
func Sinc(x float64) float64 {
	if math.Abs(x) < sincZeroThreshold {
		return sincCenterTap
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// KaiserWindow generates a Kaiser window of the specified length and β parameter.
//
// The Kaiser window provides excellent control over the trade-off between
// main lobe width and sidelobe level in frequency domain.
//
// The window is symmetric: w[i] = w[length-1-i], and peaks at 1.0 in the center.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)

	if length == 1 {
		window[0] = sincCenterTap
		return window
	}

	// w[n] = I₀(β * sqrt(1 - ((n - α)/α)²)) / I₀(β)
	// where α = (N-1)/2 and N is the window length
	alpha := float64(length-1) / windowNormalizationFactor
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		x := (float64(n) - alpha) / alpha
		arg := beta * math.Sqrt(math.Max(0, 1.0-x*x))
		window[n] = mathutil.BesselI0(arg) / i0Beta
	}

	return window
}

// BlackmanHarrisWindow generates a 4-term Blackman-Harris window of the
// specified length. The end points are 6e-5 rather than zero.
func BlackmanHarrisWindow(length int) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = sincCenterTap
		return window
	}

	for n := range length {
		p := float64(n) / float64(length-1)
		window[n] = bhA0 -
			bhA1*math.Cos(2*math.Pi*p) +
			bhA2*math.Cos(4*math.Pi*p) -
			bhA3*math.Cos(6*math.Pi*p)
	}

	return window
}

// ApplyWindow multiplies x by window in place. The shorter length wins.
func ApplyWindow(x, window []float64) {
	n := min(len(x), len(window))
	for i := range n {
		x[i] *= window[i]
	}
}
