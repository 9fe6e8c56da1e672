package filter

import (
	"math"

	"github.com/tphakala/go-audio-divider/internal/simdops"
)

// RC is a first-order RC filter discretized with the bilinear transform.
// It runs on four lanes at once and exposes both the lowpass and the
// complementary highpass output of the last processed sample.
//
//	y[n] = (x[n] + x[n-1] - y[n-1]·(1 - c)) / (1 + c),  c = 2 / ωc
//	lowpass = y[n], highpass = x[n] - y[n]
//
// The zero value has c = 0 (cutoff at infinity) and empty history.
type RC struct {
	c  float32
	x1 simdops.Float4
	y1 simdops.Float4
}

// SetCutoff sets the cutoff as an angular frequency in radians per sample.
func (f *RC) SetCutoff(omega float32) {
	f.c = 2 / omega
}

// SetCutoffFreq sets the cutoff as a ratio of the sample rate (fc / fs).
func (f *RC) SetCutoffFreq(freq float32) {
	f.SetCutoff(2 * math.Pi * freq)
}

// Process feeds one sample per lane through the filter.
func (f *RC) Process(x simdops.Float4) {
	for i := range x {
		y := (x[i] + f.x1[i] - f.y1[i]*(1-f.c)) / (1 + f.c)
		f.x1[i] = x[i]
		f.y1[i] = y
	}
}

// Lowpass returns the lowpass output of the last processed sample.
func (f *RC) Lowpass() simdops.Float4 {
	return f.y1
}

// Highpass returns the highpass output of the last processed sample.
func (f *RC) Highpass() simdops.Float4 {
	return f.x1.Sub(f.y1)
}

// Reset clears the filter history. The cutoff is kept.
func (f *RC) Reset() {
	f.x1 = simdops.Float4{}
	f.y1 = simdops.Float4{}
}
