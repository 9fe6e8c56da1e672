package testutil

import "math"

// Sine returns n samples of amp·sin(2π·freq·i/sampleRate + phase).
func Sine(n int, freq, sampleRate, amp, phase float64) []float32 {
	out := make([]float32, n)
	w := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = float32(amp * math.Sin(w*float64(i)+phase))
	}
	return out
}

// Sine64 is Sine with float64 samples.
func Sine64(n int, freq, sampleRate, amp, phase float64) []float64 {
	out := make([]float64, n)
	w := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = amp * math.Sin(w*float64(i)+phase)
	}
	return out
}

// Pulses returns n samples that sit at -1 and rise to +1 at every index in
// rising, staying high for width samples. Each listed index is therefore an
// ascending zero crossing (previous sample < 0, current sample >= 0).
func Pulses(n, width int, rising ...int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = -1
	}
	for _, r := range rising {
		for i := r; i < r+width && i < n; i++ {
			out[i] = 1
		}
	}
	return out
}

// Constant returns n samples of v.
func Constant(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}
