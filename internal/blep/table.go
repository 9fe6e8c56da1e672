// Package blep implements minBLEP (minimum-phase band-limited step)
// synthesis: a precomputed step table and a 4-lane generator that turns
// scheduled discontinuities into a correction signal. Adding the correction
// to a naive digital step cancels most of the aliasing the step would cause.
package blep

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-audio-divider/internal/filter"
	"github.com/tphakala/go-audio-divider/internal/mathutil"
)

// Default table dimensions: a 32-sample correction sampled 32 times per
// sample.
const (
	DefaultZeroCrossings = 16
	DefaultOversampling  = 32
)

// Table design limits.
const (
	minZeroCrossings = 2
	maxZeroCrossings = 64
	minOversampling  = 1
	maxOversampling  = 256

	// logMagnitudeFloor keeps the real cepstrum finite where the windowed
	// sinc spectrum has exact zeros.
	logMagnitudeFloor = 1e-30

	// defaultKaiserAttenuation is used when WindowKaiser is selected
	// without an explicit β.
	defaultKaiserAttenuation = 100.0
)

// ErrInvalidSpec is returned for table parameters outside the supported range.
var ErrInvalidSpec = errors.New("invalid minBLEP table spec")

// Window selects the window applied to the sinc before the minimum-phase
// transform.
type Window int

const (
	// WindowBlackmanHarris is the 4-term Blackman-Harris window.
	WindowBlackmanHarris Window = iota

	// WindowKaiser is a Kaiser window with a configurable β.
	WindowKaiser
)

// String returns the window name.
func (w Window) String() string {
	switch w {
	case WindowBlackmanHarris:
		return "blackman-harris"
	case WindowKaiser:
		return "kaiser"
	default:
		return fmt.Sprintf("window(%d)", int(w))
	}
}

// TableSpec describes a minBLEP table.
type TableSpec struct {
	// ZeroCrossings is the number of sinc zero crossings on each side of the
	// center. The correction lasts 2*ZeroCrossings output samples.
	ZeroCrossings int

	// Oversampling is the number of table points per output sample.
	Oversampling int

	// Window is applied to the sinc before the minimum-phase transform.
	Window Window

	// KaiserBeta is the Kaiser β. Zero selects β for 100 dB attenuation.
	// Ignored for other windows.
	KaiserBeta float64
}

// DefaultTableSpec returns the 16 zero crossing, 32x oversampled
// Blackman-Harris table.
func DefaultTableSpec() TableSpec {
	return TableSpec{
		ZeroCrossings: DefaultZeroCrossings,
		Oversampling:  DefaultOversampling,
		Window:        WindowBlackmanHarris,
	}
}

// Validate checks the spec ranges.
func (s TableSpec) Validate() error {
	if s.ZeroCrossings < minZeroCrossings || s.ZeroCrossings > maxZeroCrossings {
		return fmt.Errorf("%w: zero crossings must be %d-%d, got %d",
			ErrInvalidSpec, minZeroCrossings, maxZeroCrossings, s.ZeroCrossings)
	}
	if s.Oversampling < minOversampling || s.Oversampling > maxOversampling {
		return fmt.Errorf("%w: oversampling must be %d-%d, got %d",
			ErrInvalidSpec, minOversampling, maxOversampling, s.Oversampling)
	}
	if s.Window != WindowBlackmanHarris && s.Window != WindowKaiser {
		return fmt.Errorf("%w: unknown %v", ErrInvalidSpec, s.Window)
	}
	if s.KaiserBeta < 0 {
		return fmt.Errorf("%w: kaiser beta must be non-negative", ErrInvalidSpec)
	}
	return nil
}

// Table is an oversampled minimum-phase band-limited unit step.
// It holds 2*Z*O+1 points; the last point is exactly 1.
// A Table is immutable and may be shared by any number of generators.
type Table struct {
	zeroCrossings int
	oversampling  int
	step          []float32
}

// NewTable designs a minBLEP table.
//
// The design follows the classic recipe: a windowed sinc with Z zero
// crossings per side sampled O times per crossing, converted to minimum
// phase through the real cepstrum, then integrated and normalized to a unit
// step.
func NewTable(spec TableSpec) (*Table, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	z, o := spec.ZeroCrossings, spec.Oversampling
	n := 2 * z * o

	impulse := minimumPhase(windowedSinc(spec, n))

	// Integrate and normalize to a unit step.
	step := make([]float32, n+1)
	var total float64
	cum := make([]float64, n)
	for i, v := range impulse {
		total += v
		cum[i] = total
	}
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: degenerate impulse (sum %v)", ErrInvalidSpec, total)
	}
	for i, v := range cum {
		step[i] = float32(v / total)
	}
	step[n] = 1

	return &Table{
		zeroCrossings: z,
		oversampling:  o,
		step:          step,
	}, nil
}

// windowedSinc samples sinc over [-z, z] with n points and applies the window.
func windowedSinc(spec TableSpec, n int) []float64 {
	z := float64(spec.ZeroCrossings)
	x := make([]float64, n)
	for i := range n {
		p := -z + 2*z*float64(i)/float64(n-1)
		x[i] = filter.Sinc(p)
	}

	var window []float64
	switch spec.Window {
	case WindowKaiser:
		beta := spec.KaiserBeta
		if beta == 0 {
			beta = mathutil.KaiserBeta(defaultKaiserAttenuation)
		}
		window = filter.KaiserWindow(n, beta)
	default:
		window = filter.BlackmanHarrisWindow(n)
	}
	filter.ApplyWindow(x, window)

	return x
}

// minimumPhase returns the minimum-phase sequence with the same magnitude
// spectrum as x, using the folded real cepstrum.
func minimumPhase(x []float64) []float64 {
	n := len(x)
	fft := fourier.NewCmplxFFT(n)
	inv := 1.0 / float64(n)

	seq := make([]complex128, n)
	for i, v := range x {
		seq[i] = complex(v, 0)
	}

	// Real cepstrum: IFFT(log|X|).
	spectrum := fft.Coefficients(nil, seq)
	for i, v := range spectrum {
		spectrum[i] = complex(math.Log(math.Max(cmplx.Abs(v), logMagnitudeFloor)), 0)
	}
	cepstrum := fft.Sequence(nil, spectrum)
	for i := range cepstrum {
		cepstrum[i] *= complex(inv, 0)
	}

	// Fold the anti-causal part onto the causal part.
	for i := 1; i < n/2; i++ {
		cepstrum[i] *= 2
	}
	for i := (n + 1) / 2; i < n; i++ {
		cepstrum[i] = 0
	}

	spectrum = fft.Coefficients(spectrum, cepstrum)
	for i, v := range spectrum {
		spectrum[i] = cmplx.Exp(v)
	}
	seq = fft.Sequence(seq, spectrum)

	out := make([]float64, n)
	for i, v := range seq {
		out[i] = real(v) * inv
	}
	return out
}

// ZeroCrossings returns Z.
func (t *Table) ZeroCrossings() int { return t.zeroCrossings }

// Oversampling returns O.
func (t *Table) Oversampling() int { return t.oversampling }

// Span returns the number of output samples a correction lasts (2*Z).
func (t *Table) Span() int { return 2 * t.zeroCrossings }

// Step returns a copy of the table points.
func (t *Table) Step() []float32 {
	out := make([]float32, len(t.step))
	copy(out, t.step)
	return out
}

// at linearly interpolates the table at fractional index x (in table points).
func (t *Table) at(x float32) float32 {
	last := len(t.step) - 1
	xi := int(x)
	if xi >= last {
		return t.step[last]
	}
	if xi < 0 {
		return t.step[0]
	}
	xf := x - float32(xi)
	return t.step[xi] + (t.step[xi+1]-t.step[xi])*xf
}
