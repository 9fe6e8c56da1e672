package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-audio-divider/internal/testutil"
)

// TestBesselI0 checks I₀ on both sides of the approximation switch, up to
// the β of the default 100 dB Kaiser table.
func TestBesselI0(t *testing.T) {
	tests := []struct {
		name      string
		x         float64
		expected  float64
		tolerance float64
	}{
		{"zero", 0.0, 1.0, 1e-15},
		{"one", 1.0, 1.266065848, 1e-7},
		{"three", 3.0, 4.880792565, 1e-7},
		{"switch point", 3.75, 9.118945994, 1e-7},
		{"five", 5.0, 27.23987183, 1e-7},
		{"ten", 10.0, 2815.716628, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertRelativeError(t, tt.expected, BesselI0(tt.x), tt.tolerance)
		})
	}
}

// TestBesselI0_IncreasingOverWindowRange checks the Kaiser window stays
// monotonic toward its center.
func TestBesselI0_IncreasingOverWindowRange(t *testing.T) {
	prev := BesselI0(0)
	for x := 0.25; x <= 11; x += 0.25 {
		curr := BesselI0(x)
		assert.Greater(t, curr, prev, "x=%v", x)
		prev = curr
	}
}

func TestKaiserBeta(t *testing.T) {
	tests := []struct {
		name        string
		attenuation float64
		expectedMin float64
		expectedMax float64
	}{
		{"rectangular", 20.0, 0.0, 0.0},
		{"60dB", 60.0, 5.6, 5.7},
		{"100dB default", 100.0, 10.0, 10.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertInRange(t, KaiserBeta(tt.attenuation), tt.expectedMin, tt.expectedMax)
		})
	}
}

func TestKaiserAttenuation(t *testing.T) {
	// The β 6 table printed by analyze-blep.
	assert.InDelta(t, 63.15, KaiserAttenuation(6), 0.01)
	assert.Zero(t, KaiserAttenuation(0))

	for _, att := range []float64{60, 80, 100, 120} {
		testutil.AssertRelativeError(t, att, KaiserAttenuation(KaiserBeta(att)), 1e-9)
	}
}
