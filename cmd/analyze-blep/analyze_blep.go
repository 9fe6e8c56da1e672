package main

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-divider/internal/blep"
	"github.com/tphakala/go-audio-divider/internal/filter"
	"github.com/tphakala/go-audio-divider/internal/mathutil"
)

const (
	// Step settling tolerance
	settleTolerance = 1e-3

	// Frequency response resolution over the oversampled band
	responsePoints = 4096

	// Attenuation the table design assumes when beta is 0
	defaultKaiserAttenuation = 100.0

	// Display limits
	samplesToShow = 8 // Leading output-rate samples printed per table
)

func main() {
	fmt.Println("=== Analyzing minBLEP Tables ===")

	specs := []struct {
		name string
		spec blep.TableSpec
	}{
		{"Blackman-Harris", blep.DefaultTableSpec()},
		{"Kaiser (100 dB)", withWindow(blep.WindowKaiser, 0)},
		{"Kaiser (beta 6)", withWindow(blep.WindowKaiser, 6)},
	}

	for _, s := range specs {
		table, err := blep.NewTable(s.spec)
		if err != nil {
			fmt.Printf("%s: Error: %v\n", s.name, err)
			continue
		}
		analyze(s.name, s.spec, table)
	}
}

func withWindow(w blep.Window, beta float64) blep.TableSpec {
	spec := blep.DefaultTableSpec()
	spec.Window = w
	spec.KaiserBeta = beta
	return spec
}

func analyze(name string, spec blep.TableSpec, table *blep.Table) {
	step := table.Step()
	o := table.Oversampling()

	fmt.Printf("\n=== %s ===\n", name)
	fmt.Printf("  Zero crossings: %d\n", table.ZeroCrossings())
	fmt.Printf("  Oversampling: %d\n", o)
	fmt.Printf("  Table points: %d\n", len(step))
	fmt.Printf("  Correction length: %d samples\n", table.Span())
	if spec.Window == blep.WindowKaiser {
		beta := spec.KaiserBeta
		if beta == 0 {
			beta = mathutil.KaiserBeta(defaultKaiserAttenuation)
		}
		fmt.Printf("  Kaiser beta: %.3f (~%.1f dB sidelobes)\n", beta, mathutil.KaiserAttenuation(beta))
	}

	// Overshoot and the dip that follows it.
	peakIdx := 0
	for i, v := range step {
		if v > step[peakIdx] {
			peakIdx = i
		}
	}
	dipIdx := peakIdx
	for i := peakIdx; i < len(step); i++ {
		if step[i] < step[dipIdx] {
			dipIdx = i
		}
	}
	settled := 0
	for i, v := range step {
		if math.Abs(float64(v)-1) > settleTolerance {
			settled = i + 1
		}
	}

	fmt.Printf("  Overshoot: %.4f at sample %.2f\n", step[peakIdx], float64(peakIdx)/float64(o))
	fmt.Printf("  Undershoot: %.4f at sample %.2f\n", step[dipIdx], float64(dipIdx)/float64(o))
	fmt.Printf("  Settled within %g after %.2f samples\n", settleTolerance, float64(settled)/float64(o))

	fmt.Println("  Step at output-rate samples:")
	for k := range min(samplesToShow, table.Span()) {
		fmt.Printf("    Sample %2d: %+.6f\n", k, step[k*o])
	}

	// The table derivative is the band-limited impulse. Frequencies are
	// normalized to the oversampled rate, so the output Nyquist sits at
	// 0.5/O and the first alias image at 1/O.
	impulse := make([]float64, len(step)-1)
	for i := range impulse {
		impulse[i] = float64(step[i+1] - step[i])
	}
	resp := filter.ComputeFrequencyResponse(impulse, responsePoints)

	nyquist := 0.5 / float64(o)
	fmt.Println("  Impulse response:")
	fmt.Printf("    DC gain: %.2f dB\n", filter.MagnitudeDB(resp.Magnitude[0]))
	fmt.Printf("    Half Nyquist: %.2f dB\n", filter.MagnitudeDB(gainAt(resp, nyquist/2)))
	fmt.Printf("    Nyquist: %.2f dB\n", filter.MagnitudeDB(gainAt(resp, nyquist)))
	fmt.Printf("    Worst image above %g: %.2f dB\n", 2*nyquist, filter.MagnitudeDB(maxGainAbove(resp, 2*nyquist)))
}

// gainAt returns the magnitude at the first response point at or above freq.
func gainAt(resp filter.FilterResponse, freq float64) float64 {
	for i, f := range resp.Frequencies {
		if f >= freq {
			return resp.Magnitude[i]
		}
	}
	return resp.Magnitude[len(resp.Magnitude)-1]
}

// maxGainAbove returns the largest magnitude at or above freq.
func maxGainAbove(resp filter.FilterResponse, freq float64) float64 {
	var peak float64
	for i, f := range resp.Frequencies {
		if f >= freq {
			peak = max(peak, resp.Magnitude[i])
		}
	}
	return peak
}
