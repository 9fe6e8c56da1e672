package divider

import (
	"fmt"

	"github.com/tphakala/go-audio-divider/internal/simdops"
)

// Common sample rates for the block helpers.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000
)

// DivideMono is a convenience function for one-shot mono division with the
// default configuration.
//
// Samples are multiplied by voltsPerUnit before they reach the divider and
// divided by it on the way out. With DefaultVoltsPerUnit, full-scale audio
// in [-1, 1] comes back as a square of roughly ±0.95.
func DivideMono[F simdops.Float](input []F, sampleRate, voltsPerUnit float64) ([]F, error) {
	out, err := DivideLanes([][]F{input}, sampleRate, voltsPerUnit)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// DivideLanes divides up to four mono signals at once, one per lane. The
// lanes run through the vector path together and must have equal lengths.
func DivideLanes[F simdops.Float](lanes [][]F, sampleRate, voltsPerUnit float64) ([][]F, error) {
	if len(lanes) > Lanes {
		return nil, fmt.Errorf("%w: %d lanes (max %d)", ErrTooManyChannels, len(lanes), Lanes)
	}
	return divideBlock(LayoutLanes, lanes, sampleRate, voltsPerUnit)
}

// DividePoly divides up to MaxPolyphony signals as the channels of one
// polyphonic cable on lane 0. Channels must have equal lengths.
//
// A single channel is processed exactly like DivideMono.
func DividePoly[F simdops.Float](channels [][]F, sampleRate, voltsPerUnit float64) ([][]F, error) {
	if len(channels) > MaxPolyphony {
		return nil, fmt.Errorf("%w: %d channels (max %d)", ErrTooManyChannels, len(channels), MaxPolyphony)
	}
	return divideBlock(LayoutPoly, channels, sampleRate, voltsPerUnit)
}

func divideBlock[F simdops.Float](layout Layout, signals [][]F, sampleRate, voltsPerUnit float64) ([][]F, error) {
	if len(signals) == 0 {
		if sampleRate <= 0 || voltsPerUnit <= 0 {
			return nil, fmt.Errorf("%w: sample rate and volts per unit must be positive", ErrInvalidConfig)
		}
		return [][]F{}, nil
	}

	n := len(signals[0])
	for k, s := range signals {
		if len(s) != n {
			return nil, fmt.Errorf("%w: signal %d has %d samples, signal 0 has %d",
				ErrLengthMismatch, k, len(s), n)
		}
	}

	p, err := NewProcessor[F](DefaultConfig(), layout, len(signals), sampleRate, voltsPerUnit)
	if err != nil {
		return nil, err
	}

	out := make([][]F, len(signals))
	for k := range out {
		out[k] = make([]F, n)
	}
	if err := p.Process(signals, out); err != nil {
		return nil, err
	}
	return out, nil
}
