package engine

import (
	"github.com/tphakala/go-audio-divider/internal/blep"
	"github.com/tphakala/go-audio-divider/internal/filter"
	"github.com/tphakala/go-audio-divider/internal/simdops"
)

// Params holds the output stage constants shared by every State of a
// divider.
type Params struct {
	OutputScale float32
	DCCutoffHz  float32
	Headroom    float32
}

// DefaultParams returns the standard output stage constants.
func DefaultParams() Params {
	return Params{
		OutputScale: DefaultOutputScale,
		DCCutoffHz:  DefaultDCCutoffHz,
		Headroom:    DefaultHeadroom,
	}
}

// State is the divider state for one 4-wide vector of independent signals.
//
// A call sequence of Shift, Divide and Render advances the state by one
// frame. Prev always holds the Cur of the previous frame. Every Polarity
// element is exactly -1 or +1.
//
// The transient fields are recomputed every frame and only kept on the
// struct so callers and tests can inspect them without allocating.
type State struct {
	Prev     simdops.Float4
	Cur      simdops.Float4
	Polarity simdops.Float4

	// Crossing has bit j set if lane j crossed zero upwards this frame.
	Crossing uint8
	// Delta holds the subsample offset of each crossing lane, in (-1, 0].
	Delta simdops.Float4
	Sqr   simdops.Float4
	Blp   simdops.Float4
	Out   simdops.Float4

	blep   *blep.Generator
	dc     filter.RC
	params Params
}

// NewState creates a state with polarity -1 on every lane.
func NewState(table *blep.Table, params Params) *State {
	s := &State{}
	s.Init(table, params)
	return s
}

// Init sets up s in place. It is used for states embedded in arrays.
func (s *State) Init(table *blep.Table, params Params) {
	*s = State{
		blep:   blep.NewGenerator(table),
		params: params,
	}
	s.Polarity = simdops.Splat(initialPolarity)
}

// Reset restores the state to the values Init left it in. The generator
// buffer is reused.
func (s *State) Reset() {
	g, p := s.blep, s.params
	g.Reset()
	*s = State{blep: g, params: p}
	s.Polarity = simdops.Splat(initialPolarity)
}

// Shift moves Cur into Prev and loads the next input frame.
func (s *State) Shift(in simdops.Float4) {
	s.Prev = s.Cur
	s.Cur = in
}

// Divide flips the polarity of every lane whose input crossed zero upwards
// between Prev and Cur, and schedules a band-limited step for each flip.
func (s *State) Divide() {
	s.Crossing = s.Prev.LessMask(0) & s.Cur.AtLeastMask(0)
	s.Delta = simdops.Float4{}
	if s.Crossing == 0 {
		return
	}

	for j := range simdops.Width {
		if s.Crossing&(1<<j) == 0 {
			continue
		}
		s.Polarity[j] = -s.Polarity[j]

		// Linear interpolation of the crossing point. Prev < 0 <= Cur, so
		// the denominator is strictly negative and the offset is in (-1, 0].
		s.Delta[j] = s.Cur[j] / (s.Prev[j] - s.Cur[j])
		s.blep.InsertDiscontinuity(s.Delta[j], s.Polarity.Lane(j).Scale(stepMagnitude))
	}
}

// Render produces Out for the current frame. sampleTime is 1/sampleRate and
// may change between calls.
func (s *State) Render(sampleTime float32) simdops.Float4 {
	s.Blp = s.blep.Process().Scale(s.params.OutputScale)
	s.Sqr = s.Polarity.Scale(s.params.OutputScale)

	s.dc.SetCutoffFreq(s.params.DCCutoffHz * sampleTime)
	s.dc.Process(s.Sqr.Add(s.Blp))
	s.Out = s.dc.Highpass().Scale(s.params.Headroom)
	return s.Out
}

// Step runs Shift, Divide and Render for one frame.
func (s *State) Step(in simdops.Float4, sampleTime float32) simdops.Float4 {
	s.Shift(in)
	s.Divide()
	return s.Render(sampleTime)
}

// Params returns the output stage constants of s.
func (s *State) Params() Params {
	return s.params
}
