package divider

import (
	"fmt"

	"github.com/tphakala/go-audio-divider/internal/simdops"
)

// Layout selects how a Processor maps its signals onto divider ports.
type Layout int

const (
	// LayoutLanes puts signal k on lane k as a mono cable. Up to Lanes
	// signals; they share the vector path.
	LayoutLanes Layout = iota

	// LayoutPoly puts signal k on channel k of a polyphonic cable on lane 0.
	// Up to MaxPolyphony signals.
	LayoutPoly
)

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case LayoutLanes:
		return "lanes"
	case LayoutPoly:
		return "poly"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// maxSignals returns the signal capacity of the layout.
func (l Layout) maxSignals() int {
	if l == LayoutPoly {
		return MaxPolyphony
	}
	return Lanes
}

// place returns the port and channel of signal k.
func (l Layout) place(k int) (lane, channel int) {
	if l == LayoutPoly {
		return 0, k
	}
	return k, 0
}

// Processor drives a Divider over planar blocks of samples and keeps the
// divider state between calls, so a long signal can be processed in chunks.
//
// Samples are multiplied by voltsPerUnit on the way in and divided by it on
// the way out.
//
// Type parameter F controls the sample type of the blocks; the divider
// itself always runs in float32.
type Processor[F simdops.Float] struct {
	divider *Divider
	jacks   JackSet
	ports   *Ports
	args    ProcessArgs

	layout       Layout
	signals      int
	voltsPerUnit F
	ops          *simdops.Ops[F]
	volts        [][]F
}

// NewProcessor creates a processor for the given number of signals.
func NewProcessor[F simdops.Float](config *Config, layout Layout, signals int, sampleRate, voltsPerUnit float64) (*Processor[F], error) {
	if layout != LayoutLanes && layout != LayoutPoly {
		return nil, fmt.Errorf("%w: unknown %v", ErrInvalidConfig, layout)
	}
	if signals < 1 || signals > layout.maxSignals() {
		return nil, fmt.Errorf("%w: %d signals for %v layout (max %d)",
			ErrTooManyChannels, signals, layout, layout.maxSignals())
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}
	if voltsPerUnit <= 0 {
		return nil, fmt.Errorf("%w: volts per unit must be positive", ErrInvalidConfig)
	}

	d, err := New(config)
	if err != nil {
		return nil, err
	}

	p := &Processor[F]{
		divider:      d,
		args:         NewProcessArgs(float32(sampleRate)),
		layout:       layout,
		signals:      signals,
		voltsPerUnit: F(voltsPerUnit),
		ops:          simdops.For[F](),
		volts:        make([][]F, signals),
	}
	p.ports = p.jacks.Ports()

	var perLane [Lanes]int
	for k := range signals {
		lane, _ := layout.place(k)
		perLane[lane]++
	}
	for lane, n := range perLane {
		if n > 0 {
			p.jacks.In[lane].Connect(n)
			p.jacks.Out[lane].Connect(n)
		}
	}

	return p, nil
}

// Process divides one block. in and out hold one slice per signal, all of
// the same length; out may alias in.
func (p *Processor[F]) Process(in, out [][]F) error {
	if len(in) != p.signals || len(out) != p.signals {
		return fmt.Errorf("%w: got %d inputs and %d outputs, want %d",
			ErrLengthMismatch, len(in), len(out), p.signals)
	}
	n := len(in[0])
	for k := range p.signals {
		if len(in[k]) != n || len(out[k]) != n {
			return fmt.Errorf("%w: signal %d has %d/%d samples, want %d",
				ErrLengthMismatch, k, len(in[k]), len(out[k]), n)
		}
	}

	// Scale to volts up front, reusing the scratch buffers.
	for k := range p.signals {
		if cap(p.volts[k]) < n {
			p.volts[k] = make([]F, n)
		}
		p.volts[k] = p.volts[k][:n]
		p.ops.Scale(p.volts[k], in[k], p.voltsPerUnit)
	}

	for i := range n {
		for k := range p.signals {
			lane, c := p.layout.place(k)
			p.jacks.In[lane].SetVoltage(c, float32(p.volts[k][i]))
		}

		p.divider.Process(p.args, p.ports)
		p.args.Frame++

		for k := range p.signals {
			lane, c := p.layout.place(k)
			out[k][i] = F(p.jacks.Out[lane].Voltage(c))
		}
	}

	for k := range p.signals {
		p.ops.Scale(out[k], out[k], 1/p.voltsPerUnit)
	}

	return nil
}

// Frames returns the number of frames processed since creation or the
// last Reset.
func (p *Processor[F]) Frames() int64 {
	return p.args.Frame
}

// Divider returns the underlying divider.
func (p *Processor[F]) Divider() *Divider {
	return p.divider
}

// Reset restores the divider to its initial state.
func (p *Processor[F]) Reset() {
	p.divider.Reset()
	p.args.Frame = 0
}
