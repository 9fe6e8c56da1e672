package divider

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-divider/internal/blep"
	"github.com/tphakala/go-audio-divider/internal/engine"
	"github.com/tphakala/go-audio-divider/internal/simdops"
)

// Common errors returned by the divider.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid divider configuration")

	// ErrTooManyChannels indicates more channels than a divider can carry.
	ErrTooManyChannels = errors.New("too many channels")

	// ErrLengthMismatch indicates channels of different lengths.
	ErrLengthMismatch = errors.New("channel length mismatch")
)

// Window selects the window of the band-limited step design.
type Window = blep.Window

// Available windows.
const (
	WindowBlackmanHarris = blep.WindowBlackmanHarris
	WindowKaiser         = blep.WindowKaiser
)

// Config holds the divider configuration. It is read once by New.
type Config struct {
	// BlepZeroCrossings is the number of sinc zero crossings per side of
	// the band-limited step. The correction lasts twice as many samples.
	BlepZeroCrossings int

	// BlepOversampling is the number of step table points per sample.
	BlepOversampling int

	// Window is applied to the sinc before the minimum-phase transform.
	Window Window

	// KaiserBeta is the Kaiser window β, 0 for the 100 dB default.
	// Only used with WindowKaiser.
	KaiserBeta float64

	// DCCutoffHz is the corner frequency of the DC blocking high-pass.
	DCCutoffHz float64

	// OutputScale is the square wave amplitude in volts.
	OutputScale float64

	// Headroom is the gain applied after DC blocking, in (0, 1].
	Headroom float64
}

// DefaultConfig returns the standard divider: a 16 zero crossing,
// 32x oversampled Blackman-Harris minBLEP, a 20 Hz DC blocker and a
// ±5 V square scaled by 0.95.
func DefaultConfig() *Config {
	return &Config{
		BlepZeroCrossings: blep.DefaultZeroCrossings,
		BlepOversampling:  blep.DefaultOversampling,
		Window:            WindowBlackmanHarris,
		DCCutoffHz:        engine.DefaultDCCutoffHz,
		OutputScale:       engine.DefaultOutputScale,
		Headroom:          engine.DefaultHeadroom,
	}
}

// tableSpec returns the minBLEP table design of the configuration.
func (c *Config) tableSpec() blep.TableSpec {
	return blep.TableSpec{
		ZeroCrossings: c.BlepZeroCrossings,
		Oversampling:  c.BlepOversampling,
		Window:        c.Window,
		KaiserBeta:    c.KaiserBeta,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.tableSpec().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if !isPositiveFinite(c.DCCutoffHz) {
		return fmt.Errorf("%w: DC cutoff must be positive", ErrInvalidConfig)
	}

	if !isPositiveFinite(c.OutputScale) {
		return fmt.Errorf("%w: output scale must be positive", ErrInvalidConfig)
	}

	if !isPositiveFinite(c.Headroom) || c.Headroom > maxHeadroom {
		return fmt.Errorf("%w: headroom must be in (0, %v]", ErrInvalidConfig, maxHeadroom)
	}

	return nil
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func (c *Config) params() engine.Params {
	return engine.Params{
		OutputScale: float32(c.OutputScale),
		DCCutoffHz:  float32(c.DCCutoffHz),
		Headroom:    float32(c.Headroom),
	}
}

// Mode is the processing path taken by a Process call.
type Mode int

const (
	// ModeMono processes the four lanes as one vector, one channel each.
	ModeMono Mode = iota

	// ModePoly processes every connected lane channel by channel.
	ModePoly
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeMono:
		return "mono"
	case ModePoly:
		return "poly"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Divider is a four lane, up to sixteen voice frequency divider.
//
// All divider states are allocated by New and live for the lifetime of the
// Divider. Lanes that are skipped keep their state untouched and resume
// from it when they become active again.
type Divider struct {
	config Config
	table  *blep.Table

	mono engine.State
	poly [Lanes][groupsPerLane]engine.State

	channels [Lanes]int
	mode     Mode
}

// New creates a divider with the specified configuration.
func New(config *Config) (*Divider, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	table, err := blep.NewTable(config.tableSpec())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	d := &Divider{
		config: *config,
		table:  table,
	}

	params := config.params()
	d.mono.Init(table, params)
	for i := range d.poly {
		for g := range d.poly[i] {
			d.poly[i][g].Init(table, params)
		}
	}

	return d, nil
}

// Process advances the divider by one frame.
//
// If every input carries at most one channel, the four lanes are processed
// as one vector and every output is declared mono. Otherwise each lane with
// both ports connected is processed in groups of four channels, and every
// output is declared with the channel count of its input.
func (d *Divider) Process(args ProcessArgs, ports *Ports) {
	poly := false
	for i, in := range ports.Inputs {
		n := 0
		if in != nil {
			n = min(max(in.Channels(), 0), MaxPolyphony)
		}
		d.channels[i] = n
		if n > 1 {
			poly = true
		}
	}

	if poly {
		d.mode = ModePoly
		d.processPoly(args.SampleTime, ports)
		return
	}

	d.mode = ModeMono
	d.processMono(args.SampleTime, ports)
}

func (d *Divider) processMono(sampleTime float32, ports *Ports) {
	var in simdops.Float4
	for i, port := range ports.Inputs {
		if d.channels[i] > 0 {
			in[i] = port.Voltage(0)
		}
	}

	out := d.mono.Step(in, sampleTime)

	for i, port := range ports.Outputs {
		if port == nil {
			continue
		}
		port.SetVoltage(0, out[i])
		port.SetChannels(1)
	}
}

func (d *Divider) processPoly(sampleTime float32, ports *Ports) {
	for i := range Lanes {
		in, out := ports.Inputs[i], ports.Outputs[i]
		if out == nil {
			continue
		}

		n := d.channels[i]
		if in != nil && in.IsConnected() && out.IsConnected() {
			for c := 0; c < n; c += groupWidth {
				var v simdops.Float4
				for k := 0; k < groupWidth && c+k < n; k++ {
					v[k] = in.Voltage(c + k)
				}

				s := &d.poly[i][c/groupWidth]
				res := s.Step(v, sampleTime)

				for k := 0; k < groupWidth && c+k < n; k++ {
					out.SetVoltage(c+k, res[k])
				}
			}
		}

		out.SetChannels(n)
	}
}

// Mode returns the path taken by the last Process call. Before the first
// call it reports ModeMono.
func (d *Divider) Mode() Mode {
	return d.mode
}

// Reset restores every divider state to the construction defaults:
// polarity -1, empty input history, no pending step corrections and a
// drained DC blocker.
func (d *Divider) Reset() {
	d.mono.Reset()
	for i := range d.poly {
		for g := range d.poly[i] {
			d.poly[i][g].Reset()
		}
	}
	d.channels = [Lanes]int{}
	d.mode = ModeMono
}

// Config returns a copy of the configuration the divider was built with.
func (d *Divider) Config() Config {
	return d.config
}

// Info describes a divider.
type Info struct {
	// Slug is the module identifier.
	Slug string

	// Mode is the path taken by the last Process call.
	Mode Mode

	// Channels holds the input channel count of each lane seen by the
	// last Process call.
	Channels [Lanes]int

	// Window is the band-limited step window.
	Window Window

	// ZeroCrossings and Oversampling describe the band-limited step table.
	ZeroCrossings int
	Oversampling  int

	// CorrectionLength is the number of samples a step correction lasts.
	CorrectionLength int

	// Latency is the processing latency in samples. The output responds
	// on the frame of the crossing.
	Latency int
}

// Info returns information about the divider.
func (d *Divider) Info() Info {
	return Info{
		Slug:             Slug,
		Mode:             d.mode,
		Channels:         d.channels,
		Window:           d.config.Window,
		ZeroCrossings:    d.table.ZeroCrossings(),
		Oversampling:     d.table.Oversampling(),
		CorrectionLength: d.table.Span(),
		Latency:          0,
	}
}
