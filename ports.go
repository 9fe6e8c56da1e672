package divider

import "fmt"

// Input is a host input port.
type Input interface {
	// IsConnected reports whether a cable is plugged in.
	IsConnected() bool

	// Channels returns the number of polyphonic channels, 0 when
	// disconnected.
	Channels() int

	// Voltage returns the voltage of channel c.
	Voltage(c int) float32
}

// Output is a host output port.
type Output interface {
	// IsConnected reports whether a cable is plugged in.
	IsConnected() bool

	// SetVoltage sets the voltage of channel c.
	SetVoltage(c int, v float32)

	// SetChannels declares the number of polyphonic channels.
	SetChannels(n int)
}

// Ports groups the four input and four output ports of a divider. A nil
// port behaves like a disconnected one.
type Ports struct {
	Inputs  [Lanes]Input
	Outputs [Lanes]Output
}

// ProcessArgs carries the per-frame timing information from the host.
type ProcessArgs struct {
	SampleRate float32
	SampleTime float32
	Frame      int64
}

// NewProcessArgs returns the arguments for frame 0 at sampleRate.
func NewProcessArgs(sampleRate float32) ProcessArgs {
	return ProcessArgs{
		SampleRate: sampleRate,
		SampleTime: 1 / sampleRate,
	}
}

// InputName returns the label of input i, "Input 1" to "Input 4".
func InputName(i int) string {
	return fmt.Sprintf("Input %d", i+1)
}

// OutputName returns the label of output i, "Output 1" to "Output 4".
func OutputName(i int) string {
	return fmt.Sprintf("Output %d", i+1)
}

// Jack is an in-memory port with up to MaxPolyphony voltages. It implements
// both Input and Output and follows the usual modular host rules: a jack is
// connected exactly when it carries at least one channel, a connected jack
// cannot be declared down to zero channels, and voltages above the channel
// count read as zero.
//
// The zero value is a disconnected jack.
type Jack struct {
	voltages [MaxPolyphony]float32
	channels int
}

// Connect plugs in a cable carrying n channels, clamped to [1, MaxPolyphony].
func (j *Jack) Connect(n int) {
	j.channels = min(max(n, 1), MaxPolyphony)
	clear(j.voltages[:])
}

// Disconnect unplugs the cable and clears every voltage.
func (j *Jack) Disconnect() {
	j.channels = 0
	clear(j.voltages[:])
}

// IsConnected reports whether the jack carries at least one channel.
func (j *Jack) IsConnected() bool {
	return j.channels > 0
}

// Channels returns the channel count.
func (j *Jack) Channels() int {
	return j.channels
}

// Voltage returns the voltage of channel c, 0 when c is not an active
// channel.
func (j *Jack) Voltage(c int) float32 {
	if c < 0 || c >= j.channels {
		return 0
	}
	return j.voltages[c]
}

// SetVoltage sets the voltage of channel c. Out of range channels are
// ignored.
func (j *Jack) SetVoltage(c int, v float32) {
	if c < 0 || c >= MaxPolyphony {
		return
	}
	j.voltages[c] = v
}

// SetChannels declares n channels. A disconnected jack stays at 0, and a
// connected jack never drops below 1. Voltages of dropped channels are
// zeroed.
func (j *Jack) SetChannels(n int) {
	if j.channels == 0 {
		return
	}
	n = min(max(n, 1), MaxPolyphony)
	clear(j.voltages[n:])
	j.channels = n
}

// Voltages returns the voltages of the active channels. The slice aliases
// the jack.
func (j *Jack) Voltages() []float32 {
	return j.voltages[:j.channels]
}

// JackSet is a complete set of in-memory ports for one divider.
type JackSet struct {
	In  [Lanes]Jack
	Out [Lanes]Jack
}

// Ports returns a Ports view of the set.
func (s *JackSet) Ports() *Ports {
	p := &Ports{}
	for i := range Lanes {
		p.Inputs[i] = &s.In[i]
		p.Outputs[i] = &s.Out[i]
	}
	return p
}
