package divider

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-divider/internal/blep"
	"github.com/tphakala/go-audio-divider/internal/engine"
	"github.com/tphakala/go-audio-divider/internal/simdops"
	"github.com/tphakala/go-audio-divider/internal/testutil"
)

const testSampleRate = RateDAT

// recordingOutput records every call a divider makes on an output port.
type recordingOutput struct {
	connected bool
	voltages  map[int]float32
	declared  []int
}

func newRecordingOutput(connected bool) *recordingOutput {
	return &recordingOutput{connected: connected, voltages: map[int]float32{}}
}

func (o *recordingOutput) IsConnected() bool           { return o.connected }
func (o *recordingOutput) SetVoltage(c int, v float32) { o.voltages[c] = v }
func (o *recordingOutput) SetChannels(n int)           { o.declared = append(o.declared, n) }

func (o *recordingOutput) lastDeclared() int {
	if len(o.declared) == 0 {
		return -1
	}
	return o.declared[len(o.declared)-1]
}

func newTestDivider(t testing.TB) *Divider {
	t.Helper()
	d, err := New(DefaultConfig())
	require.NoError(t, err)
	return d
}

func newTestState(t testing.TB) *engine.State {
	t.Helper()
	table, err := blep.NewTable(blep.DefaultTableSpec())
	require.NoError(t, err)
	return engine.NewState(table, engine.DefaultParams())
}

// connectInputs connects input i with counts[i] channels; 0 leaves it
// disconnected.
func connectInputs(jacks *JackSet, counts ...int) {
	for i, n := range counts {
		if n > 0 {
			jacks.In[i].Connect(n)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())

	assert.Equal(t, 16, c.BlepZeroCrossings)
	assert.Equal(t, 32, c.BlepOversampling)
	assert.Equal(t, WindowBlackmanHarris, c.Window)
	assert.InDelta(t, 20.0, c.DCCutoffHz, 0)
	assert.InDelta(t, 5.0, c.OutputScale, 0)
	assert.InDelta(t, 0.95, c.Headroom, 0)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"zero crossings too small", func(c *Config) { c.BlepZeroCrossings = 1 }},
		{"zero crossings too large", func(c *Config) { c.BlepZeroCrossings = 1000 }},
		{"oversampling zero", func(c *Config) { c.BlepOversampling = 0 }},
		{"unknown window", func(c *Config) { c.Window = Window(42) }},
		{"negative kaiser beta", func(c *Config) { c.Window = WindowKaiser; c.KaiserBeta = -1 }},
		{"zero cutoff", func(c *Config) { c.DCCutoffHz = 0 }},
		{"NaN cutoff", func(c *Config) { c.DCCutoffHz = math.NaN() }},
		{"infinite scale", func(c *Config) { c.OutputScale = math.Inf(1) }},
		{"negative scale", func(c *Config) { c.OutputScale = -5 }},
		{"zero headroom", func(c *Config) { c.Headroom = 0 }},
		{"headroom above unity", func(c *Config) { c.Headroom = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(c)

			err := c.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			_, err = New(c)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfig_ValidateWrapsTableError(t *testing.T) {
	c := DefaultConfig()
	c.BlepOversampling = -1

	err := c.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, blep.ErrInvalidSpec)
}

func TestNew_NilConfig(t *testing.T) {
	d, err := New(nil)
	assert.Nil(t, d)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestNew_KaiserWindow(t *testing.T) {
	c := DefaultConfig()
	c.Window = WindowKaiser

	d, err := New(c)
	require.NoError(t, err)
	assert.Equal(t, WindowKaiser, d.Info().Window)
	assert.Equal(t, WindowKaiser, d.Config().Window)
}

func TestNew_InitialState(t *testing.T) {
	d := newTestDivider(t)

	assert.Equal(t, ModeMono, d.Mode())
	assert.Equal(t, simdops.Splat(-1), d.mono.Polarity)
	for i := range d.poly {
		for g := range d.poly[i] {
			assert.Equal(t, simdops.Splat(-1), d.poly[i][g].Polarity, "poly[%d][%d]", i, g)
			assert.Zero(t, d.poly[i][g].Cur)
		}
	}
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "mono", ModeMono.String())
	assert.Equal(t, "poly", ModePoly.String())
	assert.Equal(t, "mode(7)", Mode(7).String())
}

func TestProcess_MonoPathMatchesVectorState(t *testing.T) {
	d := newTestDivider(t)
	ref := newTestState(t)

	var jacks JackSet
	ports := jacks.Ports()
	connectInputs(&jacks, 1, 1, 1, 1)
	for i := range Lanes {
		jacks.Out[i].Connect(1)
	}

	args := NewProcessArgs(testSampleRate)
	signals := [Lanes][]float32{
		testutil.Sine(2000, 220, testSampleRate, 5, 0),
		testutil.Sine(2000, 330, testSampleRate, 5, 1),
		testutil.Sine(2000, 1000, testSampleRate, 2, 2),
		testutil.Constant(2000, -1),
	}

	for n := range 2000 {
		var in simdops.Float4
		for i := range Lanes {
			in[i] = signals[i][n]
			jacks.In[i].SetVoltage(0, in[i])
		}

		d.Process(args, ports)
		want := ref.Step(in, args.SampleTime)

		require.Equal(t, ModeMono, d.Mode())
		for i := range Lanes {
			require.Equal(t, want[i], jacks.Out[i].Voltage(0), "frame %d lane %d", n, i)
			require.Equal(t, 1, jacks.Out[i].Channels())
		}
	}
}

func TestProcess_MonoDeclaresOneOnEveryOutput(t *testing.T) {
	d := newTestDivider(t)

	// Only input 3 is patched; every output is still driven and declared.
	var jacks JackSet
	connectInputs(&jacks, 0, 0, 1, 0)
	jacks.In[2].SetVoltage(0, 1)

	ports := jacks.Ports()
	outs := [Lanes]*recordingOutput{}
	for i := range Lanes {
		outs[i] = newRecordingOutput(i%2 == 0)
		ports.Outputs[i] = outs[i]
	}

	d.Process(NewProcessArgs(testSampleRate), ports)

	assert.Equal(t, ModeMono, d.Mode())
	for i, o := range outs {
		assert.Equal(t, []int{1}, o.declared, "output %d", i)
		assert.Len(t, o.voltages, 1, "output %d writes channel 0 only", i)
	}
}

func TestProcess_SixChannelLane(t *testing.T) {
	d := newTestDivider(t)
	fresh := newTestState(t)

	var jacks JackSet
	connectInputs(&jacks, 6)
	for c := range 6 {
		jacks.In[0].SetVoltage(c, float32(c+1))
	}

	ports := jacks.Ports()
	outs := [Lanes]*recordingOutput{}
	for i := range Lanes {
		outs[i] = newRecordingOutput(true)
		ports.Outputs[i] = outs[i]
	}

	d.Process(NewProcessArgs(testSampleRate), ports)

	assert.Equal(t, ModePoly, d.Mode())
	assert.Equal(t, [Lanes]int{6, 0, 0, 0}, d.Info().Channels)

	// Two groups: channels 0-3 and 4-5 with zero padding.
	assert.Equal(t, simdops.Float4{1, 2, 3, 4}, d.poly[0][0].Cur)
	assert.Equal(t, simdops.Float4{5, 6, 0, 0}, d.poly[0][1].Cur)
	assert.Equal(t, fresh.Cur, d.poly[0][2].Cur)
	assert.Equal(t, fresh.Polarity, d.poly[0][2].Polarity)

	// Only the six real channels are written.
	require.Len(t, outs[0].voltages, 6)
	for c := range 6 {
		assert.Contains(t, outs[0].voltages, c)
	}

	assert.Equal(t, []int{6}, outs[0].declared)
	for i := 1; i < Lanes; i++ {
		assert.Empty(t, outs[i].voltages, "lane %d is not processed", i)
		assert.Equal(t, []int{0}, outs[i].declared, "lane %d", i)
	}

	// The mono state is not used on the polyphonic path.
	assert.Zero(t, d.mono.Cur)
}

func TestProcess_MixedCountsSelectPoly(t *testing.T) {
	d := newTestDivider(t)

	var jacks JackSet
	ports := jacks.Ports()
	connectInputs(&jacks, 2, 1, 1, 1)
	for i := range Lanes {
		jacks.Out[i].Connect(1)
		jacks.In[i].SetVoltage(0, float32(i+1))
	}
	jacks.In[0].SetVoltage(1, -7)

	d.Process(NewProcessArgs(testSampleRate), ports)

	assert.Equal(t, ModePoly, d.Mode())
	assert.Equal(t, simdops.Float4{1, -7, 0, 0}, d.poly[0][0].Cur)
	for i := 1; i < Lanes; i++ {
		assert.Equal(t, simdops.Float4{float32(i + 1), 0, 0, 0}, d.poly[i][0].Cur, "lane %d", i)
		assert.Zero(t, d.poly[i][1].Cur, "lane %d group 1", i)
	}
	assert.Zero(t, d.mono.Cur)

	assert.Equal(t, 2, jacks.Out[0].Channels())
	for i := 1; i < Lanes; i++ {
		assert.Equal(t, 1, jacks.Out[i].Channels())
	}
}

func TestProcess_PolyMatchesMonoPerChannel(t *testing.T) {
	const n = 4000
	signals := [][]float32{
		testutil.Sine(n, 440, testSampleRate, 1, 0),
		testutil.Sine(n, 523.25, testSampleRate, 0.8, 0.5),
		testutil.Sine(n, 659.25, testSampleRate, 0.6, 1),
		testutil.Sine(n, 3170, testSampleRate, 0.4, 1.5),
		testutil.Sine(n, 97, testSampleRate, 1, 2),
		testutil.Sine(n, 8000, testSampleRate, 0.2, 2.5),
	}

	poly, err := DividePoly(signals, testSampleRate, DefaultVoltsPerUnit)
	require.NoError(t, err)
	require.Len(t, poly, len(signals))

	for k, s := range signals {
		mono, err := DivideMono(s, testSampleRate, DefaultVoltsPerUnit)
		require.NoError(t, err)
		assert.Equal(t, mono, poly[k], "channel %d", k)
	}
}

func TestProcess_DisabledLaneResumes(t *testing.T) {
	const (
		before = 300
		paused = 500
		after  = 300
	)
	x := testutil.Sine(before+paused+after, 700, testSampleRate, 1, 0)

	// d sees lane 1 unpatched for the middle segment; ref never sees that
	// segment on lane 1 at all.
	d := newTestDivider(t)
	ref := newTestDivider(t)

	var jacks, refJacks JackSet
	ports, refPorts := jacks.Ports(), refJacks.Ports()
	for _, js := range []*JackSet{&jacks, &refJacks} {
		connectInputs(js, 2, 1)
		js.Out[0].Connect(1)
		js.Out[1].Connect(1)
	}

	args := NewProcessArgs(testSampleRate)
	step := func(d *Divider, js *JackSet, p *Ports, v float32) {
		js.In[0].SetVoltage(0, v)
		js.In[0].SetVoltage(1, -v)
		js.In[1].SetVoltage(0, v)
		d.Process(args, p)
	}

	for n := range before {
		step(d, &jacks, ports, x[n])
		step(ref, &refJacks, refPorts, x[n])
	}

	frozen := d.poly[1][0]
	jacks.Out[1].Disconnect()
	for n := before; n < before+paused; n++ {
		step(d, &jacks, ports, x[n])
		require.Equal(t, ModePoly, d.Mode())
	}
	assert.Equal(t, frozen.Cur, d.poly[1][0].Cur)
	assert.Equal(t, frozen.Prev, d.poly[1][0].Prev)
	assert.Equal(t, frozen.Polarity, d.poly[1][0].Polarity)
	assert.Equal(t, frozen.Out, d.poly[1][0].Out)

	jacks.Out[1].Connect(1)
	for n := before + paused; n < before+paused+after; n++ {
		step(d, &jacks, ports, x[n])
		step(ref, &refJacks, refPorts, x[n])
		require.Equal(t, refJacks.Out[1].Voltage(0), jacks.Out[1].Voltage(0), "frame %d", n)
	}
}

func TestProcess_DeclaresEveryCall(t *testing.T) {
	d := newTestDivider(t)

	var jacks JackSet
	ports := jacks.Ports()
	out := newRecordingOutput(true)
	ports.Outputs[0] = out

	args := NewProcessArgs(testSampleRate)

	connectInputs(&jacks, 1)
	for range 3 {
		d.Process(args, ports)
	}

	jacks.In[0].Connect(5)
	for range 3 {
		d.Process(args, ports)
	}

	jacks.In[0].Disconnect()
	jacks.In[1].Connect(3)
	d.Process(args, ports)

	assert.Equal(t, []int{1, 1, 1, 5, 5, 5, 0}, out.declared)
}

func TestProcess_NilPorts(t *testing.T) {
	d := newTestDivider(t)

	assert.NotPanics(t, func() {
		d.Process(NewProcessArgs(testSampleRate), &Ports{})
	})
	assert.Equal(t, ModeMono, d.Mode())

	var jacks JackSet
	jacks.In[0].Connect(4)
	ports := &Ports{Inputs: [Lanes]Input{&jacks.In[0]}}
	assert.NotPanics(t, func() {
		d.Process(NewProcessArgs(testSampleRate), ports)
	})
	assert.Equal(t, ModePoly, d.Mode())
}

func TestProcess_ClampsChannelCount(t *testing.T) {
	d := newTestDivider(t)

	var jacks JackSet
	ports := jacks.Ports()
	ports.Inputs[0] = fixedInput{channels: 40, voltage: 1}
	jacks.Out[0].Connect(1)

	d.Process(NewProcessArgs(testSampleRate), ports)

	assert.Equal(t, MaxPolyphony, d.Info().Channels[0])
	assert.Equal(t, MaxPolyphony, jacks.Out[0].Channels())
}

// fixedInput reports a constant voltage on any number of channels.
type fixedInput struct {
	channels int
	voltage  float32
}

func (f fixedInput) IsConnected() bool   { return f.channels > 0 }
func (f fixedInput) Channels() int       { return f.channels }
func (f fixedInput) Voltage(int) float32 { return f.voltage }

func TestDivider_Reset(t *testing.T) {
	d := newTestDivider(t)

	var jacks JackSet
	ports := jacks.Ports()
	connectInputs(&jacks, 3, 1)
	jacks.Out[0].Connect(1)
	jacks.Out[1].Connect(1)

	x := testutil.Sine(500, 1000, testSampleRate, 1, 0)
	args := NewProcessArgs(testSampleRate)
	run := func() []float32 {
		out := make([]float32, len(x))
		for n, v := range x {
			for c := range 3 {
				jacks.In[0].SetVoltage(c, v)
			}
			d.Process(args, ports)
			out[n] = jacks.Out[0].Voltage(2)
		}
		return out
	}

	first := run()
	require.Equal(t, ModePoly, d.Mode())

	d.Reset()
	assert.Equal(t, ModeMono, d.Mode())
	assert.Equal(t, [Lanes]int{}, d.Info().Channels)
	assert.Equal(t, simdops.Splat(-1), d.poly[0][0].Polarity)
	assert.Zero(t, d.poly[0][0].Cur)

	assert.Equal(t, first, run())
}

func TestDivider_Info(t *testing.T) {
	d := newTestDivider(t)
	info := d.Info()

	assert.Equal(t, "AFD", info.Slug)
	assert.Equal(t, ModeMono, info.Mode)
	assert.Equal(t, WindowBlackmanHarris, info.Window)
	assert.Equal(t, 16, info.ZeroCrossings)
	assert.Equal(t, 32, info.Oversampling)
	assert.Equal(t, 32, info.CorrectionLength)
	assert.Zero(t, info.Latency)
}

func TestProcess_NoAllocs(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
	}{
		{"mono", []int{1, 1, 1, 1}},
		{"poly", []int{16, 16, 16, 16}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDivider(t)

			var jacks JackSet
			ports := jacks.Ports()
			connectInputs(&jacks, tt.counts...)
			for i := range Lanes {
				jacks.Out[i].Connect(1)
			}

			args := NewProcessArgs(testSampleRate)
			v := float32(1)
			allocs := testing.AllocsPerRun(500, func() {
				v = -v
				jacks.In[0].SetVoltage(0, v)
				d.Process(args, ports)
			})
			assert.Zero(t, allocs)
		})
	}
}

func BenchmarkProcessMono(b *testing.B) {
	benchmarkProcess(b, 1, 1, 1, 1)
}

func BenchmarkProcessPoly(b *testing.B) {
	benchmarkProcess(b, 16, 16, 16, 16)
}

func benchmarkProcess(b *testing.B, counts ...int) {
	d := newTestDivider(b)

	var jacks JackSet
	ports := jacks.Ports()
	connectInputs(&jacks, counts...)
	for i := range Lanes {
		jacks.Out[i].Connect(1)
	}

	x := testutil.Sine(4096, 3170, testSampleRate, 5, 0)
	args := NewProcessArgs(testSampleRate)

	b.ReportAllocs()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		v := x[i&4095]
		for lane := range Lanes {
			for c := range counts[lane] {
				jacks.In[lane].SetVoltage(c, v)
			}
		}
		d.Process(args, ports)
		i++
	}
}
