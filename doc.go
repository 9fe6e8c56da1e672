// Package divider provides a band-limited audio frequency divider in pure Go.
//
// A divider turns any input waveform into a square wave that flips polarity
// on every ascending zero crossing of the input. The output therefore runs
// at half the input's fundamental: one octave down. The digital step is
// corrected with a minimum-phase band-limited step (minBLEP) so the square
// stays free of audible aliasing, and a one-pole high-pass filter removes
// the DC offset of the square.
//
// # Lanes and Polyphony
//
// A [Divider] has four independent lanes, each with one input and one
// output port. When every input carries at most one channel, the four lanes
// are processed together as one 4-wide vector. As soon as any input carries
// more than one channel, every lane is processed polyphonically: up to
// [MaxPolyphony] channels per lane in groups of four, each group with its
// own divider state.
//
//	in[0..3] ─┬─ mono: one state, one sample per lane ──────────┬─ out[0..3]
//	          └─ poly: 4 lanes × 4 groups × 4 channels ─────────┘
//
// The polyphonic path only runs lanes whose input and output are both
// connected. Declared output channel counts are refreshed on every call.
//
// # Quick Start
//
// For one-shot processing of sample slices:
//
//	out, err := divider.DivideMono(samples, 48000, divider.DefaultVoltsPerUnit)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For frame-by-frame processing inside a host:
//
//	d, err := divider.New(divider.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var jacks divider.JackSet
//	ports := jacks.Ports()
//	jacks.In[0].Connect(1)
//	jacks.Out[0].Connect(1)
//
//	args := divider.NewProcessArgs(48000)
//	for _, v := range input {
//	    jacks.In[0].SetVoltage(0, v)
//	    d.Process(args, ports)
//	    emit(jacks.Out[0].Voltage(0))
//	    args.Frame++
//	}
//
// # Output Level
//
// The square swings ±5 V before DC blocking and is scaled by 0.95 after it,
// for a nominal ±4.75 V. The band-limited transition overshoots slightly.
//
// # Thread Safety
//
// A [Divider] is not safe for concurrent use. [Divider.Process] must be
// called from a single goroutine; independent dividers may run in parallel.
// Process never allocates and never blocks.
package divider
