package engine

// Output stage defaults.
const (
	// Square wave amplitude in volts before headroom.
	DefaultOutputScale = 5.0

	// DC blocker corner frequency in Hz.
	DefaultDCCutoffHz = 20.0

	// Final gain applied after DC blocking, leaving a little room for the
	// band-limited overshoot.
	DefaultHeadroom = 0.95
)

// A polarity flip moves the square from -1 to +1 or back: a step of 2.
const stepMagnitude = 2

// Initial polarity of every lane.
const initialPolarity = -1
