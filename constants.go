package divider

import "github.com/tphakala/go-audio-divider/internal/simdops"

// Module identity.
const (
	// Slug is the short module identifier.
	Slug = "AFD"

	// Name is the human readable module name.
	Name = "Audio Frequency Divider"
)

// Port layout.
const (
	// Lanes is the number of independent input/output pairs.
	Lanes = 4

	// MaxPolyphony is the maximum number of channels per port.
	MaxPolyphony = 16

	// groupWidth is the number of channels processed together.
	groupWidth = simdops.Width

	// groupsPerLane is the number of polyphonic states per lane.
	groupsPerLane = MaxPolyphony / groupWidth
)

// Block helper defaults.
const (
	// DefaultVoltsPerUnit maps full-scale audio (±1) onto ±5 V.
	DefaultVoltsPerUnit = 5.0
)

// Configuration limits.
const (
	maxHeadroom = 1.0
)
