package blep

import "github.com/tphakala/go-audio-divider/internal/simdops"

// Generator accumulates scheduled discontinuities for four lanes and emits
// the matching minBLEP correction one frame at a time.
//
// The buffer is allocated once in NewGenerator; InsertDiscontinuity and
// Process never allocate.
type Generator struct {
	table *Table
	buf   []simdops.Float4
	pos   int
}

// NewGenerator creates a generator backed by table.
func NewGenerator(table *Table) *Generator {
	return &Generator{
		table: table,
		buf:   make([]simdops.Float4, table.Span()),
	}
}

// InsertDiscontinuity schedules a step of magnitude x (per lane) at
// subsample offset p relative to the current frame. p must satisfy
// -1 < p <= 0: the step happened -p samples before the current frame.
// Other offsets are ignored.
func (g *Generator) InsertDiscontinuity(p float32, x simdops.Float4) {
	if !(-1 < p && p <= 0) {
		return
	}

	n := len(g.buf)
	o := float32(g.table.oversampling)
	for j := range n {
		v := g.table.at((float32(j) - p) * o)
		k := g.pos + j
		if k >= n {
			k -= n
		}
		g.buf[k] = g.buf[k].Add(x.Scale(v - 1))
	}
}

// Process returns the correction for the current frame and advances by one.
func (g *Generator) Process() simdops.Float4 {
	v := g.buf[g.pos]
	g.buf[g.pos] = simdops.Float4{}
	g.pos++
	if g.pos == len(g.buf) {
		g.pos = 0
	}
	return v
}

// Pending reports whether any correction is still queued.
func (g *Generator) Pending() bool {
	for _, v := range g.buf {
		if v != (simdops.Float4{}) {
			return true
		}
	}
	return false
}

// Reset drops all queued corrections.
func (g *Generator) Reset() {
	clear(g.buf)
	g.pos = 0
}
