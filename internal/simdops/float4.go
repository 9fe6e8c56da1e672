package simdops

// Width is the number of lanes in a Float4.
const Width = 4

// Float4 is a 4-lane float32 vector. Lanes are processed independently;
// every method is a plain per-element loop the compiler can unroll.
type Float4 [Width]float32

// Splat returns a vector with every lane set to v.
func Splat(v float32) Float4 {
	return Float4{v, v, v, v}
}

// Add returns a + b.
func (a Float4) Add(b Float4) Float4 {
	for i := range a {
		a[i] += b[i]
	}
	return a
}

// Sub returns a - b.
func (a Float4) Sub(b Float4) Float4 {
	for i := range a {
		a[i] -= b[i]
	}
	return a
}

// Scale returns a * s.
func (a Float4) Scale(s float32) Float4 {
	for i := range a {
		a[i] *= s
	}
	return a
}

// Lane returns a vector that keeps only lane i of a, all other lanes zero.
func (a Float4) Lane(i int) Float4 {
	var out Float4
	out[i] = a[i]
	return out
}

// LessMask returns a bitmask with bit i set where a[i] < v.
func (a Float4) LessMask(v float32) uint8 {
	var mask uint8
	for i := range a {
		if a[i] < v {
			mask |= 1 << i
		}
	}
	return mask
}

// AtLeastMask returns a bitmask with bit i set where a[i] >= v.
func (a Float4) AtLeastMask(v float32) uint8 {
	var mask uint8
	for i := range a {
		if a[i] >= v {
			mask |= 1 << i
		}
	}
	return mask
}
