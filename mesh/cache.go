package mesh

import (
	"math"

	"github.com/soypat/sdfchunk/lattice"
)

// NumAxes is the number of vertex slots per lattice point.
const NumAxes = 3

// VertexCache maps a (lattice point, axis) pair to the index of a vertex
// already emitted during the current extraction pass. It is backed by a dense
// array of width³·NumAxes slots. Stored values are offset by one so that the
// zero value of a slot means unset.
type VertexCache struct {
	width int
	slots []uint32
}

// NewVertexCache returns a cache for a lattice with width points along each axis.
func NewVertexCache(width int) *VertexCache {
	if width < 0 {
		panic("vcache: negative width")
	}
	return &VertexCache{
		width: width,
		slots: make([]uint32, width*width*width*NumAxes),
	}
}

// Width returns the number of lattice points along each axis.
func (c *VertexCache) Width() int { return c.width }

// IsSet reports whether a vertex was stored for p and axis.
func (c *VertexCache) IsSet(p lattice.Index, axis int) bool {
	return c.slots[c.slot(p, axis)] != 0
}

// Get returns the vertex index stored for p and axis. It panics if
// the slot was never set.
func (c *VertexCache) Get(p lattice.Index, axis int) int {
	v := c.slots[c.slot(p, axis)]
	if v == 0 {
		panic("vcache: get of unset vertex slot")
	}
	return int(v - 1)
}

// Set stores vertex index v for p and axis.
func (c *VertexCache) Set(p lattice.Index, axis, v int) {
	if v < 0 || int64(v) >= math.MaxUint32 {
		panic("vcache: vertex index out of range")
	}
	c.slots[c.slot(p, axis)] = uint32(v) + 1
}

// Clear unsets all slots.
func (c *VertexCache) Clear() {
	for i := range c.slots {
		c.slots[i] = 0
	}
}

// resize reuses the slot buffer for a cache of a new width. All slots are unset.
func (c *VertexCache) resize(width int) {
	n := width * width * width * NumAxes
	if cap(c.slots) < n {
		c.slots = make([]uint32, n)
	} else {
		c.slots = c.slots[:n]
		c.Clear()
	}
	c.width = width
}

func (c *VertexCache) slot(p lattice.Index, axis int) int {
	w := c.width
	if uint(p[0]) >= uint(w) || uint(p[1]) >= uint(w) || uint(p[2]) >= uint(w) || uint(axis) >= NumAxes {
		panic("vcache: lattice point or axis out of range")
	}
	return ((p[0]*w+p[1])*w+p[2])*NumAxes + axis
}
