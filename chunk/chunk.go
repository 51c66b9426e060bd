// Package chunk splits space into a regular grid of cubic chunks and meshes
// them independently, optionally in parallel.
//
// Neighbouring chunks share their boundary lattice points so the surfaces of
// adjacent chunk meshes meet. Vertices are not welded across chunks.
package chunk

import (
	"errors"
	"fmt"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfchunk/lattice"
)

// Grid describes a partition of space into cubes of side Size, each sampled
// with Resolution lattice points per axis.
type Grid struct {
	Size       float32
	Resolution int
}

// Validate returns an error if the grid can not be sampled.
func (g Grid) Validate() error {
	if g.Resolution < 2 {
		return errors.New("chunk resolution must be 2 or larger")
	} else if !(g.Size > 0) {
		return errors.New("chunk size must be positive")
	}
	return nil
}

// Spacing returns the distance between adjacent lattice points of a chunk.
func (g Grid) Spacing() float32 {
	return g.Size / float32(g.Resolution-1)
}

// Origin returns the position of the lowest corner of chunk c.
func (g Grid) Origin(c lattice.Index) ms3.Vec {
	return ms3.Scale(g.Size, ms3.Vec{X: float32(c[0]), Y: float32(c[1]), Z: float32(c[2])})
}

// Bounds returns the region of space covered by chunk c.
func (g Grid) Bounds(c lattice.Index) ms3.Box {
	lo := g.Origin(c)
	return ms3.Box{Min: lo, Max: ms3.AddScalar(g.Size, lo)}
}

// Sample evaluates ev over the lattice of chunk c.
func (g Grid) Sample(ev lattice.Evaluator, c lattice.Index) (*lattice.Set, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	s, err := lattice.Sample(ev, g.Origin(c), g.Spacing(), g.Resolution)
	if err != nil {
		return nil, fmt.Errorf("chunk %v: %w", c, err)
	}
	return s, nil
}

// Cover returns the coordinates of all chunks intersecting bb in x, y, z order.
func (g Grid) Cover(bb ms3.Box) []lattice.Index {
	lo := g.coordOf(bb.Min)
	hi := g.coordOf(bb.Max)
	var coords []lattice.Index
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				coords = append(coords, lattice.Index{x, y, z})
			}
		}
	}
	return coords
}

func (g Grid) coordOf(p ms3.Vec) lattice.Index {
	return lattice.Index{floorDiv(p.X, g.Size), floorDiv(p.Y, g.Size), floorDiv(p.Z, g.Size)}
}

func floorDiv(a, b float32) int {
	q := a / b
	i := int(q)
	if float32(i) > q {
		i--
	}
	return i
}

// NeedsRemesh reports whether next differs enough from the previously
// meshed samples prev to require generating the mesh again.
func NeedsRemesh(prev, next *lattice.Set, tol float32) bool {
	return prev == nil || prev.Delta(next) > tol
}
