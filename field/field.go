// Package field provides float32 signed distance fields that satisfy
// [lattice.Evaluator] and can be sampled into chunk lattices.
//
// Distances are negative inside a shape and positive outside. All fields are
// safe for concurrent use.
package field

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfchunk/lattice"
	"gonum.org/v1/gonum/spatial/r3"
)

// SDF is a 3D signed distance field evaluated in batches.
type SDF interface {
	// Evaluate evaluates the signed distance field over pos positions.
	// dist and pos must be of same length. Resulting distances are stored
	// in dist.
	Evaluate(pos []ms3.Vec, dist []float32, userData any) error
	// Bounds returns the SDF's bounding box such that all of the shape is contained within.
	Bounds() ms3.Box
}

var (
	_ lattice.Evaluator = (SDF)(nil)
	_ lattice.Evaluator = Func(nil)
	_ lattice.Evaluator = (*r3Evaluator)(nil)
)

// Func adapts a single point distance function to a batch evaluator.
type Func func(p ms3.Vec) float32

// Evaluate implements [lattice.Evaluator].
func (f Func) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	for i, p := range pos {
		dist[i] = f(p)
	}
	return nil
}

// R3SDF is a float64 distance field over gonum vectors, as implemented by
// most float64 SDF libraries.
type R3SDF interface {
	Evaluate(p r3.Vec) float64
}

// FromR3 adapts a float64 distance field to a batch evaluator.
func FromR3(s R3SDF) lattice.Evaluator {
	return &r3Evaluator{s: s}
}

type r3Evaluator struct {
	s R3SDF
}

func (e *r3Evaluator) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	for i, p := range pos {
		dist[i] = float32(e.s.Evaluate(r3.Vec{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}))
	}
	return nil
}

// bufPool hands out scratch buffers to operations evaluating child fields.
type bufPool[T any] struct {
	mu   sync.Mutex
	free [][]T
}

func (bp *bufPool[T]) acquire(length int) []T {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	for i, buf := range bp.free {
		if cap(buf) >= length {
			last := len(bp.free) - 1
			bp.free[i] = bp.free[last]
			bp.free = bp.free[:last]
			return buf[:length]
		}
	}
	return make([]T, length)
}

func (bp *bufPool[T]) release(buf []T) {
	bp.mu.Lock()
	bp.free = append(bp.free, buf)
	bp.mu.Unlock()
}

func minf(a, b float32) float32 { return math32.Min(a, b) }

func maxf(a, b float32) float32 { return math32.Max(a, b) }

func hypotf(a, b float32) float32 { return math32.Hypot(a, b) }

func clampf(v, Min, Max float32) float32 {
	if v < Min {
		return Min
	} else if v > Max {
		return Max
	}
	return v
}

func mixf(x, y, a float32) float32 {
	return x*(1-a) + y*a
}
