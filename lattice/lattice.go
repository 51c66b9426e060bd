// Package lattice implements immutable sets of scalar field samples taken on a
// regular, axis aligned cubic grid. A Set is the input to every mesh extraction
// algorithm in this module.
package lattice

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// MaxDelta is returned by [Set.Delta] when two sets can not be compared.
const MaxDelta = math32.MaxFloat32

// Evaluator evaluates a scalar field over pos positions. dist and pos
// are of same length. Resulting values are stored in dist.
// Negative values are inside the surface.
type Evaluator interface {
	Evaluate(pos []ms3.Vec, dist []float32, userData any) error
}

// Node is a single field sample.
type Node struct {
	Pos ms3.Vec
	Val float32
}

// SignBit returns 1 if the node is inside the surface (Val < 0), 0 otherwise.
// Zero valued nodes are outside.
func (n Node) SignBit() int {
	if n.Val < 0 {
		return 1
	}
	return 0
}

// Inside reports whether the node lies inside the surface.
func (n Node) Inside() bool { return n.Val < 0 }

// Set is an immutable cubic grid of R³ nodes, R being the resolution.
type Set struct {
	res     int
	nodes   []Node
	uniform bool
}

// New creates a Set from nodes stored in x-major order, that is node (x,y,z)
// is at nodes[(x*resolution+y)*resolution+z]. The Set takes ownership of nodes.
func New(resolution int, nodes []Node) (*Set, error) {
	if resolution < 2 {
		return nil, errors.New("lattice resolution must be 2 or larger")
	}
	if len(nodes) != resolution*resolution*resolution {
		return nil, fmt.Errorf("want %d nodes for resolution %d, got %d", resolution*resolution*resolution, resolution, len(nodes))
	}
	return &Set{
		res:     resolution,
		nodes:   nodes,
		uniform: uniformSign(nodes),
	}, nil
}

// Sample evaluates ev over a lattice of resolution³ points starting at origin
// and separated by spacing along each axis.
func Sample(ev Evaluator, origin ms3.Vec, spacing float32, resolution int) (*Set, error) {
	if resolution < 2 {
		return nil, errors.New("lattice resolution must be 2 or larger")
	} else if spacing <= 0 || math32.IsInf(spacing, 0) || math32.IsNaN(spacing) {
		return nil, errors.New("lattice spacing must be positive and finite")
	}
	n := resolution * resolution * resolution
	pos := make([]ms3.Vec, n)
	dist := make([]float32, n)
	i := 0
	for x := 0; x < resolution; x++ {
		for y := 0; y < resolution; y++ {
			for z := 0; z < resolution; z++ {
				pos[i] = ms3.Add(origin, ms3.Scale(spacing, ms3.Vec{X: float32(x), Y: float32(y), Z: float32(z)}))
				i++
			}
		}
	}
	err := ev.Evaluate(pos, dist, nil)
	if err != nil {
		return nil, fmt.Errorf("sampling lattice: %w", err)
	}
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = Node{Pos: pos[i], Val: dist[i]}
	}
	return New(resolution, nodes)
}

func uniformSign(nodes []Node) bool {
	sign := nodes[0].SignBit()
	for _, node := range nodes[1:] {
		if node.SignBit() != sign {
			return false
		}
	}
	return true
}

// Resolution returns the number of nodes along any one side of the set.
func (s *Set) Resolution() int { return s.res }

// IsUniform reports whether all nodes are inside or all nodes are outside.
// A uniform set contains no surface.
func (s *Set) IsUniform() bool { return s.uniform }

// At returns the node at lattice coordinate (x,y,z).
func (s *Set) At(x, y, z int) Node {
	return s.nodes[(x*s.res+y)*s.res+z]
}

// AtIndex returns the node at lattice coordinate i.
func (s *Set) AtIndex(i Index) Node {
	return s.At(i[0], i[1], i[2])
}

// Contains reports whether i is a valid coordinate of the set.
func (s *Set) Contains(i Index) bool {
	return i[0] >= 0 && i[1] >= 0 && i[2] >= 0 &&
		i[0] < s.res && i[1] < s.res && i[2] < s.res
}

// Spacing returns the distance between adjacent lattice points, derived from
// the first and last nodes along the x axis.
func (s *Set) Spacing() float32 {
	return (s.At(s.res-1, 0, 0).Pos.X - s.At(0, 0, 0).Pos.X) / float32(s.res-1)
}

// Bounds returns the box spanned by the first and last node.
func (s *Set) Bounds() ms3.Box {
	return ms3.Box{Min: s.nodes[0].Pos, Max: s.nodes[len(s.nodes)-1].Pos}
}

// Delta returns the root mean square difference of values between s and other.
// If resolutions differ MaxDelta is returned.
func (s *Set) Delta(other *Set) float32 {
	if other == nil || other.res != s.res {
		return MaxDelta
	}
	var sum float32
	for i := range s.nodes {
		d := s.nodes[i].Val - other.nodes[i].Val
		sum += d * d
	}
	return math32.Sqrt(sum / float32(len(s.nodes)))
}
