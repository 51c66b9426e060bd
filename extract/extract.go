// Package extract turns lattice sample sets into triangle meshes.
//
// Three algorithms are provided: MarchingCubes, Voxels and SurfaceNets. All
// of them run on the same traversal which visits every lattice point the
// algorithm can process without reading outside of the lattice.
package extract

import (
	"fmt"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfchunk/lattice"
	"github.com/soypat/sdfchunk/mesh"
)

// Algorithm generates the mesh of a single lattice cell.
type Algorithm interface {
	// Margins returns how many lattice points before and after the
	// current coordinate GenerateCell reads along each axis.
	Margins() (before, after int)
	// GenerateCell emits the geometry for the cell at idx into b.
	GenerateCell(b *mesh.Builder, s *lattice.Set, idx lattice.Index)
}

var (
	_ Algorithm = MarchingCubes{}
	_ Algorithm = Voxels{}
	_ Algorithm = SurfaceNets{}
)

// Generate runs alg over every cell of s and returns the resulting mesh.
// Uniform sets produce an empty mesh without visiting any cell.
func Generate(s *lattice.Set, alg Algorithm) *mesh.Builder {
	if s.IsUniform() {
		return mesh.NewBuilder(0)
	}
	b := mesh.NewBuilder(s.Resolution())
	traverse(b, s, alg)
	return b
}

// GenerateInto is like Generate but reuses b's buffers. b is reset before the pass.
func GenerateInto(b *mesh.Builder, s *lattice.Set, alg Algorithm) {
	if s.IsUniform() {
		b.Reset(0)
		return
	}
	b.Reset(s.Resolution())
	traverse(b, s, alg)
}

func traverse(b *mesh.Builder, s *lattice.Set, alg Algorithm) {
	before, after := alg.Margins()
	if before < 0 || after < 0 {
		panic("extract: negative traversal margin")
	}
	end := s.Resolution() - after
	for x := before; x < end; x++ {
		for y := before; y < end; y++ {
			for z := before; z < end; z++ {
				alg.GenerateCell(b, s, lattice.Index{x, y, z})
			}
		}
	}
}

// ByName returns the algorithm with the given name as returned by its String method.
func ByName(name string) (Algorithm, error) {
	for _, alg := range Algorithms() {
		if alg.(fmt.Stringer).String() == name {
			return alg, nil
		}
	}
	return nil, fmt.Errorf("unknown extraction algorithm %q", name)
}

// Algorithms returns all algorithms implemented by this package.
func Algorithms() []Algorithm {
	return []Algorithm{MarchingCubes{}, Voxels{}, SurfaceNets{}}
}

// interpolate returns the point between n1 and n2 where the linear
// interpolation of their values crosses zero. Signs of n1 and n2 must differ.
func interpolate(n1, n2 lattice.Node) ms3.Vec {
	t := n1.Val / (n1.Val - n2.Val)
	return ms3.Add(ms3.Scale(t, n2.Pos), ms3.Scale(1-t, n1.Pos))
}
