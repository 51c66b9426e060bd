package extract

import (
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfchunk/lattice"
	"github.com/soypat/sdfchunk/mesh"
)

// Voxels meshes every inside lattice point as an axis aligned cube of side
// equal to the lattice spacing. Only faces between an inside point and an
// outside neighbour are emitted, resulting in blocky geometry.
type Voxels struct{}

func (Voxels) String() string { return "voxels" }

// Margins implements Algorithm.
func (Voxels) Margins() (before, after int) { return 1, 1 }

type voxelFace struct {
	dir lattice.Index
	// corners are the face corners relative to the voxel center in units
	// of half spacing, in counter-clockwise order seen from outside the voxel.
	corners [4]lattice.Index
}

var voxelFaces = [6]voxelFace{
	{dir: lattice.Index{-1, 0, 0}, corners: [4]lattice.Index{{-1, 1, 1}, {-1, 1, -1}, {-1, -1, -1}, {-1, -1, 1}}},
	{dir: lattice.Index{1, 0, 0}, corners: [4]lattice.Index{{1, 1, 1}, {1, -1, 1}, {1, -1, -1}, {1, 1, -1}}},
	{dir: lattice.Index{0, -1, 0}, corners: [4]lattice.Index{{1, -1, 1}, {-1, -1, 1}, {-1, -1, -1}, {1, -1, -1}}},
	{dir: lattice.Index{0, 1, 0}, corners: [4]lattice.Index{{1, 1, 1}, {1, 1, -1}, {-1, 1, -1}, {-1, 1, 1}}},
	{dir: lattice.Index{0, 0, -1}, corners: [4]lattice.Index{{1, 1, -1}, {1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}}},
	{dir: lattice.Index{0, 0, 1}, corners: [4]lattice.Index{{1, 1, 1}, {-1, 1, 1}, {-1, -1, 1}, {1, -1, 1}}},
}

// GenerateCell implements Algorithm.
func (Voxels) GenerateCell(b *mesh.Builder, s *lattice.Set, idx lattice.Index) {
	node := s.AtIndex(idx)
	if !node.Inside() {
		return
	}
	halfSpacing := s.Spacing() / 2
	for _, face := range voxelFaces {
		if s.AtIndex(idx.Add(face.dir)).Inside() {
			continue // Not a boundary.
		}
		var quad [4]int
		for i, c := range face.corners {
			// Voxel corners are shared by the 8 voxels around them, key them
			// by the lowest lattice point of those voxels.
			key := lattice.Index{idx[0] + (c[0]-1)/2, idx[1] + (c[1]-1)/2, idx[2] + (c[2]-1)/2}
			quad[i] = b.GetOrAddVertexFunc(key, 0, func() ms3.Vec {
				return ms3.Add(node.Pos, ms3.Scale(halfSpacing, ms3.Vec{X: float32(c[0]), Y: float32(c[1]), Z: float32(c[2])}))
			})
		}
		b.AddQuad(quad)
	}
}
