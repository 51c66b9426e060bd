package extract

import (
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfchunk/lattice"
	"github.com/soypat/sdfchunk/mesh"
)

// MarchingCubes is a table driven marching cubes algorithm. Each visited
// lattice point is the upper corner of the cell processed. Vertices on edges
// shared between cells of the same chunk are emitted once.
type MarchingCubes struct{}

func (MarchingCubes) String() string { return "marching-cubes" }

// Margins implements Algorithm.
func (MarchingCubes) Margins() (before, after int) { return 1, 0 }

// GenerateCell implements Algorithm.
func (MarchingCubes) GenerateCell(b *mesh.Builder, s *lattice.Set, idx lattice.Index) {
	var cell [8]lattice.Node
	code := 0
	for i := range cell {
		cell[i] = s.At(idx[0]+(i&1)-1, idx[1]+(i>>1&1)-1, idx[2]+(i>>2&1)-1)
		code |= cell[i].SignBit() << i
	}
	if code == 0 || code == 0xff {
		return
	}
	data := &regularCellData[regularCellClass[code]]
	var vertIdx [12]int
	for i, e := range regularVertexData[code] {
		owner := idx.Sub(e.offset())
		vertIdx[i] = b.GetOrAddVertexFunc(owner, e.axis(), func() ms3.Vec {
			c0, c1 := e.corners()
			return interpolate(cell[c0], cell[c1])
		})
	}
	for t := 0; t < len(data.indices); t += 3 {
		b.AddTriangle(vertIdx[data.indices[t]], vertIdx[data.indices[t+1]], vertIdx[data.indices[t+2]])
	}
}
