package extract

import (
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfchunk/lattice"
	"github.com/soypat/sdfchunk/mesh"
)

// SurfaceNets places one vertex in every cell crossed by the surface at the
// average of the cell's edge crossings, then joins the vertices of the four
// cells around each crossed lattice edge with a quad. Each visited lattice
// point is the lowest corner of the cell processed.
type SurfaceNets struct{}

func (SurfaceNets) String() string { return "surface-nets" }

// Margins implements Algorithm.
func (SurfaceNets) Margins() (before, after int) { return 0, 1 }

type netEdge struct {
	dir lattice.Index
	// cells are the offsets of the other three cells sharing the lattice
	// edge from the current point along dir.
	cells [3]lattice.Index
}

var netEdges = [3]netEdge{
	{dir: lattice.Index{1, 0, 0}, cells: [3]lattice.Index{{0, -1, 0}, {0, -1, -1}, {0, 0, -1}}},
	{dir: lattice.Index{0, 1, 0}, cells: [3]lattice.Index{{0, 0, -1}, {-1, 0, -1}, {-1, 0, 0}}},
	{dir: lattice.Index{0, 0, 1}, cells: [3]lattice.Index{{-1, 0, 0}, {-1, -1, 0}, {0, -1, 0}}},
}

// GenerateCell implements Algorithm.
func (SurfaceNets) GenerateCell(b *mesh.Builder, s *lattice.Set, idx lattice.Index) {
	var cell [8]lattice.Node
	homogeneous := true
	for i := range cell {
		cell[i] = s.At(idx[0]+(i&1), idx[1]+(i>>1&1), idx[2]+(i>>2&1))
		homogeneous = homogeneous && cell[i].SignBit() == cell[0].SignBit()
	}
	if homogeneous {
		return
	}
	var quad [4]int
	quad[0] = b.GetOrAddVertex(idx, 0, cellVertex(&cell))
	node := cell[0]
	for axis, edge := range netEdges {
		if !hasNetEdge(idx, axis) {
			continue
		}
		// cell corner 1<<axis is the neighbour of node along edge.dir.
		if node.SignBit() == cell[1<<axis].SignBit() {
			continue
		}
		for j, off := range edge.cells {
			quad[j+1] = b.Vertex(idx.Add(off), 0)
		}
		if node.Inside() {
			b.AddTriangle(quad[0], quad[1], quad[2])
			b.AddTriangle(quad[0], quad[2], quad[3])
		} else {
			b.AddTriangle(quad[0], quad[2], quad[1])
			b.AddTriangle(quad[0], quad[3], quad[2])
		}
	}
}

// hasNetEdge reports whether the cells around the lattice edge starting at idx
// along axis are all within the lattice.
func hasNetEdge(idx lattice.Index, axis int) bool {
	switch axis {
	case 0:
		return idx[1] > 0 && idx[2] > 0
	case 1:
		return idx[0] > 0 && idx[2] > 0
	case 2:
		return idx[0] > 0 && idx[1] > 0
	}
	panic("extract: bad axis")
}

// cellVertex returns the average of the zero crossings over all cell edges
// whose corners differ in sign. The cell must not be homogeneous.
func cellVertex(cell *[8]lattice.Node) ms3.Vec {
	var sum ms3.Vec
	count := 0
	for _, e := range cellEdges {
		c0, c1 := e.corners()
		if cell[c0].SignBit() == cell[c1].SignBit() {
			continue
		}
		sum = ms3.Add(sum, interpolate(cell[c0], cell[c1]))
		count++
	}
	return ms3.Scale(1/float32(count), sum)
}
