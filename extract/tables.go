package extract

import (
	"fmt"
	"math/bits"

	"github.com/soypat/sdfchunk/lattice"
)

// Cell corner i sits at offset (i&1, i>>1&1, i>>2&1) from the cell's lowest corner.
//
//	    6-------7
//	   /|      /|
//	  4-------5 |      y
//	  | 2-----|-3      | z
//	  |/      |/       |/
//	  0-------1        +---x

// edgeCode describes a vertex of a marching cubes case. Bits 0..3 and 4..7 hold
// the corners at both ends of the edge the vertex lies on, bits 8..11 hold the
// lattice axis of the edge plus one and bits 12..14 hold the x, y and z offset
// from the current lattice point to the lattice point owning the vertex.
type edgeCode uint16

func makeEdgeCode(c0, c1 int) edgeCode {
	if c0 > c1 {
		c0, c1 = c1, c0
	}
	axis := bits.TrailingZeros(uint(c0 ^ c1))
	// The edge is owned by its upper corner, which is corner 7 of the cell
	// whose upper corner coincides with it.
	offset := 7 &^ c1
	return edgeCode(c0 | c1<<4 | (axis+1)<<8 | offset<<12)
}

func (e edgeCode) corners() (c0, c1 int) { return int(e & 0xf), int(e >> 4 & 0xf) }

func (e edgeCode) axis() int { return int(e>>8&0xf) - 1 }

func (e edgeCode) offset() lattice.Index {
	return lattice.Index{int(e >> 12 & 1), int(e >> 13 & 1), int(e >> 14 & 1)}
}

// faces returns a bitmask of the two cell faces containing the edge. Bit
// 2*axis+side is set for the face normal to axis on the lower (0) or upper
// (1) side of the cell.
func (e edgeCode) faces() uint8 {
	c0, _ := e.corners()
	var mask uint8
	for axis := 0; axis < 3; axis++ {
		if axis != e.axis() {
			mask |= 1 << (2*axis + c0>>axis&1)
		}
	}
	return mask
}

// cellData is the triangulation shared by all cases of an equivalence class.
type cellData struct {
	vertexCount int
	// indices holds three indices into the case's vertex list per triangle.
	indices []uint8
}

func (c cellData) triangleCount() int { return len(c.indices) / 3 }

// Marching cubes transition tables. They are filled once during package
// initialization and are read-only afterwards.
var (
	// regularCellClass maps a case code to its equivalence class.
	regularCellClass [256]uint8
	// regularCellData maps an equivalence class to its triangulation.
	regularCellData []cellData
	// regularVertexData maps a case code to its vertices.
	regularVertexData [256][]edgeCode
)

// cellEdges lists the 12 cell edges ordered by axis.
var cellEdges = func() (edges [12]edgeCode) {
	i := 0
	for axis := 0; axis < 3; axis++ {
		bit := 1 << axis
		for c := 0; c < 8; c++ {
			if c&bit == 0 {
				edges[i] = makeEdgeCode(c, c|bit)
				i++
			}
		}
	}
	return edges
}()

// cellFaces lists the corners of each cell face counter-clockwise as seen
// from outside the cell.
var cellFaces = [6][4]int{
	{0, 4, 6, 2}, // -X
	{1, 3, 7, 5}, // +X
	{0, 1, 5, 4}, // -Y
	{2, 6, 7, 3}, // +Y
	{0, 2, 3, 1}, // -Z
	{4, 5, 7, 6}, // +Z
}

func init() {
	classes := make(map[string]uint8)
	for code := 0; code < 256; code++ {
		verts, tris := polygonizeCase(uint8(code))
		key := string(append([]byte{byte(len(verts))}, tris...))
		class, ok := classes[key]
		if !ok {
			class = uint8(len(regularCellData))
			classes[key] = class
			regularCellData = append(regularCellData, cellData{vertexCount: len(verts), indices: tris})
		}
		regularCellClass[code] = class
		regularVertexData[code] = verts
	}
}

// polygonizeCase calculates the vertices and triangles of a case code.
// On every face the boundary is walked counter-clockwise and each crossing from
// inside to outside is joined to the crossing that opened the same inside run.
// Faces with two inside corners on a diagonal thus keep them separated, and
// both cells sharing such a face agree on the segments. Joined segments form
// closed loops around the inside corners which are triangulated in reverse so
// triangle normals point toward outside corners.
func polygonizeCase(code uint8) (verts []edgeCode, tris []uint8) {
	inside := func(c int) bool { return code>>c&1 == 1 }
	successor := make(map[edgeCode]edgeCode, 12)
	for _, face := range cellFaces {
		var crossings [4]edgeCode
		var exits [4]bool
		n := 0
		for k := 0; k < 4; k++ {
			c0, c1 := face[k], face[(k+1)%4]
			if inside(c0) == inside(c1) {
				continue
			}
			crossings[n] = makeEdgeCode(c0, c1)
			exits[n] = inside(c0)
			n++
		}
		for i := 0; i < n; i++ {
			if exits[i] {
				successor[crossings[i]] = crossings[(i+n-1)%n]
			}
		}
	}

	visited := make(map[edgeCode]bool, len(successor))
	var loop []uint8
	for _, e := range cellEdges {
		if _, ok := successor[e]; !ok || visited[e] {
			continue
		}
		loop = loop[:0]
		for cur := e; !visited[cur]; cur = successor[cur] {
			visited[cur] = true
			loop = append(loop, uint8(len(verts)))
			verts = append(verts, cur)
		}
		loopTris, ok := triangulateLoop(verts, loop, 0, len(loop)-1)
		if !ok {
			panic(fmt.Sprintf("extract: no triangulation for marching cubes case %#08b", code))
		}
		tris = append(tris, loopTris...)
	}
	return verts, tris
}

// triangulateLoop splits the polygon loop[i..j], closed by the segment from
// loop[j] back to loop[i], into triangles. Diagonals between two vertices on
// a common cell face are never used: the cell sharing that face meshes the
// same vertices and the edge would border more than two triangles.
func triangulateLoop(verts []edgeCode, loop []uint8, i, j int) (tris []uint8, ok bool) {
	if j-i < 2 {
		return nil, true
	}
	canJoin := func(a, b int) bool {
		return b-a == 1 || (a == 0 && b == len(loop)-1) ||
			verts[loop[a]].faces()&verts[loop[b]].faces() == 0
	}
	for k := i + 1; k < j; k++ {
		if !canJoin(i, k) || !canJoin(k, j) {
			continue
		}
		lo, loOK := triangulateLoop(verts, loop, i, k)
		hi, hiOK := triangulateLoop(verts, loop, k, j)
		if !loOK || !hiOK {
			continue
		}
		tris = append(lo, hi...)
		return append(tris, loop[i], loop[j], loop[k]), true
	}
	return nil, false
}
