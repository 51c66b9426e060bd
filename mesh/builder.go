// Package mesh holds the per pass state of a mesh extraction: the output
// vertex and triangle index buffers and the vertex cache used to share
// vertices between neighbouring cells of one chunk.
package mesh

import (
	"fmt"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfchunk/lattice"
)

// Builder accumulates the vertices and triangles of one extraction pass.
// Vertices and indices are append-only during a pass. A Builder must not be
// shared between goroutines while a pass is running.
type Builder struct {
	vertices []ms3.Vec
	indices  []uint32
	cache    VertexCache
}

// NewBuilder returns a Builder whose vertex cache covers a lattice of
// resolution points along each axis.
func NewBuilder(resolution int) *Builder {
	b := &Builder{}
	b.cache.resize(resolution)
	return b
}

// Reset empties the builder for a new pass over a lattice of the given resolution.
// Buffers are reused. Slices previously returned by Vertices and Indices
// must not be used after calling Reset.
func (b *Builder) Reset(resolution int) {
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
	b.cache.resize(resolution)
}

// Cache returns the builder's vertex cache.
func (b *Builder) Cache() *VertexCache { return &b.cache }

// AddVertex appends v to the vertex buffer and returns its index.
func (b *Builder) AddVertex(v ms3.Vec) int {
	b.vertices = append(b.vertices, v)
	return len(b.vertices) - 1
}

// GetOrAddVertex returns the cached vertex for p and axis. If there
// is none v is appended and cached.
func (b *Builder) GetOrAddVertex(p lattice.Index, axis int, v ms3.Vec) int {
	if b.cache.IsSet(p, axis) {
		return b.cache.Get(p, axis)
	}
	idx := b.AddVertex(v)
	b.cache.Set(p, axis, idx)
	return idx
}

// GetOrAddVertexFunc is like GetOrAddVertex but only calls fn to
// calculate the vertex position on a cache miss.
func (b *Builder) GetOrAddVertexFunc(p lattice.Index, axis int, fn func() ms3.Vec) int {
	if b.cache.IsSet(p, axis) {
		return b.cache.Get(p, axis)
	}
	idx := b.AddVertex(fn())
	b.cache.Set(p, axis, idx)
	return idx
}

// Vertex returns the cached vertex for p and axis. It panics if there is none.
func (b *Builder) Vertex(p lattice.Index, axis int) int {
	return b.cache.Get(p, axis)
}

// AddTriangle appends a triangle with vertex indices v0, v1, v2.
// Winding is counter-clockwise when looking at the front face.
func (b *Builder) AddTriangle(v0, v1, v2 int) {
	n := uint(len(b.vertices))
	if uint(v0) >= n || uint(v1) >= n || uint(v2) >= n {
		panic("mesh: triangle vertex index out of range")
	}
	b.indices = append(b.indices, uint32(v0), uint32(v1), uint32(v2))
}

// AddQuad appends the polygon v as a fan of triangles (v0, vi, vi+1).
func (b *Builder) AddQuad(v [4]int) {
	b.AddTriangle(v[0], v[1], v[2])
	b.AddTriangle(v[0], v[2], v[3])
}

// Vertices returns the vertex buffer. The returned slice must not be modified.
func (b *Builder) Vertices() []ms3.Vec { return b.vertices }

// Indices returns the triangle index buffer, three indices per triangle.
// The returned slice must not be modified.
func (b *Builder) Indices() []uint32 { return b.indices }

// VertexCount returns the number of vertices emitted.
func (b *Builder) VertexCount() int { return len(b.vertices) }

// TriangleCount returns the number of triangles emitted.
func (b *Builder) TriangleCount() int { return len(b.indices) / 3 }

// IsEmpty reports whether no triangles were emitted.
func (b *Builder) IsEmpty() bool { return len(b.indices) == 0 }

// Triangle returns the i'th triangle's vertex positions.
func (b *Builder) Triangle(i int) ms3.Triangle {
	i *= 3
	return ms3.Triangle{
		b.vertices[b.indices[i]],
		b.vertices[b.indices[i+1]],
		b.vertices[b.indices[i+2]],
	}
}

// AppendTriangles appends the builder's triangles to dst and returns the result.
func (b *Builder) AppendTriangles(dst []ms3.Triangle) []ms3.Triangle {
	for i := 0; i < b.TriangleCount(); i++ {
		dst = append(dst, b.Triangle(i))
	}
	return dst
}

// Validate checks the index buffer is made of whole triangles that reference
// existing vertices.
func (b *Builder) Validate() error {
	if len(b.indices)%3 != 0 {
		return fmt.Errorf("index buffer length %d not a multiple of 3", len(b.indices))
	}
	for i, idx := range b.indices {
		if int(idx) >= len(b.vertices) {
			return fmt.Errorf("index %d of triangle %d out of range for %d vertices", idx, i/3, len(b.vertices))
		}
	}
	return nil
}
