package meshio

import (
	"errors"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/soypat/sdfchunk/mesh"
)

// WriteGLB writes meshes to w as a binary glTF scene with one mesh and node
// per non-empty input mesh. Vertices are not shared between meshes.
func WriteGLB(w io.Writer, meshes ...*mesh.Builder) error {
	doc := gltf.NewDocument()
	for i, m := range meshes {
		if m == nil || m.IsEmpty() {
			continue
		}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
		positions := make([][3]float32, m.VertexCount())
		for j, v := range m.Vertices() {
			positions[j] = [3]float32{v.X, v.Y, v.Z}
		}
		posAccessor := modeler.WritePosition(doc, positions)
		idxAccessor := modeler.WriteIndices(doc, m.Indices())
		name := fmt.Sprintf("chunk%d", i)
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: name,
			Primitives: []*gltf.Primitive{{
				Indices:    gltf.Index(idxAccessor),
				Attributes: map[string]uint32{gltf.POSITION: posAccessor},
				Mode:       gltf.PrimitiveTriangles,
			}},
		})
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: name,
			Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}
	if len(doc.Meshes) == 0 {
		return errors.New("no triangles to write")
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}
