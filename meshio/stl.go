// Package meshio writes chunk meshes to common 3D file formats and renders
// preview images of them.
package meshio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50
)

// WriteSTL writes triangles to w in binary STL format and returns the number
// of bytes written.
func WriteSTL(w io.Writer, model []ms3.Triangle) (int, error) {
	if len(model) == 0 {
		return 0, errors.New("empty triangle slice")
	}
	nt := int64(len(model)) // int64 so the check below works on 32bit platforms.
	if nt > math.MaxUint32 {
		return 0, errors.New("amount of triangles in model exceeds STL design limits")
	}
	var buf [stlHeaderSize]byte
	binary.LittleEndian.PutUint32(buf[80:], uint32(nt))
	n, err := w.Write(buf[:])
	if err != nil {
		return n, err
	}
	for _, tri := range model {
		putSTLTriangle(buf[:stlTriangleSize], tri)
		ngot, err := w.Write(buf[:stlTriangleSize])
		n += ngot
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// ReadSTL reads triangles in binary STL format. Stored normals are ignored
// since they are implied by the winding of the vertices.
func ReadSTL(r io.Reader) ([]ms3.Triangle, error) {
	var buf [stlHeaderSize]byte
	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return nil, fmt.Errorf("reading STL header: %w", err)
	}
	count := binary.LittleEndian.Uint32(buf[80:])
	if count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	model := make([]ms3.Triangle, 0, min(int(count), 1<<20))
	for i := 0; i < int(count); i++ {
		_, err = io.ReadFull(r, buf[:stlTriangleSize])
		if err != nil {
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i, count, err)
		}
		tri := getSTLTriangle(buf[:stlTriangleSize])
		if badVec(tri[0]) || badVec(tri[1]) || badVec(tri[2]) {
			return nil, fmt.Errorf("inf/NaN vertex in STL triangle %d", i)
		}
		model = append(model, tri)
	}
	return model, nil
}

func putSTLTriangle(b []byte, t ms3.Triangle) {
	_ = b[stlTriangleSize-1] // early bounds check
	putVec(b, ms3.Unit(t.Normal()))
	putVec(b[12:], t[0])
	putVec(b[24:], t[1])
	putVec(b[36:], t[2])
	binary.LittleEndian.PutUint16(b[48:], 0) // No attributes.
}

func getSTLTriangle(b []byte) ms3.Triangle {
	_ = b[stlTriangleSize-1] // early bounds check
	return ms3.Triangle{getVec(b[12:]), getVec(b[24:]), getVec(b[36:])}
}

func putVec(b []byte, v ms3.Vec) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v.Z))
}

func getVec(b []byte) ms3.Vec {
	return ms3.Vec{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b)),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

func badVec(v ms3.Vec) bool {
	return math32.IsNaN(v.X) || math32.IsInf(v.X, 0) ||
		math32.IsNaN(v.Y) || math32.IsInf(v.Y, 0) ||
		math32.IsNaN(v.Z) || math32.IsInf(v.Z, 0)
}
