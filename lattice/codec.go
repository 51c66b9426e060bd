package lattice

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/soypat/glgl/math/ms3"
)

const (
	codecMagic   = "lset"
	codecVersion = 1
	headerSize   = 4 + 2 + 4
	nodeSize     = 4 * 4
)

// MarshalBinary encodes the set in a little endian binary format:
// a 10 byte header followed by x, y, z and value as float32 for every node.
func (s *Set) MarshalBinary() ([]byte, error) {
	b := make([]byte, headerSize+nodeSize*len(s.nodes))
	copy(b, codecMagic)
	binary.LittleEndian.PutUint16(b[4:], codecVersion)
	binary.LittleEndian.PutUint32(b[6:], uint32(s.res))
	off := headerSize
	for _, n := range s.nodes {
		putNode(b[off:], n)
		off += nodeSize
	}
	return b, nil
}

// UnmarshalBinary decodes a set encoded with MarshalBinary into s.
func (s *Set) UnmarshalBinary(b []byte) error {
	if len(b) < headerSize {
		return errors.New("lattice data too short for header")
	} else if string(b[:4]) != codecMagic {
		return errors.New("bad lattice data magic")
	}
	version := binary.LittleEndian.Uint16(b[4:])
	if version != codecVersion {
		return fmt.Errorf("unsupported lattice data version %d", version)
	}
	res := int(binary.LittleEndian.Uint32(b[6:]))
	if res < 2 || res > 1<<10 {
		return fmt.Errorf("bad lattice resolution %d", res)
	}
	n := res * res * res
	// The byte length of the largest lattice overflows a 32 bit int.
	if int64(len(b)) != headerSize+int64(n)*nodeSize {
		return fmt.Errorf("lattice data length %d does not match resolution %d", len(b), res)
	}
	nodes := make([]Node, n)
	off := headerSize
	for i := range nodes {
		nodes[i] = getNode(b[off:])
		off += nodeSize
	}
	decoded, err := New(res, nodes)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

func putNode(b []byte, n Node) {
	_ = b[15] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(n.Pos.X))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(n.Pos.Y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(n.Pos.Z))
	binary.LittleEndian.PutUint32(b[12:], math.Float32bits(n.Val))
}

func getNode(b []byte) Node {
	_ = b[15] // early bounds check
	return Node{
		Pos: ms3.Vec{
			X: math.Float32frombits(binary.LittleEndian.Uint32(b)),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
			Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
		},
		Val: math.Float32frombits(binary.LittleEndian.Uint32(b[12:])),
	}
}
