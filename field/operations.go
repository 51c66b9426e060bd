package field

import (
	"errors"

	"github.com/soypat/glgl/math/ms3"
)

// binaryOp evaluates two fields and combines their distances.
type binaryOp struct {
	s1, s2 SDF
	pool   bufPool[float32]
}

func (op *binaryOp) evaluate(pos []ms3.Vec, dist []float32, userData any, combine func(a, b float32) float32) error {
	d2 := op.pool.acquire(len(dist))
	defer op.pool.release(d2)
	err := op.s1.Evaluate(pos, dist, userData)
	if err != nil {
		return err
	}
	err = op.s2.Evaluate(pos, d2, userData)
	if err != nil {
		return err
	}
	for i := range dist {
		dist[i] = combine(dist[i], d2[i])
	}
	return nil
}

func checkBinaryOp(s1, s2 SDF) error {
	if s1 == nil || s2 == nil {
		return errors.New("nil SDF argument to binary operation")
	}
	return nil
}

type union struct{ binaryOp }

// Union joins the shapes of s1 and s2.
func Union(s1, s2 SDF) (SDF, error) {
	if err := checkBinaryOp(s1, s2); err != nil {
		return nil, err
	}
	return &union{binaryOp: binaryOp{s1: s1, s2: s2}}, nil
}

func (u *union) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	return u.evaluate(pos, dist, userData, minf)
}

func (u *union) Bounds() ms3.Box {
	return u.s1.Bounds().Union(u.s2.Bounds())
}

type diff struct{ binaryOp }

// Difference removes the shape of s2 from s1.
func Difference(s1, s2 SDF) (SDF, error) {
	if err := checkBinaryOp(s1, s2); err != nil {
		return nil, err
	}
	return &diff{binaryOp: binaryOp{s1: s1, s2: s2}}, nil
}

func (u *diff) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	return u.evaluate(pos, dist, userData, func(a, b float32) float32 { return maxf(a, -b) })
}

func (u *diff) Bounds() ms3.Box { return u.s1.Bounds() }

type intersect struct{ binaryOp }

// Intersection keeps the volume shared by s1 and s2.
func Intersection(s1, s2 SDF) (SDF, error) {
	if err := checkBinaryOp(s1, s2); err != nil {
		return nil, err
	}
	return &intersect{binaryOp: binaryOp{s1: s1, s2: s2}}, nil
}

func (u *intersect) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	return u.evaluate(pos, dist, userData, maxf)
}

func (u *intersect) Bounds() ms3.Box {
	return u.s1.Bounds().Intersect(u.s2.Bounds())
}

type smoothUnion struct {
	binaryOp
	k float32
}

// SmoothUnion joins s1 and s2 blending the seam over a distance of about k.
func SmoothUnion(k float32, s1, s2 SDF) (SDF, error) {
	if k <= 0 {
		return nil, errors.New("zero or negative smoothing factor")
	}
	if err := checkBinaryOp(s1, s2); err != nil {
		return nil, err
	}
	return &smoothUnion{binaryOp: binaryOp{s1: s1, s2: s2}, k: k}, nil
}

func (u *smoothUnion) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	k := u.k
	return u.evaluate(pos, dist, userData, func(a, b float32) float32 {
		h := clampf(0.5+0.5*(b-a)/k, 0, 1)
		return mixf(b, a, h) - k*h*(1-h)
	})
}

func (u *smoothUnion) Bounds() ms3.Box {
	return u.s1.Bounds().Union(u.s2.Bounds())
}

type translate struct {
	s    SDF
	p    ms3.Vec
	pool bufPool[ms3.Vec]
}

// Translate moves s by (x, y, z).
func Translate(s SDF, x, y, z float32) SDF {
	return &translate{s: s, p: ms3.Vec{X: x, Y: y, Z: z}}
}

func (t *translate) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	moved := t.pool.acquire(len(pos))
	defer t.pool.release(moved)
	for i, p := range pos {
		moved[i] = ms3.Sub(p, t.p)
	}
	return t.s.Evaluate(moved, dist, userData)
}

func (t *translate) Bounds() ms3.Box {
	bb := t.s.Bounds()
	return ms3.Box{Min: ms3.Add(bb.Min, t.p), Max: ms3.Add(bb.Max, t.p)}
}
