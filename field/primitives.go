package field

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

type sphere struct {
	r float32
}

// NewSphere returns a sphere of radius r centered at the origin.
func NewSphere(r float32) (SDF, error) {
	if r <= 0 {
		return nil, errors.New("zero or negative sphere radius")
	}
	return &sphere{r: r}, nil
}

func (s *sphere) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	r := s.r
	for i, p := range pos {
		dist[i] = ms3.Norm(p) - r
	}
	return nil
}

func (s *sphere) Bounds() ms3.Box {
	return ms3.Box{
		Min: ms3.Vec{X: -s.r, Y: -s.r, Z: -s.r},
		Max: ms3.Vec{X: s.r, Y: s.r, Z: s.r},
	}
}

type box struct {
	half  ms3.Vec
	round float32
}

// NewBox returns a box of the given side lengths centered at the origin with
// its edges rounded by round.
func NewBox(x, y, z, round float32) (SDF, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, errors.New("zero or negative box dimension")
	} else if round < 0 || round > x/2 || round > y/2 || round > z/2 {
		return nil, errors.New("invalid box rounding value")
	}
	return &box{half: ms3.Vec{X: x / 2, Y: y / 2, Z: z / 2}, round: round}, nil
}

func (b *box) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	d := b.half
	r := b.round
	for i, p := range pos {
		q := ms3.AddScalar(r, ms3.Sub(ms3.AbsElem(p), d))
		dist[i] = ms3.Norm(ms3.MaxElem(q, ms3.Vec{})) + minf(maxf(q.X, maxf(q.Y, q.Z)), 0) - r
	}
	return nil
}

func (b *box) Bounds() ms3.Box {
	return ms3.Box{Min: ms3.Scale(-1, b.half), Max: b.half}
}

type torus struct {
	rGreater, rRing float32
}

// NewTorus returns a torus lying on the XY plane centered at the origin.
// greaterRadius is the outer radius and ringRadius the radius of the tube.
func NewTorus(greaterRadius, ringRadius float32) (SDF, error) {
	if ringRadius <= 0 || greaterRadius <= 0 {
		return nil, errors.New("zero or negative torus radius")
	} else if 2*ringRadius > greaterRadius {
		return nil, errors.New("torus ring radius larger than half greater radius")
	}
	return &torus{rGreater: greaterRadius, rRing: ringRadius}, nil
}

func (t *torus) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	t1 := t.rGreater - t.rRing
	t2 := t.rRing
	for i, p := range pos {
		q1 := hypotf(p.X, p.Y) - t1
		dist[i] = hypotf(q1, p.Z) - t2
	}
	return nil
}

func (t *torus) Bounds() ms3.Box {
	R := t.rGreater
	r := t.rRing
	return ms3.Box{
		Min: ms3.Vec{X: -R, Y: -R, Z: -r},
		Max: ms3.Vec{X: R, Y: R, Z: r},
	}
}

type cylinder struct {
	r, h float32
}

// NewCylinder returns a cylinder of radius r and height h with its axis along Z,
// centered at the origin.
func NewCylinder(r, h float32) (SDF, error) {
	if r <= 0 || h <= 0 {
		return nil, errors.New("zero or negative cylinder dimension")
	}
	return &cylinder{r: r, h: h}, nil
}

func (c *cylinder) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	ra := c.r
	hh := c.h / 2
	for i, p := range pos {
		d1 := hypotf(p.X, p.Y) - ra
		d2 := math32.Abs(p.Z) - hh
		dist[i] = minf(maxf(d1, d2), 0) + hypotf(maxf(d1, 0), maxf(d2, 0))
	}
	return nil
}

func (c *cylinder) Bounds() ms3.Box {
	return ms3.Box{
		Min: ms3.Vec{X: -c.r, Y: -c.r, Z: -c.h / 2},
		Max: ms3.Vec{X: c.r, Y: c.r, Z: c.h / 2},
	}
}

type gyroid struct {
	k, thick float32
}

// NewGyroid returns an unbounded gyroid sheet repeating every period units
// with walls of the given thickness. The distance is an approximation.
func NewGyroid(period, thickness float32) (SDF, error) {
	if period <= 0 || thickness <= 0 {
		return nil, errors.New("zero or negative gyroid parameter")
	}
	return &gyroid{k: 2 * math32.Pi / period, thick: thickness}, nil
}

func (g *gyroid) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	k := g.k
	halfThick := g.thick / 2
	for i, p := range pos {
		p = ms3.Scale(k, p)
		s := math32.Sin(p.X)*math32.Cos(p.Y) + math32.Sin(p.Y)*math32.Cos(p.Z) + math32.Sin(p.Z)*math32.Cos(p.X)
		dist[i] = math32.Abs(s)/k - halfThick
	}
	return nil
}

func (g *gyroid) Bounds() ms3.Box {
	inf := math32.Inf(1)
	return ms3.Box{
		Min: ms3.Vec{X: -inf, Y: -inf, Z: -inf},
		Max: ms3.Vec{X: inf, Y: inf, Z: inf},
	}
}
