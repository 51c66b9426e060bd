package extract

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfchunk/lattice"
	"github.com/soypat/sdfchunk/mesh"
)

type evalFunc func(p ms3.Vec) float32

func (f evalFunc) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	for i, p := range pos {
		dist[i] = f(p)
	}
	return nil
}

func sphere(center ms3.Vec, r float32) evalFunc {
	return func(p ms3.Vec) float32 { return ms3.Norm(ms3.Sub(p, center)) - r }
}

func dot(a, b ms3.Vec) float32 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// unitCell returns a resolution 2 lattice with corner i at (i&1, i>>1&1, i>>2&1)
// and value vals[i].
func unitCell(t testing.TB, vals [8]float32) *lattice.Set {
	t.Helper()
	nodes := make([]lattice.Node, 8)
	for i, v := range vals {
		x, y, z := i&1, i>>1&1, i>>2&1
		nodes[(x*2+y)*2+z] = lattice.Node{
			Pos: ms3.Vec{X: float32(x), Y: float32(y), Z: float32(z)},
			Val: v,
		}
	}
	s, err := lattice.New(2, nodes)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func cornerPos(i int) ms3.Vec {
	return ms3.Vec{X: float32(i & 1), Y: float32(i >> 1 & 1), Z: float32(i >> 2 & 1)}
}

func centroid(tri ms3.Triangle) ms3.Vec {
	return ms3.Scale(1./3, ms3.Add(tri[0], ms3.Add(tri[1], tri[2])))
}

// signedVolume calculates the enclosed volume of a closed mesh using the
// divergence theorem. It is positive for outward facing triangles.
func signedVolume(b *mesh.Builder) float32 {
	var vol float32
	for i := 0; i < b.TriangleCount(); i++ {
		tri := b.Triangle(i)
		vol += dot(tri[0], ms3.Cross(tri[1], tri[2])) / 6
	}
	return vol
}

// checkClosedManifold checks every directed triangle edge appears once and is
// matched by exactly one edge in the opposite direction.
func checkClosedManifold(t *testing.T, name string, b *mesh.Builder) {
	t.Helper()
	directed := make(map[[2]uint32]int)
	idx := b.Indices()
	for i := 0; i < len(idx); i += 3 {
		for j := 0; j < 3; j++ {
			directed[[2]uint32{idx[i+j], idx[i+(j+1)%3]}]++
		}
	}
	bad := 0
	for e, n := range directed {
		if n != 1 || directed[[2]uint32{e[1], e[0]}] != 1 {
			bad++
		}
	}
	if bad > 0 {
		t.Errorf("%s: %d of %d directed edges are not matched once by an opposite edge", name, bad, len(directed))
	}
}

func TestTables(t *testing.T) {
	for code := 0; code < 256; code++ {
		verts := regularVertexData[code]
		data := regularCellData[regularCellClass[code]]
		if len(verts) != data.vertexCount {
			t.Fatalf("case %#x: %d vertices, class expects %d", code, len(verts), data.vertexCount)
		}
		if len(data.indices)%3 != 0 {
			t.Fatalf("case %#x: index count %d not multiple of 3", code, len(data.indices))
		}
		for _, i := range data.indices {
			if int(i) >= data.vertexCount {
				t.Fatalf("case %#x: triangle index %d out of range", code, i)
			}
		}
		if (code == 0 || code == 0xff) != (data.triangleCount() == 0) {
			t.Fatalf("case %#x: got %d triangles", code, data.triangleCount())
		}
		for _, e := range verts {
			c0, c1 := e.corners()
			if (code>>c0&1) == (code>>c1&1) {
				t.Fatalf("case %#x: vertex on edge %d-%d without sign change", code, c0, c1)
			}
			if c0^c1 != 1<<e.axis() {
				t.Fatalf("case %#x: edge %d-%d does not lie on axis %d", code, c0, c1, e.axis())
			}
			// The owner lattice point is the edge's upper corner.
			off := e.offset()
			upper := lattice.Index{1 - off[0], 1 - off[1], 1 - off[2]}
			if upper != (lattice.Index{c1 & 1, c1 >> 1 & 1, c1 >> 2 & 1}) {
				t.Fatalf("case %#x: edge %d-%d owner offset %v", code, c0, c1, off)
			}
		}
		// Vertices sharing a cell face are joined only along the surface's
		// crossing of that face, bordering a single triangle of the cell.
		// The cell on the other side of the face borders it too.
		uses := make(map[[2]uint8]int)
		for i := 0; i < len(data.indices); i += 3 {
			a, b, c := data.indices[i], data.indices[i+1], data.indices[i+2]
			if verts[a].faces()&verts[b].faces()&verts[c].faces() != 0 {
				t.Errorf("case %#08b: triangle %d lies in a cell face", code, i/3)
			}
			for _, e := range [][2]uint8{{a, b}, {b, c}, {c, a}} {
				if e[0] > e[1] {
					e[0], e[1] = e[1], e[0]
				}
				uses[e]++
			}
		}
		for e, n := range uses {
			want := 2
			if verts[e[0]].faces()&verts[e[1]].faces() != 0 {
				want = 1
			}
			if n != want {
				t.Errorf("case %#08b: edge %v borders %d triangles, want %d", code, e, n, want)
			}
		}
	}
	if len(regularCellData) > 256 || regularCellClass[0] != 0 {
		t.Fatal("bad equivalence classes")
	}
	t.Logf("%d equivalence classes", len(regularCellData))
}

func TestMarchingCubesSingleCorner(t *testing.T) {
	for corner := 0; corner < 8; corner++ {
		for _, inside := range []bool{true, false} {
			var vals [8]float32
			for i := range vals {
				isDifferent := i == corner
				if isDifferent == inside {
					vals[i] = -1
				} else {
					vals[i] = 1
				}
			}
			b := Generate(unitCell(t, vals), MarchingCubes{})
			if b.TriangleCount() != 1 || b.VertexCount() != 3 {
				t.Fatalf("corner %d inside=%v: got %d triangles %d vertices, want 1 and 3", corner, inside, b.TriangleCount(), b.VertexCount())
			}
			tri := b.Triangle(0)
			// Values of ±1 place crossings at edge midpoints.
			for _, v := range tri {
				if d := ms3.Norm(ms3.Sub(v, cornerPos(corner))); math32.Abs(d-0.5) > 1e-6 {
					t.Fatalf("corner %d: vertex %v not at edge midpoint", corner, v)
				}
			}
			away := ms3.Sub(centroid(tri), cornerPos(corner))
			if !inside {
				away = ms3.Scale(-1, away)
			}
			if dot(tri.Normal(), away) <= 0 {
				t.Errorf("corner %d inside=%v: triangle normal %v faces inside", corner, inside, tri.Normal())
			}
		}
	}
}

func TestHomogeneousCellsEmpty(t *testing.T) {
	for _, val := range []float32{-1, 0, 1} {
		vals := [8]float32{val, val, val, val, val, val, val, val}
		s := unitCell(t, vals)
		for _, alg := range Algorithms() {
			b := mesh.NewBuilder(2)
			before, after := alg.Margins()
			for x := before; x < 2-after; x++ {
				for y := before; y < 2-after; y++ {
					for z := before; z < 2-after; z++ {
						alg.GenerateCell(b, s, lattice.Index{x, y, z})
					}
				}
			}
			if b.TriangleCount() != 0 {
				t.Errorf("%v: homogeneous cell of value %g emitted %d triangles", alg, val, b.TriangleCount())
			}
		}
	}
}

func TestUniformSetSkipsTraversal(t *testing.T) {
	inside, err := lattice.Sample(evalFunc(func(ms3.Vec) float32 { return -1 }), ms3.Vec{}, 1, 6)
	if err != nil {
		t.Fatal(err)
	}
	for _, alg := range Algorithms() {
		b := Generate(inside, alg)
		if !b.IsEmpty() || b.VertexCount() != 0 {
			t.Errorf("%v: uniform set produced geometry", alg)
		}
	}
}

func TestClosedSphere(t *testing.T) {
	const (
		res    = 24
		radius = 0.7
	)
	spacing := float32(2) / (res - 1)
	origin := ms3.Vec{X: -1, Y: -1, Z: -1}
	s, err := lattice.Sample(sphere(ms3.Vec{X: 0.01, Y: -0.02, Z: 0.03}, radius), origin, spacing, res)
	if err != nil {
		t.Fatal(err)
	}
	wantVol := 4. / 3 * math32.Pi * radius * radius * radius
	insideNodes := 0
	for x := 0; x < res; x++ {
		for y := 0; y < res; y++ {
			for z := 0; z < res; z++ {
				insideNodes += s.At(x, y, z).SignBit()
			}
		}
	}
	voxelVol := float32(insideNodes) * spacing * spacing * spacing
	for _, test := range []struct {
		alg    Algorithm
		vol    float32
		relTol float32
	}{
		{alg: MarchingCubes{}, vol: wantVol, relTol: 0.05},
		{alg: SurfaceNets{}, vol: wantVol, relTol: 0.1},
		{alg: Voxels{}, vol: voxelVol, relTol: 1e-3},
	} {
		name := test.alg.(interface{ String() string }).String()
		b := Generate(s, test.alg)
		if err := b.Validate(); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if b.IsEmpty() {
			t.Fatalf("%s: no triangles", name)
		}
		checkClosedManifold(t, name, b)
		vol := signedVolume(b)
		if math32.Abs(vol-test.vol) > test.relTol*test.vol {
			t.Errorf("%s: got enclosed volume %g, want %g", name, vol, test.vol)
		}
	}
}

// randomField returns a lattice of uniformly random values in [-1, 1] with
// boundary nodes outside, so the surface is closed and crosses cells of
// every shape, ambiguous faces included.
func randomField(t testing.TB, rng *rand.Rand, res int) *lattice.Set {
	t.Helper()
	nodes := make([]lattice.Node, res*res*res)
	for x := 0; x < res; x++ {
		for y := 0; y < res; y++ {
			for z := 0; z < res; z++ {
				val := float32(1)
				if x > 0 && y > 0 && z > 0 && x < res-1 && y < res-1 && z < res-1 {
					val = 2*rng.Float32() - 1
				}
				nodes[(x*res+y)*res+z] = lattice.Node{
					Pos: ms3.Vec{X: float32(x), Y: float32(y), Z: float32(z)},
					Val: val,
				}
			}
		}
	}
	s, err := lattice.New(res, nodes)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRandomFields(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		s := randomField(t, rng, 10)
		for _, alg := range Algorithms() {
			name := fmt.Sprintf("%v trial %d", alg, trial)
			b := Generate(s, alg)
			if err := b.Validate(); err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			if b.IsEmpty() {
				t.Fatalf("%s: no triangles", name)
			}
			// Voxels and surface nets may pinch where diagonal nodes are
			// inside, only marching cubes is manifold everywhere.
			if alg == (MarchingCubes{}) {
				checkClosedManifold(t, name, b)
			}
			if vol := signedVolume(b); vol <= 0 {
				t.Errorf("%s: got enclosed volume %g", name, vol)
			}
		}
	}
}

func TestDeterministic(t *testing.T) {
	s, err := lattice.Sample(sphere(ms3.Vec{}, 0.45), ms3.Vec{X: -0.6, Y: -0.6, Z: -0.6}, 0.1, 13)
	if err != nil {
		t.Fatal(err)
	}
	for _, alg := range Algorithms() {
		a := Generate(s, alg)
		b := mesh.NewBuilder(3)
		GenerateInto(b, s, alg)
		if a.VertexCount() != b.VertexCount() || a.TriangleCount() != b.TriangleCount() {
			t.Fatalf("%v: buffer sizes differ between passes", alg)
		}
		for i, v := range a.Vertices() {
			if b.Vertices()[i] != v {
				t.Fatalf("%v: vertex %d differs between passes", alg, i)
			}
		}
		for i, idx := range a.Indices() {
			if b.Indices()[i] != idx {
				t.Fatalf("%v: index %d differs between passes", alg, i)
			}
		}
	}
}

func TestVoxelsIsolatedNode(t *testing.T) {
	const spacing = 0.5
	center := ms3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	ev := evalFunc(func(p ms3.Vec) float32 {
		if p == center {
			return -1
		}
		return 1
	})
	s, err := lattice.Sample(ev, ms3.Vec{}, spacing, 3)
	if err != nil {
		t.Fatal(err)
	}
	b := Generate(s, Voxels{})
	if b.TriangleCount() != 12 {
		t.Fatalf("got %d triangles, want 12", b.TriangleCount())
	}
	if b.VertexCount() != 8 {
		t.Fatalf("got %d vertices, want the 8 shared cube corners", b.VertexCount())
	}
	normals := make(map[ms3.Vec]int)
	for i := 0; i < b.TriangleCount(); i++ {
		tri := b.Triangle(i)
		n := ms3.Unit(tri.Normal())
		if dot(n, ms3.Sub(centroid(tri), center)) <= 0 {
			t.Errorf("triangle %d faces inward", i)
		}
		normals[ms3.Vec{X: math32.Round(n.X), Y: math32.Round(n.Y), Z: math32.Round(n.Z)}]++
	}
	if len(normals) != 6 {
		t.Errorf("want quads in 6 directions, got %d distinct normals", len(normals))
	}
	for _, v := range b.Vertices() {
		d := ms3.Sub(v, center)
		if math32.Abs(math32.Abs(d.X)-spacing/2) > 1e-6 || math32.Abs(math32.Abs(d.Y)-spacing/2) > 1e-6 || math32.Abs(math32.Abs(d.Z)-spacing/2) > 1e-6 {
			t.Errorf("vertex %v not on voxel corner", v)
		}
	}
}

func TestInterpolate(t *testing.T) {
	n1 := lattice.Node{Pos: ms3.Vec{X: 0}, Val: -1}
	n2 := lattice.Node{Pos: ms3.Vec{X: 1}, Val: 3}
	got := interpolate(n1, n2)
	if got != (ms3.Vec{X: 0.25}) {
		t.Fatalf("got crossing %v, want x=0.25", got)
	}
	if back := interpolate(n2, n1); math32.Abs(back.X-0.25) > 1e-6 {
		t.Fatalf("crossing depends on edge direction: %v", back)
	}
}

func TestSurfaceNetsCellVertex(t *testing.T) {
	vals := [8]float32{-1, 3, 3, 3, 3, 3, 3, 3}
	var cell [8]lattice.Node
	for i := range cell {
		cell[i] = lattice.Node{Pos: cornerPos(i), Val: vals[i]}
	}
	// Three sign changes at 0.25 along each edge leaving corner 0.
	got := cellVertex(&cell)
	want := ms3.Vec{X: 0.25 / 3, Y: 0.25 / 3, Z: 0.25 / 3}
	if ms3.Norm(ms3.Sub(got, want)) > 1e-6 {
		t.Fatalf("got cell vertex %v, want %v", got, want)
	}
	b := Generate(unitCell(t, vals), SurfaceNets{})
	if b.VertexCount() != 1 || b.TriangleCount() != 0 {
		t.Fatalf("single cell lattice: got %d vertices %d triangles", b.VertexCount(), b.TriangleCount())
	}
	if ms3.Norm(ms3.Sub(b.Vertices()[0], want)) > 1e-6 {
		t.Fatalf("generated cell vertex %v, want %v", b.Vertices()[0], want)
	}
}

func TestMarginsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on negative margin")
		}
	}()
	s := unitCell(t, [8]float32{-1, 1, 1, 1, 1, 1, 1, 1})
	Generate(s, badMargins{})
}

type badMargins struct{ MarchingCubes }

func (badMargins) Margins() (int, int) { return -1, 0 }

func TestByName(t *testing.T) {
	for _, alg := range Algorithms() {
		name := alg.(interface{ String() string }).String()
		got, err := ByName(name)
		if err != nil {
			t.Fatal(err)
		}
		if got != alg {
			t.Errorf("ByName(%q) = %v", name, got)
		}
	}
	if _, err := ByName("transvoxel"); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}

func BenchmarkGenerate(b *testing.B) {
	s, err := lattice.Sample(sphere(ms3.Vec{}, 0.8), ms3.Vec{X: -1, Y: -1, Z: -1}, 2./31, 32)
	if err != nil {
		b.Fatal(err)
	}
	for _, alg := range Algorithms() {
		bld := mesh.NewBuilder(32)
		b.Run(alg.(interface{ String() string }).String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				GenerateInto(bld, s, alg)
			}
		})
	}
}
