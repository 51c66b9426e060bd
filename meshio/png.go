package meshio

import (
	"errors"
	"image/png"
	"io"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/glgl/math/ms3"
)

// View configures the camera of a preview render. The model is scaled to fit
// a cube of side 2 centered at the origin before rendering.
type View struct {
	// Eye is the camera position.
	Eye ms3.Vec
	// LookAt is the point the camera looks at.
	LookAt ms3.Vec
	// Up is the camera's up direction.
	Up ms3.Vec
	// Near and Far clipping planes.
	Near, Far float32
	// Width and Height of the output image in pixels.
	Width, Height int
	// Supersample renders at a multiple of the output size and downsamples
	// the result for antialiasing. Values below 1 disable supersampling.
	Supersample int
}

// DefaultView looks at the model from the (+1,+1,+1) octant with Z up.
func DefaultView() View {
	return View{
		Eye:         ms3.Vec{X: 3, Y: 3, Z: 3},
		Up:          ms3.Vec{Z: 1},
		Near:        1,
		Far:         10,
		Width:       800,
		Height:      600,
		Supersample: 2,
	}
}

// WritePNG renders model with a phong shader and writes it to w as PNG.
func WritePNG(w io.Writer, model []ms3.Triangle, view View) error {
	if len(model) == 0 {
		return errors.New("empty triangle slice")
	} else if view.Width <= 0 || view.Height <= 0 {
		return errors.New("zero or negative image dimension")
	} else if !(view.Near > 0 && view.Far > view.Near) {
		return errors.New("invalid clipping planes")
	}
	const fovy = 30 // vertical field of view in degrees
	scale := max(view.Supersample, 1)
	var (
		eye    = fauxV(view.Eye)
		center = fauxV(view.LookAt)
		up     = fauxV(view.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)
	triangles := make([]*fauxgl.Triangle, len(model))
	for i, t := range model {
		triangles[i] = fauxgl.NewTriangleForPoints(fauxV(t[0]), fauxV(t[1]), fauxV(t[2]))
	}
	m := fauxgl.NewTriangleMesh(triangles)
	m.BiUnitCube()

	context := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, float64(view.Near), float64(view.Far))
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(m)

	img := context.Image()
	if scale > 1 {
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return png.Encode(w, img)
}

func fauxV(v ms3.Vec) fauxgl.Vector {
	return fauxgl.V(float64(v.X), float64(v.Y), float64(v.Z))
}
