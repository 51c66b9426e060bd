// Package scene loads YAML descriptions of fields to be meshed chunk by chunk.
package scene

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfchunk/chunk"
	"github.com/soypat/sdfchunk/extract"
	"github.com/soypat/sdfchunk/field"
	"gopkg.in/yaml.v3"
)

// Config is a scene file: the shapes to mesh and how to mesh them.
type Config struct {
	Algorithm string    `yaml:"algorithm"`
	Chunk     ChunkSpec `yaml:"chunk"`
	// Workers is the number of chunks meshed concurrently. Zero uses one per CPU.
	Workers int `yaml:"workers"`
	// RemeshTolerance is the RMS sample difference under which a cached
	// chunk is considered unchanged.
	RemeshTolerance float32 `yaml:"remesh_tolerance"`
	// Bounds limits the meshed region. Required for unbounded shapes.
	Bounds *BoundsSpec `yaml:"bounds,omitempty"`
	Shapes []ShapeSpec `yaml:"shapes"`
}

// ChunkSpec sets the side length and lattice resolution of every chunk.
type ChunkSpec struct {
	Size       float32 `yaml:"size"`
	Resolution int     `yaml:"resolution"`
}

// BoundsSpec is an axis aligned box given by its lowest and highest corners.
type BoundsSpec struct {
	Min [3]float32 `yaml:"min"`
	Max [3]float32 `yaml:"max"`
}

// ShapeSpec is a primitive combined with the shapes listed before it using Op.
// The first shape's Op is ignored.
type ShapeSpec struct {
	Type string     `yaml:"type"`
	Op   string     `yaml:"op,omitempty"`
	At   [3]float32 `yaml:"at,omitempty"`
	// Smooth is the blend distance of the "smooth-union" operation.
	Smooth float32 `yaml:"smooth,omitempty"`

	Radius     float32    `yaml:"radius,omitempty"`
	Size       [3]float32 `yaml:"size,omitempty"`
	Round      float32    `yaml:"round,omitempty"`
	Height     float32    `yaml:"height,omitempty"`
	RingRadius float32    `yaml:"ring_radius,omitempty"`
	Period     float32    `yaml:"period,omitempty"`
	Thickness  float32    `yaml:"thickness,omitempty"`
}

// Load reads the scene file at path. Missing settings take default values.
func Load(path string) (Config, error) {
	cfg := defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Algorithm:       "marching-cubes",
		Chunk:           ChunkSpec{Size: 1, Resolution: 16},
		RemeshTolerance: 1e-4,
	}
}

// Normalize lower-cases names and fills in the default combination operation.
func (cfg *Config) Normalize() {
	cfg.Algorithm = strings.ToLower(strings.TrimSpace(cfg.Algorithm))
	for i := range cfg.Shapes {
		s := &cfg.Shapes[i]
		s.Type = strings.ToLower(strings.TrimSpace(s.Type))
		s.Op = strings.ToLower(strings.TrimSpace(s.Op))
		if s.Op == "" {
			s.Op = "union"
		}
	}
}

// Validate checks the configuration can be meshed.
func (cfg Config) Validate() error {
	if _, err := extract.ByName(cfg.Algorithm); err != nil {
		return err
	}
	if err := cfg.Grid().Validate(); err != nil {
		return err
	}
	if cfg.Workers < 0 {
		return errors.New("negative worker count")
	} else if cfg.RemeshTolerance < 0 {
		return errors.New("negative remesh tolerance")
	} else if len(cfg.Shapes) == 0 {
		return errors.New("scene has no shapes")
	}
	if cfg.Bounds != nil {
		for i := 0; i < 3; i++ {
			if !(cfg.Bounds.Max[i] > cfg.Bounds.Min[i]) {
				return errors.New("bounds max must be larger than min")
			}
		}
	}
	_, err := cfg.Field()
	return err
}

// Grid returns the chunk grid of the scene.
func (cfg Config) Grid() chunk.Grid {
	return chunk.Grid{Size: cfg.Chunk.Size, Resolution: cfg.Chunk.Resolution}
}

// AlgorithmValue returns the configured extraction algorithm.
func (cfg Config) AlgorithmValue() (extract.Algorithm, error) {
	return extract.ByName(cfg.Algorithm)
}

// Field builds the signed distance field described by the shape list.
func (cfg Config) Field() (field.SDF, error) {
	var sdf field.SDF
	for i, spec := range cfg.Shapes {
		s, err := spec.primitive()
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		if spec.At != ([3]float32{}) {
			s = field.Translate(s, spec.At[0], spec.At[1], spec.At[2])
		}
		if i == 0 {
			sdf = s
			continue
		}
		switch spec.Op {
		case "union":
			sdf, err = field.Union(sdf, s)
		case "difference":
			sdf, err = field.Difference(sdf, s)
		case "intersection":
			sdf, err = field.Intersection(sdf, s)
		case "smooth-union":
			sdf, err = field.SmoothUnion(spec.Smooth, sdf, s)
		default:
			err = fmt.Errorf("unknown operation %q", spec.Op)
		}
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
	}
	return sdf, nil
}

func (spec ShapeSpec) primitive() (field.SDF, error) {
	switch spec.Type {
	case "sphere":
		return field.NewSphere(spec.Radius)
	case "box":
		return field.NewBox(spec.Size[0], spec.Size[1], spec.Size[2], spec.Round)
	case "torus":
		return field.NewTorus(spec.Radius, spec.RingRadius)
	case "cylinder":
		return field.NewCylinder(spec.Radius, spec.Height)
	case "gyroid":
		return field.NewGyroid(spec.Period, spec.Thickness)
	}
	return nil, fmt.Errorf("unknown shape type %q", spec.Type)
}

// Region returns the region to mesh: the configured bounds or, if absent,
// the bounds of the field enlarged by one lattice spacing.
func (cfg Config) Region(sdf field.SDF) (ms3.Box, error) {
	if cfg.Bounds != nil {
		b := cfg.Bounds
		return ms3.Box{
			Min: ms3.Vec{X: b.Min[0], Y: b.Min[1], Z: b.Min[2]},
			Max: ms3.Vec{X: b.Max[0], Y: b.Max[1], Z: b.Max[2]},
		}, nil
	}
	bb := sdf.Bounds()
	for _, v := range []float32{bb.Min.X, bb.Min.Y, bb.Min.Z, bb.Max.X, bb.Max.Y, bb.Max.Z} {
		if math32.IsInf(v, 0) || math32.IsNaN(v) {
			return ms3.Box{}, errors.New("unbounded scene requires explicit bounds")
		}
	}
	margin := cfg.Grid().Spacing()
	return ms3.Box{Min: ms3.AddScalar(-margin, bb.Min), Max: ms3.AddScalar(margin, bb.Max)}, nil
}
