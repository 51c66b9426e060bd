package chunk

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/soypat/sdfchunk/lattice"
)

// Cache stores compressed chunk samples in a directory, one file per chunk.
// It is safe for concurrent use as long as no two goroutines store the same
// chunk simultaneously.
type Cache struct {
	dir string
}

// NewCache creates dir if needed and returns a Cache backed by it.
func NewCache(dir string) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("empty cache directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache's directory.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) path(coord lattice.Index) string {
	return filepath.Join(c.dir, fmt.Sprintf("chunk_%d_%d_%d.lset.zst", coord[0], coord[1], coord[2]))
}

// Load returns the stored samples of chunk coord. If the chunk was never
// stored Load returns a nil Set and a nil error.
func (c *Cache) Load(coord lattice.Index) (*lattice.Set, error) {
	f, err := os.Open(c.path(coord))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	b, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompressing chunk %v: %w", coord, err)
	}
	s := new(lattice.Set)
	if err := s.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("decoding chunk %v: %w", coord, err)
	}
	return s, nil
}

// Store writes the samples of chunk coord, replacing previous samples. The
// file is written to a temporary file first so readers never see a
// partially written chunk.
func (c *Cache) Store(coord lattice.Index, s *lattice.Set) error {
	b, err := s.MarshalBinary()
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(c.dir, "chunk-*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	err = writeCompressed(f, b)
	if err2 := f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("storing chunk %v: %w", coord, err)
	}
	return os.Rename(tmp, c.path(coord))
}

func writeCompressed(w io.Writer, b []byte) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := enc.Write(b); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
