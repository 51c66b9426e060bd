package chunk

import (
	"github.com/soypat/sdfchunk/extract"
	"github.com/soypat/sdfchunk/lattice"
	"github.com/soypat/sdfchunk/mesh"
)

// Handle is a unit of background work that can be waited on.
type Handle interface {
	// Complete blocks until the work is done.
	Complete()
}

var _ Handle = (*Pass)(nil)

// Pass is a single extraction pass running in the background.
// A pass can not be cancelled once started.
type Pass struct {
	done chan struct{}
	b    *mesh.Builder
}

// Start runs alg over s on a new goroutine.
func Start(s *lattice.Set, alg extract.Algorithm) *Pass {
	p := &Pass{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.b = extract.Generate(s, alg)
	}()
	return p
}

// Complete blocks until the pass finished. It may be called any number of times.
func (p *Pass) Complete() { <-p.done }

// Mesh waits for the pass to finish and returns the resulting mesh.
func (p *Pass) Mesh() *mesh.Builder {
	p.Complete()
	return p.b
}
