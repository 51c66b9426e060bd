package chunk

import (
	"context"
	"errors"
	"runtime"

	"github.com/soypat/sdfchunk/extract"
	"github.com/soypat/sdfchunk/lattice"
	"github.com/soypat/sdfchunk/mesh"
	"golang.org/x/sync/errgroup"
)

// Result holds the samples and mesh of a single chunk.
type Result struct {
	Coord lattice.Index
	Set   *lattice.Set
	Mesh  *mesh.Builder
}

// Generate samples ev over each chunk in coords and meshes it with alg using
// up to workers goroutines. A non-positive workers uses one goroutine per CPU.
// Results are returned in the order of coords.
//
// If ctx is cancelled no new chunks are started and the context error is
// returned once running chunks finish. ev must be safe for concurrent use.
func Generate(ctx context.Context, g Grid, ev lattice.Evaluator, alg extract.Algorithm, coords []lattice.Index, workers int) ([]Result, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	} else if ev == nil || alg == nil {
		return nil, errors.New("nil evaluator or algorithm")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Result, len(coords))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, c := range coords {
		if gctx.Err() != nil {
			break
		}
		i, c := i, c
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := g.Sample(ev, c)
			if err != nil {
				return err
			}
			results[i] = Result{Coord: c, Set: s, Mesh: extract.Generate(s, alg)}
			return nil
		})
	}
	err := eg.Wait()
	if err == nil {
		// Scheduling may have stopped on a cancelled parent context without
		// any running chunk observing it.
		err = ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}
