package scan

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// StrictSharded runs Strict over slabs of b in parallel and merges the slabs
// back into scan order. The result equals Strict(ctx, c, b, maxMatches).
func StrictSharded(ctx context.Context, c Constraints, b Box, maxMatches uint32, workers int) ([]Match, error) {
	if err := validate(c, b); err != nil {
		return nil, err
	}
	return sharded(ctx, b, workers, maxMatches, func(ctx context.Context, sb Box) ([]Match, error) {
		return Strict(ctx, c, sb, maxMatches)
	})
}

// ScoredSharded is the parallel form of Scored.
func ScoredSharded(ctx context.Context, c Constraints, b Box, maxMatches uint32, p ScoreParams, workers int) ([]ScoredMatch, error) {
	if err := validate(c, b); err != nil {
		return nil, err
	}
	return sharded(ctx, b, workers, maxMatches, func(ctx context.Context, sb Box) ([]ScoredMatch, error) {
		return Scored(ctx, c, sb, maxMatches, p)
	})
}

func sharded[T any](ctx context.Context, b Box, workers int, maxMatches uint32, run func(context.Context, Box) ([]T, error)) ([]T, error) {
	slabs := b.Split(workers)
	if len(slabs) == 1 || maxMatches == 0 {
		return run(ctx, b)
	}

	// Once the finished leading slabs hold maxMatches results, the remaining
	// slabs are cancelled through stopCtx.
	stopCtx, stop := context.WithCancel(ctx)
	defer stop()
	pt := newPrefixTracker(len(slabs), maxMatches)

	parts := make([][]T, len(slabs))
	g, gctx := errgroup.WithContext(stopCtx)
	g.SetLimit(workers)
	for i, sb := range slabs {
		if pt.isFull() {
			break
		}
		g.Go(func() error {
			out, err := run(gctx, sb)
			if err != nil {
				if pt.isFull() {
					return nil
				}
				return err
			}
			parts[i] = out
			if pt.complete(i, len(out)) {
				stop()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mergePrefix(parts, maxMatches), nil
}

type prefixTracker struct {
	mu    sync.Mutex
	sizes []int // -1 until the slab finishes
	next  int
	found uint64
	need  uint64
	full  bool
}

func newPrefixTracker(slabs int, need uint32) *prefixTracker {
	sizes := make([]int, slabs)
	for i := range sizes {
		sizes[i] = -1
	}
	return &prefixTracker{sizes: sizes, need: uint64(need)}
}

// complete records slab i with n results and reports whether the leading run of
// finished slabs now holds at least need results.
func (p *prefixTracker) complete(i, n int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sizes[i] = n
	for p.next < len(p.sizes) && p.sizes[p.next] >= 0 {
		p.found += uint64(p.sizes[p.next])
		p.next++
	}
	if p.found >= p.need {
		p.full = true
	}
	return p.full
}

func (p *prefixTracker) isFull() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.full
}

// mergePrefix concatenates ordered partial results and truncates the total to
// maxMatches.
func mergePrefix[T any](parts [][]T, maxMatches uint32) []T {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	if uint64(total) > uint64(maxMatches) {
		total = int(maxMatches)
	}
	out := make([]T, 0, total)
	for _, p := range parts {
		room := total - len(out)
		if room <= 0 {
			break
		}
		if len(p) > room {
			p = p[:room]
		}
		out = append(out, p...)
	}
	return out
}
