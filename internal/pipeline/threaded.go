package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cx-luo/synthline/internal/molecule"
)

// RunThreaded implements the threaded cascade of spec.md §4.4/§5: one
// long-running worker per level k >= 3, all sharing the base fragment set.
// Level 1 and level 2 are seeded synchronously first, exactly as in the
// serial cascade, since nothing downstream of them depends on concurrent
// production at those levels.
func (d *Driver) RunThreaded(ctx context.Context) (Result, error) {
	if err := d.seedLevel1(ctx); err != nil {
		return Result{}, err
	}
	// Level 1's queue is never consumed downstream (seedLevel2 composes
	// straight from the base fragment set, not from level 1's queue), so it
	// retires the moment seeding finishes, exactly as in the serial cascade.
	d.retireLevel(1)

	if err := d.seedLevel2(ctx); err != nil {
		return Result{}, err
	}
	d.levels[2].MarkDraining()

	if d.cfg.MaxLevel < 3 {
		d.retireLevel(2)
		return d.Result(), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for k := 3; k <= d.cfg.MaxLevel; k++ {
		k := k
		g.Go(func() error { return d.worker(gctx, k) })
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	d.retireLevel(d.cfg.MaxLevel)
	return d.Result(), nil
}

// worker is the per-level loop of spec.md §4.4: it consumes level k-1 (its
// input) and produces level k (its output). When its input's predecessor is
// marked complete and the input queue drains, it retires the input level
// (the sole consumer is always positioned to know it is safe to do so),
// marks its own output level complete, and exits.
func (d *Driver) worker(ctx context.Context, k int) error {
	input := d.levels[k-1]
	output := d.levels[k]

	if err := d.ensureLevelFilter(k); err != nil {
		return err
	}

	for {
		if d.Cancelled() || ctx.Err() != nil {
			return nil
		}

		if input.IsEmpty() {
			if isComplete(input.State()) {
				break
			}
			time.Sleep(d.cfg.PollInterval)
			continue
		}

		// Coarse backpressure: later levels (k >= 13) pass through
		// unthrottled because their populations are small (spec.md §4.4).
		// The terminal level is never drained by a worker, so the worker
		// producing into it never throttles on its cap.
		if k < 13 && k != d.cfg.MaxLevel && output.AtCap() {
			time.Sleep(d.cfg.BackoffInterval)
			continue
		}

		m, ok := input.Pop()
		if !ok {
			continue
		}
		if k-1 == d.cfg.MaxLevel {
			// Terminal sink already reached upstream; nothing to compose.
			continue
		}
		if err := d.processOneThreaded(ctx, k-1, m); err != nil {
			return err
		}
	}

	d.retireLevel(k - 1)
	output.MarkDraining()
	return nil
}

// isComplete reports whether a level's state signals "no further molecules
// will ever be pushed into this level" (Draining or Retired both qualify).
func isComplete(s State) bool {
	return s == Draining || s == Retired
}

// processOneThreaded mirrors processOne but admits into level k+1 using the
// shared admit pipeline; split out only so the threaded worker's naming
// (input/output) stays distinct from the serial cascade's.
func (d *Driver) processOneThreaded(ctx context.Context, k int, m *molecule.Molecule) error {
	for _, f := range d.baseByID {
		base := molecule.NewFromFragment(f, d.numFragments)
		children := molecule.Compose(m, base, d.additivePreFilterReject, d.estimateDescriptors)
		for _, child := range children {
			admitted, err := d.admitChild(ctx, k+1, child)
			if err != nil {
				return err
			}
			if admitted {
				d.levels[k+1].Push(child)
			}
		}
	}
	return nil
}
