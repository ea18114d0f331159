package pipeline

import (
	"context"

	"github.com/cx-luo/synthline/internal/errs"
	"github.com/cx-luo/synthline/internal/logging"
	"github.com/cx-luo/synthline/internal/molecule"
)

// RunSerial implements the serial cascade of spec.md §4.4: level 2 is seeded
// by composing every unordered pair of base fragments, then a recursive
// driver consumes level k into level k+1 until level k is empty, yielding to
// level k+1 whenever its queue would exceed its cap, recursing back once
// k+1 drops below cap. Level K is a terminal sink: its queued molecules are
// discarded, never composed further.
func (d *Driver) RunSerial(ctx context.Context) (Result, error) {
	if err := d.seedLevel1(ctx); err != nil {
		return Result{}, err
	}
	d.levels[1].MarkDraining()
	d.retireLevel(1)

	if err := d.seedLevel2(ctx); err != nil {
		return Result{}, err
	}

	if d.cfg.MaxLevel >= 2 {
		if err := d.runLevel(ctx, 2, false); err != nil {
			return Result{}, err
		}
	}

	return d.Result(), nil
}

// runLevel drains level k: it pops molecules and composes them against every
// base fragment, pushing admitted children into level k+1. Whenever level
// k+1 is at its soft cap, it recurses into k+1 (untilBelowCap=true) to free
// space before continuing k. When k itself empties, and untilBelowCap is
// false (this is the outermost call for this level, not a backpressure
// yield), the level retires and the cascade recurses forward into k+1 to
// finish whatever was produced into it.
func (d *Driver) runLevel(ctx context.Context, k int, untilBelowCap bool) error {
	lv := d.levels[k]
	for {
		if d.Cancelled() {
			return nil
		}
		if k != d.cfg.MaxLevel {
			next := d.levels[k+1]
			if next.AtCap() {
				if err := d.runLevel(ctx, k+1, true); err != nil {
					return err
				}
				if d.Cancelled() {
					return nil
				}
				continue
			}
		}

		m, ok := lv.Pop()
		if !ok {
			break
		}
		if k == d.cfg.MaxLevel {
			// Terminal sink: discard without composing further.
			continue
		}
		if err := d.processOne(ctx, k, m); err != nil {
			return err
		}
		if untilBelowCap && !lv.AtCap() {
			return nil
		}
	}

	if untilBelowCap {
		return nil
	}
	d.retireLevel(k)
	if k+1 <= d.cfg.MaxLevel {
		return d.runLevel(ctx, k+1, false)
	}
	return nil
}

// seedLevel1 pushes every base fragment as a level-1 molecule and streams it
// to the Sink directly: level 1 holds no compositions, so none of the
// admit-path gates apply to it (spec.md §4.4, scenario S1).
func (d *Driver) seedLevel1(ctx context.Context) error {
	for _, f := range d.baseByID {
		m := molecule.NewFromFragment(f, d.numFragments)
		identity, err := d.oracle.Canonicalize(ctx, m)
		if err != nil {
			d.logger.Debug("chemoracle canonicalize failed for base fragment", logging.Err(err))
			continue
		}
		m.SetIdentity(identity)
		if err := d.sink.Emit(ctx, identity, m); err != nil {
			return errs.Wrap(errs.SinkWriteFailed, err, "driver: sink emit failed for base fragment")
		}
		d.incrementAccepted(1)
		d.levels[1].Push(m)
	}
	return nil
}

// seedLevel2 composes every unordered pair (i,j) with i<=j of base
// fragments, admitting children through the usual admit pipeline into level
// 2 (spec.md §4.4).
func (d *Driver) seedLevel2(ctx context.Context) error {
	if d.cfg.MaxLevel < 2 {
		return nil
	}
	if err := d.ensureLevelFilter(2); err != nil {
		return err
	}
	for i := 0; i < len(d.baseByID); i++ {
		for j := i; j < len(d.baseByID); j++ {
			a := molecule.NewFromFragment(d.baseByID[i], d.numFragments)
			b := molecule.NewFromFragment(d.baseByID[j], d.numFragments)
			children := molecule.Compose(a, b, d.additivePreFilterReject, d.estimateDescriptors)
			for _, child := range children {
				admitted, err := d.admitChild(ctx, 2, child)
				if err != nil {
					return err
				}
				if admitted {
					d.levels[2].Push(child)
				}
			}
		}
	}
	return nil
}

// processOne composes m (popped from level k's queue) against every base
// fragment, admitting each resulting child into level k+1 (spec.md §4.4).
func (d *Driver) processOne(ctx context.Context, k int, m *molecule.Molecule) error {
	if err := d.ensureLevelFilter(k + 1); err != nil {
		return err
	}
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
