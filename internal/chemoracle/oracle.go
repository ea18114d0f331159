package chemoracle

import (
	"context"
	"sync"

	"github.com/cx-luo/synthline/internal/config"
	"github.com/cx-luo/synthline/internal/errs"
	"github.com/cx-luo/synthline/internal/fragment"
	"github.com/cx-luo/synthline/internal/molecule"
)

// Oracle is the default, in-process ChemOracle adapter (spec.md §6,
// SPEC_FULL.md §4.9). spec.md §5 treats the chemistry oracle as
// non-reentrant and calls for serializing access through one mutex; Oracle
// honors that even though its own canonicalization routine is pure and
// reentrant, so that an implementation swapped in behind the same interface
// (a real external chemistry service) can rely on the same call discipline.
type Oracle struct {
	mu sync.Mutex
	th config.DrugLikeness
}

// New constructs the default ChemOracle adapter.
func New(th config.DrugLikeness) *Oracle {
	return &Oracle{th: th}
}

// Canonicalize implements ports.ChemOracle.
func (o *Oracle) Canonicalize(_ context.Context, m *molecule.Molecule) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	g := buildGraph(m)
	return canonicalIdentity(g), nil
}

// Descriptors implements ports.ChemOracle. Used once per base fragment
// (spec.md §6); composed molecules are never passed here.
func (o *Oracle) Descriptors(_ context.Context, f *fragment.Fragment) (fragment.Descriptors, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	g := buildGraphFrom(f.Atoms, f.Bonds)
	return estimateDescriptors(g), nil
}

// IsLipinskiExact implements ports.ChemOracle: evaluates m's own cached
// descriptors against the four absolute thresholds. It does not recompute
// descriptors from m's graph, so for a composed molecule it checks the
// affine estimates stored at composition time; it is not a claim of true
// Lipinski-rule precision.
func (o *Oracle) IsLipinskiExact(_ context.Context, m *molecule.Molecule) (bool, error) {
	d := m.Descriptors
	ok := d.MW <= o.th.MaxMW && d.HBD <= o.th.MaxHBD && d.HBA1 <= o.th.MaxHBA1 && d.LogP <= o.th.MaxLogP
	return ok, nil
}

// wrapOracleError classifies an unexpected internal failure as
// errs.OracleTransient, matching spec.md §7/§4.8: a single canonicalize or
// descriptor call failing is treated as a rejected candidate, not fatal.
// The default in-process adapter cannot itself fail (it has no I/O), so this
// exists for the benefit of alternative ChemOracle implementations that
// compose with the same helper.
func wrapOracleError(err error) error {
	if err == nil {
		return nil
	}
	return errs.Wrap(errs.OracleTransient, err, "chemoracle: transient failure")
}
