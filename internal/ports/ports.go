// Package ports defines the three external collaborators the core treats as
// typed ports: FragmentLoader, ChemOracle, and Sink (spec.md §1, §6). The
// core depends only on these interfaces; internal/loader, internal/chemoracle
// and internal/sink supply the default adapters wired in cmd/synth.
package ports

import (
	"context"

	"github.com/cx-luo/synthline/internal/fragment"
	"github.com/cx-luo/synthline/internal/molecule"
)

// FragmentLoader produces the base fragments one at a time. Fragment kind is
// known to the loader; in the default adapter this is a filename convention
// (names beginning with "l" are linkers, "r" are rigids).
type FragmentLoader interface {
	// Next returns the next fragment, or ok == false when the loader is
	// exhausted. A malformed record is returned as an InputMalformed error
	// (internal/errs), which is fatal.
	Next(ctx context.Context) (f *fragment.Fragment, ok bool, err error)
}

// ChemOracle is the sole authority on chemical equivalence and descriptor
// computation. The core never performs its own graph isomorphism; it relies
// entirely on Canonicalize's identity string.
type ChemOracle interface {
	// Canonicalize produces a canonical line-notation identity. Must be
	// deterministic and must ignore 3-D coordinates.
	Canonicalize(ctx context.Context, m *molecule.Molecule) (string, error)

	// Descriptors is used once per base fragment; the core never recomputes
	// descriptors for composed molecules (it estimates instead, §4.5).
	Descriptors(ctx context.Context, f *fragment.Fragment) (fragment.Descriptors, error)

	// IsLipinskiExact is the final acceptance gate the pipeline driver
	// consults before emitting a molecule to the Sink; the core's own gates
	// are advisory only.
	IsLipinskiExact(ctx context.Context, m *molecule.Molecule) (bool, error)
}

// Sink is the external streaming writer that persists accepted molecules. It
// is responsible for file rotation, compression, and 3-D materialization,
// none of which affect the core.
type Sink interface {
	// Emit streams one accepted molecule, identified by its canonical
	// identity string.
	Emit(ctx context.Context, identity string, m *molecule.Molecule) error

	// Flush drains any buffered output without closing the sink. The
	// pipeline driver does not call it; cmd/synth calls Close, which the
	// default adapter also flushes on.
	Flush(ctx context.Context) error

	// Close releases resources held by the sink (open files, writers).
	Close() error
}
