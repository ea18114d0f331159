// Package molecule implements the in-flight Molecule value type and the
// Composer primitive (spec.md §3, §4.2).
package molecule

import (
	"github.com/cx-luo/synthline/internal/atom"
	"github.com/cx-luo/synthline/internal/fragment"
)

// Molecule is the current in-flight assembly: atoms, bonds, a fragment
// multiset, estimated descriptors, and a canonical identity obtained lazily
// from the ChemOracle (spec.md §3).
//
// Molecule is a value type moved through level queues (Design Notes §9):
// there is no raw-pointer ownership, and destruction after dispatch is
// ordinary garbage collection once the last reference is dropped.
type Molecule struct {
	Atoms []atom.Atom
	Bonds []atom.Bond

	// FragmentCounts has length R+L; entry i is the number of copies of
	// fragment i used to build this molecule (spec.md §3, invariant 1).
	FragmentCounts []int

	Descriptors fragment.Descriptors

	// identity is the canonical identity string, filled in by the caller
	// (internal/pipeline) after a ChemOracle.canonicalize call. It is cached
	// here rather than recomputed so the dedup cascade and the Sink observe
	// the same string.
	identity    string
	hasIdentity bool
}

// Size returns the number of fragments used to build m (sum of FragmentCounts).
func (m *Molecule) Size() int {
	n := 0
	for _, c := range m.FragmentCounts {
		n += c
	}
	return n
}

// Identity returns the cached canonical identity and whether it has been set.
func (m *Molecule) Identity() (string, bool) {
	return m.identity, m.hasIdentity
}

// SetIdentity caches the canonical identity string produced by the ChemOracle.
func (m *Molecule) SetIdentity(id string) {
	m.identity = id
	m.hasIdentity = true
}

// NewFromFragment seeds a level-1 molecule from a single base fragment. Atoms
// and bonds are copied so the fragment's own atom slice is never aliased by
// a mutable molecule (fragments are immutable and shared across the run).
func NewFromFragment(f *fragment.Fragment, numFragments int) *Molecule {
	atoms := make([]atom.Atom, len(f.Atoms))
	copy(atoms, f.Atoms)
	bonds := make([]atom.Bond, len(f.Bonds))
	copy(bonds, f.Bonds)

	counts := make([]int, numFragments)
	counts[f.FragmentID] = 1

	return &Molecule{
		Atoms:          atoms,
		Bonds:          bonds,
		FragmentCounts: counts,
		Descriptors:    f.Descriptors,
	}
}

// AsSource adapts a Fragment to the same shape Compose expects for its A/B
// arguments, so a base fragment can be composed against just as a
// prior-level Molecule can (spec.md §4.2: "either may be a base fragment or
// a prior-level molecule").
func AsSource(f *fragment.Fragment, numFragments int) *Molecule {
	return NewFromFragment(f, numFragments)
}

// Compose implements the Composer of spec.md §4.2: it produces, for two
// molecules A and B, an ordered sequence of new molecules, one per
// compatible stub pair. additivePreFilterReject is the additive
// drug-likeness pre-filter (internal/gates); passing it in here (rather than
// importing internal/gates directly) keeps this package free of the gates'
// config dependency and makes the pre-filter trivially fakeable in tests.
//
// Enumeration order is (outer: i over A's atoms ascending) x (inner: j over
// B's atoms ascending), matching spec.md §4.2's determinism requirement.
func Compose(a, b *Molecule, additivePreFilterReject func(a, b fragment.Descriptors) bool, estimateDescriptors func(a, b fragment.Descriptors) fragment.Descriptors) []*Molecule {
	if additivePreFilterReject(a.Descriptors, b.Descriptors) {
		return nil
	}

	var out []*Molecule
	offset := len(a.Atoms)

	for i := range a.Atoms {
		for j := range b.Atoms {
			if !atom.MayConnect(a.Atoms[i], b.Atoms[j]) {
				continue
			}
			out = append(out, composeOne(a, b, i, j, offset, estimateDescriptors))
		}
	}
	return out
}

// composeOne builds the single child molecule resulting from bonding A's
// atom i to B's atom j, per the steps of spec.md §4.2.
func composeOne(a, b *Molecule, i, j, offset int, estimateDescriptors func(a, b fragment.Descriptors) fragment.Descriptors) *Molecule {
	atoms := make([]atom.Atom, 0, len(a.Atoms)+len(b.Atoms))
	atoms = append(atoms, a.Atoms...)
	atoms = append(atoms, b.Atoms...)

	bonds := make([]atom.Bond, 0, len(a.Bonds)+len(b.Bonds)+1)
	bonds = append(bonds, a.Bonds...)
	for _, bd := range b.Bonds {
		bonds = append(bonds, atom.Bond{Beg: bd.Beg + offset, End: bd.End + offset, Order: bd.Order})
	}
	bonds = append(bonds, atom.Bond{Beg: i, End: offset + j, Order: 1})

	atoms[i].NumExternal++
	atoms[offset+j].NumExternal++

	counts := make([]int, len(a.FragmentCounts))
	for k := range counts {
		counts[k] = a.FragmentCounts[k] + b.FragmentCounts[k]
	}

	return &Molecule{
		Atoms:          atoms,
		Bonds:          bonds,
		FragmentCounts: counts,
		Descriptors:    estimateDescriptors(a.Descriptors, b.Descriptors),
	}
}

// NumRigidsLinkers splits a molecule's fragment-count vector into rigid and
// linker totals, given the rigid/linker boundary R (fragmentId < R is
// rigid). Used by the probabilistic rarity filter (spec.md §4.5).
func NumRigidsLinkers(counts []int, numRigids int) (rigids, linkers int) {
	for i, c := range counts {
		if i < numRigids {
			rigids += c
		} else {
			linkers += c
		}
	}
	return
}
