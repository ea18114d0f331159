// Package fragment implements the immutable Fragment building block
// (spec.md §3).
package fragment

import "github.com/cx-luo/synthline/internal/atom"

// Kind distinguishes rigid from linker fragments.
type Kind int

const (
	Rigid Kind = iota
	Linker
)

func (k Kind) String() string {
	if k == Linker {
		return "linker"
	}
	return "rigid"
}

// Descriptors is the estimated/measured descriptor quadruple (molWt, hbd,
// hba1, logP) carried by both Fragment and Molecule (spec.md §3, §4.5).
type Descriptors struct {
	MW   float64
	HBD  float64
	HBA1 float64
	LogP float64
}

// Fragment is immutable after ingestion. FragmentID is dense and 0-based;
// ranges partition as [0,R) = rigids, [R,R+L) = linkers (spec.md §3).
type Fragment struct {
	FragmentID  int
	Kind        Kind
	Name        string
	Atoms       []atom.Atom
	Bonds       []atom.Bond
	Descriptors Descriptors
}

// AtomCount returns the number of atoms in the fragment.
func (f *Fragment) AtomCount() int { return len(f.Atoms) }

// Stubs returns the indices of f's atoms that are connection stubs (as
// opposed to Simple atoms with no remaining external capacity).
func (f *Fragment) Stubs() []int {
	out := make([]int, 0, len(f.Atoms))
	for i, a := range f.Atoms {
		if a.IsStub() {
			out = append(out, i)
		}
	}
	return out
}
