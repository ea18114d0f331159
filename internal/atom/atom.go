// Package atom implements the tagged-union Atom value type and the
// mayConnect connection-compatibility predicate (spec.md §3, §4.1).
//
// Design Notes §9 calls for collapsing the original's polymorphism across
// Atom / ConnectableAtom / LinkerStub / RigidStub into a single tagged
// variant with one mayConnect function; that collapse is this file.
package atom

import "github.com/cx-luo/synthline/internal/atomtype"

// Kind discriminates the tagged union.
type Kind int

const (
	// Simple atoms have no remaining capacity to form external bonds.
	Simple Kind = iota
	// LinkerStub belongs to a linker fragment.
	LinkerStub
	// RigidStub belongs to a rigid fragment.
	RigidStub
)

// Atom is the tagged-union value type collapsing Simple / LinkerStub /
// RigidStub. Fields not meaningful to a given Kind are left zero.
type Atom struct {
	Kind Kind
	Type atomtype.AtomType

	// MaxConnect is the total external bonds this stub allows. Simple atoms
	// carry 0 and are never eligible for mayConnect.
	MaxConnect int
	// NumExternal is the number of external bonds already formed.
	NumExternal int

	// AllowList is populated only for RigidStub: the set of AtomTypes this
	// stub may bond to.
	AllowList atomtype.AllowList

	// FragmentID is stored directly on the stub (Design Notes §9) instead of
	// a back-pointer to the owning Fragment.
	FragmentID int

	// ConnectionID is assigned once by the loader when the owning fragment
	// is ingested and is stable thereafter; the loader numbers stubs within
	// each fragment file, and nothing in the core reads it.
	ConnectionID uint64
}

// IsStub reports whether a is a LinkerStub or RigidStub (not Simple).
func (a Atom) IsStub() bool {
	return a.Kind == LinkerStub || a.Kind == RigidStub
}

// HasCapacity reports whether a still has remaining bonding capacity.
func (a Atom) HasCapacity() bool {
	return a.NumExternal < a.MaxConnect
}

// MayConnect implements the predicate of spec.md §4.1. It is symmetric by
// construction: swapping a and b yields the same result for every branch.
func MayConnect(a, b Atom) bool {
	if !a.IsStub() || !b.IsStub() {
		return false
	}
	if !a.HasCapacity() || !b.HasCapacity() {
		return false
	}
	if a.Kind == LinkerStub && b.Kind == LinkerStub {
		return false
	}
	if a.Kind == LinkerStub && b.Kind == RigidStub {
		return b.AllowList.Contains(a.Type)
	}
	if a.Kind == RigidStub && b.Kind == LinkerStub {
		return a.AllowList.Contains(b.Type)
	}
	// both RigidStub
	return a.AllowList.Contains(b.Type) && b.AllowList.Contains(a.Type)
}

// Bond is an ordered pair of atom indices within a molecule plus a bond
// order in {1,2,3}. Indices are local to the owning molecule and stable for
// that molecule's lifetime (spec.md §3).
type Bond struct {
	Beg, End int
	Order    int
}
