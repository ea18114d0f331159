package atom_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cx-luo/synthline/internal/atom"
	"github.com/cx-luo/synthline/internal/atomtype"
)

func rigid(el string, allow ...atomtype.AtomType) atom.Atom {
	return atom.Atom{Kind: atom.RigidStub, Type: atomtype.Parse(el), MaxConnect: 1, AllowList: allow}
}

func linker(el string, maxConnect int) atom.Atom {
	return atom.Atom{Kind: atom.LinkerStub, Type: atomtype.Parse(el), MaxConnect: maxConnect}
}

// MayConnect must be symmetric for every branch: swapping operands never
// changes the verdict (spec.md §4.1).
func TestMayConnectSymmetric(t *testing.T) {
	n := atomtype.Parse("N")
	c := atomtype.Parse("C")

	cases := []struct {
		name string
		a, b atom.Atom
	}{
		{"linker-linker", linker("N", 2), linker("C", 2)},
		{"linker-rigid-allowed", linker("N", 2), rigid("C", n)},
		{"linker-rigid-disallowed", linker("N", 2), rigid("C", c)},
		{"rigid-rigid-mutual", rigid("N", c), rigid("C", n)},
		{"rigid-rigid-one-sided", rigid("N", c), rigid("C", c)},
		{"simple-stub", atom.Atom{Kind: atom.Simple}, linker("N", 2)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, atom.MayConnect(tc.a, tc.b), atom.MayConnect(tc.b, tc.a))
		})
	}
}

func TestMayConnectLinkerLinkerAlwaysFalse(t *testing.T) {
	require.False(t, atom.MayConnect(linker("N", 2), linker("N", 2)))
}

func TestMayConnectRespectsAllowList(t *testing.T) {
	n := atomtype.Parse("N")
	o := atomtype.Parse("O")
	require.True(t, atom.MayConnect(linker("N", 1), rigid("C", n)))
	require.False(t, atom.MayConnect(linker("N", 1), rigid("C", o)))
}

func TestMayConnectRespectsCapacity(t *testing.T) {
	n := atomtype.Parse("N")
	l := linker("N", 1)
	l.NumExternal = 1 // at capacity
	require.False(t, atom.MayConnect(l, rigid("C", n)))
}

func TestHasCapacityStrictInequality(t *testing.T) {
	a := atom.Atom{MaxConnect: 1, NumExternal: 1}
	require.False(t, a.HasCapacity(), "numExternal == maxConnect must not have capacity")
	a.NumExternal = 0
	require.True(t, a.HasCapacity())
}
