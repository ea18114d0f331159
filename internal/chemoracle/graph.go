package chemoracle

import (
	"github.com/cx-luo/synthline/internal/atom"
	"github.com/cx-luo/synthline/internal/molecule"
)

// typicalValence returns the element's ordinary bonding valence, used to
// estimate implicit hydrogen counts. Adapted from the teacher's
// src/molecule/molecule.go GetImplicitH, generalized from its carbon/
// nitrogen/oxygen special cases to a small per-element table.
var typicalValence = map[string]int{
	"C": 4, "N": 3, "O": 2, "S": 2, "P": 3,
	"F": 1, "Cl": 1, "Br": 1, "I": 1, "H": 1,
}

// molGraph is the adjacency-list view this package computes descriptors and
// a canonical identity from. It is adapted from the teacher's
// src/molecule/molecule.go Molecule/Vertex pair, restricted to the fields
// this domain needs (element, charge, bond order, neighbor list) — no
// coordinates, no stereochemistry, no template/R-group atoms, none of which
// this enumerator's fragments carry.
type molGraph struct {
	element   []string
	charge    []int
	kind      []atom.Kind
	neighbors [][]neighborEdge
}

type neighborEdge struct {
	to    int
	order int
}

func buildGraph(m *molecule.Molecule) *molGraph {
	return buildGraphFrom(m.Atoms, m.Bonds)
}

// buildGraphFrom constructs a molGraph directly from atom/bond slices, so
// both an in-flight Molecule and an immutable Fragment can share one code
// path without an intermediate Molecule allocation.
func buildGraphFrom(atoms []atom.Atom, bonds []atom.Bond) *molGraph {
	n := len(atoms)
	g := &molGraph{
		element:   make([]string, n),
		charge:    make([]int, n),
		kind:      make([]atom.Kind, n),
		neighbors: make([][]neighborEdge, n),
	}
	for i, a := range atoms {
		g.element[i] = a.Type.Element
		g.charge[i] = 0 // fragment-file atoms carry no explicit formal charge in this domain
		g.kind[i] = a.Kind
	}
	for _, b := range bonds {
		g.neighbors[b.Beg] = append(g.neighbors[b.Beg], neighborEdge{to: b.End, order: b.Order})
		g.neighbors[b.End] = append(g.neighbors[b.End], neighborEdge{to: b.Beg, order: b.Order})
	}
	return g
}

// implicitH estimates the implicit hydrogen count on atom i from its
// element's typical valence and its explicit degree, matching the naive
// style of the teacher's GetImplicitH (no aromaticity model here: this
// domain's fragments are not aromatic-flagged).
func (g *molGraph) implicitH(i int) int {
	v, ok := typicalValence[g.element[i]]
	if !ok {
		return 0
	}
	used := 0
	for _, e := range g.neighbors[i] {
		used += e.order
	}
	h := v - used - absInt(g.charge[i])
	if h < 0 {
		return 0
	}
	return h
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
