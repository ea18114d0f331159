package chemoracle

import (
	"fmt"
	"sort"
	"strings"
)

// canonicalIdentity produces a deterministic line-notation string for g.
//
// This is a simplified Morgan-style canonicalizer, not full graph
// isomorphism (spec.md's Non-goals explicitly exclude general
// graph-isomorphism canonicalization): atom invariants are refined by
// iterated neighbor-invariant comparison until the partition stabilizes or
// an iteration cap is reached, ties are broken by smallest atom index, and
// the result is emitted via a canonical-order DFS with ring-closure labels
// for back edges. Two isomorphic graphs with a richer symmetry group than
// this refinement distinguishes could in principle collide; spec.md assigns
// all responsibility for chemical-equivalence correctness to the oracle, and
// documents this tradeoff (DESIGN.md).
func canonicalIdentity(g *molGraph) string {
	n := len(g.element)
	if n == 0 {
		return ""
	}

	inv := refineInvariants(g, initialInvariants(g))

	visited := make([]bool, n)
	ringLabels := make(map[[2]int]int)
	nextRingLabel := 1
	var sb strings.Builder

	var dfs func(cur, parent int)
	dfs = func(cur, parent int) {
		visited[cur] = true
		sb.WriteString(g.element[cur])

		neighbors := make([]neighborEdge, len(g.neighbors[cur]))
		copy(neighbors, g.neighbors[cur])
		sort.Slice(neighbors, func(a, b int) bool {
			ea, eb := neighbors[a], neighbors[b]
			if inv[ea.to] != inv[eb.to] {
				return inv[ea.to] < inv[eb.to]
			}
			if ea.order != eb.order {
				return ea.order < eb.order
			}
			return ea.to < eb.to
		})

		skippedParent := false
		var toVisit []neighborEdge
		for _, e := range neighbors {
			if e.to == parent && !skippedParent {
				skippedParent = true
				continue
			}
			if visited[e.to] {
				key := ringKey(cur, e.to)
				lbl, ok := ringLabels[key]
				if !ok {
					lbl = nextRingLabel
					nextRingLabel++
					ringLabels[key] = lbl
				}
				sb.WriteString(bondSymbol(e.order))
				fmt.Fprintf(&sb, "%%%d", lbl)
				continue
			}
			toVisit = append(toVisit, e)
		}

		for i, e := range toVisit {
			branch := i < len(toVisit)-1
			if branch {
				sb.WriteString("(")
			}
			sb.WriteString(bondSymbol(e.order))
			dfs(e.to, cur)
			if branch {
				sb.WriteString(")")
			}
		}
	}

	dfs(smallestInvariant(inv, nil), -1)
	for {
		next := smallestInvariant(inv, visited)
		if next < 0 {
			break
		}
		sb.WriteString(".")
		dfs(next, -1)
	}

	return sb.String()
}

func ringKey(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}

func bondSymbol(order int) string {
	switch order {
	case 2:
		return "="
	case 3:
		return "#"
	default:
		return "-"
	}
}

// smallestInvariant returns the unvisited atom with the smallest invariant
// (ties broken by index, since inv values are already index-stable integers
// assigned by rank). Returns -1 if every atom is visited.
func smallestInvariant(inv []int64, visited []bool) int {
	best := -1
	for i, v := range inv {
		if visited != nil && visited[i] {
			continue
		}
		if best == -1 || v < inv[best] {
			best = i
		}
	}
	return best
}

// initialInvariants seeds each atom's invariant from its atomic number,
// degree, and formal charge.
func initialInvariants(g *molGraph) []int64 {
	inv := make([]int64, len(g.element))
	for i := range inv {
		inv[i] = int64(atomicNumber(g.element[i]))*1000 + int64(len(g.neighbors[i]))*10 + int64(g.charge[i]+5)
	}
	return inv
}

// refineInvariants iteratively refines atom invariants by the sorted
// multiset of neighbor invariants, re-ranking to small dense integers each
// round, until the partition stabilizes or the iteration cap (one pass per
// atom, the maximum diameter any coloring can take to converge) is reached.
func refineInvariants(g *molGraph, inv []int64) []int64 {
	n := len(inv)
	for iter := 0; iter < n+1; iter++ {
		sigs := make([]string, n)
		for i := 0; i < n; i++ {
			neigh := make([]int64, 0, len(g.neighbors[i]))
			for _, e := range g.neighbors[i] {
				neigh = append(neigh, inv[e.to]*10+int64(e.order))
			}
			sort.Slice(neigh, func(a, b int) bool { return neigh[a] < neigh[b] })
			sigs[i] = fmt.Sprintf("%d|%v", inv[i], neigh)
		}

		rank := rankSignatures(sigs)
		next := make([]int64, n)
		changed := false
		for i := range next {
			next[i] = rank[sigs[i]]
			if next[i] != inv[i] {
				changed = true
			}
		}
		inv = next
		if !changed {
			break
		}
	}
	return inv
}

// rankSignatures assigns each distinct signature a dense rank in sorted
// order, so invariants stay small and the refinement is deterministic.
func rankSignatures(sigs []string) map[string]int64 {
	uniq := make(map[string]bool, len(sigs))
	for _, s := range sigs {
		uniq[s] = true
	}
	list := make([]string, 0, len(uniq))
	for s := range uniq {
		list = append(list, s)
	}
	sort.Strings(list)
	rank := make(map[string]int64, len(list))
	for i, s := range list {
		rank[s] = int64(i)
	}
	return rank
}
