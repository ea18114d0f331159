package chemoracle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cx-luo/synthline/internal/atom"
)

// Formula renders the Hill-system molecular formula for a raw atom/bond list,
// for callers (e.g. internal/sink) that want a human-readable structure
// record without going through the full ChemOracle port.
func Formula(atoms []atom.Atom, bonds []atom.Bond) string {
	return grossFormula(buildGraphFrom(atoms, bonds))
}

// grossFormula renders g's Hill-system molecular formula: carbon first, then
// hydrogen, then every other element alphabetically by symbol. Adapted from
// the teacher's src/molecule/gross_formula.go (CollectGross + GrossUnitsToStringHill),
// generalized from that package's isotope/R-site/polymer-unit model — none of
// which this domain's fragments carry — down to a plain element/count map.
func grossFormula(g *molGraph) string {
	counts := make(map[string]int)
	for i, sym := range g.element {
		if sym == "" {
			continue
		}
		counts[sym]++
		if h := g.implicitH(i); h > 0 {
			counts["H"] += h
		}
	}
	return hillString(counts)
}

func hillString(counts map[string]int) string {
	hasCarbon := counts["C"] > 0

	type entry struct {
		symbol string
		count  int
	}
	entries := make([]entry, 0, len(counts))
	for sym, n := range counts {
		if n > 0 {
			entries = append(entries, entry{symbol: sym, count: n})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if hasCarbon {
			if a.symbol == "C" {
				return b.symbol != "C"
			}
			if b.symbol == "C" {
				return false
			}
			if a.symbol == "H" {
				return b.symbol != "H"
			}
			if b.symbol == "H" {
				return false
			}
		}
		return a.symbol < b.symbol
	})

	var parts []string
	for _, e := range entries {
		if e.count == 1 {
			parts = append(parts, e.symbol)
		} else {
			parts = append(parts, fmt.Sprintf("%s%d", e.symbol, e.count))
		}
	}
	return strings.Join(parts, "")
}
