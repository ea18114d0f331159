// Package chemoracle is the default, in-process ChemOracle adapter (spec.md
// §6, SPEC_FULL.md §4.9). It is adapted from the teacher's src/molecule
// package: the periodic-table lookup below is a trimmed descendant of
// molecule/elements.go's element table, restricted to the elements this
// domain's fragment files actually use.
package chemoracle

// element holds the reference data needed for descriptor estimation and
// canonical rendering: atomic number and standard atomic mass.
type element struct {
	symbol string
	number int
	mass   float64
}

// periodicTable is keyed by element symbol. Only main-group elements common
// in drug-like fragments are populated; unknown symbols fall back to mass 0,
// number 0 (they still emit their own symbol in the canonical string).
var periodicTable = map[string]element{
	"H":  {"H", 1, 1.008},
	"B":  {"B", 5, 10.81},
	"C":  {"C", 6, 12.011},
	"N":  {"N", 7, 14.007},
	"O":  {"O", 8, 15.999},
	"F":  {"F", 9, 18.998},
	"Na": {"Na", 11, 22.990},
	"Mg": {"Mg", 12, 24.305},
	"Si": {"Si", 14, 28.085},
	"P":  {"P", 15, 30.974},
	"S":  {"S", 16, 32.06},
	"Cl": {"Cl", 17, 35.45},
	"K":  {"K", 19, 39.098},
	"Ca": {"Ca", 20, 40.078},
	"Br": {"Br", 35, 79.904},
	"I":  {"I", 53, 126.904},
}

// atomicNumber returns the atomic number for an element symbol, or 0 if unknown.
func atomicNumber(symbol string) int {
	if e, ok := periodicTable[symbol]; ok {
		return e.number
	}
	return 0
}

// atomicMass returns the standard atomic mass for an element symbol, or 0 if unknown.
func atomicMass(symbol string) float64 {
	if e, ok := periodicTable[symbol]; ok {
		return e.mass
	}
	return 0
}
