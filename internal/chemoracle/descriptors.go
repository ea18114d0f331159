package chemoracle

import "github.com/cx-luo/synthline/internal/fragment"

// logPContribution is a simple per-element atomic contribution to the
// octanol-water partition coefficient estimate, in the spirit of a Crippen
// atomic-contribution sum. The teacher repo has no logP estimator to adapt
// (its lipinski.go only covers HBD/HBA1/rotatable bonds); this table is new,
// sized to the same naive-proxy fidelity the teacher documents for its own
// descriptor heuristics, not a full Crippen parameterization.
var logPContribution = map[string]float64{
	"C": 0.15, "N": -0.30, "O": -0.30, "S": 0.20, "P": 0.20,
	"F": 0.30, "Cl": 0.45, "Br": 0.60, "I": 0.70, "H": 0.0,
}

// estimateDescriptors computes the descriptor quadruple (MW, HBD, HBA1,
// logP) for a fragment's graph. Used once per base fragment, never for a
// composed molecule (those are estimated affinely, internal/gates).
//
// HBD/HBA1 follow the teacher's lipinski.go naive proxy: an N or O atom
// that still carries at least one implicit hydrogen is a donor; every N or
// O atom, donor or not, counts toward the acceptor total. This is
// explicitly the same "naive"/approximate fidelity the teacher's own
// NumHydrogenBondDonors/NumHydrogenBondAcceptors document, not a precise
// rule engine.
func estimateDescriptors(g *molGraph) fragment.Descriptors {
	var mw, logP float64
	var hbd, hba1 float64

	for i, el := range g.element {
		mw += atomicMass(el)
		h := g.implicitH(i)
		mw += float64(h) * 1.008

		if c, ok := logPContribution[el]; ok {
			logP += c
		}

		if el == "N" || el == "O" {
			hba1++
			if h > 0 {
				hbd++
			}
		}
	}

	return fragment.Descriptors{MW: mw, HBD: hbd, HBA1: hba1, LogP: logP}
}
