// Package gates implements the drug-likeness gates: the additive pre-filter,
// the absolute-threshold filter, and the probabilistic rarity filter
// (spec.md §4.5).
package gates

import (
	"math"

	"github.com/cx-luo/synthline/internal/config"
	"github.com/cx-luo/synthline/internal/fragment"
)

// EstimatePair computes the affine estimate of MW_est, HBD_est, HBA1_est for
// a candidate pair (A,B), used by both the additive pre-filter and the
// post-composition descriptor estimate (spec.md §4.5).
func EstimatePair(a, b fragment.Descriptors) (mw, hbd, hba1 float64) {
	mw = 6.6746 + 0.95965*(a.MW+b.MW)
	hbd = 0.41189 + 0.4898*(a.HBD+b.HBD)
	hba1 = 0.278 + 0.93778*(a.HBA1+b.HBA1)
	return
}

// EstimateLogP computes the affine logP estimate, used only for the
// post-composition descriptor estimate (the additive pre-filter does not use
// logP: "its additive model is too loose", spec.md §4.5).
func EstimateLogP(a, b fragment.Descriptors) float64 {
	return 0.84121 + 0.59105*(a.LogP+b.LogP)
}

// AdditivePreFilterReject is the cheap pre-composition filter of spec.md
// §4.2 step 1 / §4.5: reject pair (A,B) before composition if any estimator
// exceeds its threshold.
func AdditivePreFilterReject(a, b fragment.Descriptors, th config.DrugLikeness) bool {
	mw, hbd, hba1 := EstimatePair(a, b)
	return mw > th.MaxMW || hbd > th.MaxHBD || hba1 > th.MaxHBA1
}

// EstimateDescriptors computes a composed molecule's cached descriptor
// quadruple from its two parents, per spec.md §4.5.
func EstimateDescriptors(a, b fragment.Descriptors) fragment.Descriptors {
	mw, hbd, hba1 := EstimatePair(a, b)
	return fragment.Descriptors{MW: mw, HBD: hbd, HBA1: hba1, LogP: EstimateLogP(a, b)}
}

// AbsoluteThresholdReject reports whether d fails any of the four absolute
// drug-likeness thresholds (spec.md §4.5, testable property 6).
func AbsoluteThresholdReject(d fragment.Descriptors, th config.DrugLikeness) bool {
	return d.MW > th.MaxMW || d.HBD > th.MaxHBD || d.HBA1 > th.MaxHBA1 || d.LogP > th.MaxLogP
}

// normalPDF evaluates the Normal(mu, sigma) density at x.
func normalPDF(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5*z*z) / (sigma * math.Sqrt(2*math.Pi))
}

// logisticPDF evaluates the Logistic(mu, s) density at x.
func logisticPDF(x, mu, s float64) float64 {
	z := (x - mu) / s
	e := math.Exp(-z)
	denom := s * (1 + e) * (1 + e)
	return e / denom
}

// RarityCandidate carries the six quantities the probabilistic rarity
// filter evaluates marginal densities against (spec.md §4.5).
type RarityCandidate struct {
	MW         float64
	NumRigids  float64
	NumLinkers float64
	HBD        float64
	HBA1       float64
}

// RarityDensityProduct computes p, the product of the six marginal
// densities evaluated at the candidate, using the fixed distribution
// parameters of spec.md §4.5. The log-ratio term needs numLinkers and
// numRigids both > 0; when either is 0 that term's density is taken as 0,
// so the whole product is 0.
func RarityDensityProduct(c RarityCandidate) float64 {
	p := normalPDF(c.MW, 428.366, 91.125)
	p *= normalPDF(c.NumRigids, 3.2097, 1.0795)
	p *= logisticPDF(c.NumLinkers, 3.0252, 1.3700)
	if c.NumRigids > 0 && c.NumLinkers > 0 {
		p *= logisticPDF(math.Log(c.NumLinkers/c.NumRigids), -0.0843, 0.4600)
	} else {
		p *= 0
	}
	p *= logisticPDF(c.HBD, 1.9373, 0.7626)
	p *= logisticPDF(c.HBA1, 6.0570, 1.3124)
	return p
}

// UniformSource draws the six independent Uniform(0,1) samples used as the
// rejection threshold. A single interface lets callers plug in a seeded
// PRNG for reproducibility (spec.md §4.5, testable property 7).
type UniformSource interface {
	Float64() float64
}

// RarityAdmit evaluates the probabilistic rarity filter: admit iff p > u,
// where p is the density product and u is the product of six independent
// Uniform(0,1) draws from src (spec.md §4.5). This implements the formula
// verbatim as written in the specification; see DESIGN.md for the divergence
// from the original source's apparent sign inversion.
func RarityAdmit(c RarityCandidate, src UniformSource) bool {
	p := RarityDensityProduct(c)
	u := 1.0
	for i := 0; i < 6; i++ {
		u *= src.Float64()
	}
	return p > u
}
