package gates_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cx-luo/synthline/internal/config"
	"github.com/cx-luo/synthline/internal/fragment"
	"github.com/cx-luo/synthline/internal/gates"
)

func TestAdditivePreFilterRejectsOverThreshold(t *testing.T) {
	th := config.DefaultDrugLikeness()
	huge := fragment.Descriptors{MW: 1000, HBD: 0, HBA1: 0}
	require.True(t, gates.AdditivePreFilterReject(huge, huge, th))
}

func TestAdditivePreFilterAdmitsSmall(t *testing.T) {
	th := config.DefaultDrugLikeness()
	small := fragment.Descriptors{MW: 50, HBD: 1, HBA1: 1}
	require.False(t, gates.AdditivePreFilterReject(small, small, th))
}

func TestAbsoluteThresholdReject(t *testing.T) {
	th := config.DefaultDrugLikeness()
	require.True(t, gates.AbsoluteThresholdReject(fragment.Descriptors{MW: th.MaxMW + 1}, th))
	require.True(t, gates.AbsoluteThresholdReject(fragment.Descriptors{LogP: th.MaxLogP + 0.1}, th))
	require.False(t, gates.AbsoluteThresholdReject(fragment.Descriptors{MW: th.MaxMW, HBD: th.MaxHBD, HBA1: th.MaxHBA1, LogP: th.MaxLogP}, th))
}

// constUniform always returns the same value, making RarityAdmit deterministic.
type constUniform float64

func (c constUniform) Float64() float64 { return float64(c) }

func TestRarityAdmitVerbatimSign(t *testing.T) {
	cand := gates.RarityCandidate{MW: 428.366, NumRigids: 3, NumLinkers: 3, HBD: 1.9373, HBA1: 6.0570}
	p := gates.RarityDensityProduct(cand)
	require.Greater(t, p, 0.0)

	// u = 0.01 gives a product of 0.01^6 = 1e-12, far below this p (about 1e-5), so it admits.
	require.True(t, gates.RarityAdmit(cand, constUniform(0.01)))
	// u == 1 makes u^6 == 1, which no density product can exceed.
	require.False(t, gates.RarityAdmit(cand, constUniform(1.0)))
}

func TestRarityDensityProductZeroWhenNoRigids(t *testing.T) {
	cand := gates.RarityCandidate{MW: 428.366, NumRigids: 0, NumLinkers: 3, HBD: 1.9373, HBA1: 6.0570}
	require.Equal(t, 0.0, gates.RarityDensityProduct(cand))
}

func TestEstimateDescriptorsAffine(t *testing.T) {
	a := fragment.Descriptors{MW: 100, HBD: 1, HBA1: 1, LogP: 1}
	b := fragment.Descriptors{MW: 100, HBD: 1, HBA1: 1, LogP: 1}
	got := gates.EstimateDescriptors(a, b)
	require.InDelta(t, 6.6746+0.95965*200, got.MW, 1e-9)
	require.InDelta(t, 0.84121+0.59105*2, got.LogP, 1e-9)
}
