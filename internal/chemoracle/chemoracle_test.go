package chemoracle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cx-luo/synthline/internal/atom"
	"github.com/cx-luo/synthline/internal/atomtype"
	"github.com/cx-luo/synthline/internal/chemoracle"
	"github.com/cx-luo/synthline/internal/config"
	"github.com/cx-luo/synthline/internal/fragment"
	"github.com/cx-luo/synthline/internal/molecule"
)

func ethane() *molecule.Molecule {
	c := atomtype.Parse("C")
	atoms := []atom.Atom{
		{Kind: atom.Simple, Type: c},
		{Kind: atom.Simple, Type: c},
	}
	bonds := []atom.Bond{{Beg: 0, End: 1, Order: 1}}
	f := &fragment.Fragment{FragmentID: 0, Kind: fragment.Rigid, Atoms: atoms, Bonds: bonds}
	return molecule.NewFromFragment(f, 1)
}

func TestCanonicalizeDeterministic(t *testing.T) {
	o := chemoracle.New(config.DefaultDrugLikeness())
	ctx := context.Background()

	id1, err := o.Canonicalize(ctx, ethane())
	require.NoError(t, err)
	id2, err := o.Canonicalize(ctx, ethane())
	require.NoError(t, err)
	require.Equal(t, id1, id2)
	require.NotEmpty(t, id1)
}

func TestDescriptorsEstimatesPositiveMW(t *testing.T) {
	o := chemoracle.New(config.DefaultDrugLikeness())
	c := atomtype.Parse("C")
	f := &fragment.Fragment{
		FragmentID: 0,
		Kind:       fragment.Rigid,
		Atoms:      []atom.Atom{{Kind: atom.Simple, Type: c}},
	}
	d, err := o.Descriptors(context.Background(), f)
	require.NoError(t, err)
	require.Greater(t, d.MW, 0.0)
}

func TestIsLipinskiExact(t *testing.T) {
	o := chemoracle.New(config.DrugLikeness{MaxMW: 500, MaxHBD: 5, MaxHBA1: 10, MaxLogP: 5})
	m := ethane()
	m.Descriptors = fragment.Descriptors{MW: 100, HBD: 0, HBA1: 0, LogP: 1}
	ok, err := o.IsLipinskiExact(context.Background(), m)
	require.NoError(t, err)
	require.True(t, ok)

	m.Descriptors.MW = 600
	ok, err = o.IsLipinskiExact(context.Background(), m)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFormulaHillOrdering(t *testing.T) {
	c := atomtype.Parse("C")
	n := atomtype.Parse("N")
	atoms := []atom.Atom{
		{Kind: atom.Simple, Type: n},
		{Kind: atom.Simple, Type: c},
		{Kind: atom.Simple, Type: c},
	}
	got := chemoracle.Formula(atoms, nil)
	require.Regexp(t, `^C2.*N`, got)
}
