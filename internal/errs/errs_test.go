package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cx-luo/synthline/internal/errs"
)

func TestWrapNilReturnsNil(t *testing.T) {
	require.NoError(t, errs.Wrap(errs.OracleDown, nil, "no cause"))
}

func TestIsMatchesWrappedClass(t *testing.T) {
	err := errs.Wrap(errs.InputMalformed, errors.New("bad atom line"), "loader: parsing")
	require.True(t, errs.Is(err, errs.InputMalformed))
	require.False(t, errs.Is(err, errs.OracleDown))
}

func TestAsRecoversClassThroughJoin(t *testing.T) {
	inner := errs.New(errs.ResourceExhausted, "bloom filter construction failed")
	outer := errors.Join(inner)

	class, ok := errs.As(outer)
	require.True(t, ok)
	require.Equal(t, errs.ResourceExhausted, class)
}

func TestFatalClassification(t *testing.T) {
	require.False(t, errs.CandidateRejected.Fatal())
	require.False(t, errs.OracleTransient.Fatal())
	require.False(t, errs.Cancelled.Fatal())
	require.True(t, errs.InputMalformed.Fatal())
	require.True(t, errs.OracleDown.Fatal())
	require.True(t, errs.SinkWriteFailed.Fatal())
	require.True(t, errs.ResourceExhausted.Fatal())
}

func TestErrorMessageIncludesClassAndCause(t *testing.T) {
	err := errs.Wrap(errs.SinkWriteFailed, errors.New("disk full"), "sink: writing identity line")
	require.Contains(t, err.Error(), "SinkWriteFailed")
	require.Contains(t, err.Error(), "disk full")
}
