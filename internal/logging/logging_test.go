package logging_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cx-luo/synthline/internal/logging"
)

func TestNewBuildsLoggerWithDefaults(t *testing.T) {
	l, err := logging.New(logging.Config{})
	require.NoError(t, err)
	require.NotNil(t, l)
	l.Info("constructed", logging.String("component", "test"))
}

func TestWithReturnsChildLoggerNotPanicking(t *testing.T) {
	l, err := logging.New(logging.Config{Format: "console"})
	require.NoError(t, err)
	child := l.With(logging.Int("level", 3))
	child.Debug("child entry")
	named := child.Named("driver")
	named.Warn("named entry")
}

func TestNopLoggerDiscardsEverything(t *testing.T) {
	l := logging.NewNop()
	l.Info("discarded", logging.Err(nil))
	require.Equal(t, logging.NewNop(), l.With(logging.String("k", "v")))
}

func TestDefaultLoggerRoundTrip(t *testing.T) {
	l, err := logging.New(logging.Config{})
	require.NoError(t, err)
	logging.SetDefault(l)
	require.Equal(t, l, logging.Default())

	logging.SetDefault(nil)
	require.Equal(t, l, logging.Default(), "SetDefault(nil) must be a no-op")
}

func TestErrFieldHandlesNil(t *testing.T) {
	f := logging.Err(nil)
	require.Equal(t, "error", f.Key)
	require.Equal(t, "<nil>", f.Value)
}
