package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cx-luo/synthline/internal/config"
)

// fakeFlags reports a fixed set of flag names as "changed", independent of
// the values applyFlagOverrides is called with.
type fakeFlags struct {
	changed map[string]bool
}

func (f fakeFlags) Changed(name string) bool { return f.changed[name] }

func TestApplyFlagOverridesOnlyTouchesChangedFlags(t *testing.T) {
	cfg := config.Default()
	original := cfg.MaxLevel

	flags := fakeFlags{changed: map[string]bool{"mw": true}}
	applyFlagOverrides(&cfg, flags, "", "", "", 0, 250, 0, 0, 0, 99, 0, false, false, false, 0)

	require.Equal(t, 250.0, cfg.DrugLikeness.MaxMW)
	require.Equal(t, original, cfg.MaxLevel, "hl was not marked changed, so maxLevel must stay at its default")
}

func TestApplyFlagOverridesModeSelection(t *testing.T) {
	cfg := config.Default()
	flags := fakeFlags{}
	applyFlagOverrides(&cfg, flags, "", "", "", 0, 0, 0, 0, 0, 0, 0, false, false, true, 0)
	require.Equal(t, config.Threaded, cfg.Mode)

	cfg2 := config.Default()
	cfg2.Mode = config.Threaded
	applyFlagOverrides(&cfg2, flags, "", "", "", 0, 0, 0, 0, 0, 0, 0, false, true, false, 0)
	require.Equal(t, config.Serial, cfg2.Mode)
}

func TestApplyFlagOverridesAppliesEveryChangedField(t *testing.T) {
	cfg := config.Default()
	flags := fakeFlags{changed: map[string]bool{
		"o": true, "odir": true, "v": true, "tc": true, "mw": true, "hd": true,
		"ha": true, "lp": true, "hl": true, "prob-level": true, "smi-only": true,
		"pool": true,
	}}
	applyFlagOverrides(&cfg, flags, "out.txt", "custom", "validation.txt",
		0.5, 400, 3, 8, 4.5, 7, 6, true, false, false, 4)

	require.Equal(t, "out.txt", cfg.OutputFile)
	require.Equal(t, "custom", cfg.OutputDirSuffix)
	require.Equal(t, "validation.txt", cfg.ValidationFile)
	require.Equal(t, 0.5, cfg.IdentityMatchThreshold)
	require.Equal(t, 400.0, cfg.DrugLikeness.MaxMW)
	require.Equal(t, 3.0, cfg.DrugLikeness.MaxHBD)
	require.Equal(t, 8.0, cfg.DrugLikeness.MaxHBA1)
	require.Equal(t, 4.5, cfg.DrugLikeness.MaxLogP)
	require.Equal(t, 7, cfg.MaxLevel)
	require.Equal(t, int64(6), cfg.Probabilistic.StartLevel)
	require.True(t, cfg.SMIOnly)
	require.Equal(t, 4, cfg.OraclePoolSize)
}

func TestReadValidationIdentityTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "validation.txt")
	require.NoError(t, os.WriteFile(path, []byte("  CC(=O)O  \n"), 0o644))

	identity, err := readValidationIdentity(path)
	require.NoError(t, err)
	require.Equal(t, "CC(=O)O", identity)
}

func TestCombineErrs(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	require.Nil(t, combineErrs(nil, nil))
	require.Equal(t, errA, combineErrs(errA, nil))
	require.Equal(t, errB, combineErrs(nil, errB))
	require.Error(t, combineErrs(errA, errB))
}
