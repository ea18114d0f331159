package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cx-luo/synthline/internal/atom"
	"github.com/cx-luo/synthline/internal/errs"
	"github.com/cx-luo/synthline/internal/fragment"
	"github.com/cx-luo/synthline/internal/loader"
)

func writeFragmentFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoaderAssignsDenseFragmentIDsRigidsFirst(t *testing.T) {
	dir := t.TempDir()
	linkerPath := writeFragmentFile(t, dir, "linker1.frag", "NAME amine\nATOM 0 N LINKER 2\n")
	rigidPath := writeFragmentFile(t, dir, "rigid1.frag", "NAME benzene\nATOM 0 C RIGID N\n")

	l := loader.New([]string{linkerPath, rigidPath})
	ctx := context.Background()

	first, ok, err := l.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, fragment.Rigid, first.Kind)
	require.Equal(t, 0, first.FragmentID)

	second, ok, err := l.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, fragment.Linker, second.Kind)
	require.Equal(t, 1, second.FragmentID)

	_, ok, err = l.Next(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLoaderParsesAtomsAndBonds(t *testing.T) {
	dir := t.TempDir()
	path := writeFragmentFile(t, dir, "rigid1.frag", `
NAME diamine
ATOM 0 C RIGID N,O
ATOM 1 C SIMPLE
BOND 0 1 1
`)
	l := loader.New([]string{path})
	f, ok, err := l.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "diamine", f.Name)
	require.Len(t, f.Atoms, 2)
	require.Equal(t, atom.RigidStub, f.Atoms[0].Kind)
	require.Len(t, f.Atoms[0].AllowList, 2)
	require.Equal(t, atom.Simple, f.Atoms[1].Kind)
	require.Len(t, f.Bonds, 1)
}

func TestLoaderRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFragmentFile(t, dir, "rigid1.frag", "ATOM notanumber C RIGID N\n")
	l := loader.New([]string{path})
	_, _, err := l.Next(context.Background())
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.InputMalformed))
}

func TestLoaderRejectsFragmentWithNoAtoms(t *testing.T) {
	dir := t.TempDir()
	path := writeFragmentFile(t, dir, "rigid1.frag", "NAME empty\n")
	l := loader.New([]string{path})
	_, _, err := l.Next(context.Background())
	require.Error(t, err)
}
