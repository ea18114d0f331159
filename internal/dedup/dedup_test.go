package dedup_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cx-luo/synthline/internal/config"
	"github.com/cx-luo/synthline/internal/dedup"
)

func newTestCascade(t *testing.T) *dedup.Cascade {
	cfg := config.Default()
	c, err := dedup.NewCascade(cfg)
	require.NoError(t, err)
	require.NoError(t, c.OpenLevel(3))
	return c
}

func TestAdmitOnceThenReject(t *testing.T) {
	c := newTestCascade(t)
	require.True(t, c.Admit(3, "CCO"))
	require.False(t, c.Admit(3, "CCO"))
}

func TestAdmitDistinctIdentitiesIndependent(t *testing.T) {
	c := newTestCascade(t)
	require.True(t, c.Admit(3, "CCO"))
	require.True(t, c.Admit(3, "CCN"))
}

func TestAdmitFalseWhenLevelNotOpened(t *testing.T) {
	c := newTestCascade(t)
	require.False(t, c.Admit(7, "CCO"))
}

// False negatives must never occur: every admitted identity must test
// present in both the level and global filters afterward (testable property 10).
func TestNoFalseNegatives(t *testing.T) {
	c := newTestCascade(t)
	for i := 0; i < 500; i++ {
		id := randIdentity(i)
		if c.Admit(3, id) {
			require.True(t, c.ContainsLevel(3, id))
			require.True(t, c.ContainsGlobal(id))
		}
	}
}

// Concurrent admits of the same identity must admit it exactly once: the
// coarse lock-ordered critical section in Admit must prevent the race two
// independently-locked test-then-add calls would allow.
func TestAdmitConcurrentSameIdentityExactlyOnce(t *testing.T) {
	c := newTestCascade(t)
	const n = 64
	var wg sync.WaitGroup
	results := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Admit(3, "shared-identity")
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, r := range results {
		if r {
			admitted++
		}
	}
	require.Equal(t, 1, admitted)
}

func randIdentity(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, 8)
	for j := range b {
		b[j] = letters[(i*31+j*7)%len(letters)]
	}
	return string(b)
}
