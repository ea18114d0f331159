package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cx-luo/synthline/internal/config"
)

func TestQueueCapForTerminalLevel(t *testing.T) {
	cfg := config.Default()
	cfg.MaxLevel = 5
	cfg.TerminalCap = 42
	require.Equal(t, 42, cfg.QueueCapFor(5))
}

func TestQueueCapForConfiguredLevel(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, 10, cfg.QueueCapFor(3))
}

func TestQueueCapForUnspecifiedLevelUnbounded(t *testing.T) {
	cfg := config.Default()
	cfg.MaxLevel = 30
	require.Equal(t, 0, cfg.QueueCapFor(25))
}

func TestPopulationForKnownAndUnknownLevel(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, uint(500), cfg.PopulationFor(2))
	require.Equal(t, uint(0), cfg.PopulationFor(999))
}

func TestProbabilisticActive(t *testing.T) {
	cfg := config.Default()
	cfg.Probabilistic.StartLevel = 5
	require.False(t, cfg.ProbabilisticActive(4))
	require.True(t, cfg.ProbabilisticActive(5))
	require.True(t, cfg.ProbabilisticActive(6))
}

func TestLoadWithNoConfigFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.Default().MaxLevel, cfg.MaxLevel)
}
