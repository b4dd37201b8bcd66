package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, int64(10), cfg.MakerFeeBps)
	assert.Equal(t, int64(20), cfg.TakerFeeBps)
	assert.Equal(t, "./state", cfg.StateDir)
	assert.Equal(t, 9001, cfg.ListenPort)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SKOLL_MAKER_FEE_BPS", "5")
	t.Setenv("SKOLL_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, int64(5), cfg.MakerFeeBps)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.yaml")
	require.NoError(t, err)
}
