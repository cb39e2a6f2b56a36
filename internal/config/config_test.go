package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.AI.Enabled)
	assert.InDelta(t, 0.55, cfg.AI.ClassifyThreshold, 1e-9)
	assert.InDelta(t, 0.20, cfg.AI.MinScore, 1e-9)
	assert.InDelta(t, 0.15, cfg.AI.QuarterlyMinScore, 1e-9)
	assert.Equal(t, 12, cfg.AI.MaxKPIs)
	assert.Equal(t, 8, cfg.AI.MaxHighlights)
	assert.Equal(t, 4000, cfg.AI.ContextChars)
	assert.Equal(t, 1500, cfg.AI.ClassifyChars)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DOCINTEL_AI_ENABLED", "false")
	t.Setenv("DOCINTEL_AI_MAX_KPIS", "5")
	t.Setenv("DOCINTEL_STORE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, 5, cfg.AI.MaxKPIs)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
