package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"level-engine/internal/code"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEVEL_DB_PATH", "")
	t.Setenv("LEVEL_MAX_CALL_DEPTH", "")

	cfg := Load()
	assert.Equal(t, "data/db/level.db", cfg.DBPath)
	assert.Equal(t, float32(30), cfg.GridSize)
	assert.Equal(t, code.DefaultMaxCallDepth, cfg.MaxCallDepth)
	assert.False(t, cfg.ScriptDebug)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LEVEL_DB_PATH", "/tmp/x.db")
	t.Setenv("LEVEL_SUBDIVISIONS", "4")
	t.Setenv("LEVEL_SCRIPT_DEBUG", "true")
	t.Setenv("LEVEL_MAX_CALL_DEPTH", "8")
	t.Setenv("LEVEL_GRID_SIZE", "not-a-number")

	cfg := Load()
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, float32(4), cfg.Subdivisions)
	assert.Equal(t, float32(30), cfg.GridSize)

	m := cfg.NewMap("level")
	assert.Equal(t, "level", m.Name)
	assert.Equal(t, float32(4), m.Subdivisions)

	sb := cfg.NewSandbox()
	require.NotNil(t, sb)
	assert.True(t, sb.DebugMode)
	assert.Equal(t, 8, sb.MaxCallDepth)
}
