package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Empty(t, cfg.DBPath)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 1000, cfg.MaxGames)
	assert.Equal(t, "localhost:8080", cfg.Addr())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BG_HOST", "0.0.0.0")
	t.Setenv("BG_PORT", "9090")
	t.Setenv("BG_WRITE_TIMEOUT", "5s")
	t.Setenv("BG_DB_PATH", "/tmp/bg.db")
	t.Setenv("BG_DEBUG", "true")
	t.Setenv("BG_MAX_GAMES", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "/tmp/bg.db", cfg.DBPath)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 10, cfg.MaxGames)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"BG_PORT":      "70000",
		"BG_MAX_GAMES": "0",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}

	t.Run("unparsable", func(t *testing.T) {
		t.Setenv("BG_READ_TIMEOUT", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
}
