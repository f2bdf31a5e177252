package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GLEIPNIR_TICK_SIZE", "")
	t.Setenv("GLEIPNIR_LISTEN_ADDR", "")
	t.Setenv("GLEIPNIR_PORT", "")

	cfg := Load()
	assert.Equal(t, defaultTickSize, cfg.TickSize)
	assert.Empty(t, cfg.ListenAddr)
	assert.Equal(t, defaultPort, cfg.Port)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("GLEIPNIR_TICK_SIZE", "0.5")
	t.Setenv("GLEIPNIR_LISTEN_ADDR", "127.0.0.1")
	t.Setenv("GLEIPNIR_PORT", "9100")

	cfg := Load()
	assert.Equal(t, "0.5", cfg.TickSize)
	assert.Equal(t, "127.0.0.1", cfg.ListenAddr)
	assert.Equal(t, 9100, cfg.Port)
}

func TestLoad_BadPort(t *testing.T) {
	t.Setenv("GLEIPNIR_PORT", "not-a-port")
	assert.Equal(t, defaultPort, Load().Port)
}
