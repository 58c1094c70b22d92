package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	require.Equal(t, DefaultAddr, cfg.Addr)
	require.Equal(t, DefaultHubCapacity, cfg.HubCapacity)
	require.Empty(t, cfg.HTTPAddr)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SONGBIRD_ADDR", "127.0.0.1:9999")
	t.Setenv("SONGBIRD_HTTP_ADDR", "127.0.0.1:9998")
	t.Setenv("SONGBIRD_HUB_CAPACITY", "32")

	cfg := ConfigFromEnv()
	require.Equal(t, "127.0.0.1:9999", cfg.Addr)
	require.Equal(t, "127.0.0.1:9998", cfg.HTTPAddr)
	require.Equal(t, 32, cfg.HubCapacity)
}

func TestConfigFromEnvIgnoresInvalidCapacity(t *testing.T) {
	t.Setenv("SONGBIRD_HUB_CAPACITY", "not-a-number")
	require.Equal(t, DefaultHubCapacity, ConfigFromEnv().HubCapacity)

	t.Setenv("SONGBIRD_HUB_CAPACITY", "-5")
	require.Equal(t, DefaultHubCapacity, ConfigFromEnv().HubCapacity)
}

func TestSanitizedFillsZeroValues(t *testing.T) {
	cfg := Config{}.sanitized()
	require.Equal(t, DefaultAddr, cfg.Addr)
	require.Equal(t, DefaultHubCapacity, cfg.HubCapacity)
}
