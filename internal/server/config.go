package server

import (
	"os"
	"strconv"
)

// DefaultAddr is where the engine listens when nothing else is configured;
// clients use the same form to connect.
const DefaultAddr = "127.0.0.1:8080"

// Config holds the server runtime settings.
type Config struct {
	// Addr is the TCP listen address for the chat wire protocol.
	Addr string

	// HTTPAddr, when non-empty, enables the websocket gateway on that
	// address.
	HTTPAddr string

	// HubCapacity bounds the broadcast ring. Non-positive values fall
	// back to DefaultHubCapacity.
	HubCapacity int
}

// NewConfig returns a Config populated with defaults.
func NewConfig() Config {
	return Config{
		Addr:        DefaultAddr,
		HubCapacity: DefaultHubCapacity,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for anything unset or unparsable.
//
//	SONGBIRD_ADDR          TCP listen address
//	SONGBIRD_HTTP_ADDR     websocket gateway address (empty disables it)
//	SONGBIRD_HUB_CAPACITY  broadcast ring capacity
func ConfigFromEnv() Config {
	cfg := NewConfig()

	if addr := os.Getenv("SONGBIRD_ADDR"); addr != "" {
		cfg.Addr = addr
	}

	if addr := os.Getenv("SONGBIRD_HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}

	if raw := os.Getenv("SONGBIRD_HUB_CAPACITY"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.HubCapacity = n
		}
	}

	return cfg
}

func (c Config) sanitized() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.HubCapacity <= 0 {
		c.HubCapacity = DefaultHubCapacity
	}
	return c
}
