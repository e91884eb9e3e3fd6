// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
)

// Defaults used when the environment provides nothing.
const (
	DefaultPort       = "8080"
	DefaultSTUN       = "stun:stun.l.google.com:19302"
	DefaultContainer  = "seismic-dev-container"
	DefaultAutoCreate = false
)

// Config holds everything the server needs at startup.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// AutoCreateRooms controls whether joinRoom creates a missing room
	// instead of replying roomNotFound.
	AutoCreateRooms bool

	// STUNServer is handed to clients in the welcome message.
	STUNServer string

	// Azure Blob Storage settings for the chunk upload path. An empty
	// connection string selects the in-memory store.
	AzureConnectionString string
	AzureContainer        string
}

// Load reads configuration from environment variables, falling back to
// defaults. Priority: environment > default.
func Load() *Config {
	return &Config{
		Port:                  envOr("PORT", DefaultPort),
		AutoCreateRooms:       envBool("AUTO_CREATE_ROOMS", DefaultAutoCreate),
		STUNServer:            envOr("STUN_SERVER", DefaultSTUN),
		AzureConnectionString: os.Getenv("AZURE_STORAGE_CONNECTION_STRING"),
		AzureContainer:        envOr("AZURE_STORAGE_CONTAINER", DefaultContainer),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
