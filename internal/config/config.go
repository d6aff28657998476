// Package config reads process configuration from the environment once
// at startup. The resulting Config is immutable and injected into the
// components that need it.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all gateway configuration
type Config struct {
	Port            string
	BackendURL      string        // absence means echo-only mode
	BackendAPIKey   string        // optional bearer token for the backend
	BackendTimeout  time.Duration // deadline for one backend call
	FallbackEnabled bool          // false surfaces backend errors as 502/504
}

// Load builds a Config from environment variables, applying defaults
func Load() Config {
	return Config{
		Port:            getEnv("PORT", "8080"),
		BackendURL:      getEnv("BACKEND_URL", ""),
		BackendAPIKey:   getEnv("BACKEND_API_KEY", ""),
		BackendTimeout:  getDurationSeconds("BACKEND_TIMEOUT_SECONDS", 30*time.Second),
		FallbackEnabled: getBool("FALLBACK_ENABLED", true),
	}
}

// BackendConfigured reports whether a backend URL was provided
func (c Config) BackendConfigured() bool {
	return c.BackendURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDurationSeconds(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
