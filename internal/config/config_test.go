package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "BACKEND_URL", "BACKEND_API_KEY", "BACKEND_TIMEOUT_SECONDS", "FALLBACK_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.BackendConfigured() {
		t.Error("backend should not be configured by default")
	}
	if cfg.BackendTimeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.BackendTimeout)
	}
	if !cfg.FallbackEnabled {
		t.Error("fallback should default to enabled")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("BACKEND_URL", "http://localhost:11434")
	t.Setenv("BACKEND_API_KEY", "secret")
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "5")
	t.Setenv("FALLBACK_ENABLED", "false")

	cfg := Load()

	if cfg.Port != "9100" {
		t.Errorf("port = %q", cfg.Port)
	}
	if !cfg.BackendConfigured() || cfg.BackendURL != "http://localhost:11434" {
		t.Errorf("backend url = %q", cfg.BackendURL)
	}
	if cfg.BackendAPIKey != "secret" {
		t.Errorf("api key = %q", cfg.BackendAPIKey)
	}
	if cfg.BackendTimeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.BackendTimeout)
	}
	if cfg.FallbackEnabled {
		t.Error("fallback should be disabled")
	}
}

func TestLoadInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("FALLBACK_ENABLED", "maybe")

	cfg := Load()

	if cfg.BackendTimeout != 30*time.Second {
		t.Errorf("timeout = %v, want default 30s", cfg.BackendTimeout)
	}
	if !cfg.FallbackEnabled {
		t.Error("unparseable FALLBACK_ENABLED should keep the default")
	}
}
