package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CIRCUIT_API_KEY", "CIRCUIT_BASE_URL", "DB_PATH", "DATABASE_URL", "OUTPUT_DIR",
		"POLL_INTERVAL_SECONDS", "MAX_POLL_ATTEMPTS", "READ_RATE_PER_SECOND",
		"WRITE_RATE_PER_SECOND", "HTTP_TIMEOUT_SECONDS", "PORT", "DEPOT_PLACE_ID",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("ROUTEBUILDER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.CircuitBaseURL != DefaultBaseURL {
		t.Fatalf("base url = %q, want %q", cfg.CircuitBaseURL, DefaultBaseURL)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Fatalf("poll interval = %v, want 3s", cfg.PollInterval)
	}
	if cfg.MaxPollAttempts != 40 {
		t.Fatalf("max poll attempts = %d, want 40", cfg.MaxPollAttempts)
	}
	if cfg.Path != "" {
		t.Fatalf("path = %q, want empty when file is missing", cfg.Path)
	}
	if err := cfg.RequireAPIKey(); err == nil {
		t.Fatalf("expected missing api key error")
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "routebuilder.yaml")
	body := "db_path: /tmp/file.db\nmax_poll_attempts: 7\npoll_interval_seconds: 1\nport: \"9000\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ROUTEBUILDER_CONFIG", path)
	t.Setenv("PORT", "9100")
	t.Setenv("CIRCUIT_API_KEY", " key ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DBPath != "/tmp/file.db" {
		t.Fatalf("db path = %q, want /tmp/file.db", cfg.DBPath)
	}
	if cfg.MaxPollAttempts != 7 {
		t.Fatalf("max poll attempts = %d, want 7", cfg.MaxPollAttempts)
	}
	if cfg.Port != "9100" {
		t.Fatalf("port = %q, want env override 9100", cfg.Port)
	}
	if cfg.CircuitAPIKey != "key" {
		t.Fatalf("api key = %q, want trimmed", cfg.CircuitAPIKey)
	}
	if cfg.Path != path {
		t.Fatalf("path = %q, want %q", cfg.Path, path)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"MAX_POLL_ATTEMPTS", "many"},
		{"MAX_POLL_ATTEMPTS", "0"},
		{"READ_RATE_PER_SECOND", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
