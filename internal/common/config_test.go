package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "badger" {
		t.Errorf("Storage.Backend default = %q, want badger", cfg.Storage.Backend)
	}
	if cfg.Resolver.BatchLimit != 10 {
		t.Errorf("Resolver.BatchLimit default = %d, want 10", cfg.Resolver.BatchLimit)
	}
	if got := cfg.Resolver.GetAttemptTimeout(); got != 8*time.Second {
		t.Errorf("attempt timeout default = %v, want 8s", got)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("VALUECHECK_PORT", "9090")
	t.Setenv("VALUECHECK_STORAGE_BACKEND", "memory")
	t.Setenv("FMP_API_KEY", "fmp-from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want 9090", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("Storage.Backend = %q, want memory", cfg.Storage.Backend)
	}
	if cfg.Clients.FMP.APIKey != "fmp-from-env" {
		t.Errorf("FMP.APIKey = %q, want fmp-from-env", cfg.Clients.FMP.APIKey)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "valuecheck.toml")

	content := `
environment = "production"

[server]
port = 9999

[clients.fmp]
api_key = "file-key"
ttl = "12h"

[resolver]
attempt_timeout = "3s"
batch_limit = 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("IsProduction() = false for environment=production")
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Clients.FMP.APIKey != "file-key" {
		t.Errorf("FMP.APIKey = %q, want file-key", cfg.Clients.FMP.APIKey)
	}
	if got := cfg.Clients.FMP.GetTTL(); got != 12*time.Hour {
		t.Errorf("FMP TTL = %v, want 12h", got)
	}
	if got := cfg.Resolver.GetAttemptTimeout(); got != 3*time.Second {
		t.Errorf("attempt timeout = %v, want 3s", got)
	}
	if cfg.Resolver.BatchLimit != 5 {
		t.Errorf("BatchLimit = %d, want 5", cfg.Resolver.BatchLimit)
	}

	// Unset sections keep their defaults.
	if cfg.Clients.Boursorama.BaseURL != "https://www.boursorama.com" {
		t.Errorf("Boursorama.BaseURL = %q, want default", cfg.Clients.Boursorama.BaseURL)
	}
}

func TestLoadConfig_MissingFileIsSkipped(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/valuecheck.toml")
	if err != nil {
		t.Fatalf("LoadConfig should skip missing files, got %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestParseDurationOr(t *testing.T) {
	if got := ParseDurationOr("", time.Minute); got != time.Minute {
		t.Errorf("empty input = %v, want fallback", got)
	}
	if got := ParseDurationOr("bogus", time.Minute); got != time.Minute {
		t.Errorf("malformed input = %v, want fallback", got)
	}
	if got := ParseDurationOr("90s", time.Minute); got != 90*time.Second {
		t.Errorf("valid input = %v, want 90s", got)
	}
}
