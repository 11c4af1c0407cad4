package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"vecino/internal/platform/config"
)

func TestNewDerivesPathsAndDefaults(t *testing.T) {
	t.Parallel()
	if _, err := config.New(""); err == nil {
		t.Fatalf("empty home should fail")
	}
	cfg, err := config.New("/tmp/vecino-home")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join("/tmp/vecino-home", "vecino.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath)
	}
	if cfg.Location.Timeout != 15*time.Second || cfg.Location.MaxAge != 10*time.Second {
		t.Fatalf("unexpected location defaults: %+v", cfg.Location)
	}
	if cfg.Evidence.Concurrency != 1 {
		t.Fatalf("evidence uploads should default to sequential")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvBaseURL, "")
	cfg, err := config.Load(home, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != config.DefaultBaseURL {
		t.Fatalf("expected default base url, got %s", cfg.API.BaseURL)
	}
}

func TestLoadOverlaysYAMLAndEnv(t *testing.T) {
	home := t.TempDir()
	raw := `
api:
  base_url: http://localhost:8080/api/v1/
  timeout: 5s
store:
  backend: sqlite
location:
  provider: static
  timeout: 2s
  max_age: 1s
  seed: 42
  bounds:
    min_lat: -33.5
    max_lat: -33.4
    min_lon: -70.7
    max_lon: -70.6
evidence:
  concurrency: 3
log:
  level: debug
`
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(config.EnvLogLevel, "trace")
	t.Setenv(config.EnvBaseURL, "")
	cfg, err := config.Load(home, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8080/api/v1" {
		t.Fatalf("trailing slash should be trimmed, got %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second || cfg.Store.Backend != config.StoreSQLite {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if cfg.Location.Seed == nil || *cfg.Location.Seed != 42 {
		t.Fatalf("seed not decoded: %+v", cfg.Location.Seed)
	}
	if cfg.Location.Bounds.MinLat != -33.5 || cfg.Evidence.Concurrency != 3 {
		t.Fatalf("nested sections not decoded: %+v", cfg)
	}
	if cfg.Log.Level != "trace" {
		t.Fatalf("env should override yaml log level, got %s", cfg.Log.Level)
	}
}

func TestLoadRejectsUnknownKeysAndInvalidValues(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvBaseURL, "")
	path := filepath.Join(home, "custom.yaml")
	if err := os.WriteFile(path, []byte("api:\n  bogus: 1\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(home, path); err == nil {
		t.Fatalf("unknown keys must be rejected")
	}
	if err := os.WriteFile(path, []byte("location:\n  bounds:\n    min_lat: 10\n    max_lat: 5\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(home, path); err == nil {
		t.Fatalf("inverted bounds must be rejected")
	}
	if err := os.WriteFile(path, []byte("location:\n  provider: plugin\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(home, path); err == nil {
		t.Fatalf("plugin provider without a binary must be rejected")
	}
	if err := os.WriteFile(path, []byte("location:\n  provider: static\n  fixed:\n    latitude: 120\n    longitude: 0\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(home, path); err == nil {
		t.Fatalf("out of range static fix must be rejected")
	}
}
