package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"linknorm/internal/urlutil"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_DRIVER", "DATABASE_URL", "RENORM_INTERVAL", "MAX_CONCURRENCY", "SHUTDOWN_GRACE", "HTTP_PORT", "LINKNORM_CONFIG"} {
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DatabaseDriver != "sqlite" {
		t.Errorf("expected default DATABASE_DRIVER sqlite, got %s", cfg.DatabaseDriver)
	}
	if cfg.DatabaseURL != "linknorm.db" {
		t.Errorf("expected default DATABASE_URL linknorm.db, got %s", cfg.DatabaseURL)
	}
	if cfg.RenormInterval != 0 {
		t.Errorf("expected default RENORM_INTERVAL 0, got %v", cfg.RenormInterval)
	}
	if cfg.MaxConcurrency != 8 {
		t.Errorf("expected default MAX_CONCURRENCY 8, got %d", cfg.MaxConcurrency)
	}
	if cfg.ShutdownGrace != 10*time.Second {
		t.Errorf("expected default SHUTDOWN_GRACE 10s, got %v", cfg.ShutdownGrace)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("expected default HTTP_PORT 8080, got %s", cfg.HTTPPort)
	}

	opts := cfg.NormalizeOptions()
	if opts != urlutil.DefaultOptions() {
		t.Errorf("expected default options, got %+v", opts)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/linknorm")
	t.Setenv("RENORM_INTERVAL", "30m")
	t.Setenv("MAX_CONCURRENCY", "16")
	t.Setenv("SHUTDOWN_GRACE", "20s")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DatabaseDriver != "postgres" {
		t.Errorf("expected DATABASE_DRIVER postgres, got %s", cfg.DatabaseDriver)
	}
	if cfg.DatabaseURL != "postgres://localhost/linknorm" {
		t.Errorf("expected custom DATABASE_URL, got %s", cfg.DatabaseURL)
	}
	if cfg.RenormInterval != 30*time.Minute {
		t.Errorf("expected RENORM_INTERVAL 30m, got %v", cfg.RenormInterval)
	}
	if cfg.MaxConcurrency != 16 {
		t.Errorf("expected MAX_CONCURRENCY 16, got %d", cfg.MaxConcurrency)
	}
	if cfg.ShutdownGrace != 20*time.Second {
		t.Errorf("expected SHUTDOWN_GRACE 20s, got %v", cfg.ShutdownGrace)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("expected HTTP_PORT 9090, got %s", cfg.HTTPPort)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	content := `
normalization:
  sort_query: false
  strip_protocol: false
  strip_lang_subdomains: true
  strip_fragment: always
`
	path := filepath.Join(t.TempDir(), "linknorm.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("LINKNORM_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	opts := cfg.NormalizeOptions()
	if opts.SortQuery {
		t.Error("expected sort_query false")
	}
	if opts.StripProtocol {
		t.Error("expected strip_protocol false")
	}
	if !opts.StripLangSubdomains {
		t.Error("expected strip_lang_subdomains true")
	}
	if opts.FragmentPolicy != urlutil.FragmentStripAlways {
		t.Errorf("expected fragment policy always, got %s", opts.FragmentPolicy)
	}
	// Untouched fields keep their defaults.
	if !opts.StripIndex {
		t.Error("expected strip_index to keep its default")
	}
	if !opts.NormalizeAMP {
		t.Error("expected normalize_amp to keep its default")
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("LINKNORM_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}
