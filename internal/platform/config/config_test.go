package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"meetnote/internal/platform/config"
)

func TestDefaultsMatchDemoTimings(t *testing.T) {
	cfg, err := config.Load("", config.Overrides{})
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Timings.Connect != 2*time.Second || cfg.Timings.Start != 2500*time.Millisecond || cfg.Timings.Processing != 3*time.Second {
		t.Fatalf("unexpected default timings: %+v", cfg.Timings)
	}
	if strings.Join(cfg.SeedPlatforms, ",") != "Zoom,Microsoft Teams" {
		t.Fatalf("unexpected seed platforms: %v", cfg.SeedPlatforms)
	}
	if cfg.DBPath != "" {
		t.Fatalf("db path must stay empty without a vault, got %s", cfg.DBPath)
	}
}

func TestLoadYAMLWithOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meetnote.yaml")
	content := `
log_level: debug
seed_platforms: [Webex]
timings:
  connect: 10ms
  recording: 1m
preferences:
  notifications: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(path, config.Overrides{VaultPath: dir})
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Timings.Connect != 10*time.Millisecond || cfg.Timings.Recording != time.Minute {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.Timings.Start != 2500*time.Millisecond {
		t.Fatalf("unset timings must keep defaults, got %s", cfg.Timings.Start)
	}
	if cfg.Preferences.Notifications || !cfg.Preferences.AutoStart {
		t.Fatalf("unexpected preferences: %+v", cfg.Preferences)
	}
	if len(cfg.SeedPlatforms) != 1 || cfg.SeedPlatforms[0] != "Webex" {
		t.Fatalf("seed platforms not applied: %v", cfg.SeedPlatforms)
	}
	if cfg.DBPath != filepath.Join(dir, ".meetnote", "meetnote.db") {
		t.Fatalf("db path not derived from vault: %s", cfg.DBPath)
	}
}

func TestLoadTOMLAndRejectInvalid(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "meetnote.toml")
	if err := os.WriteFile(good, []byte("http_addr = \":9090\"\n[timings]\nprocessing = \"250ms\"\n"), 0o644); err != nil {
		t.Fatalf("write toml: %v", err)
	}
	cfg, err := config.Load(good, config.Overrides{})
	if err != nil {
		t.Fatalf("load toml: %v", err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.Timings.Processing != 250*time.Millisecond {
		t.Fatalf("toml values not applied: %+v", cfg)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("timings:\n  connect: soon\n"), 0o644); err != nil {
		t.Fatalf("write bad yaml: %v", err)
	}
	if _, err := config.Load(bad, config.Overrides{}); err == nil {
		t.Fatalf("expected duration parse error")
	}
	if _, err := config.Load(good, config.Overrides{LogLevel: "loud"}); err == nil || !strings.Contains(err.Error(), "LogLevel") {
		t.Fatalf("expected log level validation error, got %v", err)
	}
	if _, err := config.Load(filepath.Join(dir, "meetnote.json"), config.Overrides{}); err == nil {
		t.Fatalf("expected error for missing/unsupported file")
	}
}

func TestTimeScaleFromEnvironment(t *testing.T) {
	t.Setenv("MEETNOTE_TIME_SCALE", "0")
	cfg, err := config.Load("", config.Overrides{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Timings != (config.Timings{}) {
		t.Fatalf("expected zero timings, got %+v", cfg.Timings)
	}
	t.Setenv("MEETNOTE_TIME_SCALE", "fast")
	if _, err := config.Load("", config.Overrides{}); err == nil {
		t.Fatalf("expected invalid scale error")
	}
}
