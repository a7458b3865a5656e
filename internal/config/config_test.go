package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if cfg.Catalog.PageSize != nil || cfg.Speech.Mute != nil {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[catalog]
page-size = 20

[quiz]
pool = "konbini"

[speech]
rate = 0.8
mute = true

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Catalog.PageSize == nil || *cfg.Catalog.PageSize != 20 {
		t.Fatalf("unexpected page size %v", cfg.Catalog.PageSize)
	}
	if cfg.Quiz.Pool == nil || *cfg.Quiz.Pool != "konbini" {
		t.Fatalf("unexpected pool %v", cfg.Quiz.Pool)
	}
	if cfg.Speech.Rate == nil || *cfg.Speech.Rate != 0.8 {
		t.Fatalf("unexpected rate %v", cfg.Speech.Rate)
	}
	if cfg.Speech.Mute == nil || !*cfg.Speech.Mute {
		t.Fatalf("expected mute")
	}
	if cfg.Catalog.Start != nil {
		t.Fatalf("unset keys must stay nil")
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level %v", cfg.Log.Level)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[quiz]\npool-size = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "pool-size") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestEnsureFileWritesTemplateOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suuji", "config.toml")
	created, err := EnsureFile(path)
	if err != nil || !created {
		t.Fatalf("expected template to be created, got %v %v", created, err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	created, err = EnsureFile(path)
	if err != nil || created {
		t.Fatalf("expected existing file to be kept, got %v %v", created, err)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/cfg", "suuji", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/tmp/data", "suuji", "suuji.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/tmp/data", "suuji", "suuji.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}
