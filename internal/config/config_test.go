package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/n0roo/todo-mcp/internal/task"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Name != "todo-server" || cfg.Server.Version != "0.1.0" {
		t.Errorf("unexpected server identity: %+v", cfg.Server)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("expected memory backend, got %s", cfg.Store.Backend)
	}
	if cfg.Store.IDPolicy != "sequence" {
		t.Errorf("expected sequence id policy, got %s", cfg.Store.IDPolicy)
	}
	if cfg.Store.Seed {
		t.Error("seed should be off by default")
	}
	if cfg.Language != "en" {
		t.Errorf("expected language en, got %s", cfg.Language)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: sqlite
  id_policy: uuid
  seed: true
log:
  level: debug
language: th
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Backend != "sqlite" || cfg.Store.IDPolicy != "uuid" || !cfg.Store.Seed {
		t.Errorf("store section not applied: %+v", cfg.Store)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Log.Level)
	}
	// 파일에 없는 값은 기본값 유지
	if cfg.Log.Format != "text" {
		t.Errorf("expected default format text, got %s", cfg.Log.Format)
	}
	if cfg.Server.Name != "todo-server" {
		t.Errorf("expected default server name, got %s", cfg.Server.Name)
	}
	if cfg.Language != "th" {
		t.Errorf("expected language th, got %s", cfg.Language)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: sqlite
log:
  level: debug
`)
	t.Setenv("TODO_STORE_BACKEND", "duckdb")
	t.Setenv("TODO_LOG_FORMAT", "json")
	t.Setenv("TODO_STORE_SEED", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Backend != "duckdb" {
		t.Errorf("env should override file backend, got %s", cfg.Store.Backend)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected json format from env, got %s", cfg.Log.Format)
	}
	if !cfg.Store.Seed {
		t.Error("expected seed from env")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("file value should survive when env is unset, got %s", cfg.Log.Level)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "store: [unclosed")

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty backend means memory", func(c *Config) { c.Store.Backend = "" }, ""},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }, "unknown store backend"},
		{"unknown id policy", func(c *Config) { c.Store.IDPolicy = "random" }, "random"},
		{"unsupported language", func(c *Config) { c.Language = "ko" }, "unsupported language"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "unknown log level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "unknown log format"},
		{"empty server name", func(c *Config) { c.Server.Name = "" }, "server.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStoreOptions(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = "sqlite"

	backend, err := cfg.Backend()
	if err != nil {
		t.Fatalf("Backend failed: %v", err)
	}
	if backend != task.BackendSQLite {
		t.Errorf("expected sqlite backend, got %s", backend)
	}

	opts, err := cfg.StoreOptions()
	if err != nil {
		t.Fatalf("StoreOptions failed: %v", err)
	}
	store, err := task.Open(backend, opts...)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	created, err := store.Create("first", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID != "1" {
		t.Errorf("expected id 1, got %s", created.ID)
	}
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	want := filepath.Join(home, ".todo-mcp", "config.yaml")
	if got := DefaultPath(); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
