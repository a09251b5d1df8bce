package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Theme != "light" {
		t.Errorf("expected Theme=light, got %s", cfg.Theme)
	}
	if cfg.LLM.Model != "gemini-2.5-flash" {
		t.Errorf("expected Model=gemini-2.5-flash, got %s", cfg.LLM.Model)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("expected Backend=file, got %s", cfg.Storage.Backend)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Theme = "dark"
	cfg.LLM.APIKey = "test-key"
	cfg.Storage.Backend = "sqlite"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Theme != "dark" {
		t.Errorf("expected Theme=dark, got %s", loaded.Theme)
	}
	if loaded.LLM.APIKey != "test-key" {
		t.Errorf("expected APIKey=test-key, got %s", loaded.LLM.APIKey)
	}
	if loaded.Storage.Backend != "sqlite" {
		t.Errorf("expected Backend=sqlite, got %s", loaded.Storage.Backend)
	}
}

func TestConfig_MissingFileYieldsDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Theme != "light" {
		t.Errorf("expected default theme, got %s", cfg.Theme)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("SOUSCHEF_THEME", "dark")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("expected APIKey=env-key, got %s", cfg.LLM.APIKey)
	}
	if cfg.Theme != "dark" {
		t.Errorf("expected Theme=dark, got %s", cfg.Theme)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	cfg.Storage.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown backend")
	}

	cfg = DefaultConfig()
	cfg.LLM.Timeout = "soon"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for bad timeout")
	}
}
