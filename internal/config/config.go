// Package config loads and saves souschef configuration.
// The config file lives in the souschef dot-directory (project-local
// .souschef if present or creatable, otherwise ~/.souschef) as YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all souschef configuration.
type Config struct {
	// Theme selects the TUI color scheme: "light" or "dark".
	Theme string `yaml:"theme"`

	// LLM configures the Gemini generation client.
	LLM LLMConfig `yaml:"llm"`

	// Storage selects the persistence backend.
	Storage StorageConfig `yaml:"storage"`
}

// LLMConfig configures the hosted generation service.
type LLMConfig struct {
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	BaseURL         string `yaml:"base_url"`
	Timeout         string `yaml:"timeout"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

// StorageConfig configures where persisted slots live.
type StorageConfig struct {
	// Backend is "file" (one JSON document per slot) or "sqlite".
	Backend string `yaml:"backend"`
	// Path overrides the sqlite database path. Empty means
	// <dotdir>/souschef.db.
	Path string `yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Theme: "light",
		LLM: LLMConfig{
			Model:   "gemini-2.5-flash",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			Timeout: "60s",
		},
		Storage: StorageConfig{
			Backend: "file",
		},
	}
}

// Dir returns the directory where souschef state is stored. A project-local
// .souschef directory wins over the home-level one.
func Dir() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		localDir := filepath.Join(cwd, ".souschef")
		if stat, err := os.Stat(localDir); err == nil && stat.IsDir() {
			return localDir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".souschef"), nil
}

// File returns the full path to the config file.
func File() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration from path. A missing file yields defaults.
// Environment overrides are applied after the file is read.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// applyEnvOverrides lets environment variables win over file values.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if model := os.Getenv("SOUSCHEF_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if theme := os.Getenv("SOUSCHEF_THEME"); theme != "" {
		c.Theme = theme
	}
}

// Validate checks configuration consistency. A missing API key is not an
// error here: the chat TUI prompts for one instead.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Theme {
	case "light", "dark":
	default:
		return fmt.Errorf("config: unknown theme %q", c.Theme)
	}

	if _, err := c.LLM.RequestTimeout(); err != nil {
		return err
	}
	return nil
}

// RequestTimeout parses the configured LLM timeout.
func (l LLMConfig) RequestTimeout() (time.Duration, error) {
	if l.Timeout == "" {
		return 60 * time.Second, nil
	}
	d, err := time.ParseDuration(l.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config: invalid llm timeout %q: %w", l.Timeout, err)
	}
	return d, nil
}
