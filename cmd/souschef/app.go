package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"souschef/internal/chat"
	"souschef/internal/config"
	"souschef/internal/gemini"
	"souschef/internal/recipes"
	"souschef/internal/storage"
)

// app wires the configured storage backend, the conversation and recipe
// stores, and the generation client together for the CLI commands.
type app struct {
	cfg     config.Config
	cfgPath string
	logger  *zap.Logger

	backend      storage.Backend
	conversation *chat.Store
	recipes      *recipes.Store
	client       *gemini.Client
	sender       *chat.Sender
}

// newApp loads configuration and builds the full application graph. The
// recipe collection is seeded with the built-in defaults on first run.
func newApp(log *zap.Logger) (*app, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cfgPath, err := config.File()
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		cfgPath: cfgPath,
		logger:  log,
		backend: backend,
	}

	a.conversation = chat.NewStore(backend, log)
	a.recipes = recipes.NewStore(backend, log)
	a.recipes.SeedIfEmpty(recipes.DefaultRecipes())

	a.client = a.buildClient(a.resolveAPIKey())
	a.sender = chat.NewSender(a.conversation, a.client, log)

	return a, nil
}

// openBackend builds the storage backend the config selects.
func openBackend(cfg config.Config) (storage.Backend, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("resolving state directory: %w", err)
	}

	switch cfg.Storage.Backend {
	case "sqlite":
		path := cfg.Storage.Path
		if path == "" {
			path = filepath.Join(dir, "souschef.db")
		}
		return storage.NewSQLiteBackend(path)
	default:
		return storage.NewFileBackend(dir), nil
	}
}

// Close releases the storage backend if it holds resources.
func (a *app) Close() error {
	if closer, ok := a.backend.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func (a *app) buildClient(apiKey string) *gemini.Client {
	timeout, _ := a.cfg.LLM.RequestTimeout()
	return gemini.NewClientWithConfig(gemini.Config{
		APIKey:          apiKey,
		BaseURL:         a.cfg.LLM.BaseURL,
		Model:           a.cfg.LLM.Model,
		Timeout:         timeout,
		MaxOutputTokens: a.cfg.LLM.MaxOutputTokens,
	}, a.logger)
}

// resolveAPIKey finds the Gemini credential: config (which already absorbed
// the GEMINI_API_KEY environment variable) first, then the persisted slot.
func (a *app) resolveAPIKey() string {
	if key := strings.TrimSpace(a.cfg.LLM.APIKey); key != "" {
		return key
	}

	data, err := a.backend.Load(storage.SlotAPIKey)
	if err != nil {
		if err != storage.ErrNotFound {
			a.logger.Warn("loading stored API key", zap.Error(err))
		}
		return ""
	}
	var key string
	if err := json.Unmarshal(data, &key); err != nil {
		a.logger.Warn("discarding unreadable API key slot", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(key)
}

// saveAPIKey persists the credential to its slot and rebuilds the client
// and sender so the new key takes effect immediately.
func (a *app) saveAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key is empty")
	}

	data, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("encoding API key: %w", err)
	}
	if err := a.backend.Save(storage.SlotAPIKey, data); err != nil {
		return err
	}

	a.client = a.buildClient(key)
	a.sender = chat.NewSender(a.conversation, a.client, a.logger)
	return nil
}

// hasAPIKey reports whether a credential is available from any source.
func (a *app) hasAPIKey() bool {
	return a.resolveAPIKey() != ""
}
