package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all project configuration, including the kind and label
// registries. The registries live here deliberately: taxonomy is project
// configuration, not store data, and survives a store rebuild.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	Kinds   []Definition  `yaml:"kinds"`
	Labels  []Definition  `yaml:"labels"`
}

// ModelConfig selects the embedding provider and model.
type ModelConfig struct {
	Provider  string `yaml:"provider"`              // "local", "openai", "ollama"
	Name      string `yaml:"name"`                  // model identifier
	APIKey    string `yaml:"api_key,omitempty"`     // literal key; APIKeyEnv preferred
	APIKeyEnv string `yaml:"api_key_env,omitempty"` // environment variable holding the key
	BaseURL   string `yaml:"base_url,omitempty"`    // override for remote providers
	MaxTokens int    `yaml:"max_tokens,omitempty"`  // overrides the model registry limit
}

// StorageConfig locates the artifact store and controls retention.
type StorageConfig struct {
	URI          string `yaml:"uri,omitempty"` // path to the store file; default .axiom/store.db
	AutoPrune    bool   `yaml:"auto_prune"`    // compact synchronously after every mutation
	KeepVersions int    `yaml:"keep_versions"` // revisions kept per artifact when pruning
}

// SearchConfig holds query-time defaults.
type SearchConfig struct {
	ContextWeight float64 `yaml:"context_weight"` // blend weight for context similarity
	BatchSize     int     `yaml:"batch_size"`     // reindex embedding batch size
}

// Definition is one registered kind or label key.
type Definition struct {
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider: "local",
			Name:     "bge-small-en-v1.5",
		},
		Storage: StorageConfig{
			AutoPrune:    false,
			KeepVersions: 1,
		},
		Search: SearchConfig{
			ContextWeight: 0.3,
			BatchSize:     32,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Storage.KeepVersions < 1 {
		cfg.Storage.KeepVersions = 1
	}
	if cfg.Search.BatchSize <= 0 {
		cfg.Search.BatchSize = 32
	}

	return cfg, nil
}

// LoadFromDir loads configuration for a project directory.
func LoadFromDir(dir string) (*Config, error) {
	return Load(Path(dir))
}

// Save writes configuration to a YAML file, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Path returns the config file path for a project directory.
func Path(dir string) string {
	return filepath.Join(dir, ".axiom", "config.yaml")
}

// StorePath resolves the store file path for a project directory,
// honoring storage.uri when set. The URI is opaque to the core; only
// local paths are supported by this build.
func (c *Config) StorePath(dir string) string {
	if c.Storage.URI != "" {
		if filepath.IsAbs(c.Storage.URI) {
			return c.Storage.URI
		}
		return filepath.Join(dir, c.Storage.URI)
	}
	return filepath.Join(dir, ".axiom", "store.db")
}

// EnsureDir ensures the .axiom directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".axiom"), 0o755)
}

// HasKind reports whether a kind slug is registered.
func (c *Config) HasKind(slug string) bool { return getDef(c.Kinds, slug) != nil }

// HasLabel reports whether a label key is registered.
func (c *Config) HasLabel(slug string) bool { return getDef(c.Labels, slug) != nil }

// GetKind returns the definition for a kind slug, or nil.
func (c *Config) GetKind(slug string) *Definition { return getDef(c.Kinds, slug) }

// GetLabel returns the definition for a label key, or nil.
func (c *Config) GetLabel(slug string) *Definition { return getDef(c.Labels, slug) }

// AddKind registers a kind, returning false if the slug already exists.
func (c *Config) AddKind(slug, description string) bool {
	if c.HasKind(slug) {
		return false
	}
	c.Kinds = append(c.Kinds, Definition{Slug: slug, Description: description})
	return true
}

// AddLabel registers a label key, returning false if it already exists.
func (c *Config) AddLabel(slug, description string) bool {
	if c.HasLabel(slug) {
		return false
	}
	c.Labels = append(c.Labels, Definition{Slug: slug, Description: description})
	return true
}

// RemoveKind unregisters a kind, returning true if it existed. Stored
// artifacts of that kind are left untouched.
func (c *Config) RemoveKind(slug string) bool {
	var ok bool
	c.Kinds, ok = removeDef(c.Kinds, slug)
	return ok
}

// RemoveLabel unregisters a label key, returning true if it existed.
func (c *Config) RemoveLabel(slug string) bool {
	var ok bool
	c.Labels, ok = removeDef(c.Labels, slug)
	return ok
}

func getDef(defs []Definition, slug string) *Definition {
	for i := range defs {
		if defs[i].Slug == slug {
			return &defs[i]
		}
	}
	return nil
}

func removeDef(defs []Definition, slug string) ([]Definition, bool) {
	out := make([]Definition, 0, len(defs))
	removed := false
	for _, d := range defs {
		if d.Slug == slug {
			removed = true
			continue
		}
		out = append(out, d)
	}
	return out, removed
}
