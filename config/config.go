package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for vecspace.
type Config struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Query     QueryConfig     `yaml:"query"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CorpusConfig describes the JSON corpus to index.
type CorpusConfig struct {
	Path  string `yaml:"path"`  // file or doublestar glob
	Kind  string `yaml:"kind"`  // "movie", "book"
	Limit int    `yaml:"limit"` // 0 = all records
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "hash", "openai", "ollama"
	Model     string `yaml:"model"`    // e.g., "text-embedding-3-small"
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	Dimension int    `yaml:"dimension"`   // 0 = discover from the first response
	CacheSize int    `yaml:"cache_size"`  // query embedding cache entries
}

// IndexConfig holds index construction configuration.
type IndexConfig struct {
	Dir       string `yaml:"dir"`
	BatchSize int    `yaml:"batch_size"`
	SeedSize  int    `yaml:"seed_size"`
}

// QueryConfig holds the smoke-test query run after a build.
type QueryConfig struct {
	Text string `yaml:"text"`
	TopK int    `yaml:"top_k"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

var (
	knownKinds     = map[string]bool{"movie": true, "book": true}
	knownProviders = map[string]bool{"hash": true, "openai": true, "ollama": true}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Kind: "movie",
		},
		Embedding: EmbeddingConfig{
			Provider:  "hash",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 384,
			CacheSize: 256,
		},
		Index: IndexConfig{
			Dir:       ".vecspace",
			BatchSize: 100,
			SeedSize:  2,
		},
		Query: QueryConfig{
			Text: "The Hobbit",
			TopK: 2,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for vecspace.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "vecspace.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".vecspace", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks option ranges and enumerations.
func (c *Config) Validate() error {
	if c.Index.BatchSize < 1 {
		return fmt.Errorf("index.batch_size must be >= 1, got %d", c.Index.BatchSize)
	}
	if c.Index.SeedSize < 1 {
		return fmt.Errorf("index.seed_size must be >= 1, got %d", c.Index.SeedSize)
	}
	if c.Query.TopK < 1 {
		return fmt.Errorf("query.top_k must be >= 1, got %d", c.Query.TopK)
	}
	if c.Corpus.Limit < 0 {
		return fmt.Errorf("corpus.limit must be >= 0, got %d", c.Corpus.Limit)
	}
	if !knownKinds[c.Corpus.Kind] {
		return fmt.Errorf("unknown corpus.kind %q", c.Corpus.Kind)
	}
	if !knownProviders[c.Embedding.Provider] {
		return fmt.Errorf("unknown embedding.provider %q", c.Embedding.Provider)
	}
	if c.Embedding.Provider == "hash" && c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be > 0 for the hash provider")
	}
	return nil
}

// IndexDir returns the directory holding the persisted index for kind.
func (c *Config) IndexDir(kind string) string {
	return filepath.Join(c.Index.Dir, kind)
}

// ComputeConfigHash computes a hash of the embedding-relevant configuration.
// A persisted index built under a different hash was embedded differently.
func ComputeConfigHash(cfg *Config) string {
	relevant := struct {
		Provider  string `json:"provider"`
		Model     string `json:"model"`
		BaseURL   string `json:"base_url"`
		Dimension int    `json:"dimension"`
		Kind      string `json:"kind"`
	}{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		BaseURL:   cfg.Embedding.BaseURL,
		Dimension: cfg.Embedding.Dimension,
		Kind:      cfg.Corpus.Kind,
	}

	data, _ := json.Marshal(relevant)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
