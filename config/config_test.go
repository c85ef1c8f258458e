package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Index.BatchSize != 100 {
		t.Errorf("expected BatchSize=100, got %d", cfg.Index.BatchSize)
	}
	if cfg.Index.SeedSize != 2 {
		t.Errorf("expected SeedSize=2, got %d", cfg.Index.SeedSize)
	}
	if cfg.Corpus.Limit != 0 {
		t.Errorf("expected Limit=0, got %d", cfg.Corpus.Limit)
	}
	if cfg.Query.Text != "The Hobbit" || cfg.Query.TopK != 2 {
		t.Errorf("unexpected default query %+v", cfg.Query)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "vecspace.yaml")

	content := `
corpus:
  path: data/book.json
  kind: book
  limit: 100
index:
  batch_size: 50
embedding:
  provider: ollama
  model: all-minilm
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Corpus.Kind != "book" {
		t.Errorf("expected Kind=book, got %s", cfg.Corpus.Kind)
	}
	if cfg.Corpus.Limit != 100 {
		t.Errorf("expected Limit=100, got %d", cfg.Corpus.Limit)
	}
	if cfg.Index.BatchSize != 50 {
		t.Errorf("expected BatchSize=50, got %d", cfg.Index.BatchSize)
	}
	if cfg.Index.SeedSize != 2 {
		t.Errorf("expected SeedSize to keep default 2, got %d", cfg.Index.SeedSize)
	}
	if cfg.Embedding.Model != "all-minilm" {
		t.Errorf("expected Model=all-minilm, got %s", cfg.Embedding.Model)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "vecspace.yaml")
	if err := os.WriteFile(configPath, []byte("index: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".vecspace"), 0755); err != nil {
		t.Fatal(err)
	}
	content := `
query:
  top_k: 5
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".vecspace", "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Query.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Query.TopK)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vecspace.yaml")
	cfg := DefaultConfig()
	cfg.Corpus.Kind = "book"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Corpus.Kind != "book" {
		t.Errorf("expected Kind=book after round trip, got %s", loaded.Corpus.Kind)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"batch size", func(c *Config) { c.Index.BatchSize = 0 }},
		{"seed size", func(c *Config) { c.Index.SeedSize = 0 }},
		{"top k", func(c *Config) { c.Query.TopK = 0 }},
		{"limit", func(c *Config) { c.Corpus.Limit = -1 }},
		{"kind", func(c *Config) { c.Corpus.Kind = "album" }},
		{"provider", func(c *Config) { c.Embedding.Provider = "faiss" }},
		{"hash dimension", func(c *Config) { c.Embedding.Dimension = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIndexDir(t *testing.T) {
	cfg := DefaultConfig()
	expected := filepath.Join(".vecspace", "movie")
	if got := cfg.IndexDir("movie"); got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}

func TestComputeConfigHash(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	if ComputeConfigHash(a) != ComputeConfigHash(b) {
		t.Error("expected equal hashes for equal configs")
	}
	b.Embedding.Model = "other"
	if ComputeConfigHash(a) == ComputeConfigHash(b) {
		t.Error("expected hash to change with model")
	}
	b = DefaultConfig()
	b.Index.BatchSize = 7
	if ComputeConfigHash(a) != ComputeConfigHash(b) {
		t.Error("batch size must not affect the hash")
	}
}
