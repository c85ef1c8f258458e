package embedding

import (
	"fmt"

	"vecspace/config"
	"vecspace/internal/port"
)

// Provider names accepted in embedding.provider.
const (
	ProviderHash   = "hash"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// NewProvider builds the embedder selected by cfg.
func NewProvider(cfg config.EmbeddingConfig, batchSize int) (port.Embedder, error) {
	switch cfg.Provider {
	case ProviderHash, "":
		return NewHashEmbedder(cfg.Dimension)
	case ProviderOpenAI:
		return NewOpenAIEmbedder(cfg.APIKeyEnv, cfg.Model, cfg.BaseURL, cfg.Dimension, batchSize)
	case ProviderOllama:
		return NewOllamaEmbedder(cfg.Model, cfg.BaseURL, cfg.Dimension, batchSize)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
