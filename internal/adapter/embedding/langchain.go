package embedding

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"vecspace/internal/domain"
	"vecspace/internal/port"
)

var _ port.Embedder = (*LangchainEmbedder)(nil)

// LangchainEmbedder adapts a langchaingo embedder. The vector dimension is
// taken from configuration when set, otherwise from the first response.
//
// Remote models are not guaranteed to be bit-for-bit deterministic; repeated
// calls may differ in the last few float digits.
type LangchainEmbedder struct {
	model string
	impl  embeddings.Embedder

	mu        sync.RWMutex
	dimension int
}

// NewOpenAIEmbedder creates an embedder for the OpenAI API or any
// OpenAI-compatible endpoint when baseURL is set.
func NewOpenAIEmbedder(apiKeyEnv, model, baseURL string, dimension, batchSize int) (*LangchainEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key not found in environment variable: %s", domain.ErrProviderUnavailable, apiKeyEnv)
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: openai client: %w", domain.ErrProviderUnavailable, err)
	}
	return newLangchainEmbedder(client, model, dimension, batchSize)
}

// NewOllamaEmbedder creates an embedder backed by a local Ollama server.
func NewOllamaEmbedder(model, baseURL string, dimension, batchSize int) (*LangchainEmbedder, error) {
	if model == "" {
		model = "nomic-embed-text"
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	client, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: ollama client: %w", domain.ErrProviderUnavailable, err)
	}
	return newLangchainEmbedder(client, model, dimension, batchSize)
}

func newLangchainEmbedder(client embeddings.EmbedderClient, model string, dimension, batchSize int) (*LangchainEmbedder, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	impl, err := embeddings.NewEmbedder(client,
		embeddings.WithBatchSize(batchSize),
		embeddings.WithStripNewLines(true),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: construct embedder: %w", domain.ErrProviderUnavailable, err)
	}
	return Wrap(model, impl, dimension), nil
}

// Wrap adapts an existing langchaingo embedder. dimension may be 0.
func Wrap(model string, impl embeddings.Embedder, dimension int) *LangchainEmbedder {
	return &LangchainEmbedder{model: model, impl: impl, dimension: dimension}
}

func (e *LangchainEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, classify(err)
	}
	if err := e.observe(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (e *LangchainEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, classify(err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: provider returned %d vectors for %d texts", domain.ErrEmbeddingFailure, len(vectors), len(texts))
	}
	for i, vec := range vectors {
		if err := e.observe(vec); err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
	}
	return vectors, nil
}

// observe fixes the dimension on first use and checks later vectors against it.
func (e *LangchainEmbedder) observe(vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: provider returned an empty vector", domain.ErrEmbeddingFailure)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dimension == 0 {
		e.dimension = len(vec)
		return nil
	}
	if len(vec) != e.dimension {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, &domain.DimensionMismatchError{Want: e.dimension, Got: len(vec)})
	}
	return nil
}

func (e *LangchainEmbedder) Dimension() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dimension
}

func (e *LangchainEmbedder) ModelName() string {
	return e.model
}

// classify maps transport-level failures to ErrProviderUnavailable and
// everything else to ErrEmbeddingFailure.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
}
