package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"vecspace/internal/port"
)

var _ port.Embedder = (*CachedEmbedder)(nil)

// CachedEmbedder memoizes single-text embeddings, which is what the query
// path uses. Batch calls go straight to the wrapped embedder.
type CachedEmbedder struct {
	embedder port.Embedder
	cache    *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps embedder with an LRU cache holding up to size vectors.
func NewCachedEmbedder(embedder port.Embedder, size int) (*CachedEmbedder, error) {
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("init embedding cache: %w", err)
	}
	return &CachedEmbedder{embedder: embedder, cache: cache}, nil
}

func cacheKey(model, text string) string {
	hash := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(hash[:16])
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(c.embedder.ModelName(), text)
	if vec, ok := c.cache.Get(key); ok {
		return append([]float32(nil), vec...), nil
	}
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, append([]float32(nil), vec...))
	return vec, nil
}

func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embedder.EmbedBatch(ctx, texts)
}

func (c *CachedEmbedder) Dimension() int {
	return c.embedder.Dimension()
}

func (c *CachedEmbedder) ModelName() string {
	return c.embedder.ModelName()
}

// Len returns the number of cached vectors.
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}

// Purge drops every cached vector.
func (c *CachedEmbedder) Purge() {
	c.cache.Purge()
}
