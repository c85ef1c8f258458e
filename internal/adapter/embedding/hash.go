package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"unicode/utf8"

	"vecspace/internal/adapter/analyzer"
	"vecspace/internal/domain"
	"vecspace/internal/port"
)

var _ port.Embedder = (*HashEmbedder)(nil)

// HashEmbedder is an offline, fully deterministic embedder. Each token is
// hashed with FNV-1a into one of dimension buckets and the resulting count
// vector is L2-normalized, so texts sharing vocabulary land close together.
type HashEmbedder struct {
	dimension int
	tokenizer port.Tokenizer
}

// NewHashEmbedder creates a hash embedder producing vectors of dimension size.
func NewHashEmbedder(dimension int) (*HashEmbedder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: hash embedder dimension must be > 0, got %d", domain.ErrProviderUnavailable, dimension)
	}
	return &HashEmbedder{
		dimension: dimension,
		tokenizer: analyzer.NewTokenizer(2),
	}, nil
}

func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", domain.ErrEmbeddingFailure)
	}

	vec := make([]float32, e.dimension)
	for _, token := range e.tokenizer.Tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%uint32(e.dimension)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashEmbedder) ModelName() string {
	return fmt.Sprintf("hash-%d", e.dimension)
}
