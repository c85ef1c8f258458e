package usecase

import (
	"context"
	"fmt"

	"vecspace/internal/domain"
	"vecspace/internal/index"
	"vecspace/internal/port"
)

// Searcher answers text queries against an index.
type Searcher struct {
	embedder port.Embedder
	idx      *index.Index
}

// NewSearcher creates a new searcher.
func NewSearcher(embedder port.Embedder, idx *index.Index) *Searcher {
	return &Searcher{embedder: embedder, idx: idx}
}

// Search embeds text and returns the k nearest documents, nearest first.
func (s *Searcher) Search(ctx context.Context, text string, k int) ([]domain.ScoredDocument, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", domain.ErrInvalidInput, k)
	}
	if s.idx == nil || s.idx.Len() == 0 {
		return nil, domain.ErrEmptyIndex
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.idx.Search(vec, k)
}

// ResolveDimension returns the embedder's dimension, embedding a probe text
// when the provider only learns it on first use.
func ResolveDimension(ctx context.Context, embedder port.Embedder) (int, error) {
	if d := embedder.Dimension(); d > 0 {
		return d, nil
	}
	vec, err := embedder.Embed(ctx, "dimension probe")
	if err != nil {
		return 0, fmt.Errorf("resolve embedding dimension: %w", err)
	}
	if len(vec) == 0 {
		return 0, fmt.Errorf("%w: provider returned an empty vector", domain.ErrEmbeddingFailure)
	}
	return len(vec), nil
}
