package usecase

import (
	"context"
	"fmt"
	"sync"

	"vecspace/internal/adapter/embedding"
	"vecspace/internal/domain"
)

// recordingEmbedder wraps a HashEmbedder, records batch sizes and can fail
// or switch dimension on a given EmbedBatch call (1-based).
type recordingEmbedder struct {
	mu      sync.Mutex
	inner   *embedding.HashEmbedder
	alt     *embedding.HashEmbedder
	batches []int
	failOn  int
	altOn   int
}

func newRecordingEmbedder(dim int) *recordingEmbedder {
	inner, err := embedding.NewHashEmbedder(dim)
	if err != nil {
		panic(err)
	}
	return &recordingEmbedder{inner: inner}
}

func (r *recordingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return r.inner.Embed(ctx, text)
}

func (r *recordingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	r.mu.Lock()
	r.batches = append(r.batches, len(texts))
	call := len(r.batches)
	r.mu.Unlock()

	if call == r.failOn {
		return nil, fmt.Errorf("%w: provider rejected batch", domain.ErrEmbeddingFailure)
	}
	if call == r.altOn && r.alt != nil {
		return r.alt.EmbedBatch(ctx, texts)
	}
	return r.inner.EmbedBatch(ctx, texts)
}

func (r *recordingEmbedder) Dimension() int    { return r.inner.Dimension() }
func (r *recordingEmbedder) ModelName() string { return r.inner.ModelName() }

func (r *recordingEmbedder) calls() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.batches...)
}

func makeDocs(n int) []domain.Document {
	docs := make([]domain.Document, n)
	for i := range docs {
		text := fmt.Sprintf("document %d about topic %d", i, i%3)
		docs[i] = domain.Document{Text: text, Metadata: map[string]any{"n": float64(i)}}
	}
	return docs
}
