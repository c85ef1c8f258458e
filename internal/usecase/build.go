package usecase

import (
	"context"
	"fmt"

	"vecspace/internal/domain"
	"vecspace/internal/index"
	"vecspace/internal/logger"
	"vecspace/internal/port"
)

const (
	// DefaultBatchSize is the number of documents embedded per merge step.
	DefaultBatchSize = 100
	// DefaultSeedSize is the number of documents used to create the base index.
	DefaultSeedSize = 2
)

// ProgressFunc is called after the seed and after every merged batch.
type ProgressFunc func(processed, total int)

// BuildFailedError reports a build that stopped part way. Offset is the number
// of documents successfully indexed and Partial holds exactly those entries,
// or is nil when the seed itself failed.
type BuildFailedError struct {
	Offset  int
	Partial *index.Index
	Cause   error
}

func (e *BuildFailedError) Error() string {
	return fmt.Sprintf("build failed after %d documents: %v", e.Offset, e.Cause)
}

func (e *BuildFailedError) Unwrap() []error { return []error{domain.ErrBuildFailed, e.Cause} }

// Builder constructs an index from documents in a seed step followed by
// fixed-size batches merged into the base index.
type Builder struct {
	embedder  port.Embedder
	batchSize int
	seedSize  int
	progress  ProgressFunc
	log       logger.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithBatchSize sets the batch size. Values below 1 are ignored.
func WithBatchSize(n int) BuilderOption {
	return func(b *Builder) {
		if n >= 1 {
			b.batchSize = n
		}
	}
}

// WithSeedSize sets the seed size. Values below 1 are ignored.
func WithSeedSize(n int) BuilderOption {
	return func(b *Builder) {
		if n >= 1 {
			b.seedSize = n
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) BuilderOption {
	return func(b *Builder) { b.progress = fn }
}

// WithLogger sets the builder logger.
func WithLogger(l logger.Logger) BuilderOption {
	return func(b *Builder) { b.log = l }
}

// NewBuilder creates a new index builder.
func NewBuilder(embedder port.Embedder, opts ...BuilderOption) *Builder {
	b := &Builder{
		embedder:  embedder,
		batchSize: DefaultBatchSize,
		seedSize:  DefaultSeedSize,
		log:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build embeds docs and returns the resulting index. The entry order equals
// the document order. On failure a *BuildFailedError carries the documents
// indexed so far.
func (b *Builder) Build(ctx context.Context, docs []domain.Document) (*index.Index, error) {
	total := len(docs)
	if total == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	seed := min(b.seedSize, total)
	if err := ctx.Err(); err != nil {
		return nil, &BuildFailedError{Cause: err}
	}
	base, err := b.embed(ctx, docs[:seed])
	if err != nil {
		return nil, &BuildFailedError{Cause: fmt.Errorf("seed: %w", err)}
	}
	base.SetModel(b.embedder.ModelName())
	b.log.Debug("seeded index", "documents", seed, "dimension", base.Dimension())
	b.report(seed, total)

	batch := 0
	for start := seed; start < total; start += b.batchSize {
		batch++
		end := min(start+b.batchSize, total)

		if err := ctx.Err(); err != nil {
			return nil, &BuildFailedError{Offset: start, Partial: base, Cause: err}
		}
		sub, err := b.embed(ctx, docs[start:end])
		if err != nil {
			return nil, &BuildFailedError{Offset: start, Partial: base, Cause: fmt.Errorf("batch %d: %w", batch, err)}
		}
		if err := base.Merge(sub); err != nil {
			return nil, &BuildFailedError{Offset: start, Partial: base, Cause: fmt.Errorf("batch %d: %w", batch, err)}
		}
		b.log.Debug("merged batch", "batch", batch, "processed", end, "total", total)
		b.report(end, total)
	}

	b.log.Info("built index", "entries", base.Len(), "dimension", base.Dimension(), "batches", batch)
	return base, nil
}

func (b *Builder) embed(ctx context.Context, docs []domain.Document) (*index.Index, error) {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	vectors, err := b.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("%w: provider returned %d vectors for %d texts", domain.ErrEmbeddingFailure, len(vectors), len(docs))
	}
	return index.FromEmbeddings(docs, vectors)
}

func (b *Builder) report(processed, total int) {
	if b.progress != nil {
		b.progress(processed, total)
	}
}
