package usecase

import (
	"context"
	"fmt"

	"vecspace/internal/adapter/corpus"
	"vecspace/internal/domain"
	"vecspace/internal/index"
	"vecspace/internal/logger"
	"vecspace/internal/port"
)

// RunConfig describes one end-to-end pipeline run.
type RunConfig struct {
	CorpusPath  string
	Limit       int
	Destination string
	QueryText   string
	TopK        int
}

// RunResult summarizes a successful run.
type RunResult struct {
	Documents int
	Info      domain.IndexInfo
	Results   []domain.ScoredDocument
}

// Pipeline loads a corpus, builds and persists its index, reloads it and
// runs a smoke query against the reloaded copy.
type Pipeline struct {
	loader   *corpus.Loader
	embedder port.Embedder
	builder  *Builder
	store    port.IndexStore
	log      logger.Logger
}

// NewPipeline creates a new pipeline.
func NewPipeline(
	loader *corpus.Loader,
	embedder port.Embedder,
	builder *Builder,
	store port.IndexStore,
	log logger.Logger,
) *Pipeline {
	if log == nil {
		log = logger.NewNop()
	}
	return &Pipeline{
		loader:   loader,
		embedder: embedder,
		builder:  builder,
		store:    store,
		log:      log,
	}
}

// Run executes every stage in order and stops at the first failure. A failed
// build is never persisted.
func (p *Pipeline) Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	log := p.log.With("kind", p.loader.Kind())

	records, err := p.loader.Load(cfg.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	docs, err := p.loader.BuildDocuments(records, cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("build documents: %w", err)
	}
	log.Info("loaded corpus", "path", cfg.CorpusPath, "records", len(records), "documents", len(docs))

	idx, err := p.builder.Build(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	if err := p.store.Save(ctx, idx, cfg.Destination); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}

	dim, err := ResolveDimension(ctx, p.embedder)
	if err != nil {
		return nil, fmt.Errorf("reload index: %w", err)
	}
	loaded, err := p.store.Load(ctx, cfg.Destination, dim)
	if err != nil {
		return nil, fmt.Errorf("reload index: %w", err)
	}

	results, err := p.query(ctx, loaded, cfg.QueryText, cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("smoke query: %w", err)
	}
	for i, r := range results {
		log.Info("result", "rank", i+1, "score", r.Score, "text", r.Document.Text)
	}

	return &RunResult{
		Documents: len(docs),
		Info:      loaded.Info(),
		Results:   results,
	}, nil
}

func (p *Pipeline) query(ctx context.Context, idx *index.Index, text string, k int) ([]domain.ScoredDocument, error) {
	return NewSearcher(p.embedder, idx).Search(ctx, text, k)
}
