package cli

import (
	"fmt"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/schollz/progressbar/v3"

	"vecspace/config"
	"vecspace/internal/adapter/corpus"
	"vecspace/internal/adapter/embedding"
	"vecspace/internal/adapter/store"
	"vecspace/internal/port"
	"vecspace/internal/usecase"
)

// applyOverrides copies flag values that were set onto the config and
// validates the result.
func applyOverrides(c *config.Config, kind string, limit int, batchSize, seedSize int) error {
	if kind != "" {
		c.Corpus.Kind = kind
	}
	if limit > 0 {
		c.Corpus.Limit = limit
	}
	if batchSize > 0 {
		c.Index.BatchSize = batchSize
	}
	if seedSize > 0 {
		c.Index.SeedSize = seedSize
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// indexDir resolves the persisted index directory for the configured kind.
func indexDir(c *config.Config, override string) string {
	if override != "" {
		return override
	}
	dir := c.IndexDir(c.Corpus.Kind)
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(GetRootDir(), dir)
}

func newLoader(c *config.Config) (*corpus.Loader, error) {
	projection, err := corpus.ProjectionFor(c.Corpus.Kind)
	if err != nil {
		return nil, err
	}
	return corpus.NewLoader(projection), nil
}

func newEmbedder(c *config.Config) (port.Embedder, error) {
	embedder, err := embedding.NewProvider(c.Embedding, c.Index.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

// newQueryEmbedder wraps the configured embedder with the query cache.
func newQueryEmbedder(c *config.Config) (port.Embedder, error) {
	embedder, err := newEmbedder(c)
	if err != nil {
		return nil, err
	}
	cached, err := embedding.NewCachedEmbedder(embedder, c.Embedding.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

func newStore(c *config.Config) *store.BoltIndexStore {
	return store.NewBoltIndexStore(
		store.WithConfigHash(config.ComputeConfigHash(c)),
		store.WithLogger(log),
	)
}

func newBuilder(c *config.Config, embedder port.Embedder, progress usecase.ProgressFunc) *usecase.Builder {
	return usecase.NewBuilder(embedder,
		usecase.WithBatchSize(c.Index.BatchSize),
		usecase.WithSeedSize(c.Index.SeedSize),
		usecase.WithProgress(progress),
		usecase.WithLogger(log),
	)
}

// newProgress returns a ProgressFunc rendering a progress bar with an ETA.
// The bar is created on the first call, once the total is known.
func newProgress(quiet bool) usecase.ProgressFunc {
	var (
		bar       *progressbar.ProgressBar
		startTime time.Time
	)
	return func(processed, total int) {
		log.Debug("build progress", "processed", processed, "total", total)
		if quiet {
			return
		}
		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		_ = bar.Set(processed)

		if processed > 0 {
			elapsed := time.Since(startTime)
			rate := float64(processed) / elapsed.Seconds()
			remaining := total - processed
			if rate > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Embedding[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
