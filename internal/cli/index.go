package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vecspace/internal/usecase"
)

var (
	indexKind      string
	indexLimit     int
	indexBatchSize int
	indexSeedSize  int
	indexOut       string
	indexQuiet     bool
)

var indexCmd = &cobra.Command{
	Use:   "index [corpus]",
	Short: "Build and persist a vector index from a JSON corpus",
	Long: `Build a vector index from a JSON corpus and persist it.
The corpus path may be a file or a glob such as "data/**/*.json"; when omitted
corpus.path from the config is used. The index is stored in
<index.dir>/<kind>/index.db unless --out is given.

Examples:
  vecspace index data/movies.json
  vecspace index "data/books/*.json" --kind book --limit 500`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringVar(&indexKind, "kind", "", "record kind: movie or book (default from config)")
	indexCmd.Flags().IntVarP(&indexLimit, "limit", "n", 0, "index only the first n records")
	indexCmd.Flags().IntVar(&indexBatchSize, "batch-size", 0, "documents per embedding batch (default from config)")
	indexCmd.Flags().IntVar(&indexSeedSize, "seed-size", 0, "documents in the seed index (default from config)")
	indexCmd.Flags().StringVarP(&indexOut, "out", "o", "", "destination directory (default <index.dir>/<kind>)")
	indexCmd.Flags().BoolVar(&indexQuiet, "quiet", false, "do not render a progress bar")
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := applyOverrides(cfg, indexKind, indexLimit, indexBatchSize, indexSeedSize); err != nil {
		return err
	}
	corpusPath := cfg.Corpus.Path
	if len(args) > 0 {
		corpusPath = args[0]
	}
	if corpusPath == "" {
		return fmt.Errorf("no corpus given: pass a path or set corpus.path")
	}

	loader, err := newLoader(cfg)
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	records, err := loader.Load(corpusPath)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	docs, err := loader.BuildDocuments(records, cfg.Corpus.Limit)
	if err != nil {
		return fmt.Errorf("failed to build documents: %w", err)
	}

	fmt.Printf("Indexing %d %s documents from %s...\n", len(docs), loader.Kind(), corpusPath)
	start := time.Now()

	idx, err := newBuilder(cfg, embedder, newProgress(indexQuiet)).Build(cmd.Context(), docs)
	if err != nil {
		var bf *usecase.BuildFailedError
		if errors.As(err, &bf) {
			fmt.Printf("\nBuild stopped after %d of %d documents; nothing was saved.\n", bf.Offset, len(docs))
		}
		return fmt.Errorf("indexing failed: %w", err)
	}

	dest := indexDir(cfg, indexOut)
	if err := newStore(cfg).Save(cmd.Context(), idx, dest); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	info := idx.Info()
	fmt.Printf("\nIndexing complete:\n")
	fmt.Printf("  Entries:   %d\n", info.Entries)
	fmt.Printf("  Dimension: %d\n", info.Dimension)
	fmt.Printf("  Model:     %s\n", info.Model)
	fmt.Printf("  Elapsed:   %s\n", formatDuration(time.Since(start)))
	fmt.Printf("\nIndex stored at: %s\n", dest)
	return nil
}
