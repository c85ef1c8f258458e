package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"vecspace/internal/usecase"
)

var (
	runKind      string
	runLimit     int
	runBatchSize int
	runSeedSize  int
	runOut       string
	runQueryText string
	runTopK      int
	runQuiet     bool
)

var runCmd = &cobra.Command{
	Use:   "run [corpus]",
	Short: "Load, build, save, reload and smoke-query in one go",
	Long: `Run the whole pipeline: load the corpus, build documents, build the index in
batches, persist it, reload it and run one smoke query against the reloaded copy.

Examples:
  vecspace run data/movies.json
  vecspace run data/books.json --kind book -q "The Hobbit" -k 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runKind, "kind", "", "record kind: movie or book (default from config)")
	runCmd.Flags().IntVarP(&runLimit, "limit", "n", 0, "index only the first n records")
	runCmd.Flags().IntVar(&runBatchSize, "batch-size", 0, "documents per embedding batch (default from config)")
	runCmd.Flags().IntVar(&runSeedSize, "seed-size", 0, "documents in the seed index (default from config)")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "destination directory (default <index.dir>/<kind>)")
	runCmd.Flags().StringVarP(&runQueryText, "query", "q", "", "smoke query text (default from config)")
	runCmd.Flags().IntVarP(&runTopK, "top-k", "k", 0, "smoke query results (default from config)")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "do not render a progress bar")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if runQueryText != "" {
		cfg.Query.Text = runQueryText
	}
	if runTopK > 0 {
		cfg.Query.TopK = runTopK
	}
	if err := applyOverrides(cfg, runKind, runLimit, runBatchSize, runSeedSize); err != nil {
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

	pipeline := usecase.NewPipeline(
		loader,
		embedder,
		newBuilder(cfg, embedder, newProgress(runQuiet)),
		newStore(cfg),
		log,
	)

	res, err := pipeline.Run(cmd.Context(), usecase.RunConfig{
		CorpusPath:  corpusPath,
		Limit:       cfg.Corpus.Limit,
		Destination: indexDir(cfg, runOut),
		QueryText:   cfg.Query.Text,
		TopK:        cfg.Query.TopK,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nIndexed %d documents (dimension %d, model %s)\n", res.Info.Entries, res.Info.Dimension, res.Info.Model)
	fmt.Printf("Top %d for %q:\n", len(res.Results), cfg.Query.Text)
	for i, r := range res.Results {
		fmt.Printf("  %d. (%.4f) %s\n", i+1, r.Score, truncate(r.Document.Text, 120))
	}
	return nil
}
