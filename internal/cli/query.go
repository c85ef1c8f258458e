package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"vecspace/internal/usecase"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
	queryKind string
	queryFrom string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search a persisted index",
	Long: `Search a persisted index for the documents nearest to a text query.

Examples:
  vecspace query -q "The Hobbit"
  vecspace query -q "space marines on mars" --kind movie -k 5 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (default from config)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.Flags().StringVar(&queryKind, "kind", "", "record kind: movie or book (default from config)")
	queryCmd.Flags().StringVar(&queryFrom, "from", "", "index directory (default <index.dir>/<kind>)")
}

// queryResult is the JSON shape of one hit.
type queryResult struct {
	Rank     int            `json:"rank"`
	Score    float64        `json:"score"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := applyOverrides(cfg, queryKind, 0, 0, 0); err != nil {
		return err
	}
	text := cfg.Query.Text
	if queryText != "" {
		text = queryText
	}
	topK := cfg.Query.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	embedder, err := newQueryEmbedder(cfg)
	if err != nil {
		return err
	}
	dim, err := usecase.ResolveDimension(cmd.Context(), embedder)
	if err != nil {
		return err
	}

	src := indexDir(cfg, queryFrom)
	idx, err := newStore(cfg).Load(cmd.Context(), src, dim)
	if err != nil {
		return fmt.Errorf("failed to load index (run 'vecspace index' first): %w", err)
	}

	hits, err := usecase.NewSearcher(embedder, idx).Search(cmd.Context(), text, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	results := make([]queryResult, len(hits))
	for i, h := range hits {
		results[i] = queryResult{Rank: i + 1, Score: h.Score, Text: h.Document.Text, Metadata: h.Document.Metadata}
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	info := idx.Info()
	fmt.Printf("Index: %d entries, dimension %d, model %s\n\n", info.Entries, info.Dimension, info.Model)
	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(results), text)
	for _, r := range results {
		fmt.Printf("--- [%d] score: %.4f ---\n", r.Rank, r.Score)
		fmt.Println(truncate(r.Text, 500))
		fmt.Println()
	}
	return nil
}
