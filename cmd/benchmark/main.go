package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vecspace/config"
	"vecspace/internal/adapter/embedding"
	"vecspace/internal/adapter/store"
	"vecspace/internal/usecase"
)

func main() {
	workDir := flag.String("dir", ".", "Working directory holding vecspace.yaml and the index")
	kind := flag.String("kind", "", "Record kind (default from config)")
	query := flag.String("q", "", "Query to test")
	topK := flag.Int("k", 10, "Number of results")
	runs := flag.Int("runs", 20, "Timed repetitions of the query")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -dir . -kind movie -q \"query\"")
		fmt.Println("\nReports:")
		fmt.Println("  1. Index shape (entries, dimension, model)")
		fmt.Println("  2. Similarity of the top matches")
		fmt.Println("  3. Load and query latency")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *kind != "" {
		cfg.Corpus.Kind = *kind
	}

	ctx := context.Background()
	embedder, err := embedding.NewProvider(cfg.Embedding, cfg.Index.BatchSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedder init failed: %v\n", err)
		os.Exit(1)
	}
	dim, err := usecase.ResolveDimension(ctx, embedder)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedding provider not available: %v\n", err)
		os.Exit(1)
	}

	src := filepath.Join(*workDir, cfg.IndexDir(cfg.Corpus.Kind))
	loadStart := time.Now()
	idx, err := store.NewBoltIndexStore().Load(ctx, src, dim)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening index: %v\n", err)
		os.Exit(1)
	}
	loadTime := time.Since(loadStart)

	info := idx.Info()
	fmt.Println("VECTOR SEARCH BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Entries indexed: %d\n", info.Entries)
	fmt.Printf("Model: %s (%s)\n", info.Model, cfg.Embedding.Provider)
	fmt.Printf("Dimension: %d\n", info.Dimension)
	fmt.Printf("Load time: %s\n", loadTime)
	fmt.Println()

	fmt.Printf("Query: \"%s\"\n", *query)
	fmt.Println(strings.Repeat("-", 70))

	queryVec, err := embedder.Embed(ctx, *query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedding error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Query embedded: %d dimensions\n\n", len(queryVec))

	results, err := idx.Search(queryVec, *topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Top %d matches:\n\n", len(results))

	totalScore := 0.0
	for i, r := range results {
		preview := r.Document.Text
		if len(preview) > 150 {
			preview = preview[:150] + "..."
		}
		preview = strings.ReplaceAll(preview, "\n", " ")

		similarity := r.Score
		totalScore += similarity

		rating := "LOW"
		if similarity > 0.7 {
			rating = "HIGH"
		} else if similarity > 0.5 {
			rating = "GOOD"
		} else if similarity > 0.3 {
			rating = "OK"
		}

		fmt.Printf("%d. [%s %.3f] %s\n", i+1, rating, similarity, title(r.Document.Metadata))
		fmt.Printf("   %s\n\n", preview)
	}

	var total time.Duration
	for i := 0; i < *runs; i++ {
		start := time.Now()
		if _, err := idx.Search(queryVec, *topK); err != nil {
			fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
			os.Exit(1)
		}
		total += time.Since(start)
	}

	avgScore := totalScore / float64(len(results))
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS:\n")
	fmt.Printf("  Average similarity: %.3f\n", avgScore)
	fmt.Printf("  Top-1 similarity:   %.3f\n", results[0].Score)
	if *runs > 0 {
		fmt.Printf("  Search latency:     %s (mean of %d)\n", total/time.Duration(*runs), *runs)
	}
}

func title(meta map[string]any) string {
	if t, ok := meta["title"].(string); ok && t != "" {
		return t
	}
	return "(untitled)"
}
