// Command seed loads transcript documents into the vector store for local runs.
//
// Usage:
//
//	seed [-batch N] FILE.json...
//	seed [-batch N] -dir DIR
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hearsight/internal/config"
	"hearsight/internal/ingest"
	"hearsight/internal/llm"
	"hearsight/internal/vectorstore"
)

func main() {
	dir := flag.String("dir", "", "directory scanned recursively for *.json transcripts")
	batch := flag.Int("batch", ingest.DefaultBatchSize, "texts per embeddings request")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-batch N] (-dir DIR | FILE.json...)\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *dir == "" && flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths := flag.Args()
	if *dir != "" {
		scanned, err := ingest.ScanDir(ctx, *dir)
		if err != nil {
			log.Fatalf("Failed to scan directory: %v", err)
		}
		paths = append(paths, scanned...)
	}

	store, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	for _, name := range []string{cfg.ChunksCollection(), cfg.MetadataCollection()} {
		if err := store.EnsureCollection(ctx, name, cfg.QdrantVectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection %s: %v", name, err)
		}
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	pipeline := ingest.NewPipeline(embedder, store, cfg.ChunksCollection(), cfg.MetadataCollection(), nil).
		WithBatchSize(*batch)

	results, err := pipeline.IngestFiles(ctx, paths)
	for _, r := range results {
		fmt.Printf("%s\t%s\t%d chunks\n", r.VideoID, r.VideoPath, r.Chunks)
	}
	if err != nil {
		slog.Error("Seeding finished with errors", "error", err)
		os.Exit(1)
	}
}
