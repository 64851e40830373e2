package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hearsight/internal/auth"
	"hearsight/internal/catalog"
	"hearsight/internal/config"
	"hearsight/internal/handlers"
	"hearsight/internal/http"
	"hearsight/internal/llm"
	"hearsight/internal/objectstore"
	"hearsight/internal/rag"
	"hearsight/internal/service"
	"hearsight/internal/storage"
	"hearsight/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers questions about transcribed videos and manages the video library.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: HearSight API
//   description: |
//     Retrieval-augmented question answering over video transcripts, with a
//     folder-organized video catalog and per-session chat history.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx := context.Background()

	// Chat history store
	chatStore, closeStore, err := openChatStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open chat history store: %v", err)
	}
	defer closeStore()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	defer func() {
		_ = vectorStore.Close()
	}()

	collections := []string{cfg.ChunksCollection(), cfg.MetadataCollection()}
	for _, name := range collections {
		if err := vectorStore.EnsureCollection(ctx, name, cfg.QdrantVectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection %s: %v", name, err)
		}
	}
	slog.Info("Qdrant collections ready", "collections", collections, "vector_size", cfg.QdrantVectorSize)

	// External model clients
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	if _, err := embedder.EmbedText(ctx, "test"); err != nil {
		slog.Warn("Embedding client check failed; chat and search will report errors until it recovers", "error", err)
	} else {
		slog.Info("Embedding client validated", "model", cfg.EmbeddingModelName, "vector_size", cfg.QdrantVectorSize)
	}
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Media URL signing
	var signer catalog.URLSigner
	if cfg.OSSConfigured() {
		ossSigner, err := objectstore.NewOSSSigner(cfg.OSSEndpoint, cfg.OSSAccessKeyID, cfg.OSSAccessKeySecret, cfg.OSSBucket)
		if err != nil {
			log.Fatalf("Failed to create OSS signer: %v", err)
		}
		signer = ossSigner
		slog.Info("OSS URL signing enabled", "bucket", cfg.OSSBucket)
	}

	// Catalog
	cache := catalog.NewListCache(cfg.VideoCacheSize, cfg.VideoCacheTTL)
	chunks := catalog.NewChunkStore(vectorStore, cfg.ChunksCollection())
	registry := catalog.NewFolderRegistry(vectorStore, cfg.MetadataCollection(), cfg.QdrantVectorSize, cache)
	videos := catalog.NewVideoCatalog(vectorStore, cfg.MetadataCollection(), chunks, registry, cache, signer)

	// RAG pipeline
	prompts := cfg.Prompts
	retriever := rag.NewRetriever(embedder, vectorStore, cfg.ChunksCollection())
	composer := rag.NewComposer(rag.ComposerOptions{
		Header:    prompts.ContextHeader,
		Footer:    prompts.ContextFooter,
		NoContext: prompts.NoContext,
		MaxChars:  cfg.RAGMaxContextChars,
	})
	synthesizer := rag.NewSynthesizer(llmClient, rag.SynthesizerOptions{
		Persona:            prompts.Persona,
		FormatInstructions: prompts.FormatInstructions,
		Language:           cfg.RAGLanguage,
		EmptyAnswer:        prompts.EmptyAnswer,
	})

	chatService := service.NewChatService(embedder, retriever, composer, synthesizer, chatStore, service.ChatOptions{
		Enabled:          cfg.RAGEnabled,
		TopK:             cfg.RAGTopK,
		ScoreThreshold:   cfg.RAGScoreThreshold,
		IncludeSummaries: cfg.RAGIncludeSummaries,
		NoHitsAnswer:     prompts.NoHitsAnswer,
	})
	slog.Info("RAG pipeline initialized", "enabled", cfg.RAGEnabled, "top_k", cfg.RAGTopK, "score_threshold", cfg.RAGScoreThreshold)

	authenticator := auth.NewAuthenticator(cfg.JWTSecret)
	if !authenticator.Enabled() {
		slog.Info("JWT_SECRET not set; all requests are anonymous")
	}

	// Create router with dependencies
	router := http.NewRouter(&http.Deps{
		ChatService:    chatService,
		SearchService:  service.NewSearchService(retriever),
		LibraryService: service.NewLibraryService(registry, videos),
		Health:         handlers.NewHealthHandler(vectorStore, vectorStore, collections, chatStore),
		Auth:           authenticator,
		CORSOrigins:    cfg.CORSOrigins,
	})

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if err := run(server); err != nil {
		slog.Error("API server stopped with error", "error", err)
		os.Exit(1)
	}
}

// run serves until SIGINT or SIGTERM, then shuts the server down gracefully.
func run(server *nethttp.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("Shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	slog.Info("API server stopped")
	return nil
}

// openChatStore opens the configured relational store and runs its migrations.
func openChatStore(ctx context.Context, cfg *config.Config) (storage.ChatStore, func(), error) {
	switch cfg.DBDriver {
	case config.DBDriverPostgres:
		db, err := storage.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.MigratePostgres(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		slog.Info("Database initialized", "driver", config.DBDriverPostgres)
		return storage.NewPostgresChatRepo(db), db.Close, nil

	default:
		db, err := storage.New(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		slog.Info("Database initialized", "driver", config.DBDriverSQLite, "path", cfg.DBPath)
		return storage.NewChatRepo(db), func() { _ = db.Close() }, nil
	}
}
