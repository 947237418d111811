package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dtxml/declarations/internal/chunk"
	"github.com/dtxml/declarations/internal/config"
	declarationshttp "github.com/dtxml/declarations/internal/http"
	"github.com/dtxml/declarations/internal/http/handlers"
	"github.com/dtxml/declarations/internal/ingest"
	"github.com/dtxml/declarations/internal/rerank"
	"github.com/dtxml/declarations/internal/retrieval"
	"github.com/dtxml/declarations/internal/schema"
	"github.com/dtxml/declarations/internal/storage/blobstore"
	"github.com/dtxml/declarations/internal/storage/metadata"
	"github.com/dtxml/declarations/internal/storage/qdrant"
	"github.com/dtxml/declarations/internal/temporal"
	"github.com/dtxml/declarations/internal/vector"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	if err := config.ValidateConfig(cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("starting server", "host", cfg.Host, "port", cfg.Port)

	ctx := context.Background()

	registry, err := schema.NewRegistry(cfg.TenantConfigDir)
	if err != nil {
		slog.Error("failed to load tenant schema registry", "error", err)
		os.Exit(1)
	}

	vectorIndex, err := qdrant.NewVectorIndex(ctx, qdrant.Config{
		Host:           cfg.QdrantHost,
		Port:           cfg.QdrantPort,
		GRPCPort:       cfg.QdrantGRPCPort,
		UseTLS:         cfg.QdrantUseTLS,
		CollectionName: cfg.CollectionName,
		VectorSize:     uint64(cfg.VectorSize),
	})
	if err != nil {
		slog.Error("failed to connect to vector index", "error", err)
		os.Exit(1)
	}

	metaStore, err := metadata.Connect(ctx, cfg.MetadataDSN)
	if err != nil {
		slog.Error("failed to connect to metadata store", "error", err)
		os.Exit(1)
	}
	defer metaStore.Close()

	blobs, err := blobstore.NewFileStore(cfg.DocumentStoreDir)
	if err != nil {
		slog.Error("failed to open document blob store", "error", err)
		os.Exit(1)
	}

	embedder, err := vector.NewOpenAIProducer(vector.OpenAIProducerConfig{
		APIKey:             cfg.OpenAIAPIKey,
		Model:              cfg.EmbeddingModel,
		Dimensions:         cfg.VectorSize,
		RequestTimeout:     cfg.ModelRequestTimeout,
		MaxRetries:         cfg.ModelMaxRetries,
		RetryBaseDelay:     cfg.ModelRetryBaseDelay,
		CBFailureThreshold: cfg.CBFailureThreshold,
		CBResetTimeout:     cfg.CBResetTimeout,
		CBHalfOpenMax:      cfg.CBHalfOpenMax,
	})
	if err != nil {
		slog.Error("failed to initialize embedding producer", "error", err)
		os.Exit(1)
	}

	bm25 := retrieval.NewBM25Index(cfg.BM25K1, cfg.BM25B)
	engine := retrieval.NewEngine(vectorIndex, bm25, embedder, retrieval.Config{
		RRFConstant:    cfg.RRFConstant,
		FusionAlpha:    cfg.FusionAlpha,
		OversampleMult: cfg.OversampleMult,
	})

	simpleScorer, err := rerank.NewOpenAIScorer(rerank.OpenAIScorerConfig{
		APIKey:             cfg.OpenAIAPIKey,
		Model:              cfg.RerankModelSimple,
		RequestTimeout:     cfg.ModelRequestTimeout,
		MaxRetries:         cfg.ModelMaxRetries,
		RetryBaseDelay:     cfg.ModelRetryBaseDelay,
		CBFailureThreshold: cfg.CBFailureThreshold,
		CBResetTimeout:     cfg.CBResetTimeout,
		CBHalfOpenMax:      cfg.CBHalfOpenMax,
	})
	if err != nil {
		slog.Error("failed to initialize simple reranker scorer", "error", err)
		os.Exit(1)
	}
	complexScorer, err := rerank.NewOpenAIScorer(rerank.OpenAIScorerConfig{
		APIKey:             cfg.OpenAIAPIKey,
		Model:              cfg.RerankModelComplex,
		RequestTimeout:     cfg.ModelRequestTimeout,
		MaxRetries:         cfg.ModelMaxRetries,
		RetryBaseDelay:     cfg.ModelRetryBaseDelay,
		CBFailureThreshold: cfg.CBFailureThreshold,
		CBResetTimeout:     cfg.CBResetTimeout,
		CBHalfOpenMax:      cfg.CBHalfOpenMax,
	})
	if err != nil {
		slog.Error("failed to initialize complex reranker scorer", "error", err)
		os.Exit(1)
	}
	reranker := rerank.NewReranker(simpleScorer, complexScorer, cfg.ComplexityThreshold)

	adjuster := temporal.NewAdjuster(temporal.NewResolver(temporal.DefaultRuleVersions()), cfg.TemporalWindowDays, cfg.TemporalMaxBonus)

	chunker := chunk.NewChunker(chunk.Config{
		ChunkSize:         cfg.ChunkSize,
		ChunkOverlap:      cfg.ChunkOverlap,
		MinChunkSize:      cfg.MinChunkSize,
		PreserveStructure: cfg.PreserveStructure,
	})

	pipeline := ingest.NewPipeline(registry, chunker, embedder, metaStore, engine, blobs)

	svc := &declarationshttp.Services{
		Index:  handlers.NewIndexHandler(pipeline),
		Search: handlers.NewSearchHandler(engine, reranker, adjuster, metaStore, cfg.SearchTopK, cfg.TemporalEnabled, cfg.ExplainabilityEnabled),
		Schema: handlers.NewSchemaHandler(registry),
		Health: handlers.NewHealthHandler(vectorIndex, metaStore.Ping),
	}

	router := declarationshttp.SetupRouter(cfg, svc)

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:           addr,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		slog.Info("HTTP server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "err", err)
		os.Exit(1)
	}
	slog.Info("server shutdown complete")
}
