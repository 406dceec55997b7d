package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"JournalSearch/internal/catalog"
	"JournalSearch/internal/config"
	"JournalSearch/internal/database/milvus"
	"JournalSearch/internal/database/mysql"
	"JournalSearch/internal/embedding"
	"JournalSearch/internal/ingest"
	"JournalSearch/internal/vectorindex"
	"JournalSearch/pkg/logger"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to YAML config file")
	flag.Parse()

	// 1. Initialize Logger
	logger.Init(logrus.InfoLevel)
	appLogger := logger.New("IndexIngestor", "")
	appLogger.Info("Starting index ingestion job...")

	// 2. Load Configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 3. Initialize Dependencies
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mysql.GetDB(&cfg.Databases.MySQL)
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}
	articleDAL := catalog.NewArticleDAL(db)

	milvusClient, err := milvus.GetClient(ctx, &cfg.Databases.Milvus)
	if err != nil {
		log.Fatalf("Failed to connect to Milvus: %v", err)
	}
	defer milvusClient.Close()

	embedder, err := embedding.NewModel(&cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding model: %v", err)
	}

	// Same startup mismatch check as the search service: a wrong dimension
	// must never be discovered mid-batch.
	if err := milvusClient.EnsureCollection(ctx, cfg.Embedding.Dimension); err != nil {
		log.Fatalf("Failed to ensure Milvus collection: %v", err)
	}
	indexDim, err := milvusClient.Dim(ctx)
	if err != nil {
		log.Fatalf("Failed to read Milvus collection dimension: %v", err)
	}
	if indexDim != cfg.Embedding.Dimension {
		log.Fatalf("Config mismatch: embedding dimension %d != index dimension %d", cfg.Embedding.Dimension, indexDim)
	}

	index, err := vectorindex.NewMilvusIndex(milvusClient, cfg.Embedding.Model, appLogger)
	if err != nil {
		log.Fatalf("Failed to create vector index adapter: %v", err)
	}

	// 4. Run the sync
	ingestor, err := ingest.NewIngestor(articleDAL, embedder, index, cfg.Ingest, appLogger)
	if err != nil {
		log.Fatalf("Failed to create ingestor: %v", err)
	}
	defer ingestor.Release()

	report, err := ingestor.SyncAll(ctx)
	if report != nil {
		appLogger.WithPayload(map[string]interface{}{
			"synced":     report.Synced,
			"skipped":    report.Skipped,
			"failed_ids": report.Failed,
		}).Info(fmt.Sprintf("Ingestion finished: %s", report))
	}
	if err != nil {
		appLogger.WithError(err).Error("Ingestion aborted.")
		os.Exit(1)
	}
	if report != nil && len(report.Failed) > 0 {
		os.Exit(1)
	}
}
