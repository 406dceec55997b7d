package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"JournalSearch/internal/catalog"
	"JournalSearch/internal/config"
	"JournalSearch/internal/database/milvus"
	"JournalSearch/internal/database/mysql"
	"JournalSearch/internal/database/redis"
	"JournalSearch/internal/daterange"
	"JournalSearch/internal/embedding"
	"JournalSearch/internal/search"
	"JournalSearch/internal/vectorindex"
	"JournalSearch/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Initialize Logger
	logger.Init(logrus.InfoLevel)
	appLogger := logger.New("SearchService", "")
	appLogger.Info("Starting Search Service...")

	// 2. Load Configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appLogger.Info("Configuration loaded successfully.")

	// 3. Initialize Dependencies
	ctx := context.Background()

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

	// Dimensionality mismatch between the embedding model and the index
	// schema is a configuration error: fail here, not per-query.
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

	var cache *search.ResultCache
	if cfg.Search.Cache.Enabled {
		redisClient, err := redis.GetClient(&cfg.Databases.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		cache = search.NewResultCache(redisClient, time.Duration(cfg.Search.Cache.TTLSeconds)*time.Second, appLogger)
	}

	// 4. Create the Search Service
	resolver := daterange.NewResolver(nil)
	searchService := search.NewService(resolver, embedder, index, articleDAL, cache, cfg.Search, appLogger)

	// 5. Start Gin HTTP Server in a goroutine
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), traceMiddleware())

	handler := newHTTPHandler(searchService, articleDAL)
	router.GET("/healthz", healthz(milvusClient))
	api := router.Group("/api/v1")
	{
		api.POST("/search", handler.search)
		api.GET("/articles", handler.browseByDate)
	}

	srv := &http.Server{Addr: cfg.Service.HTTPAddr, Handler: router}
	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", cfg.Service.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// 6. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown.")
	}
	appLogger.Info("Server gracefully stopped")
}

// traceMiddleware attaches a trace id to every request for log correlation.
func traceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-Id")
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Set("trace_id", traceID)
		c.Header("X-Trace-Id", traceID)
		c.Next()
	}
}

// healthz reports the liveness of the external collaborators.
func healthz(milvusClient *milvus.MilvusClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := mysql.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "component": "mysql", "error": err.Error()})
			return
		}
		if err := milvusClient.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "component": "milvus", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
