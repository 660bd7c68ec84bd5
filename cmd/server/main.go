package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"codexplain/internal/cache"
	"codexplain/internal/config"
	"codexplain/internal/database"
	"codexplain/internal/guardrail"
	"codexplain/internal/handler"
	"codexplain/internal/middleware"
	"codexplain/internal/models"
	"codexplain/internal/repository"
	"codexplain/internal/service"
)

// main is the single entry-point for the REST API.
func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("Configuration loaded:")
	log.Printf("  - Database: %s", cfg.DBName)
	log.Printf("  - Model: %s", cfg.ModelName)
	log.Printf("  - Embedding model: %s", cfg.EmbeddingModel)

	// Connect to MongoDB (vector store for doc chunks)
	client, mongoCtx, cancel, err := database.NewMongo(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer cancel()
	defer client.Disconnect(mongoCtx)
	log.Printf("Connected to MongoDB")

	chunkRepo := repository.NewChunkRepository(client.Database(cfg.DBName), cfg.ChunkColl, cfg.VectorIndex)

	// Initialize Vertex AI clients
	bootCtx := context.Background()

	embedder, err := service.NewVertexEmbedder(bootCtx, cfg.ProjectID, cfg.Location, cfg.EmbeddingModel)
	if err != nil {
		log.Fatalf("Failed to initialize Vertex AI embedder: %v", err)
	}
	defer embedder.Close()

	vertexLLM, err := service.NewVertexLLM(bootCtx, cfg.ProjectID, cfg.Location, cfg.ModelName)
	if err != nil {
		log.Fatalf("Failed to initialize Vertex AI LLM: %v", err)
	}
	defer vertexLLM.Close()

	llm := service.NewRetryingLLM(vertexLLM, service.RetryPolicy{
		MaxAttempts: cfg.LLMMaxAttempts,
		BaseDelay:   cfg.LLMRetryBackoff,
	})

	// Build the per-mode response caches
	explainCache, err := cache.New[models.ExplainResponse](cfg.ExplainCacheSize, cfg.ExplainCacheTTL)
	if err != nil {
		log.Fatalf("Failed to build explain cache: %v", err)
	}
	testsCache, err := cache.New[models.TestGenResponse](cfg.TestsCacheSize, cfg.TestsCacheTTL)
	if err != nil {
		log.Fatalf("Failed to build tests cache: %v", err)
	}
	refactorCache, err := cache.New[models.RefactorResponse](cfg.RefactorCacheSize, cfg.RefactorCacheTTL)
	if err != nil {
		log.Fatalf("Failed to build refactor cache: %v", err)
	}

	// Initialize services
	guard := guardrail.NewValidator(guardrail.DefaultRuleSet())
	retriever := service.NewRetriever(chunkRepo, embedder)
	assistSvc := service.NewAssistService(
		guard, retriever, llm,
		explainCache, testsCache, refactorCache,
		cfg.LLMTimeout,
	)
	log.Printf("Guardrail rules %s loaded", guard.Version())

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Add middleware
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(middleware.Logging())

	// Register routes
	handler.RegisterRoutes(app, assistSvc, retriever)

	// Add health check
	handler.NewHealthHandler(client, assistSvc, cfg.ModelName).Register(app)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
