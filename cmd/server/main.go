package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/verdantlabs/menu-match/internal/config"
	"github.com/verdantlabs/menu-match/internal/database"
	"github.com/verdantlabs/menu-match/internal/handlers"
	"github.com/verdantlabs/menu-match/internal/matching"
	"github.com/verdantlabs/menu-match/internal/middleware"
	"github.com/verdantlabs/menu-match/internal/services"
)

func main() {
	// Load .env file if it exists
	godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create admin user if it doesn't exist
	if err := database.EnsureAdminUser(db, cfg); err != nil {
		log.Printf("Warning: Could not ensure admin user: %v", err)
	}

	// Semantic similarity is optional; without an API key the engine
	// runs on lexical signals only.
	var provider matching.SimilarityProvider
	if cfg.OpenAIAPIKey != "" {
		provider = services.NewEmbeddingService(cfg.OpenAIAPIKey, cfg.EmbedTimeout)
		log.Println("Semantic similarity provider enabled")
	} else {
		log.Println("OPENAI_API_KEY not set, matching is lexical-only")
	}

	// Build the matching engine and its initial catalog index
	matcher := services.NewMatchService(db, cfg.MatchingConfig(), provider)
	if _, err := matcher.Reload(context.Background()); err != nil {
		log.Fatalf("Failed to build catalog index: %v", err)
	}

	// Feed archive is optional; without credentials uploads are matched
	// but not retained.
	var archive *services.FeedArchive
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		archive, err = services.NewFeedArchive(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Region, cfg.S3UseSSL)
		if err != nil {
			log.Printf("Warning: Failed to initialize feed archive: %v", err)
			archive = nil
		} else if err := archive.EnsureBucket(context.Background()); err != nil {
			log.Printf("Warning: Failed to ensure S3 bucket exists: %v", err)
		}
	} else {
		log.Println("S3 credentials not configured, feed archiving disabled")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    10 * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Create handler with dependencies
	h := handlers.New(db, cfg, matcher, archive)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "indexed_records": matcher.IndexSize()})
	})

	// API routes
	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Get("/me", middleware.AuthRequired(cfg), h.GetCurrentUser)
	auth.Post("/refresh", middleware.AuthRequired(cfg), h.RefreshToken)

	// Catalog routes (authenticated read, admin write)
	catalog := api.Group("/catalog", middleware.AuthRequired(cfg))
	catalog.Get("/", h.ListRecords)
	catalog.Get("/stats", h.GetCatalogStats)
	catalog.Get("/search", h.SearchRecords)
	catalog.Get("/:id", h.GetRecord)
	catalog.Post("/", middleware.AdminRequired(), h.CreateRecord)
	catalog.Put("/:id", middleware.AdminRequired(), h.UpdateRecord)
	catalog.Delete("/:id", middleware.AdminRequired(), h.DeleteRecord)
	catalog.Post("/reload", middleware.AdminRequired(), h.ReloadCatalog)

	// Vendor/strain alias routes (admin only)
	aliases := api.Group("/aliases", middleware.AuthRequired(cfg), middleware.AdminRequired())
	aliases.Get("/:kind", h.ListAliasGroups)
	aliases.Post("/:kind", h.CreateAliasGroup)
	aliases.Delete("/:kind/:group_id", h.DeleteAliasGroup)

	// Feed matching routes (authenticated)
	feeds := api.Group("/feeds", middleware.AuthRequired(cfg))
	feeds.Post("/match", h.MatchFeed)
	feeds.Post("/review", h.ReviewFeed)

	// Batch review routes (authenticated)
	batches := api.Group("/batches", middleware.AuthRequired(cfg))
	batches.Get("/", h.ListBatches)
	batches.Get("/:id", h.GetBatch)
	batches.Get("/:id/feed", h.GetBatchFeed)
	batches.Post("/:id/items/:item_index/confirm", h.ConfirmBatchItem)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
