// @title           OneDish Backend API
// @version         1.0.0
// @description     Backend API for the OneDish restaurant discovery app. Handles vendor management, dish photo uploads to Supabase Storage, and Google Places lookups for the admin console.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"log"
	"net/http"

	"onedish-backend/docs"
	"onedish-backend/internal/config"
	"onedish-backend/internal/database"
	"onedish-backend/internal/handlers"
	"onedish-backend/internal/logging"
	"onedish-backend/internal/middleware"
	"onedish-backend/internal/places"
	"onedish-backend/internal/services"
	"onedish-backend/internal/supabase"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// A .env file is a local-dev convenience; in deployment the variables
	// come from the platform.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	docs.SwaggerInfo.Title = cfg.AppName + " API"

	// Database client for vendor records
	dbClient, err := database.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	// Run migrations
	migrator, err := database.NewMigrator(cfg.DatabaseURL, logger)
	if err != nil {
		log.Fatalf("Failed to initialize migrator: %v", err)
	}
	if err := migrator.Run(); err != nil {
		migrator.Close()
		log.Fatalf("Migration failed: %v", err)
	}
	migrator.Close()

	// Supabase clients
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	eventsClient := supabase.NewEventsClient(supabaseClient.Supabase)

	// Google Places gateway
	placesClient := places.NewClient(cfg.GooglePlacesAPIKey)

	// Composite save workflow
	saveWorkflow := services.NewSaveWorkflow(dbClient, storageClient, logger)

	// Handlers
	vendorsHandler := handlers.NewVendorsHandler(dbClient, storageClient, saveWorkflow, eventsClient, logger)
	photosHandler := handlers.NewPhotosHandler(storageClient, logger)
	placesHandler := handlers.NewPlacesHandler(placesClient, logger)

	// Setup router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(handlers.Recovery(logger))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// Public API routes
	api := router.Group("/api/v1")
	api.GET("/vendors", vendorsHandler.SearchVendors)

	// Admin routes behind the session token gate
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg, logger))

	// Vendor CRUD and the composite save
	admin.GET("/vendors", vendorsHandler.ListVendors)
	admin.POST("/vendors", vendorsHandler.CreateVendor)
	admin.POST("/vendors/save", vendorsHandler.SaveVendor)
	admin.GET("/vendors/:vendorId", vendorsHandler.GetVendor)
	admin.PATCH("/vendors/:vendorId", vendorsHandler.UpdateVendor)
	admin.DELETE("/vendors/:vendorId", vendorsHandler.DeleteVendor)

	// Vendor photo lifecycle
	admin.POST("/vendors-photos/upload-from-file/:vendorId", photosHandler.UploadFromFile)
	admin.POST("/vendors-photos/upload-from-url/:vendorId", photosHandler.UploadFromURL)
	admin.DELETE("/vendors-photos/delete/:vendorId", photosHandler.DeletePhotos)

	// Places proxy
	admin.GET("/places/autocomplete", placesHandler.Autocomplete)
	admin.GET("/places/:placeId", placesHandler.Details)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logger.Info("server starting", "port", port, "environment", cfg.Environment)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
