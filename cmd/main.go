package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-sync-service/internal/bootstrap"
	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/handlers"
	"catalog-sync-service/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/tracing"
)

// @title Catalog Sync API
// @version 1.0.0
// @description Synchronizes CSV and Excel product catalogs into the catalog store
// @termsOfService http://swagger.io/terms/

// @contact.name Catalog API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the import token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize logger
	logger := bootstrap.NewLogger(cfg)

	// Initialize catalog store, image uploader and events publisher
	services, err := bootstrap.NewServices(context.Background(), cfg, logger)
	if err != nil {
		log.Fatal("Failed to initialize catalog services:", err)
	}
	defer services.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := services.Repo.VerifyTables(ctx); err != nil {
		log.Printf("WARNING: Catalog tables not ready: %v (imports will fail until they exist)", err)
	} else {
		log.Println("✓ Catalog tables verified")
	}
	cancel()

	// Initialize handlers
	importHandler := handlers.NewImportHandler(services.Repo, services.Uploader, services.Publisher, handlers.ImportDefaults{
		VerifySkus: cfg.VerifySkuExists,
		LinkImages: cfg.LinkImageUpload,
		Encoding:   cfg.SourceEncoding,
	}, logger)
	healthHandler := handlers.NewHealthHandler(services.Repo)

	// Initialize OpenTelemetry tracing
	var tracerProvider *tracing.TracerProvider
	if cfg.IsProduction() {
		tracerProvider, err = tracing.InitTracer(tracing.ProductionConfig("catalog-sync-service"))
	} else {
		tracerProvider, err = tracing.InitTracer(tracing.DefaultConfig("catalog-sync-service"))
	}
	if err != nil {
		log.Printf("WARNING: Failed to initialize tracing: %v (continuing without tracing)", err)
	} else {
		log.Println("✓ OpenTelemetry tracing initialized")
	}

	// Initialize Prometheus metrics
	metrics := gosharedmw.InitGlobalMetrics("tesseract", "catalog_sync_service")
	log.Println("✓ Prometheus metrics initialized")

	// Initialize Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add observability middleware (metrics + tracing)
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware("catalog-sync-service"))
	router.Use(gosharedmw.CompressionMiddleware())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/metrics", gosharedmw.Handler())

	// Protected API routes
	api := router.Group("/api/v1")
	api.Use(middleware.ImportTokenAuth(cfg.ImportAPIToken, cfg.Environment))
	{
		catalog := api.Group("/catalog")
		catalog.GET("/import/template", importHandler.GetImportTemplate)
		catalog.POST("/import", importHandler.ImportCatalog)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Catalog sync service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down catalog-sync-service...")

	// Shutdown tracer provider
	if tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		} else {
			log.Println("✓ Tracer provider shut down")
		}
	}

	log.Println("Catalog sync service stopped")
}
