package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/morgabi/homehunt/internal/auth"
	"github.com/morgabi/homehunt/internal/clients"
	"github.com/morgabi/homehunt/internal/config"
	"github.com/morgabi/homehunt/internal/database"
	"github.com/morgabi/homehunt/internal/handlers"
	"github.com/morgabi/homehunt/internal/logger"
	"github.com/morgabi/homehunt/internal/middleware"
	"github.com/morgabi/homehunt/internal/repository"
	"github.com/morgabi/homehunt/internal/services"
	"github.com/morgabi/homehunt/internal/session"
	"github.com/morgabi/homehunt/internal/storage"
	"github.com/morgabi/homehunt/internal/swipe"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Homehunt API", map[string]interface{}{
		"version":     "0.1.0",
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Outbound clients
	analyzer := clients.NewAnalyzer(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	mailer := clients.NewMailer(cfg.Mailer.Endpoint, cfg.Mailer.APIKey, cfg.Mailer.To)
	scraper := clients.NewScraperClient(cfg.Scraper.Endpoint, cfg.Scraper.Timeout)
	uploader := storage.NewUploader(cfg.Storage.BaseURL, cfg.Storage.APIKey, cfg.Storage.Buckets,
		log.WithComponent("storage"))

	// Session-scoped state
	authService := auth.NewService(cfg.Auth.SharedPassword, cfg.Auth.SessionTTL)
	defer authService.Close()

	swipeStore := swipe.NewStore(swipe.DefaultSessionTTL)
	defer swipeStore.Close()

	localState := session.NewState()
	log.Info("Local session state initialized", map[string]interface{}{
		"device_id": localState.DeviceID(),
	})

	// Repository and service layers
	apartmentRepo := repository.NewApartmentRepository(db)
	scannedRepo := repository.NewScannedRepository(db)

	apartmentService := services.NewApartmentService(apartmentRepo, mailer, log.WithComponent("apartments"))
	scanService := services.NewScanService(scannedRepo, apartmentRepo, scraper, mailer, log.WithComponent("scans"))
	swipeService := services.NewSwipeService(swipeStore, apartmentRepo, scanService, log.WithComponent("swipe"))

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	apartmentHandler := handlers.NewApartmentHandler(apartmentService)
	scanHandler := handlers.NewScanHandler(scanService, localState)
	swipeHandler := handlers.NewSwipeHandler(swipeService)
	aiHandler := handlers.NewAIHandler(analyzer, apartmentService)
	uploadHandler := handlers.NewUploadHandler(uploader, localState)
	sessionHandler := handlers.NewSessionHandler(localState)

	// Register API v1 routes. Reads are open; every mutating route sits
	// behind the capability-token gate.
	v1 := router.Group("/api/v1")
	requireAuth := middleware.Auth(authService)
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/logout", authHandler.Logout)
		}

		apartments := v1.Group("/apartments")
		{
			apartments.GET("", apartmentHandler.List)
			apartments.GET("/:id", apartmentHandler.Get)
			apartments.GET("/:id/insights", aiHandler.Insights)
			apartments.POST("", requireAuth, apartmentHandler.Create)
			apartments.PATCH("/:id", requireAuth, apartmentHandler.Update)
			apartments.DELETE("/:id", requireAuth, apartmentHandler.Delete)
			apartments.PATCH("/:id/rating", requireAuth, apartmentHandler.SetRating)
			apartments.PATCH("/:id/talked", requireAuth, apartmentHandler.SetTalked)
		}

		scans := v1.Group("/scans")
		{
			scans.GET("", scanHandler.ListScanned)
			scans.POST("", requireAuth, scanHandler.Scan)
			scans.POST("/import", requireAuth, scanHandler.Import)
			scans.POST("/:id/promote", requireAuth, scanHandler.Promote)
			scans.DELETE("/:id", requireAuth, scanHandler.Discard)
			scans.DELETE("", requireAuth, scanHandler.ClearAll)
		}

		swipeSessions := v1.Group("/swipe/sessions")
		{
			swipeSessions.POST("", swipeHandler.StartSession)
			swipeSessions.GET("/:id", swipeHandler.Snapshot)
			swipeSessions.POST("/:id/begin", swipeHandler.Begin)
			swipeSessions.POST("/:id/move", swipeHandler.Move)
			// End can promote a scanned candidate, so it is gated like
			// any other mutation.
			swipeSessions.POST("/:id/end", requireAuth, swipeHandler.End)
			swipeSessions.POST("/:id/reset", swipeHandler.Reset)
			swipeSessions.DELETE("/:id", swipeHandler.EndSession)
		}

		v1.POST("/ai/analyze-image", requireAuth, aiHandler.AnalyzeImage)
		v1.POST("/uploads", requireAuth, uploadHandler.Upload)

		v1.GET("/session", sessionHandler.Get)
		v1.POST("/session/theme/next", sessionHandler.CycleTheme)
		v1.POST("/session/reset", requireAuth, sessionHandler.Reset)
		v1.GET("/themes", sessionHandler.ListThemes)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
