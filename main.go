package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/config"
	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/handler"
	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/middleware"
	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/pkg/logger"
	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	if err := cfg.EnsureDirs(); err != nil {
		slog.Error("failed to create storage directories", "error", err)
		os.Exit(1)
	}

	// Manifest stores
	contracts := service.NewContractStore(cfg.Storage.ContractManifest)
	regulations := service.NewRegulationStore(cfg.Storage.RegManifest)

	// Core services
	extractor := service.NewExtractor()
	renderer := service.NewRenderer()
	registrar := service.NewRegistrar(contracts, cfg.Storage.ContractsDir)
	completion := service.NewCompletionClient(&cfg.LLM)
	embedder := service.NewEmbeddingClient(&cfg.Embedding)
	mailer := service.NewMailer(&cfg.SMTP)
	rectifier := service.NewRectifier(extractor, embedder, completion, renderer, cfg.Storage.VersionsDir)

	regRegistrar := service.NewRegulationRegistrar(
		regulations, extractor, renderer,
		cfg.Storage.SnapshotsDir, filepath.Join(cfg.Storage.BaseDir, "reg_downloads"),
		time.Duration(cfg.Regulations.FetchTimeoutSeconds)*time.Second,
	)

	// Optional artifact archive
	archive, err := service.NewArchiveService(&cfg.Archive)
	if err != nil {
		slog.Error("failed to initialize archive service", "error", err)
		os.Exit(1)
	}
	if archive.Available() {
		if err := archive.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure archive bucket", "error", err)
			os.Exit(1)
		}
	}

	orchestrator := service.NewOrchestrator(
		contracts, regulations, extractor, renderer,
		rectifier, mailer, archive,
		cfg.Storage.SuggestionsDir, cfg.Regulations.Recipient,
	)

	chatService := service.NewChatService(extractor, embedder, completion, regulations)
	sessions := service.NewSessionManager()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	contractHandler := handler.NewContractHandler(registrar, contracts, orchestrator, mailer, regulations)
	regulationHandler := handler.NewRegulationHandler(regRegistrar, regulations)
	chatHandler := handler.NewChatHandler(sessions, chatService, contracts)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware())
	router.Use(middleware.RateLimit(100, time.Minute))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.POST("/contracts/upload", contractHandler.Upload)
		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/:id", contractHandler.Get)
		protected.POST("/contracts/:id/analyze", contractHandler.Analyze)
		protected.GET("/contracts/:id/suggestions", contractHandler.DownloadSuggestions)
		protected.GET("/contracts/:id/file", contractHandler.DownloadCurrent)
		protected.POST("/contracts/:id/email", contractHandler.Email)

		protected.POST("/regulations/refresh", regulationHandler.Refresh)
		protected.GET("/regulations", regulationHandler.List)
		protected.GET("/regulations/:id", regulationHandler.Get)

		protected.POST("/chat/sessions", chatHandler.OpenSession)
		protected.POST("/chat/sessions/:id/messages", chatHandler.Message)
		protected.GET("/chat/sessions/:id/history", chatHandler.History)
		protected.DELETE("/chat/sessions/:id", chatHandler.CloseSession)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
