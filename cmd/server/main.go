package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/themobileprof/inference-gateway/internal/api"
	"github.com/themobileprof/inference-gateway/internal/api/middleware"
	"github.com/themobileprof/inference-gateway/internal/config"
	"github.com/themobileprof/inference-gateway/internal/gateway"
	"github.com/themobileprof/inference-gateway/pkg/backend"
	"github.com/themobileprof/inference-gateway/pkg/llm"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.Load()

	// Initialize backend client (optional - only if BACKEND_URL provided)
	var client llm.Client
	if cfg.BackendConfigured() {
		client = backend.NewHTTPClient(backend.Config{
			BaseURL: cfg.BackendURL,
			APIKey:  cfg.BackendAPIKey,
			Timeout: cfg.BackendTimeout,
		})
		log.Printf("✅ Backend configured: %s", cfg.BackendURL)
	} else {
		log.Println("✅ No backend configured, running in echo-only mode")
	}

	engine := gateway.NewEngine(client, cfg.FallbackEnabled, cfg.BackendTimeout)
	handler := api.NewHandler(engine)

	// Setup Gin router
	router := gin.Default()
	router.Use(middleware.CORS())

	router.GET("/healthz", handler.Healthz)
	router.GET("/v1/models", handler.ListModels)
	router.POST("/v1/chat/completions", handler.ChatCompletions)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Gateway starting on http://localhost:%s", cfg.Port)
		log.Printf("📝 API endpoints:")
		log.Printf("   GET    /healthz")
		log.Printf("   GET    /v1/models")
		log.Printf("   POST   /v1/chat/completions")
		log.Printf("   GET    /metrics")
		log.Printf("")
		log.Printf("Press Ctrl+C to stop")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
