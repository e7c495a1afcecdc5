package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/BuyNemesis/nemesis-backend/core/ccc/logging"
	"github.com/BuyNemesis/nemesis-backend/core/config"
	"github.com/BuyNemesis/nemesis-backend/core/relay"
	"github.com/BuyNemesis/nemesis-backend/core/storage"
	"github.com/BuyNemesis/nemesis-backend/core/webhook"
	"github.com/BuyNemesis/nemesis-backend/relay-server/handlers"
)

const (
	webhookTimeout      = 30 * time.Second
	storageTimeout      = 15 * time.Second
	healthProbeInterval = 30 * time.Second
	shutdownGracePeriod = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.json", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize logger
	logger := logging.CreateLogger(logging.LogLevel(cfg.LogLevel), cfg.LogPath, "relay-server")
	logger.Info("Starting relay server", "port", cfg.RelayPort)

	if cfg.Env.WebhookURL == "" {
		logger.Warn("WEBHOOK_URL is not set, uploads will be rejected until it is configured")
	}

	// Initialize the webhook transport and the upload queue
	transport := webhook.NewDiscordWebhook(cfg.Env.WebhookURL, webhookTimeout)
	pacing := time.Duration(cfg.DeliveryPacingMillis) * time.Millisecond
	queue := relay.NewUploadQueue(logger, transport, pacing)

	// Initialize the storage facade with its health monitor
	storageClient := storage.NewServiceClient(cfg.Env.StorageServiceURL, storageTimeout)
	monitor := storage.NewHealthMonitor(logger, storageClient, healthProbeInterval)
	monitor.Start()
	facade := storage.NewFacade(logger, storageClient, monitor)

	// Initialize handlers
	validator := relay.NewValidator()
	uploadHandler := handlers.NewUploadHandler(
		logger,
		validator,
		queue,
		facade,
		cfg.Env.ChannelID,
		cfg.Env.WebhookURL != "",
	)

	// Set up Gin router
	router := initializeGin(cfg)
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	setupRoutes(router, uploadHandler)

	addr := fmt.Sprintf("%s:%d", cfg.RelayAddr, cfg.RelayPort)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("Server listening", "address", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for a termination signal, then shut down with a bounded grace
	// period. Pending queue entries are lost; delivery is best-effort.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down relay server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("Server shutdown was forced", "error", err)
	}

	monitor.Stop()
	queue.Stop(shutdownGracePeriod)

	logger.Info("Relay server stopped")
}

// setupRoutes configures the HTTP routes
func setupRoutes(router *gin.Engine, uploadHandler *handlers.UploadHandler) {
	api := router.Group("/api")

	// Upload admission endpoint
	api.POST("/upload", uploadHandler.Upload)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "relay-server",
		})
	})
}
