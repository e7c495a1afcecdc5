package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/BuyNemesis/nemesis-backend/core/ccc/logging"
	"github.com/BuyNemesis/nemesis-backend/core/config"
	"github.com/BuyNemesis/nemesis-backend/core/configfiles"
	"github.com/BuyNemesis/nemesis-backend/storage-server/handlers"

	_ "github.com/mattn/go-sqlite3"
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
	logger := logging.CreateLogger(logging.LogLevel(cfg.LogLevel), cfg.LogPath, "storage-server")
	logger.Info("Starting storage server", "port", cfg.StoragePort, "path", cfg.StoragePath)

	// Initialize database
	database, err := sql.Open("sqlite3", filepath.Join(cfg.StoragePath, "configs.db"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	// Initialize storage services
	fileStore, err := configfiles.NewDiskFileStore(cfg.StoragePath)
	if err != nil {
		log.Fatalf("Failed to create file store: %v", err)
	}

	repo, err := configfiles.NewSQLiteMetadataRepository(database)
	if err != nil {
		log.Fatalf("Failed to create metadata repository: %v", err)
	}

	manager := configfiles.NewStorageManager(logger, repo, fileStore)

	// Initialize handlers
	configHandler := handlers.NewConfigHandler(logger, manager)

	// Set up Gin router
	router := initializeGin(cfg)
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	setupRoutes(router, configHandler)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.StorageAddr, cfg.StoragePort)
	logger.Info("Server listening", "address", addr)

	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}

// setupRoutes configures the HTTP routes
func setupRoutes(router *gin.Engine, configHandler *handlers.ConfigHandler) {
	api := router.Group("/api")

	api.POST("/store-config", configHandler.StoreConfig)
	api.GET("/configs", configHandler.ListConfigs)
	api.GET("/configs/:id", configHandler.GetConfig)
	api.GET("/configs/:id/download", configHandler.DownloadConfig)
	api.DELETE("/configs/:id", configHandler.DeleteConfig)

	// Health check endpoint used by the relay's availability probe
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "storage-server",
		})
	})
}
