//go:build !release
// +build !release

package main

import (
	"github.com/gin-gonic/gin"

	"github.com/BuyNemesis/nemesis-backend/core/config"
)

// initializeGin sets up Gin in debug mode for development builds
func initializeGin(_ *config.Config) *gin.Engine {
	// Gin will be in debug mode by default
	router := gin.New()

	return router
}
