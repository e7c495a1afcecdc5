//go:build release
// +build release

package main

import (
	"github.com/gin-gonic/gin"

	"github.com/BuyNemesis/nemesis-backend/core/config"
)

// initializeGin sets up Gin in release mode for production builds
func initializeGin(_ *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// The relay sits behind its own reverse proxy in production; don't
	// trust any proxy headers by default.
	router.SetTrustedProxies(nil)

	return router
}
