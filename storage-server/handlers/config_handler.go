package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BuyNemesis/nemesis-backend/core/ccc/logging"
	"github.com/BuyNemesis/nemesis-backend/core/configfiles"
)

const (
	// configFileExtension is the only file extension the store accepts
	configFileExtension = ".ini"

	// maxStoreSizeBytes is the file size ceiling for direct stores. The
	// public relay path enforces its own, tighter ceiling.
	maxStoreSizeBytes = 5 * 1024 * 1024
)

// ConfigHandler handles config file storage operations
type ConfigHandler struct {
	logger  logging.Logger
	manager configfiles.StorageManager
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(logger logging.Logger, manager configfiles.StorageManager) *ConfigHandler {
	if logger == nil {
		logger = logging.NopLogger
	}

	return &ConfigHandler{
		logger:  logger,
		manager: manager,
	}
}

// StoreConfig handles POST /api/store-config
func (h *ConfigHandler) StoreConfig(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.logger.Warn("store request without file", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Config file is required"})
		return
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), configFileExtension) {
		h.logger.Warn("store request with invalid file type", "filename", fileHeader.Filename)
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Only %s files are accepted", configFileExtension)})
		return
	}

	if fileHeader.Size > maxStoreSizeBytes {
		h.logger.Warn("store request with oversized file", "filename", fileHeader.Filename, "size", fileHeader.Size)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Config file is too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded file", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read uploaded file", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	meta, err := h.manager.StoreConfig(c.Request.Context(), configfiles.StoreRequest{
		FileName:    fileHeader.Filename,
		Data:        data,
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Author:      c.PostForm("author"),
		Tags:        splitTags(c.PostForm("tags")),
	})
	if err != nil {
		h.logger.Error("failed to store config", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store config"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       meta.ID,
		"name":     meta.Name,
		"size":     meta.Size,
		"uploaded": meta.UploadedAt,
	})
}

// GetConfig handles GET /api/configs/:id
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	id := c.Param("id")

	meta, err := h.manager.GetConfig(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to get config", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get config"})
		return
	}
	if meta == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Config not found"})
		return
	}

	c.JSON(http.StatusOK, meta)
}

// DownloadConfig handles GET /api/configs/:id/download
func (h *ConfigHandler) DownloadConfig(c *gin.Context) {
	id := c.Param("id")

	meta, data, err := h.manager.DownloadConfig(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to download config", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to download config"})
		return
	}
	if meta == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Config not found"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.OriginalFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

// ListConfigs handles GET /api/configs
func (h *ConfigHandler) ListConfigs(c *gin.Context) {
	metas, err := h.manager.ListConfigs(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list configs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list configs"})
		return
	}

	if metas == nil {
		metas = []*configfiles.Metadata{}
	}

	c.JSON(http.StatusOK, gin.H{"configs": metas})
}

// DeleteConfig handles DELETE /api/configs/:id
func (h *ConfigHandler) DeleteConfig(c *gin.Context) {
	id := c.Param("id")

	meta, err := h.manager.GetConfig(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to get config for deletion", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete config"})
		return
	}
	if meta == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Config not found"})
		return
	}

	if err := h.manager.DeleteConfig(c.Request.Context(), id); err != nil {
		h.logger.Error("failed to delete config", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete config"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Config deleted"})
}

// splitTags parses a comma-separated tags field, dropping empty entries
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
