package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BuyNemesis/nemesis-backend/core/ccc/logging"
	"github.com/BuyNemesis/nemesis-backend/core/relay"
	"github.com/BuyNemesis/nemesis-backend/core/storage"
)

// UploadHandler handles config upload admission. A successful response means
// the job was queued, not that it was delivered; delivery outcome is
// deliberately decoupled from admission.
type UploadHandler struct {
	logger            logging.Logger
	validator         *relay.Validator
	queue             relay.UploadQueue
	facade            *storage.Facade
	channelID         string
	webhookConfigured bool
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(
	logger logging.Logger,
	validator *relay.Validator,
	queue relay.UploadQueue,
	facade *storage.Facade,
	channelID string,
	webhookConfigured bool,
) *UploadHandler {
	if logger == nil {
		logger = logging.NopLogger
	}

	return &UploadHandler{
		logger:            logger,
		validator:         validator,
		queue:             queue,
		facade:            facade,
		channelID:         channelID,
		webhookConfigured: webhookConfigured,
	}
}

// Upload handles POST /api/upload
func (h *UploadHandler) Upload(c *gin.Context) {
	if !h.webhookConfigured {
		h.logger.Error("upload rejected, webhook URL is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook is not configured"})
		return
	}

	req := relay.AdmissionRequest{
		Content:     c.PostForm("content"),
		EmbedsJSON:  c.PostForm("embeds"),
		Destination: h.channelID,
	}

	fileHeader, err := c.FormFile("file")
	if err != nil && err != http.ErrMissingFile {
		h.logger.Warn("failed to read uploaded file", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file upload"})
		return
	}

	if fileHeader != nil {
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

		req.FileName = fileHeader.Filename
		req.FileData = data
		req.FileMimeType = fileHeader.Header.Get("Content-Type")
	}

	job, err := h.validator.Validate(req)
	if err != nil {
		if relay.IsValidationError(err) {
			h.logger.Warn("upload rejected", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("unexpected validation failure", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Best-effort persistence before the relay. Storage being down never
	// blocks the upload; the job just goes out without a correlation ID.
	if job.File != nil {
		result := h.facade.TryStore(c.Request.Context(), storage.StoreConfigRequest{
			FileName:    job.File.Name,
			FileData:    job.File.Data,
			Name:        c.PostForm("name"),
			Description: c.PostForm("description"),
			Author:      c.PostForm("author"),
			Tags:        splitTags(c.PostForm("tags")),
		})
		if result.Outcome == storage.OutcomeStored {
			job.CorrelationID = result.ID
		}
	}

	h.queue.Enqueue(job)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Upload queued",
		"queueTime": job.EnqueuedAt.Format(time.RFC3339),
	})
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
