package relay

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/BuyNemesis/nemesis-backend/core/webhook"
)

const (
	// ConfigFileExtension is the only file extension accepted for upload
	ConfigFileExtension = ".ini"

	// MaxFileSizeBytes is the ceiling for uploaded files on the public relay path
	MaxFileSizeBytes = 1024 * 1024

	// MaxContentLength is the platform message-length limit
	MaxContentLength = 2000
)

// AdmissionRequest is the raw input to validation, as extracted from the
// inbound HTTP request. All fields except Destination are optional.
type AdmissionRequest struct {
	FileName     string
	FileData     []byte
	FileMimeType string
	Content      string
	EmbedsJSON   string
	Destination  string
}

// Validator rejects malformed or policy-violating upload requests before
// they consume queue capacity or network resources. Validation is pure;
// on success it produces a fully-formed UploadJob ready for admission.
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the request against the admission policy and builds the
// upload job. The returned error is always a *ValidationError.
func (v *Validator) Validate(req AdmissionRequest) (*UploadJob, error) {
	job := &UploadJob{
		Content:     req.Content,
		Destination: req.Destination,
		EnqueuedAt:  time.Now().UTC(),
	}

	if req.FileName != "" {
		if !strings.HasSuffix(strings.ToLower(req.FileName), ConfigFileExtension) {
			return nil, &ValidationError{
				Code:    CodeInvalidFileType,
				Message: fmt.Sprintf("only %s files are accepted", ConfigFileExtension),
			}
		}

		if len(req.FileData) > MaxFileSizeBytes {
			return nil, &ValidationError{
				Code:    CodeFileTooLarge,
				Message: fmt.Sprintf("file exceeds the maximum size of %d bytes", MaxFileSizeBytes),
			}
		}

		job.File = &webhook.FilePayload{
			Name:     req.FileName,
			Data:     req.FileData,
			MimeType: req.FileMimeType,
		}
	}

	if len(req.Content) > MaxContentLength {
		return nil, &ValidationError{
			Code:    CodeContentTooLong,
			Message: fmt.Sprintf("content exceeds the maximum length of %d characters", MaxContentLength),
		}
	}

	if req.EmbedsJSON != "" {
		embed, err := parseEmbeds(req.EmbedsJSON)
		if err != nil {
			return nil, err
		}
		job.Embed = embed
	}

	return job, nil
}

// parseEmbeds decodes the embeds field, which must be a JSON array with at
// most one element. Returns nil for an empty array.
func parseEmbeds(embedsJSON string) (*webhook.Embed, error) {
	var embeds []webhook.Embed
	if err := json.Unmarshal([]byte(embedsJSON), &embeds); err != nil {
		return nil, &ValidationError{
			Code:    CodeInvalidEmbedFormat,
			Message: "embeds must be a JSON array",
		}
	}

	if len(embeds) > 1 {
		return nil, &ValidationError{
			Code:    CodeInvalidEmbedFormat,
			Message: "embeds may contain at most one element",
		}
	}

	if len(embeds) == 0 {
		return nil, nil
	}

	return &embeds[0], nil
}
