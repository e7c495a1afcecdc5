package relay

import (
	"time"

	"github.com/BuyNemesis/nemesis-backend/core/webhook"
)

// UploadJob represents one pending relay of a file/message to the webhook
// destination. A job is created by the Validator, owned by the queue after
// Enqueue and dropped after a single delivery attempt, successful or not.
type UploadJob struct {
	// File is the optional binary attachment. Exclusively owned by the job
	// until consumed by the transport.
	File *webhook.FilePayload

	// Content is the optional message text. The queue substitutes a default
	// notification when it is empty, since the transport rejects empty bodies.
	Content string

	// Embed is the optional single structured annotation.
	Embed *webhook.Embed

	// Destination identifies the target channel. Opaque, logging only.
	Destination string

	// CorrelationID links the job to a stored config for traceability.
	// Never used for dedup or ordering.
	CorrelationID string

	EnqueuedAt time.Time
}
