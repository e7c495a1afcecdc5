package webhook

import (
	"errors"
	"fmt"
)

// ErrWebhookNotConfigured indicates that no webhook URL was supplied.
// Callers are expected to check for this at the admission boundary rather
// than discovering it after a job was queued.
var ErrWebhookNotConfigured = errors.New("webhook URL is not configured")

// DeliveryError represents a non-success response from the webhook endpoint
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

// IsDeliveryError checks if the error is a DeliveryError
func IsDeliveryError(err error) bool {
	var deliveryErr *DeliveryError
	return errors.As(err, &deliveryErr)
}
