package storage

import (
	"context"

	"github.com/BuyNemesis/nemesis-backend/core/ccc/logging"
)

// StoreOutcome tags the result of a best-effort store attempt
type StoreOutcome int

const (
	// OutcomeStored means the file was persisted and an ID was issued
	OutcomeStored StoreOutcome = iota
	// OutcomeUnavailable means the attempt was skipped because the storage
	// service is known to be down
	OutcomeUnavailable
	// OutcomeFailed means the attempt was made and did not succeed
	OutcomeFailed
)

// StoreResult is the explicit, inspectable result of TryStore. Storage
// trouble never propagates as an error to the upload flow; callers branch
// on Outcome when they care and ignore it when they don't.
type StoreResult struct {
	Outcome StoreOutcome
	ID      string
	Err     error
}

// Facade attempts best-effort persistence to the storage service ahead of
// the webhook relay. Storage unavailability must never block or fail the
// user-visible upload flow.
type Facade struct {
	logger  logging.Logger
	client  ServiceClient
	tracker AvailabilityTracker
}

// NewFacade creates a storage facade. A nil tracker disables the
// short-circuit and every call goes over the network.
func NewFacade(logger logging.Logger, client ServiceClient, tracker AvailabilityTracker) *Facade {
	if logger == nil {
		logger = logging.NopLogger
	}
	if tracker == nil {
		tracker = AlwaysAvailable
	}

	return &Facade{
		logger:  logger,
		client:  client,
		tracker: tracker,
	}
}

// TryStore attempts one store round trip. When the cached availability flag
// says the service is down, the network call is skipped entirely and the
// caller proceeds with the relay-only path.
func (f *Facade) TryStore(ctx context.Context, request StoreConfigRequest) StoreResult {
	if !f.tracker.Available() {
		f.logger.Info("storage service marked unavailable, skipping store", "file", request.FileName)
		return StoreResult{Outcome: OutcomeUnavailable}
	}

	id, err := f.client.StoreConfig(ctx, request)
	if err != nil {
		f.logger.Warn("failed to store config, proceeding without storage", "error", err, "file", request.FileName)
		f.tracker.SetAvailable(false)
		return StoreResult{Outcome: OutcomeFailed, Err: err}
	}

	f.tracker.SetAvailable(true)
	f.logger.Info("stored config", "id", id, "file", request.FileName)
	return StoreResult{Outcome: OutcomeStored, ID: id}
}
