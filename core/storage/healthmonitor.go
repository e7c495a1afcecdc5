package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BuyNemesis/nemesis-backend/core/ccc/logging"
)

// AvailabilityTracker exposes the cached availability of the storage service.
// The flag is advisory, an optimization to skip requests that are doomed to
// fail; last-write-wins between the probe and request-path outcomes is fine.
type AvailabilityTracker interface {
	Available() bool
	SetAvailable(available bool)
}

// alwaysAvailable is the tracker used when no health monitoring is wired up
type alwaysAvailable struct{}

// AlwaysAvailable is a singleton tracker that never short-circuits
var AlwaysAvailable AvailabilityTracker = &alwaysAvailable{}

func (t *alwaysAvailable) Available() bool             { return true }
func (t *alwaysAvailable) SetAvailable(available bool) {}

// HealthMonitor periodically probes the storage service and maintains the
// availability flag consulted by the request path
type HealthMonitor struct {
	logger    logging.Logger
	client    ServiceClient
	interval  time.Duration
	available atomic.Bool
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewHealthMonitor creates a health monitor probing at the given interval.
// The service is assumed available until the first probe says otherwise.
func NewHealthMonitor(logger logging.Logger, client ServiceClient, interval time.Duration) *HealthMonitor {
	if logger == nil {
		logger = logging.NopLogger
	}

	m := &HealthMonitor{
		logger:   logger,
		client:   client,
		interval: interval,
		stopChan: make(chan struct{}),
	}
	m.available.Store(true)
	return m
}

// Start begins the background probe loop. It probes once immediately so the
// flag reflects reality before the first interval elapses.
func (m *HealthMonitor) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		m.probe()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.probe()
			case <-m.stopChan:
				return
			}
		}
	}()
}

// Stop terminates the probe loop
func (m *HealthMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
	m.wg.Wait()
}

// Available reports the cached availability flag
func (m *HealthMonitor) Available() bool {
	return m.available.Load()
}

// SetAvailable overwrites the availability flag. Called by the request path
// when an actual store attempt succeeds or fails.
func (m *HealthMonitor) SetAvailable(available bool) {
	m.available.Store(available)
}

// probe performs one health check round trip
func (m *HealthMonitor) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := m.client.CheckHealth(ctx)
	wasAvailable := m.available.Load()

	if err != nil {
		if wasAvailable {
			m.logger.Warn("storage service became unavailable", "error", err)
		}
		m.available.Store(false)
		return
	}

	if !wasAvailable {
		m.logger.Info("storage service is available again")
	}
	m.available.Store(true)
}
