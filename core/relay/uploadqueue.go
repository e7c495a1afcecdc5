package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BuyNemesis/nemesis-backend/core/ccc/logging"
	"github.com/BuyNemesis/nemesis-backend/core/webhook"
)

// UploadQueue buffers upload jobs and relays them to the webhook transport
// in FIFO order with a single active consumer. Delivery is best-effort:
// a failed job is logged and dropped, never retried, and never reordered
// ahead of later jobs. Queue contents are lost on process exit.
type UploadQueue interface {
	// Enqueue appends a job to the tail of the queue and wakes the consumer
	// if it is idle. It never blocks and always succeeds.
	Enqueue(job *UploadJob)

	// Len reports the number of jobs waiting in the queue
	Len() int

	// Stop signals the consumer and waits up to timeout for any in-flight
	// delivery to finish. Pending jobs are abandoned.
	Stop(timeout time.Duration)
}

// uploadQueue implements UploadQueue over a mutex-guarded slice. A busy
// flag enforces the single-consumer invariant: re-entrant drain starts
// are no-ops even under rapid Enqueue bursts.
type uploadQueue struct {
	transport webhook.Transport
	logger    logging.Logger
	pacing    time.Duration
	sleep     func(d time.Duration)

	mu       sync.Mutex
	jobs     []*UploadJob
	draining bool
	stopped  bool
	wg       sync.WaitGroup
}

// NewUploadQueue creates an upload queue delivering through the given
// transport. A non-zero pacing introduces a fixed pause between consecutive
// deliveries to respect external rate limits; the pause never blocks Enqueue.
func NewUploadQueue(logger logging.Logger, transport webhook.Transport, pacing time.Duration) UploadQueue {
	if logger == nil {
		logger = logging.NopLogger
	}

	return &uploadQueue{
		transport: transport,
		logger:    logger,
		pacing:    pacing,
		sleep:     time.Sleep,
	}
}

// Enqueue adds a job to the queue
func (q *uploadQueue) Enqueue(job *UploadJob) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.jobs = append(q.jobs, job)
	q.logger.Info("queued upload job",
		"destination", job.Destination,
		"correlation_id", job.CorrelationID,
		"pending", len(q.jobs))

	if q.draining || q.stopped {
		return
	}

	q.draining = true
	q.wg.Add(1)
	go q.drain()
}

// Len reports the number of pending jobs
func (q *uploadQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Stop shuts the queue down, allowing an in-flight delivery to complete
// within the given grace period
func (q *uploadQueue) Stop(timeout time.Duration) {
	q.mu.Lock()
	q.stopped = true
	pending := len(q.jobs)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		q.logger.Warn("upload queue stop timed out, abandoning in-flight delivery")
	}

	if pending > 0 {
		q.logger.Warn("upload queue stopped with pending jobs", "dropped", pending)
	}
}

// drain is the consumer loop. The emptiness check and the busy-flag reset
// happen under the same lock as Enqueue's append, so a job enqueued during
// the last delivery is either seen by this loop or triggers a fresh one.
func (q *uploadQueue) drain() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		if q.stopped || len(q.jobs) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		q.mu.Unlock()

		q.deliver(job)

		if q.pacing > 0 {
			q.sleep(q.pacing)
		}
	}
}

// deliver performs one delivery attempt for the job. Failure is terminal
// for the job but never stops the loop.
func (q *uploadQueue) deliver(job *UploadJob) {
	content := normalizeContent(job)

	var embeds []webhook.Embed
	if job.Embed != nil {
		if job.File != nil {
			// The multipart path cannot carry a structured payload alongside
			// the file, so the embed is folded into the text instead.
			content = foldEmbed(content, job.Embed)
		} else {
			embeds = []webhook.Embed{*job.Embed}
		}
	}

	_, err := q.transport.Send(context.Background(), content, job.File, embeds)
	if err != nil {
		q.logger.Error("failed to deliver upload",
			"error", err,
			"destination", job.Destination,
			"correlation_id", job.CorrelationID)
		return
	}

	q.logger.Info("delivered upload",
		"destination", job.Destination,
		"correlation_id", job.CorrelationID)
}

// normalizeContent substitutes a default notification for an empty message
// body. The default always names the file when one is attached.
func normalizeContent(job *UploadJob) string {
	if job.Content != "" {
		return job.Content
	}
	if job.File != nil {
		return fmt.Sprintf("📁 New config uploaded: %s", job.File.Name)
	}
	return "📁 New upload received"
}

// foldEmbed appends the embed's title and description to the content text
func foldEmbed(content string, embed *webhook.Embed) string {
	if embed.Title != "" {
		content += "\n**" + embed.Title + "**"
	}
	if embed.Description != "" {
		content += "\n" + embed.Description
	}
	return content
}
