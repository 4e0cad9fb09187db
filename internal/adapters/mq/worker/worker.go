// Package worker defines worker contracts for asynchronous XP crediting and
// progression recomputes.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/stitchsocial/clout/internal/adapters/mq/queue"
	"github.com/stitchsocial/clout/internal/domain/model"
	"github.com/stitchsocial/clout/internal/domain/progression"
	"github.com/stitchsocial/clout/pkg/logger"
	"github.com/stitchsocial/clout/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 20 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Event abstracts what workers read off the queue.
type Event = model.XPEvent

// XPCrediter applies an XP credit and returns the creator's full
// per-community totals after the credit.
type XPCrediter interface {
	Credit(ctx context.Context, creatorID, communityID string, amount int64) map[string]int64
}

// Ledger reads and extends a creator's milestone ledger. Record must be an
// atomic union so racing recomputes for the same creator cannot claim the
// same milestone twice.
type Ledger interface {
	Awarded(ctx context.Context, creatorID string) progression.MilestoneSet
	Record(ctx context.Context, creatorID string, levels []int) []int
}

// Updater persists a creator's recomputed progression snapshot.
type Updater interface {
	Upsert(ctx context.Context, creatorID string, state progression.GlobalState) (bool, error)
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes XP events and writes progression updates using the
// provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining events before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing XP events.
type InMemoryWorker struct {
	queue   Queue
	xp      XPCrediter
	ledger  Ledger
	updater Updater
	name    string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, xp XPCrediter, ledger Ledger, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		xp:       xp,
		ledger:   ledger,
		updater:  updater,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"), // will be updated by options
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	eventChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-eventChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			// Process the event
			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing event", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	close(w.shutdown)

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processEvent credits one XP event and recomputes the creator's global
// progression from the resulting totals.
func (w *InMemoryWorker) processEvent(ctx context.Context, event queue.Event) error {
	// Track overall processing latency
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	totals := w.xp.Credit(ctx, event.CreatorID, event.CommunityID, event.Amount)

	// Track recompute latency
	recomputeStart := time.Now()
	awarded := w.ledger.Awarded(ctx, event.CreatorID)
	state, eligible := progression.Recalculate(totals, awarded)
	metrics.RecordRecomputeLatency(float64(time.Since(recomputeStart).Milliseconds()))

	// Persist the ledger union before publishing the new state, so a
	// milestone can never be re-reported after it was surfaced.
	newly := w.ledger.Record(ctx, event.CreatorID, eligible)
	for _, level := range newly {
		metrics.RecordMilestoneAwarded()
		w.logger.Info(ctx, "milestone awarded",
			logger.String("creatorID", event.CreatorID),
			logger.Int("milestone", level),
		)
	}

	updated, err := w.updater.Upsert(ctx, event.CreatorID, state)
	if err != nil {
		metrics.RecordLeaderboardError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "leaderboard_error")
		metrics.RecordErrorByType("leaderboard_error", "high")
		w.logger.Error(ctx, "leaderboard update failed for event",
			logger.String("eventID", event.EventID),
			logger.Error(err),
		)
		return fmt.Errorf("leaderboard update failed: %w", err)
	}

	if updated {
		metrics.RecordLeaderboardUpdate()
	}
	metrics.RecordEventProcessed()

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Metrics tracking
	processedCount    int64
	lastProcessedTime time.Time

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, xp XPCrediter, ledger Ledger, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             queue,
		shutdown:          make(chan struct{}),
		done:              make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			xp,
			ledger,
			updater,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	// Initialize worker metrics
	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)
	metrics.UpdateWorkerMessagesPerSecond(0.0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}

	// Start metrics updater
	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater starts a background goroutine that updates worker metrics.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

// updateMetrics updates worker-related metrics.
func (p *Pool) updateMetrics() {
	// Calculate messages per second
	now := time.Now()
	timeDiff := now.Sub(p.lastProcessedTime).Seconds()
	if timeDiff > 0 {
		messagesPerSecond := float64(p.processedCount) / timeDiff
		metrics.UpdateWorkerMessagesPerSecond(messagesPerSecond)
	}

	// Reset counters
	p.processedCount = 0
	p.lastProcessedTime = now
}

// RecordProcessedMessage increments the processed message count.
func (p *Pool) RecordProcessedMessage() {
	p.processedCount++
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	// Stop the metrics updater and signal every worker
	close(p.shutdown)
	for _, worker := range p.workers {
		close(worker.shutdown)
	}

	// Wait for all workers to finish
	for _, worker := range p.workers {
		select {
		case <-worker.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new events
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Signal shutdown to all workers
	close(p.shutdown)

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
