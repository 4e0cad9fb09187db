// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"

	eventqueue "github.com/stitchsocial/clout/internal/adapters/mq/queue"
	workerpool "github.com/stitchsocial/clout/internal/adapters/mq/worker"
	repository "github.com/stitchsocial/clout/internal/adapters/repository"
	"github.com/stitchsocial/clout/internal/domain/dedupe"
	"github.com/stitchsocial/clout/internal/domain/matching"
	"github.com/stitchsocial/clout/internal/domain/model"
	"github.com/stitchsocial/clout/internal/domain/progression"
	"github.com/stitchsocial/clout/internal/domain/types"
	"github.com/stitchsocial/clout/pkg/logger"
	"github.com/stitchsocial/clout/pkg/metrics"
)

// Service implements the API dependencies for the global progression system.
type Service struct {
	mu sync.RWMutex

	// Core components
	leaderboard repository.Store
	xp          *repository.XPStore
	ledger      *repository.MilestoneLedger
	deduper     dedupe.Deduper
	eventQueue  eventqueue.Queue
	workerPool  *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2, // Default to 2x CPU cores
		queueSize:   100000,               // Default queue size
		dedupeSize:  50000,                // Default dedupe cache size
		stopCh:      make(chan struct{}),
		logger:      nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting progression service...")

	// Initialize components
	s.leaderboard = repository.NewTreapStore(ctx)
	s.logger.Info(ctx, "using treap store")
	s.xp = repository.NewXPStore()
	s.ledger = repository.NewMilestoneLedger()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)

	// Create and start the recompute worker pool
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.xp, s.ledger, s.leaderboard)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "progression service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping progression service...")

	// Stop worker pool
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	// Close leaderboard store
	if s.leaderboard != nil {
		if closer, ok := s.leaderboard.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	// Close queue
	if q, ok := s.eventQueue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "progression service stopped")
}

// SeenAndRecord atomically checks if an event id was seen and records it if not.
// Returns true if the event was already seen, false if it was newly recorded.
// This is the ONLY method for deduplication - thread-safe and atomic.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord removes an event ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits an XP event for asynchronous processing. Idempotency is
// the caller's responsibility: gate submissions with SeenAndRecord and roll
// back with Unrecord when Enqueue reports backpressure.
func (s *Service) Enqueue(ctx context.Context, e model.XPEvent) bool {
	s.logger.Debug(ctx, "received XP event",
		logger.String("eventID", e.EventID),
		logger.String("creatorID", e.CreatorID),
		logger.String("communityID", e.CommunityID),
		logger.Int64("amount", e.Amount),
	)

	success := s.eventQueue.Enqueue(ctx, e)
	if success {
		metrics.UpdateQueueSize(s.eventQueue.Len(ctx))
	}
	return success
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.leaderboard.TopN(ctx, n)
	if err != nil {
		return nil, err
	}

	// Convert to API format
	apiEntries := make([]types.Entry, len(entries))
	for i, entry := range entries {
		apiEntries[i] = toAPIEntry(entry)
	}

	return apiEntries, nil
}

// Rank returns the rank and progression snapshot for a given creator id.
func (s *Service) Rank(ctx context.Context, creatorID string) (types.Entry, error) {
	entry, err := s.leaderboard.Rank(ctx, creatorID)
	if err != nil {
		return types.Entry{}, err
	}

	return toAPIEntry(entry), nil
}

func toAPIEntry(entry repository.Entry) types.Entry {
	return types.Entry{
		Rank:              entry.Rank,
		CreatorID:         entry.CreatorID,
		GlobalXP:          entry.GlobalXP,
		GlobalLevel:       entry.GlobalLevel,
		CloutBonus:        entry.CloutBonus,
		CommunitiesActive: entry.CommunitiesActive,
	}
}

// Progression returns the full derived global state for a creator along with
// the milestone levels already awarded. Returns repository.ErrNotFound for
// creators that have never earned XP.
func (s *Service) Progression(ctx context.Context, creatorID string) (progression.GlobalState, []int, error) {
	totals, ok := s.xp.Totals(ctx, creatorID)
	if !ok {
		return progression.GlobalState{}, nil, repository.ErrNotFound
	}

	awarded := s.ledger.Awarded(ctx, creatorID)
	state, _ := progression.Recalculate(totals, awarded)
	return state, awarded.Levels(), nil
}

// MatchScore computes the opportunity match score for a creator against a
// campaign's requirements.
func (s *Service) MatchScore(req matching.CampaignRequirements, m matching.CreatorMetrics) int {
	return matching.Score(req, m)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		totalCreators := s.leaderboard.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalCreators"] = totalCreators

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalCreators(totalCreators)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
