// Package repository defines the progression store interfaces and errors.
package repository

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stitchsocial/clout/internal/domain/progression"
	"github.com/stitchsocial/clout/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: global XP DESC, then creatorID ASC (deterministic).
// The BST comparator treats "less" as "ranks earlier", so an in-order
// traversal produces the leaderboard from best to worst. Global XP is
// already integral so nodes key on it directly; no score scaling needed.

// Default store configuration constants.
const (
	defaultSnapshotInterval = 1 * time.Second
	defaultTopCacheSize     = 500
	metricsUpdateInterval   = 5 * time.Second
)

// Snapshot represents an immutable snapshot of the leaderboard state.
type Snapshot struct {
	// Rank and XP in O(1) for reads
	RankByCreator map[string]int
	XPByCreator   map[string]int64

	// Fast Top-K cache (K much smaller than the full creator count)
	TopCache []Entry
}

// treap node
type node struct {
	id    string
	xp    int64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aXP, aID) should appear before (bXP, bID)
// in the leaderboard (higher XP ranks earlier).
func less(aXP int64, aID string, bXP int64, bID string) bool {
	if aXP != bXP {
		return aXP > bXP
	}
	return aID < bID // tie-breaker by id asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// xpToPriority converts an XP total to a heap priority. Higher XP gets a
// higher priority so hot creators stay near the treap root.
func xpToPriority(xp int64) uint64 {
	const offset = uint64(1) << 63
	return uint64(xp) + offset
}

func insert(n *node, id string, xp int64) *node {
	if n == nil {
		return &node{id: id, xp: xp, prio: xpToPriority(xp), size: 1}
	}
	if less(xp, id, n.xp, n.id) {
		n.left = insert(n.left, id, xp)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, xp)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, xp int64) *node {
	if n == nil {
		return nil
	}
	if xp == n.xp && id == n.id {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, xp)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, xp)
		}
	} else if less(xp, id, n.xp, n.id) {
		n.left = deleteNode(n.left, id, xp)
	} else {
		n.right = deleteNode(n.right, id, xp)
	}
	fix(n)
	return n
}

// entryFor builds a leaderboard row from a creator's stored snapshot.
func entryFor(id string, state progression.GlobalState) Entry {
	return Entry{
		CreatorID:         id,
		GlobalXP:          state.TotalGlobalXP,
		GlobalLevel:       state.GlobalLevel,
		TapMultiplier:     state.TapMultiplierBonus,
		CloutBonus:        state.PermanentCloutBonus,
		CommunitiesActive: state.CommunitiesActive,
	}
}

// collectTopN appends up to limit entries in rank order (highest XP first).
func collectTopN(n *node, limit int, states map[string]progression.GlobalState, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}

	// In-order traversal: the BST ordering already handles the
	// creator-ID tie-break, so left first, then node, then right.
	collectTopN(n.left, limit, states, out)

	if len(*out) < limit {
		if state, exists := states[n.id]; exists {
			*out = append(*out, entryFor(n.id, state))
		}
	}

	if len(*out) < limit {
		collectTopN(n.right, limit, states, out)
	}
}

// collectAll appends all entries in rank order (highest XP first).
func collectAll(n *node, states map[string]progression.GlobalState, out *[]Entry) {
	if n == nil {
		return
	}
	collectAll(n.left, states, out)
	if state, ok := states[n.id]; ok {
		*out = append(*out, entryFor(n.id, state))
	}
	collectAll(n.right, states, out)
}

// sortEntries orders entries by global XP desc, creator ID asc, matching
// the treap comparator.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].GlobalXP != entries[j].GlobalXP {
			return entries[i].GlobalXP > entries[j].GlobalXP
		}
		return entries[i].CreatorID < entries[j].CreatorID
	})
}

// assignRanksWithTies assigns ranks with tie handling: creators with the
// same global XP share a rank and the next distinct XP takes the next
// consecutive rank.
func assignRanksWithTies(entries []Entry) {
	if len(entries) == 0 {
		return
	}

	currentRank := 1
	for i := 0; i < len(entries); i++ {
		entries[i].Rank = currentRank

		sameXPCount := 1
		for j := i + 1; j < len(entries) && entries[j].GlobalXP == entries[i].GlobalXP; j++ {
			entries[j].Rank = currentRank
			sameXPCount++
		}

		currentRank++
		i += sameXPCount - 1
	}
}

// TreapStore is the in-memory progression leaderboard.
type TreapStore struct {
	mu               sync.RWMutex
	root             *node
	byID             map[string]progression.GlobalState
	snapshotInterval time.Duration
	topCacheSize     int

	// snapshot is an atomic pointer to the latest published Snapshot
	snapshot atomic.Pointer[Snapshot]

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		snapshotInterval: defaultSnapshotInterval,
		topCacheSize:     defaultTopCacheSize,
		byID:             make(map[string]progression.GlobalState),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startPeriodicSnapshots(ctx)
	s.startMetricsUpdater(ctx)

	return s
}

// startPeriodicSnapshots starts a background goroutine that publishes
// snapshots at the configured interval.
func (s *TreapStore) startPeriodicSnapshots(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.snapshotInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.publishSnapshot()
			}
		}
	}()
}

// publishSnapshot rebuilds and publishes a new snapshot.
func (s *TreapStore) publishSnapshot() {
	start := time.Now()
	s.mu.RLock()
	s.publishSnapshotInternal()
	s.mu.RUnlock()

	ms := float64(time.Since(start).Milliseconds())
	metrics.RecordRepositorySnapshotRebuildDuration(ms)
	metrics.UpdateRepositorySnapshotLastDurationMs(ms)
	metrics.UpdateRepositorySnapshotLastUnix(time.Now().Unix())
	metrics.IncrementRepositorySnapshotCount()
}

// publishSnapshotInternal rebuilds the snapshot (assumes lock is held).
func (s *TreapStore) publishSnapshotInternal() {
	topCache := make([]Entry, 0, s.topCacheSize)
	collectTopN(s.root, s.topCacheSize, s.byID, &topCache)

	rankByCreator := make(map[string]int, len(s.byID))
	xpByCreator := make(map[string]int64, len(s.byID))

	allEntries := make([]Entry, 0, len(s.byID))
	collectAll(s.root, s.byID, &allEntries)
	assignRanksWithTies(allEntries)

	for _, entry := range allEntries {
		rankByCreator[entry.CreatorID] = entry.Rank
		xpByCreator[entry.CreatorID] = entry.GlobalXP
	}

	for i := range topCache {
		if rank, exists := rankByCreator[topCache[i].CreatorID]; exists {
			topCache[i].Rank = rank
		}
	}

	s.snapshot.Store(&Snapshot{
		RankByCreator: rankByCreator,
		XPByCreator:   xpByCreator,
		TopCache:      topCache,
	})
}

// Close gracefully shuts down the background goroutines.
func (s *TreapStore) Close() error {
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Upsert implements Store.Upsert with O(log n) expected time.
func (s *TreapStore) Upsert(ctx context.Context, creatorID string, state progression.GlobalState) (bool, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordRepositoryUpdateLatency(float64(latency))
	}()

	isNewCreator := false

	s.mu.Lock()
	if old, ok := s.byID[creatorID]; ok {
		if old == state { // snapshot already current
			s.mu.Unlock()
			return false, nil
		}
		s.root = deleteNode(s.root, creatorID, old.TotalGlobalXP)
	} else {
		isNewCreator = true
	}
	s.byID[creatorID] = state
	s.root = insert(s.root, creatorID, state.TotalGlobalXP)
	s.mu.Unlock()

	// Update metrics outside lock
	if isNewCreator {
		metrics.UpdateRepositoryRecordsTotal(s.Count(ctx))
	}

	// Snapshots are published periodically, not after every update.
	return true, nil
}

// Rank returns the current rank and snapshot for a creator in O(n).
func (s *TreapStore) Rank(ctx context.Context, creatorID string) (Entry, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordRepositoryQueryLatency(float64(latency))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[creatorID]; !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}

	allEntries := make([]Entry, 0, len(s.byID))
	collectAll(s.root, s.byID, &allEntries)
	sortEntries(allEntries)
	assignRanksWithTies(allEntries)

	for _, entry := range allEntries {
		if entry.CreatorID == creatorID {
			return entry, nil
		}
	}

	return Entry{}, ErrNotFound
}

// TopN returns the top N entries ordered by global XP desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordRepositoryQueryLatency(float64(latency))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectTopN(s.root, n, s.byID, &out)
	assignRanksWithTies(out)
	return out, nil
}

// Count returns the total number of creators.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// startMetricsUpdater starts a background goroutine that updates
// repository metrics.
func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

// updateMetrics updates all repository-related metrics.
func (s *TreapStore) updateMetrics() {
	s.mu.RLock()
	recordCount := len(s.byID)
	s.mu.RUnlock()

	metrics.UpdateRepositoryRecordsTotal(recordCount)
}
