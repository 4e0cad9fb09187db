package repository

import (
	"context"
	"sync"
)

// XPStore keeps per-creator, per-community XP totals. It is the write-side
// companion of the leaderboard: workers credit XP here and feed the full
// snapshot into the global recompute.
type XPStore struct {
	mu sync.RWMutex
	// creatorID -> communityID -> XP total
	totals map[string]map[string]int64
}

// NewXPStore constructs an empty XP store.
func NewXPStore() *XPStore {
	return &XPStore{
		totals: make(map[string]map[string]int64),
	}
}

// Credit adds amount to a creator's community total and returns a copy of
// all the creator's community totals after the credit. Totals never go
// below zero: a negative credit clamps the community at zero.
func (s *XPStore) Credit(ctx context.Context, creatorID, communityID string, amount int64) map[string]int64 {
	s.mu.Lock()

	communities, ok := s.totals[creatorID]
	if !ok {
		communities = make(map[string]int64)
		s.totals[creatorID] = communities
	}

	total := communities[communityID] + amount
	if total < 0 {
		total = 0
	}
	communities[communityID] = total

	snapshot := make(map[string]int64, len(communities))
	for id, xp := range communities {
		snapshot[id] = xp
	}
	s.mu.Unlock()

	return snapshot
}

// Totals returns a copy of a creator's community totals. The second return
// is false for a creator with no credited XP.
func (s *XPStore) Totals(ctx context.Context, creatorID string) (map[string]int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	communities, ok := s.totals[creatorID]
	if !ok {
		return nil, false
	}
	snapshot := make(map[string]int64, len(communities))
	for id, xp := range communities {
		snapshot[id] = xp
	}
	return snapshot, true
}

// Creators returns the number of creators with recorded XP.
func (s *XPStore) Creators(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.totals)
}
