package repository

import (
	"context"
	"sync"

	"github.com/stitchsocial/clout/internal/domain/progression"
)

// MilestoneLedger records which milestone levels have been credited to each
// creator. Entries are keyed (creatorID, milestone) and inserted at most
// once; Record behaves like an upsert against a uniqueness constraint, so
// re-delivery of an already-credited milestone is safe and reports nothing
// new.
type MilestoneLedger struct {
	mu      sync.RWMutex
	awarded map[string]progression.MilestoneSet
}

// NewMilestoneLedger constructs an empty ledger.
func NewMilestoneLedger() *MilestoneLedger {
	return &MilestoneLedger{
		awarded: make(map[string]progression.MilestoneSet),
	}
}

// Awarded returns a copy of the milestone levels already credited to a
// creator. The copy is safe to pass into a recompute without holding the
// ledger lock.
func (l *MilestoneLedger) Awarded(ctx context.Context, creatorID string) progression.MilestoneSet {
	l.mu.RLock()
	defer l.mu.RUnlock()

	set, ok := l.awarded[creatorID]
	if !ok {
		return progression.NewMilestoneSet()
	}
	return set.Union(nil)
}

// Record credits milestone levels to a creator and returns only the levels
// that were genuinely new. The check-and-insert is atomic: two racing
// recomputes for the same creator cannot both claim the same milestone,
// and the stored set is always the union of everything ever recorded.
func (l *MilestoneLedger) Record(ctx context.Context, creatorID string, levels []int) []int {
	if len(levels) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	set, ok := l.awarded[creatorID]
	if !ok {
		set = progression.NewMilestoneSet()
		l.awarded[creatorID] = set
	}

	var newly []int
	for _, level := range levels {
		if set.Has(level) {
			continue
		}
		set.Add(level)
		newly = append(newly, level)
	}
	return newly
}

// Creators returns the number of creators with at least one credited
// milestone.
func (l *MilestoneLedger) Creators(ctx context.Context) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.awarded)
}
