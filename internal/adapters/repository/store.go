// Package repository defines the progression store interfaces and errors.
package repository

import (
	"context"

	"github.com/stitchsocial/clout/internal/domain/progression"
)

// Entry represents a progression leaderboard row.
type Entry struct {
	Rank              int
	CreatorID         string
	GlobalXP          int64
	GlobalLevel       int
	TapMultiplier     int
	CloutBonus        int64
	CommunitiesActive int
}

// Store provides read/write access to the ranking state.
type Store interface {
	// Upsert replaces a creator's progression snapshot. Returns true if the
	// stored state changed, false if the snapshot was already current.
	Upsert(ctx context.Context, creatorID string, state progression.GlobalState) (bool, error)

	// Rank returns the current rank and snapshot for a creator.
	// Returns ErrNotFound if the creator is unknown.
	Rank(ctx context.Context, creatorID string) (Entry, error)

	// TopN returns the top-N entries ordered by global XP desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of creators tracked in the leaderboard.
	Count(ctx context.Context) int
}
