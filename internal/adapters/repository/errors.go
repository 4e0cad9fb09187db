package repository

import "errors"

// Sentinel kinds for progression store errors.
var (
	ErrNotFound     = errors.New("creator not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
