// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// EventQueueSize bounds the in-memory XP event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of aggregation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the event deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New creates a Config populated with defaults. Load layers file and
// environment overrides on top of these.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		EventQueueSize:      100_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
	}
}
