// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"

	"github.com/JericNisperos/pvparena/internal/domain/elo"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Enabled toggles the whole rating subsystem.
	Enabled bool `koanf:"enabled"`

	// KFactor is the maximum rating swing per pairwise comparison.
	// Valid range [0, 100]; out-of-range values fall back to the default.
	KFactor float64 `koanf:"k_factor"`

	// InitialRating is assumed for players without a record. Valid range
	// [0, 10000]; out-of-range values fall back to the default.
	InitialRating float64 `koanf:"initial_rating"`

	// PerArena keeps a separate rating per arena on top of the global one.
	PerArena bool `koanf:"per_arena"`

	// DisplayOnJoin announces a player's rating when they join an arena.
	DisplayOnJoin bool `koanf:"display_on_join"`

	// DBPath locates the SQLite database file.
	DBPath string `koanf:"db_path"`

	// QueueSize bounds the in-memory result queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of settlement workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the match-id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// RankPageSize bounds how deep rank lookups scan the leaderboard.
	RankPageSize int `koanf:"rank_page_size"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		Enabled:             true,
		KFactor:             elo.DefaultKFactor,
		InitialRating:       elo.DefaultInitialRating,
		PerArena:            false,
		DisplayOnJoin:       true,
		DBPath:              "pvparena.db",
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
		RankPageSize:        1000,
	}
}
