// Package repository defines the rating store contract and its SQL
// implementation.
package repository

import (
	"context"
	"time"
)

// GlobalScope is the scope under which arena-independent ratings are
// stored.
const GlobalScope = ""

// Entry is one leaderboard row.
type Entry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Rating   float64 `json:"rating"`
}

// Record is the persisted rating state for one (player, scope) pair.
type Record struct {
	PlayerID      string
	Scope         string
	Rating        float64
	MatchesPlayed int
	LastUpdated   time.Time
}

// Store provides durable access to ratings, keyed by (player id, scope).
// The empty scope is the global partition.
//
// Storage failures never surface as errors on the settlement path: reads
// degrade to the caller's default and writes are dropped, both with a
// logged warning. GetRecord is the exception: it reports absence
// explicitly for callers that need to distinguish it.
type Store interface {
	// GetRating returns the persisted rating for the pair, or
	// defaultRating when the pair is absent or the store is unreachable.
	GetRating(ctx context.Context, playerID, scope string, defaultRating float64) float64

	// GetRecord returns the full persisted record, or ErrNotFound.
	GetRecord(ctx context.Context, playerID, scope string) (Record, error)

	// UpsertRating atomically inserts the pair with matches_played = 1,
	// or updates the rating and increments matches_played. Returns false
	// when the write was dropped because the store is unreachable.
	UpsertRating(ctx context.Context, playerID, scope string, rating float64) bool

	// TopRatings returns up to limit entries for the scope, rating
	// descending with player id as the tie-break. Empty when the store
	// is unreachable.
	TopRatings(ctx context.Context, limit int, scope string) []Entry

	// Count returns the number of distinct rated players.
	Count(ctx context.Context) int

	// Close releases the backing connection.
	Close() error
}
