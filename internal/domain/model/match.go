// Package model contains domain models passed between layers.
package model

import "time"

// Mode identifies how participants are grouped for settlement.
type Mode string

const (
	// FreeForAll compares every participant pairwise against every other.
	FreeForAll Mode = "ffa"
	// Team compares team aggregates pairwise.
	Team Mode = "team"
)

// Valid reports whether the mode is one of the known settlement modes.
func (m Mode) Valid() bool {
	return m == FreeForAll || m == Team
}

// Participant is one fighter in a finished match. PlayerID may be empty
// when the player's identity could not be resolved (disconnected before
// match end); such participants are skipped during settlement.
type Participant struct {
	PlayerID string // stable player identity, e.g. a UUID
	Team     string // team identity, empty in free-for-all matches
}

// Result is the match-end signal handed to the settlement pipeline.
type Result struct {
	MatchID      string          // unique id for idempotency
	Arena        string          // arena scope, empty for global-only ratings
	Mode         Mode            // team or free-for-all
	Participants []Participant   // everyone who fought
	Winners      map[string]bool // player ids on the winning side
	EndedAt      time.Time       // when the match concluded
}

// IsWinner reports whether the given player id is in the winner set.
func (r *Result) IsWinner(playerID string) bool {
	return r.Winners[playerID]
}
