package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JericNisperos/pvparena/pkg/logger"
	"github.com/JericNisperos/pvparena/pkg/metrics"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Default connection discipline constants.
const (
	defaultPingTimeout = 2 * time.Second
	busyTimeoutMS      = 5000
)

// SQLStore implements Store on a SQLite database.
//
// The connection is established lazily on first use and re-validated
// with a short ping before every operation; a failed ping degrades the
// operation instead of blocking or erroring. The store is the only
// component that touches the connection.
type SQLStore struct {
	path        string
	pingTimeout time.Duration

	mu          sync.Mutex
	db          *sql.DB
	schemaReady bool

	logger logger.Logger
}

// NewSQLStore creates a store for the database at path. No connection is
// attempted until the first operation or an explicit Connect.
func NewSQLStore(path string, opts ...SQLOption) *SQLStore {
	s := &SQLStore{
		path:        path,
		pingTimeout: defaultPingTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("store")
	}

	return s
}

// Connect eagerly establishes and validates the backing connection,
// creating the schema if needed. Used at startup to decide whether the
// subsystem should enable itself at all.
func (s *SQLStore) Connect(ctx context.Context) error {
	if !s.ensure(ctx) {
		return fmt.Errorf("%w: %s", ErrUnavailable, s.path)
	}
	return nil
}

// ensure opens the database on first use and validates liveness. It
// returns false when the store must be treated as unreachable.
func (s *SQLStore) ensure(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		db, err := sql.Open("sqlite", s.path)
		if err != nil {
			s.logger.Warn(ctx, "opening rating database failed",
				logger.String("path", s.path), logger.Error(err))
			return false
		}
		// SQLite allows a single writer; funnel everything through one
		// connection so upserts serialize in the driver.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.ExecContext(ctx,
			fmt.Sprintf("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = %d;", busyTimeoutMS)); err != nil {
			s.logger.Warn(ctx, "setting pragmas failed", logger.Error(err))
			_ = db.Close()
			return false
		}
		s.db = db
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		s.logger.Warn(ctx, "rating database unreachable", logger.Error(err))
		return false
	}

	if !s.schemaReady {
		if _, err := s.db.ExecContext(ctx, schema); err != nil {
			s.logger.Warn(ctx, "creating rating schema failed", logger.Error(err))
			return false
		}
		s.schemaReady = true
	}

	return true
}

// GetRating returns the persisted rating, or defaultRating when the pair
// is absent or the store is unreachable.
func (s *SQLStore) GetRating(ctx context.Context, playerID, scope string, defaultRating float64) float64 {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if !s.ensure(ctx) {
		metrics.RecordStoreError("get_rating")
		return defaultRating
	}

	var rating float64
	err := s.db.QueryRowContext(ctx,
		"SELECT rating FROM elo_ratings WHERE player_id = ? AND scope = ?",
		playerID, scope,
	).Scan(&rating)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultRating
	}
	if err != nil {
		metrics.RecordStoreError("get_rating")
		s.logger.Warn(ctx, "reading rating failed",
			logger.String("player", playerID), logger.Error(err))
		return defaultRating
	}
	return rating
}

// GetRecord returns the full persisted record for the pair.
func (s *SQLStore) GetRecord(ctx context.Context, playerID, scope string) (Record, error) {
	if !s.ensure(ctx) {
		metrics.RecordStoreError("get_record")
		return Record{}, ErrUnavailable
	}

	rec := Record{PlayerID: playerID, Scope: scope}
	var updated sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT rating, matches_played, last_updated FROM elo_ratings WHERE player_id = ? AND scope = ?",
		playerID, scope,
	).Scan(&rec.Rating, &rec.MatchesPlayed, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("get_record")
		return Record{}, fmt.Errorf("reading rating record: %w", err)
	}
	if updated.Valid {
		if ts, perr := time.Parse(time.RFC3339, updated.String); perr == nil {
			rec.LastUpdated = ts
		}
	}
	return rec, nil
}

// UpsertRating writes the rating in a single atomic insert-or-update so
// concurrent settlements touching the same pair cannot lose the
// matches_played increment.
func (s *SQLStore) UpsertRating(ctx context.Context, playerID, scope string, rating float64) bool {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if !s.ensure(ctx) {
		metrics.RecordStoreError("upsert")
		s.logger.Warn(ctx, "dropping rating write, store unreachable",
			logger.String("player", playerID), logger.String("scope", scope))
		return false
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO elo_ratings (player_id, scope, rating, matches_played, last_updated)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(player_id, scope) DO UPDATE SET
			rating = excluded.rating,
			matches_played = matches_played + 1,
			last_updated = excluded.last_updated
	`, playerID, scope, rating, nowRFC3339())
	if err != nil {
		metrics.RecordStoreError("upsert")
		s.logger.Warn(ctx, "writing rating failed",
			logger.String("player", playerID), logger.Error(err))
		return false
	}
	return true
}

// TopRatings returns the limit highest ratings for the scope, rating
// descending. Player id breaks ties so pagination is deterministic.
func (s *SQLStore) TopRatings(ctx context.Context, limit int, scope string) []Entry {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if limit <= 0 {
		return nil
	}
	if !s.ensure(ctx) {
		metrics.RecordStoreError("top_ratings")
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, rating FROM elo_ratings
		WHERE scope = ?
		ORDER BY rating DESC, player_id ASC
		LIMIT ?
	`, scope, limit)
	if err != nil {
		metrics.RecordStoreError("top_ratings")
		s.logger.Warn(ctx, "reading leaderboard failed", logger.Error(err))
		return nil
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e := Entry{Rank: len(entries) + 1}
		if err := rows.Scan(&e.PlayerID, &e.Rating); err != nil {
			metrics.RecordStoreError("top_ratings")
			s.logger.Warn(ctx, "scanning leaderboard row failed", logger.Error(err))
			return nil
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError("top_ratings")
		s.logger.Warn(ctx, "reading leaderboard failed", logger.Error(err))
		return nil
	}
	return entries
}

// Count returns the number of distinct rated players across all scopes.
func (s *SQLStore) Count(ctx context.Context) int {
	if !s.ensure(ctx) {
		return 0
	}
	var n int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT player_id) FROM elo_ratings").Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close releases the backing connection.
func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.schemaReady = false
	if err != nil {
		return fmt.Errorf("closing rating database: %w", err)
	}
	return nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
