// Package service wires the rating subsystem together and implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"

	resultqueue "github.com/JericNisperos/pvparena/internal/adapters/mq/queue"
	workerpool "github.com/JericNisperos/pvparena/internal/adapters/mq/worker"
	repository "github.com/JericNisperos/pvparena/internal/adapters/repository"
	"github.com/JericNisperos/pvparena/internal/domain/dedupe"
	"github.com/JericNisperos/pvparena/internal/domain/elo"
	"github.com/JericNisperos/pvparena/internal/domain/model"
	"github.com/JericNisperos/pvparena/pkg/logger"
	"github.com/JericNisperos/pvparena/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize    = 10000
	defaultDedupeSize   = 50000
	defaultRankPageSize = 1000
	defaultDBPath       = "pvparena.db"
)

// Service owns the settlement pipeline and the read facade over the
// rating store.
type Service struct {
	mu sync.RWMutex

	store       repository.Store
	deduper     dedupe.Deduper
	resultQueue resultqueue.Queue
	workerPool  *workerpool.Pool

	workerCount   int
	queueSize     int
	dedupeSize    int
	rankPageSize  int
	kFactor       float64
	initialRating float64
	perArena      bool
	displayOnJoin bool
	dbPath        string

	started bool
	enabled bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of settlement workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the result queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the match-id deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithKFactor sets the maximum rating swing per pairwise comparison.
func WithKFactor(k float64) Option {
	return func(s *Service) {
		s.kFactor = k
	}
}

// WithInitialRating sets the rating assumed for players without a record.
func WithInitialRating(r float64) Option {
	return func(s *Service) {
		s.initialRating = r
	}
}

// WithPerArena enables per-arena rating scopes in addition to the
// global scope.
func WithPerArena(enabled bool) Option {
	return func(s *Service) {
		s.perArena = enabled
	}
}

// WithDisplayOnJoin makes rank lookups announce the player's standing in
// the service log.
func WithDisplayOnJoin(enabled bool) Option {
	return func(s *Service) {
		s.displayOnJoin = enabled
	}
}

// WithRankPageSize bounds how deep the rank lookup scans the leaderboard.
func WithRankPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.rankPageSize = size
		}
	}
}

// WithDBPath sets the SQLite database file path.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithStore injects a pre-built rating store, mainly for tests.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     defaultQueueSize,
		dedupeSize:    defaultDedupeSize,
		rankPageSize:  defaultRankPageSize,
		kFactor:       elo.DefaultKFactor,
		initialRating: elo.DefaultInitialRating,
		dbPath:        defaultDBPath,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the store, the queue and the worker pool. When the
// store cannot be reached at startup the service comes up disabled:
// settlements are skipped and reads fall back to the initial rating.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting rating service")

	if s.store == nil {
		s.store = repository.NewSQLStore(s.dbPath)
	}

	s.enabled = true
	if connector, ok := s.store.(interface{ Connect(context.Context) error }); ok {
		if err := connector.Connect(ctx); err != nil {
			s.enabled = false
			s.logger.Warn(ctx, "rating store unreachable, service disabled",
				logger.Error(err),
			)
		}
	}

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.resultQueue = resultqueue.NewInMemoryQueue(
		resultqueue.WithCapacity(s.queueSize),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.resultQueue, s)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "rating service started",
		logger.Bool("enabled", s.enabled),
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Float64("k_factor", s.kFactor),
		logger.Float64("initial_rating", s.initialRating),
		logger.Bool("per_arena", s.perArena),
	)

	return nil
}

// Stop drains the queue and shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping rating service")

	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}

	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "rating service stopped")
}

// Enabled reports whether settlements are being applied.
func (s *Service) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// SeenAndRecord atomically checks if a match id was seen and records it
// if not. Returns true if the id was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordResultDuplicate()
	}
	return seen
}

// Unrecord removes a match id from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a match result for asynchronous settlement. Returns
// false when the queue rejected it.
func (s *Service) Enqueue(ctx context.Context, r model.Result) bool {
	return s.resultQueue.Enqueue(ctx, r)
}

// scopeFor maps an arena id to the storage scope. The global scope is
// the empty string; arena scopes only exist when per-arena ratings are
// enabled.
func (s *Service) scopeFor(arena string) string {
	if s.perArena && arena != "" {
		return arena
	}
	return repository.GlobalScope
}

// PlayerRating returns the player's current rating for the scope, or
// the configured initial rating when no record exists.
func (s *Service) PlayerRating(ctx context.Context, playerID, arena string) float64 {
	return s.store.GetRating(ctx, playerID, s.scopeFor(arena), s.initialRating)
}

// PlayerRecord returns the full persisted record for a player.
func (s *Service) PlayerRecord(ctx context.Context, playerID, arena string) (repository.Record, error) {
	return s.store.GetRecord(ctx, playerID, s.scopeFor(arena))
}

// PlayerRank returns the player's 1-based leaderboard position for the
// scope. The second return value is false when the player has no record
// or sits below the configured rank page.
func (s *Service) PlayerRank(ctx context.Context, playerID, arena string) (int, bool) {
	entries := s.store.TopRatings(ctx, s.rankPageSize, s.scopeFor(arena))
	for _, e := range entries {
		if e.PlayerID == playerID {
			if s.displayOnJoin {
				s.logger.Info(ctx, "player standing",
					logger.String("player_id", playerID),
					logger.String("arena", arena),
					logger.Int("rank", e.Rank),
					logger.Float64("rating", e.Rating),
				)
			}
			return e.Rank, true
		}
	}
	return 0, false
}

// TopN returns the n highest-rated players for the scope.
func (s *Service) TopN(ctx context.Context, n int, arena string) []repository.Entry {
	return s.store.TopRatings(ctx, n, s.scopeFor(arena))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"enabled":       s.enabled,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"kFactor":       s.kFactor,
		"initialRating": s.initialRating,
		"perArena":      s.perArena,
	}

	if s.started {
		queueLen := s.resultQueue.Len(ctx)
		totalPlayers := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalPlayers"] = totalPlayers

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalPlayers(totalPlayers)
	}

	return stats
}

// Size returns the current number of tracked match ids.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
