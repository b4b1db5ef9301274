// Package simulator generates synthetic match results and feeds them to
// a running rating service over HTTP. It exists for load checks and for
// populating a fresh leaderboard during development.
package simulator

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JericNisperos/pvparena/pkg/logger"
	"github.com/google/uuid"
)

// Default simulation parameters.
const (
	defaultMatchCount  = 100
	defaultPlayerCount = 20
	defaultWorkers     = 4
	requestTimeout     = 10 * time.Second

	minFFASize  = 2
	maxFFASize  = 8
	teamSize    = 4
	teamModeOdd = 2 // every n-th match is a team match
)

// Stats summarizes one simulation run.
type Stats struct {
	Sent       int64
	Accepted   int64
	Duplicates int64
	Rejected   int64
	Failed     int64
}

// Simulator posts generated match results to a rating service.
type Simulator struct {
	baseURL     string
	matchCount  int
	playerCount int
	workers     int
	arenas      []string

	client *http.Client
	logger logger.Logger
}

// New creates a Simulator with configuration options.
func New(baseURL string, opts ...Option) *Simulator {
	s := &Simulator{
		baseURL:     baseURL,
		matchCount:  defaultMatchCount,
		playerCount: defaultPlayerCount,
		workers:     defaultWorkers,
		client:      &http.Client{Timeout: requestTimeout},
		logger:      logger.Get().Named("simulator"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// resultPayload mirrors the POST /results wire schema.
type resultPayload struct {
	MatchID      string               `json:"match_id"`
	Arena        string               `json:"arena,omitempty"`
	Mode         string               `json:"mode"`
	Participants []participantPayload `json:"participants"`
	Winners      []string             `json:"winners"`
	EndedAt      string               `json:"ended_at"`
}

type participantPayload struct {
	PlayerID string `json:"player_id"`
	Team     string `json:"team,omitempty"`
}

// Run generates and submits matches until the configured count is
// reached or ctx is canceled.
func (s *Simulator) Run(ctx context.Context) (Stats, error) {
	s.logger.Info(ctx, "starting simulation",
		logger.Int("matches", s.matchCount),
		logger.Int("players", s.playerCount),
		logger.Int("workers", s.workers),
	)

	players := make([]string, s.playerCount)
	for i := range players {
		players[i] = uuid.NewString()
	}

	var stats Stats
	jobs := make(chan resultPayload)

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for payload := range jobs {
				s.submit(ctx, payload, &stats)
			}
		}()
	}

	for i := 0; i < s.matchCount; i++ {
		payload := s.generateMatch(i, players)
		select {
		case jobs <- payload:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return stats, fmt.Errorf("simulation canceled: %w", ctx.Err())
		}
	}
	close(jobs)
	wg.Wait()

	s.logger.Info(ctx, "simulation finished",
		logger.Int("sent", int(atomic.LoadInt64(&stats.Sent))),
		logger.Int("accepted", int(atomic.LoadInt64(&stats.Accepted))),
		logger.Int("duplicates", int(atomic.LoadInt64(&stats.Duplicates))),
		logger.Int("rejected", int(atomic.LoadInt64(&stats.Rejected))),
		logger.Int("failed", int(atomic.LoadInt64(&stats.Failed))),
	)

	return stats, nil
}

// generateMatch builds one random match over the shared player pool.
func (s *Simulator) generateMatch(index int, players []string) resultPayload {
	payload := resultPayload{
		MatchID: "sim_" + uuid.NewString(),
		EndedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if len(s.arenas) > 0 {
		payload.Arena = s.arenas[randomInt(len(s.arenas))]
	}

	if index%teamModeOdd == 0 && len(players) >= teamSize {
		payload.Mode = "team"
		picked := pickPlayers(players, teamSize)
		half := teamSize / 2
		for i, id := range picked {
			team := "red"
			if i >= half {
				team = "blue"
			}
			payload.Participants = append(payload.Participants, participantPayload{PlayerID: id, Team: team})
		}
		if randomInt(2) == 0 {
			payload.Winners = picked[:half]
		} else {
			payload.Winners = picked[half:]
		}
		return payload
	}

	payload.Mode = "ffa"
	size := minFFASize + randomInt(maxFFASize-minFFASize+1)
	if size > len(players) {
		size = len(players)
	}
	picked := pickPlayers(players, size)
	for _, id := range picked {
		payload.Participants = append(payload.Participants, participantPayload{PlayerID: id})
	}
	payload.Winners = []string{picked[randomInt(len(picked))]}
	return payload
}

// submit posts one payload and tallies the outcome.
func (s *Simulator) submit(ctx context.Context, payload resultPayload, stats *Stats) {
	atomic.AddInt64(&stats.Sent, 1)

	body, err := json.Marshal(payload)
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/results", bytes.NewReader(body))
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		s.logger.Warn(ctx, "submit failed",
			logger.String("match_id", payload.MatchID),
			logger.Error(err),
		)
		return
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		atomic.AddInt64(&stats.Accepted, 1)
	case http.StatusOK:
		atomic.AddInt64(&stats.Duplicates, 1)
	case http.StatusTooManyRequests:
		atomic.AddInt64(&stats.Rejected, 1)
	default:
		atomic.AddInt64(&stats.Failed, 1)
	}
}

// pickPlayers selects n distinct players starting at a random offset.
func pickPlayers(players []string, n int) []string {
	start := randomInt(len(players))
	picked := make([]string, 0, n)
	for i := 0; i < n; i++ {
		picked = append(picked, players[(start+i)%len(players)])
	}
	return picked
}

// randomInt returns a uniform random int in [0, n) using crypto/rand.
func randomInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}
