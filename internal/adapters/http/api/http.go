// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	repository "github.com/JericNisperos/pvparena/internal/adapters/repository"
	"github.com/JericNisperos/pvparena/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SeenAndRecord atomically checks and records a match id.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord releases a match id after a failed enqueue.
	Unrecord(ctx context.Context, id string)

	// Enqueue pushes a result for async settlement. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, r model.Result) bool

	// Read operations expose rating data.
	PlayerRating(ctx context.Context, playerID, arena string) float64
	PlayerRank(ctx context.Context, playerID, arena string) (int, bool)
	TopN(ctx context.Context, n int, arena string) []Entry
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = repository.Entry

// Server wires HTTP routes for the rating API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	resultsHandler     *ResultsHandler
	ratingHandler      *RatingHandler
	rankHandler        *RankHandler
	leaderboardHandler *LeaderboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		resultsHandler:     NewResultsHandler(deps),
		ratingHandler:      NewRatingHandler(deps),
		rankHandler:        NewRankHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/results", MetricsMiddleware(s.resultsHandler.HandlePostResult, "results"))
	mux.HandleFunc("/rating/", MetricsMiddleware(s.ratingHandler.HandleGetRating, "rating"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
}

// participantRequest is one entry of a posted match result.
type participantRequest struct {
	PlayerID string `json:"player_id"`
	Team     string `json:"team,omitempty"`
}

// resultRequest mirrors the wire schema for POST /results.
type resultRequest struct {
	MatchID      string               `json:"match_id"`
	Arena        string               `json:"arena,omitempty"`
	Mode         string               `json:"mode"`
	Participants []participantRequest `json:"participants"`
	Winners      []string             `json:"winners"`
	EndedAt      string               `json:"ended_at,omitempty"`
}

func (r resultRequest) validate() error {
	if !model.Mode(r.Mode).Valid() {
		return errors.New("mode must be ffa or team")
	}
	if len(r.Participants) == 0 {
		return errors.New("missing participants")
	}
	for _, p := range r.Participants {
		if strings.TrimSpace(p.PlayerID) == "" {
			continue
		}
		if model.Mode(r.Mode) == model.Team && strings.TrimSpace(p.Team) == "" {
			return errors.New("team mode requires a team per participant")
		}
	}
	if r.EndedAt != "" {
		if _, err := time.Parse(time.RFC3339, r.EndedAt); err != nil {
			return errors.New("invalid ended_at; must be RFC3339")
		}
	}
	return nil
}

// toModel converts the request into the internal result shape.
func (r resultRequest) toModel() model.Result {
	out := model.Result{
		MatchID: r.MatchID,
		Arena:   r.Arena,
		Mode:    model.Mode(r.Mode),
		Winners: make(map[string]bool, len(r.Winners)),
		EndedAt: time.Now().UTC(),
	}
	for _, p := range r.Participants {
		out.Participants = append(out.Participants, model.Participant{
			PlayerID: p.PlayerID,
			Team:     p.Team,
		})
	}
	for _, w := range r.Winners {
		out.Winners[w] = true
	}
	if r.EndedAt != "" {
		if ts, err := time.Parse(time.RFC3339, r.EndedAt); err == nil {
			out.EndedAt = ts
		}
	}
	return out
}

type ackResponse struct {
	Status    string `json:"status"`
	MatchID   string `json:"match_id"`
	Duplicate bool   `json:"duplicate"`
}

type ratingResponse struct {
	PlayerID string  `json:"player_id"`
	Arena    string  `json:"arena,omitempty"`
	Rating   float64 `json:"rating"`
}

type rankResponse struct {
	PlayerID string `json:"player_id"`
	Arena    string `json:"arena,omitempty"`
	Rank     int    `json:"rank"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
