package api

import (
	"context"
	"net/http"
	"strings"
)

// RankDependencies defines the interface for rank lookups.
type RankDependencies interface {
	PlayerRank(ctx context.Context, playerID, arena string) (int, bool)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank/{player_id}?arena=X requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	playerID := strings.TrimPrefix(r.URL.Path, "/rank/")
	if playerID == "" || strings.Contains(playerID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	arena := r.URL.Query().Get("arena")
	rank, ok := h.deps.PlayerRank(r.Context(), playerID, arena)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotRanked))
		return
	}
	writeJSON(w, http.StatusOK, rankResponse{
		PlayerID: playerID,
		Arena:    arena,
		Rank:     rank,
	})
}
