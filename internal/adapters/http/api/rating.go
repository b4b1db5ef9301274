package api

import (
	"context"
	"net/http"
	"strings"
)

// RatingDependencies defines the interface for rating lookups.
type RatingDependencies interface {
	PlayerRating(ctx context.Context, playerID, arena string) float64
}

// RatingHandler handles rating requests.
type RatingHandler struct {
	deps RatingDependencies
}

// NewRatingHandler creates a new rating handler.
func NewRatingHandler(deps RatingDependencies) *RatingHandler {
	return &RatingHandler{deps: deps}
}

// HandleGetRating handles GET /rating/{player_id}?arena=X requests.
func (h *RatingHandler) HandleGetRating(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rating"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	playerID := strings.TrimPrefix(r.URL.Path, "/rating/")
	if playerID == "" || strings.Contains(playerID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	arena := r.URL.Query().Get("arena")
	rating := h.deps.PlayerRating(r.Context(), playerID, arena)
	writeJSON(w, http.StatusOK, ratingResponse{
		PlayerID: playerID,
		Arena:    arena,
		Rating:   rating,
	})
}
