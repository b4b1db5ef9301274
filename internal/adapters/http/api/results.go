package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/JericNisperos/pvparena/internal/domain/model"
	"github.com/google/uuid"
)

// ResultDependencies defines the interface for result ingestion.
type ResultDependencies interface {
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	Enqueue(ctx context.Context, r model.Result) bool
}

// ResultsHandler handles match result submissions.
type ResultsHandler struct {
	deps ResultDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandlePostResult handles POST /results requests.
func (h *ResultsHandler) HandlePostResult(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_result"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.MatchID == "" {
		req.MatchID = uuid.NewString()
	}

	// Idempotency check, mark as seen first.
	if h.deps.SeenAndRecord(r.Context(), req.MatchID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", MatchID: req.MatchID, Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), req.toModel()); !ok {
		// Roll back the seen mark so the caller can retry this match.
		h.deps.Unrecord(r.Context(), req.MatchID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", MatchID: req.MatchID, Duplicate: false})
}
