// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/teaelo/teaelo/internal/domain/types"
)

// MatchDependencies defines the interface for match recording.
type MatchDependencies interface {
	RecordMatch(ctx context.Context, winnerID, loserID uuid.UUID, isTie bool, locationCountry, locationCity string) (types.MatchResult, error)
}

// MatchesHandler handles match submission requests.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// matchRequest mirrors the OpenAPI schema for POST /matches.
type matchRequest struct {
	WinnerID        string `json:"winner_id"`
	LoserID         string `json:"loser_id"`
	IsTie           bool   `json:"is_tie"`
	LocationCountry string `json:"location_country"`
	LocationCity    string `json:"location_city"`
}

func (m matchRequest) validate() (winner, loser uuid.UUID, err error) {
	winner, err = uuid.Parse(m.WinnerID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("invalid winner_id")
	}
	loser, err = uuid.Parse(m.LoserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("invalid loser_id")
	}
	return winner, loser, nil
}

// HandlePostMatch handles POST /matches requests.
func (h *MatchesHandler) HandlePostMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_match"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	winner, loser, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	result, err := h.deps.RecordMatch(r.Context(), winner, loser, req.IsTie, req.LocationCountry, req.LocationCity)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
