// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/teaelo/teaelo/internal/domain/model"
	"github.com/teaelo/teaelo/internal/domain/types"
)

// DiscoveryDependencies defines the interface for observation ingestion.
type DiscoveryDependencies interface {
	Discover(ctx context.Context, observations []model.Observation) (*types.DiscoveryResult, error)
}

// DiscoveryHandler handles observation batch requests.
type DiscoveryHandler struct {
	deps DiscoveryDependencies
}

// NewDiscoveryHandler creates a new discovery handler.
func NewDiscoveryHandler(deps DiscoveryDependencies) *DiscoveryHandler {
	return &DiscoveryHandler{deps: deps}
}

// discoveryRequest mirrors the OpenAPI schema for POST /discovery. The
// endpoint also accepts a bare JSON array of observations.
type discoveryRequest struct {
	Observations []model.Observation `json:"observations"`
}

func decodeObservations(body io.Reader) ([]model.Observation, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var obs []model.Observation
		if err := json.Unmarshal(raw, &obs); err != nil {
			return nil, err
		}
		return obs, nil
	}
	var req discoveryRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	return req.Observations, nil
}

// HandleDiscovery handles POST /discovery requests.
func (h *DiscoveryHandler) HandleDiscovery(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_discovery"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	observations, err := decodeObservations(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(observations) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("empty observation batch")))
		return
	}
	result, err := h.deps.Discover(r.Context(), observations)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
