// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/teaelo/teaelo/internal/adapters/repository"
	"github.com/teaelo/teaelo/internal/domain/model"
	"github.com/teaelo/teaelo/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Write operations.
	Discover(ctx context.Context, observations []model.Observation) (*types.DiscoveryResult, error)
	RecordMatch(ctx context.Context, winnerID, loserID uuid.UUID, isTie bool, locationCountry, locationCity string) (types.MatchResult, error)

	// Read operations expose ranking data.
	Leaderboard(ctx context.Context, limit, offset int) ([]types.LeaderboardEntry, error)
	Rank(ctx context.Context, brandID uuid.UUID) (types.BrandSummary, error)
	RandomPair(ctx context.Context) ([2]*model.Brand, error)

	// Administrative brand access.
	CreateBrand(ctx context.Context, b *model.Brand) (*model.Brand, error)
	GetBrand(ctx context.Context, id uuid.UUID) (*model.Brand, error)
	ListBrands(ctx context.Context) ([]*model.Brand, error)
	UpdateBrand(ctx context.Context, id uuid.UUID, upd repository.BrandUpdate) (*model.Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error
	MatchesFor(ctx context.Context, brandID uuid.UUID, limit int) ([]*model.Match, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	discoveryHandler   *DiscoveryHandler
	matchesHandler     *MatchesHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	brandsHandler      *BrandsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		discoveryHandler:   NewDiscoveryHandler(deps),
		matchesHandler:     NewMatchesHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		rankHandler:        NewRankHandler(deps),
		brandsHandler:      NewBrandsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/discovery", MetricsMiddleware(s.discoveryHandler.HandleDiscovery, "discovery"))
	mux.HandleFunc("/matches", MetricsMiddleware(s.matchesHandler.HandlePostMatch, "matches"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/brands/random", MetricsMiddleware(s.brandsHandler.HandleRandomPair, "brands_random"))
	mux.HandleFunc("/brands/", MetricsMiddleware(s.brandsHandler.HandleBrandByID, "brand"))
	mux.HandleFunc("/brands", MetricsMiddleware(s.brandsHandler.HandleBrands, "brands"))
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

// writeDomainError translates repository sentinels to HTTP statuses.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrSelfPair),
		errors.Is(err, repository.ErrInsufficientBrands),
		errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// parseIDSegment extracts and validates a single uuid path segment.
func parseIDSegment(segment string) (uuid.UUID, error) {
	id, err := uuid.Parse(segment)
	if err != nil {
		return uuid.Nil, ErrBadRequest
	}
	return id, nil
}
