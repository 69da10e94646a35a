// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/teaelo/teaelo/internal/adapters/repository"
	"github.com/teaelo/teaelo/internal/domain/model"
)

// defaultMatchHistoryLimit applies when the limit query parameter is absent.
const defaultMatchHistoryLimit = 20

// BrandDependencies defines the interface for brand administration.
type BrandDependencies interface {
	CreateBrand(ctx context.Context, b *model.Brand) (*model.Brand, error)
	GetBrand(ctx context.Context, id uuid.UUID) (*model.Brand, error)
	ListBrands(ctx context.Context) ([]*model.Brand, error)
	UpdateBrand(ctx context.Context, id uuid.UUID, upd repository.BrandUpdate) (*model.Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error
	MatchesFor(ctx context.Context, brandID uuid.UUID, limit int) ([]*model.Match, error)
	RandomPair(ctx context.Context) ([2]*model.Brand, error)
}

// BrandsHandler handles brand administration requests.
type BrandsHandler struct {
	deps BrandDependencies
}

// NewBrandsHandler creates a new brands handler.
func NewBrandsHandler(deps BrandDependencies) *BrandsHandler {
	return &BrandsHandler{deps: deps}
}

// createBrandRequest mirrors the OpenAPI schema for POST /brands.
type createBrandRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	WebsiteURL      string `json:"website_url"`
	LogoURL         string `json:"logo_url"`
	CountryOfOrigin string `json:"country_of_origin"`
	EstablishedYear int    `json:"established_year"`
}

func (c createBrandRequest) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("missing name")
	}
	return nil
}

// updateBrandRequest carries a field mask: only fields present in the
// JSON body are applied.
type updateBrandRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	WebsiteURL      *string `json:"website_url"`
	LogoURL         *string `json:"logo_url"`
	CountryOfOrigin *string `json:"country_of_origin"`
	EstablishedYear *int    `json:"established_year"`
}

func (u updateBrandRequest) mask() (repository.BrandUpdate, error) {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return repository.BrandUpdate{}, errors.New("name cannot be blank")
	}
	return repository.BrandUpdate{
		Name:            u.Name,
		Description:     u.Description,
		WebsiteURL:      u.WebsiteURL,
		LogoURL:         u.LogoURL,
		CountryOfOrigin: u.CountryOfOrigin,
		EstablishedYear: u.EstablishedYear,
	}, nil
}

// HandleBrands handles GET /brands and POST /brands requests.
func (h *BrandsHandler) HandleBrands(w http.ResponseWriter, r *http.Request) {
	const op = "api.brands"
	switch r.Method {
	case http.MethodGet:
		brands, err := h.deps.ListBrands(r.Context())
		if err != nil {
			writeDomainError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, brands)
	case http.MethodPost:
		var req createBrandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		created, err := h.deps.CreateBrand(r.Context(), &model.Brand{
			Name:            strings.TrimSpace(req.Name),
			Description:     req.Description,
			WebsiteURL:      req.WebsiteURL,
			LogoURL:         req.LogoURL,
			CountryOfOrigin: req.CountryOfOrigin,
			EstablishedYear: req.EstablishedYear,
		})
		if err != nil {
			writeDomainError(w, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		http.NotFound(w, r)
	}
}

// HandleBrandByID handles /brands/{id} and /brands/{id}/matches requests.
func (h *BrandsHandler) HandleBrandByID(w http.ResponseWriter, r *http.Request) {
	const op = "api.brand"
	path := strings.TrimPrefix(r.URL.Path, "/brands/")
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	id, err := parseIDSegment(segments[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if len(segments) == 2 && segments[1] == "matches" {
		h.handleMatchHistory(w, r, id)
		return
	}
	if len(segments) != 1 {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		brand, err := h.deps.GetBrand(r.Context(), id)
		if err != nil {
			writeDomainError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, brand)
	case http.MethodPatch:
		var req updateBrandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		upd, err := req.mask()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		updated, err := h.deps.UpdateBrand(r.Context(), id, upd)
		if err != nil {
			writeDomainError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := h.deps.DeleteBrand(r.Context(), id); err != nil {
			writeDomainError(w, op, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (h *BrandsHandler) handleMatchHistory(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	const op = "api.brand_matches"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limit := defaultMatchHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	matches, err := h.deps.MatchesFor(r.Context(), id, limit)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// HandleRandomPair handles GET /brands/random requests.
func (h *BrandsHandler) HandleRandomPair(w http.ResponseWriter, r *http.Request) {
	const op = "api.brands_random"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	pair, err := h.deps.RandomPair(r.Context())
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, pair[:])
}
