// Package repository defines the brand store interface and errors.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/teaelo/teaelo/internal/domain/model"
)

// Entry is one leaderboard row. Rank is the count-based rank (number of
// brands with a strictly greater rating, plus one; ties share it).
// Position is the row's place in the paginated listing, offset+index+1.
type Entry struct {
	Brand    *model.Brand
	Rank     int
	Position int
}

// BrandUpdate is a field-mask partial update: only non-nil fields are
// applied. Rating, tier, counters and the region set are absent: those
// fields are owned by match recording and sighting resolution, and no
// other path may write them.
type BrandUpdate struct {
	Name            *string
	Description     *string
	WebsiteURL      *string
	LogoURL         *string
	CountryOfOrigin *string
	EstablishedYear *int
}

// PairFunc receives private copies of both brands of a match. Mutations
// are committed only when the returned error is nil; the returned match
// record is appended in the same commit.
type PairFunc func(a, b *model.Brand) (*model.Match, error)

// Store provides read/write access to brands, sighting links and match
// history. All returned brands are copies; callers never share memory
// with the store.
type Store interface {
	// CreateBrand persists a new brand. Returns ErrConflict if the id
	// is already taken.
	CreateBrand(ctx context.Context, b *model.Brand) error

	// GetBrand returns the brand or ErrNotFound.
	GetBrand(ctx context.Context, id uuid.UUID) (*model.Brand, error)

	// ListBrands returns every brand in ascending id order. The order
	// is part of the contract: similarity matching iterates it and
	// must be reproducible.
	ListBrands(ctx context.Context) ([]*model.Brand, error)

	// UpdateBrand applies a field-mask partial update.
	UpdateBrand(ctx context.Context, id uuid.UUID, upd BrandUpdate) (*model.Brand, error)

	// DeleteBrand removes a brand. Administrative only.
	DeleteBrand(ctx context.Context, id uuid.UUID) error

	// MergeSighting unions region into the brand's region set (no
	// duplicates) and increments its location counter by one.
	MergeSighting(ctx context.Context, brandID uuid.UUID, region string) (*model.Brand, error)

	// AddSighting persists a resolved place→brand link.
	AddSighting(ctx context.Context, s *model.Sighting) error

	// UpdatePair runs fn against both brands of a match under per-brand
	// locks acquired in ascending id order, so two concurrent matches
	// sharing participants cannot deadlock or read stale ratings.
	// Returns ErrSelfPair when both ids are equal.
	UpdatePair(ctx context.Context, idA, idB uuid.UUID, fn PairFunc) error

	// RankOf returns the count-based rank of a brand.
	RankOf(ctx context.Context, id uuid.UUID) (int, error)

	// Leaderboard returns a page of brands by descending rating.
	Leaderboard(ctx context.Context, limit, offset int) ([]Entry, error)

	// RandomPair returns two distinct brands for a face-off, or
	// ErrInsufficientBrands when fewer than two exist.
	RandomPair(ctx context.Context) ([2]*model.Brand, error)

	// MatchesFor returns up to limit matches involving the brand,
	// most recent first.
	MatchesFor(ctx context.Context, brandID uuid.UUID, limit int) ([]*model.Match, error)

	// Counts for stats and metrics.
	CountBrands(ctx context.Context) int
	CountSightings(ctx context.Context) int
	CountMatches(ctx context.Context) int
}
