// Package resolve turns raw store observations into canonical brands:
// each observation either attaches to an existing brand or mints a new
// one.
package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/teaelo/teaelo/internal/domain/model"
	"github.com/teaelo/teaelo/internal/domain/normalize"
	"github.com/teaelo/teaelo/internal/domain/sightings"
	"github.com/teaelo/teaelo/pkg/logger"
	"github.com/teaelo/teaelo/pkg/metrics"
)

// MatchThreshold is the fixed similarity score (0–100) at or above
// which a canonical name is considered the same brand. Exactly 85
// matches; 84 does not.
const MatchThreshold = 85

// Store is the persistence surface the resolver needs.
type Store interface {
	CreateBrand(ctx context.Context, b *model.Brand) error
	GetBrand(ctx context.Context, id uuid.UUID) (*model.Brand, error)
	ListBrands(ctx context.Context) ([]*model.Brand, error)
	MergeSighting(ctx context.Context, brandID uuid.UUID, region string) (*model.Brand, error)
	AddSighting(ctx context.Context, s *model.Sighting) error
}

// Scorer computes a 0–100 similarity between two canonical names.
type Scorer func(a, b string) int

// EnrichmentRequester asks for best-effort metadata enrichment of a
// freshly created brand. Implementations must not block resolution.
type EnrichmentRequester func(ctx context.Context, brandID uuid.UUID, name, regionHint string)

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithScorer overrides the similarity scorer. Tests inject fixed
// scores to pin threshold behavior.
func WithScorer(s Scorer) Option {
	return func(r *Resolver) {
		if s != nil {
			r.score = s
		}
	}
}

// WithEnrichmentRequester sets the enrichment hook invoked after a new
// brand is created.
func WithEnrichmentRequester(req EnrichmentRequester) Option {
	return func(r *Resolver) {
		r.requestEnrichment = req
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// Resolver implements the entity-resolution pipeline: cache check,
// normalization, similarity match, merge-or-create, link recording.
type Resolver struct {
	store             Store
	cache             sightings.Cache
	normalizer        *normalize.Normalizer
	score             Scorer
	requestEnrichment EnrichmentRequester
	log               logger.Logger
}

// New creates a Resolver.
func New(store Store, cache sightings.Cache, normalizer *normalize.Normalizer, opts ...Option) *Resolver {
	r := &Resolver{
		store:      store,
		cache:      cache,
		normalizer: normalizer,
		score:      fuzzy.WRatio,
		log:        logger.Get().Named("resolve"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve processes one observation. It returns the brand the
// observation now belongs to and whether that brand was created by this
// call. Observations within a batch must be resolved one at a time, in
// order: a brand created by observation k is a match candidate for k+1.
func (r *Resolver) Resolve(ctx context.Context, obs model.Observation) (*model.Brand, bool, error) {
	// Idempotency: a previously seen place id short-circuits without
	// re-matching and without touching counters.
	if brandID, ok := r.cache.Lookup(ctx, obs.PlaceID); ok {
		metrics.RecordSightingDuplicate()
		brand, err := r.store.GetBrand(ctx, brandID)
		if err != nil {
			return nil, false, fmt.Errorf("resolve cached sighting %s: %w", obs.PlaceID, err)
		}
		return brand, false, nil
	}

	name := r.normalizer.Normalize(ctx, obs.RawName, obs.Category)
	if name == "" {
		return nil, false, fmt.Errorf("observation %s: %w", obs.PlaceID, ErrUnusableName)
	}

	best, bestScore, err := r.bestMatch(ctx, name)
	if err != nil {
		return nil, false, err
	}

	var brand *model.Brand
	created := false
	if best != nil && bestScore >= MatchThreshold {
		brand, err = r.store.MergeSighting(ctx, best.ID, obs.Country)
		if err != nil {
			return nil, false, fmt.Errorf("merge sighting into %s: %w", best.ID, err)
		}
		metrics.RecordBrandMerged()
		r.log.Debug(ctx, "observation merged into existing brand",
			logger.String("placeID", obs.PlaceID),
			logger.String("brand", brand.Name),
			logger.Int("score", bestScore),
		)
	} else {
		brand = &model.Brand{
			ID:             uuid.New(),
			Name:           name,
			Rating:         model.DefaultRating,
			Tier:           model.TierUnranked,
			TotalLocations: 1,
			CreatedAt:      time.Now(),
		}
		if obs.Country != "" {
			brand.Regions = []string{obs.Country}
		}
		if err := r.store.CreateBrand(ctx, brand); err != nil {
			return nil, false, fmt.Errorf("create brand %q: %w", name, err)
		}
		created = true
		metrics.RecordBrandCreated()
		r.log.Info(ctx, "new brand created",
			logger.String("name", name),
			logger.String("placeID", obs.PlaceID),
		)
		if r.requestEnrichment != nil {
			r.requestEnrichment(ctx, brand.ID, brand.Name, obs.Country)
		}
	}

	sighting := &model.Sighting{
		ID:           uuid.New(),
		PlaceID:      obs.PlaceID,
		BrandID:      brand.ID,
		CountryCode:  obs.Country,
		City:         obs.City,
		LastVerified: time.Now(),
	}
	linked := r.cache.Record(ctx, obs.PlaceID, brand.ID)
	if err := r.store.AddSighting(ctx, sighting); err != nil {
		// Undo our link so a retry of this place id can resolve again.
		// A link written by a concurrent resolution stays put.
		if linked {
			r.cache.Forget(ctx, obs.PlaceID)
		}
		return nil, false, fmt.Errorf("persist sighting %s: %w", obs.PlaceID, err)
	}
	metrics.RecordObservationResolved()

	return brand, created, nil
}

// bestMatch scores the canonical name against every existing brand.
// Candidates arrive in ascending id order and only a strictly higher
// score replaces the current best, so equal-score ties deterministically
// resolve to the lowest brand id.
func (r *Resolver) bestMatch(ctx context.Context, name string) (*model.Brand, int, error) {
	candidates, err := r.store.ListBrands(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list match candidates: %w", err)
	}
	var best *model.Brand
	bestScore := -1
	for _, c := range candidates {
		if s := r.score(name, c.Name); s > bestScore {
			best = c
			bestScore = s
		}
	}
	if best != nil {
		metrics.RecordSimilarityScore(bestScore)
	}
	return best, bestScore, nil
}
