// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	enrichqueue "github.com/teaelo/teaelo/internal/adapters/mq/queue"
	workerpool "github.com/teaelo/teaelo/internal/adapters/mq/worker"
	"github.com/teaelo/teaelo/internal/adapters/repository"
	"github.com/teaelo/teaelo/internal/domain/enrich"
	"github.com/teaelo/teaelo/internal/domain/model"
	"github.com/teaelo/teaelo/internal/domain/normalize"
	"github.com/teaelo/teaelo/internal/domain/rating"
	"github.com/teaelo/teaelo/internal/domain/resolve"
	"github.com/teaelo/teaelo/internal/domain/sightings"
	"github.com/teaelo/teaelo/internal/domain/types"
	"github.com/teaelo/teaelo/pkg/logger"
	"github.com/teaelo/teaelo/pkg/metrics"
)

// Service implements the API dependencies for the brand ranking system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.Store
	cache       sightings.Cache
	resolver    *resolve.Resolver
	extractor   normalize.Extractor
	enricher    enrich.Enricher
	enrichQueue enrichqueue.Queue
	workerPool  *workerpool.Pool

	// Configuration
	sightingCacheSize int
	enrichEnabled     bool
	enrichQueueSize   int
	enrichWorkerCount int
	nerEnabled        bool

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSightingCacheSize pre-sizes the place-id link cache.
func WithSightingCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.sightingCacheSize = size
		}
	}
}

// WithEnrichmentEnabled toggles background enrichment of new brands.
func WithEnrichmentEnabled(enabled bool) Option {
	return func(s *Service) {
		s.enrichEnabled = enabled
	}
}

// WithEnrichQueueSize sets the maximum size of the enrichment queue.
func WithEnrichQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.enrichQueueSize = size
		}
	}
}

// WithEnrichWorkerCount sets the number of enrichment workers.
func WithEnrichWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.enrichWorkerCount = count
		}
	}
}

// WithEnricher replaces the default enrichment source.
func WithEnricher(e enrich.Enricher) Option {
	return func(s *Service) {
		if e != nil {
			s.enricher = e
		}
	}
}

// WithNEREnabled toggles the named-entity extraction stage of name
// normalization.
func WithNEREnabled(enabled bool) Option {
	return func(s *Service) {
		s.nerEnabled = enabled
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sightingCacheSize: 100_000,
		enrichEnabled:     true,
		enrichQueueSize:   10_000,
		enrichWorkerCount: 4,
		nerEnabled:        true,
		enricher:          enrich.Static{},
		stopCh:            make(chan struct{}),
		logger:            nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting brand ranking service...")

	// Initialize components
	s.store = repository.NewMemoryStore()
	s.cache = sightings.NewInMemoryCache(
		sightings.WithInitialCapacity(s.sightingCacheSize),
	)

	// The NER model is advisory; a failed warm-up degrades to the
	// separator-based pipeline instead of failing startup.
	nerActive := false
	s.extractor = normalize.NopExtractor{}
	if s.nerEnabled {
		ner := normalize.NewNERExtractor()
		if err := ner.Init(ctx); err != nil {
			s.logger.Warn(ctx, "NER extractor unavailable, continuing without it", logger.Error(err))
		} else {
			s.extractor = ner
			nerActive = true
		}
	}
	normalizer := normalize.New(normalize.WithExtractor(s.extractor))

	resolverOpts := []resolve.Option{
		resolve.WithLogger(s.logger.Named("resolver")),
	}

	if s.enrichEnabled {
		s.enrichQueue = enrichqueue.NewInMemoryQueue(
			enrichqueue.WithCapacity(s.enrichQueueSize),
			enrichqueue.WithBufferSize(s.enrichQueueSize),
		)
		s.workerPool = workerpool.NewPool(s.enrichWorkerCount, s.enrichQueue, s.enricher, s.store)
		s.workerPool.Start(ctx)

		q := s.enrichQueue
		log := s.logger
		resolverOpts = append(resolverOpts, resolve.WithEnrichmentRequester(
			func(ctx context.Context, brandID uuid.UUID, name, regionHint string) {
				if !q.Enqueue(ctx, enrichqueue.Job{BrandID: brandID, Name: name, RegionHint: regionHint}) {
					log.Warn(ctx, "enrichment queue full, skipping enrichment",
						logger.String("brandID", brandID.String()),
						logger.String("name", name),
					)
				}
			},
		))
	}

	s.resolver = resolve.New(s.store, s.cache, normalizer, resolverOpts...)

	s.started = true
	s.logger.Info(ctx, "brand ranking service started",
		logger.Int("enrichWorkers", s.enrichWorkerCount),
		logger.Int("enrichQueueSize", s.enrichQueueSize),
		logger.Any("nerActive", nerActive),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping brand ranking service...")

	// Drain and stop the enrichment pipeline
	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	} else if s.enrichQueue != nil {
		_ = s.enrichQueue.Close()
	}

	// Release the NER model
	if s.extractor != nil {
		_ = s.extractor.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "brand ranking service stopped")
}

// Discover resolves a batch of store observations sequentially, in
// request order, committing each before the next begins. A failing
// observation is reported but never rolls back earlier ones.
func (s *Service) Discover(ctx context.Context, observations []model.Observation) (*types.DiscoveryResult, error) {
	result := &types.DiscoveryResult{Brands: []types.BrandSummary{}}

	seen := make(map[uuid.UUID]struct{}, len(observations))
	order := make([]uuid.UUID, 0, len(observations))

	for _, obs := range observations {
		brand, _, err := s.resolver.Resolve(ctx, obs)
		if err != nil {
			metrics.RecordResolutionError()
			s.logger.Warn(ctx, "observation failed to resolve",
				logger.String("placeID", obs.PlaceID),
				logger.Error(err),
			)
			result.Failures = append(result.Failures, types.DiscoveryFailure{
				PlaceID: obs.PlaceID,
				Reason:  err.Error(),
			})
			continue
		}
		if _, ok := seen[brand.ID]; !ok {
			seen[brand.ID] = struct{}{}
			order = append(order, brand.ID)
		}
	}

	// Annotate with the post-batch state so a brand hit by several
	// observations reports its final counters, not an intermediate one.
	for _, id := range order {
		summary, err := s.summarize(ctx, id)
		if err != nil {
			// Deleted mid-batch by an administrative call; skip.
			continue
		}
		result.Brands = append(result.Brands, summary)
	}

	metrics.UpdateBrandsTotal(s.store.CountBrands(ctx))
	metrics.UpdateSightingsTotal(s.store.CountSightings(ctx))

	return result, nil
}

// RecordMatch applies one contest between two brands: ratings move by
// the dynamic-K formula, win/loss/tie counters and tiers update, and an
// immutable match record is written, all atomically.
func (s *Service) RecordMatch(ctx context.Context, winnerID, loserID uuid.UUID, isTie bool, locationCountry, locationCity string) (types.MatchResult, error) {
	start := time.Now()

	var result types.MatchResult
	err := s.store.UpdatePair(ctx, winnerID, loserID, func(winner, loser *model.Brand) (*model.Match, error) {
		winnerBefore, loserBefore := winner.Rating, loser.Rating

		newWinner, newLoser := rating.Update(
			rating.Standing{Rating: winner.Rating, Contests: winner.Contests()},
			rating.Standing{Rating: loser.Rating, Contests: loser.Contests()},
			isTie,
		)

		winner.Rating, loser.Rating = newWinner, newLoser
		if isTie {
			winner.Ties++
			loser.Ties++
		} else {
			winner.Wins++
			loser.Losses++
		}
		winner.Tier = rating.TierFor(winner.Rating)
		loser.Tier = rating.TierFor(loser.Rating)

		result = types.MatchResult{
			WinnerID:           winner.ID,
			WinnerNewRating:    newWinner,
			WinnerRatingChange: newWinner - winnerBefore,
			WinnerTier:         winner.Tier,
			LoserID:            loser.ID,
			LoserNewRating:     newLoser,
			LoserRatingChange:  newLoser - loserBefore,
			LoserTier:          loser.Tier,
			IsTie:              isTie,
		}

		return &model.Match{
			ID:                 uuid.New(),
			WinnerID:           winner.ID,
			LoserID:            loser.ID,
			WinnerRatingBefore: winnerBefore,
			WinnerRatingAfter:  newWinner,
			LoserRatingBefore:  loserBefore,
			LoserRatingAfter:   newLoser,
			IsTie:              isTie,
			LocationCountry:    locationCountry,
			LocationCity:       locationCity,
			Timestamp:          time.Now().UTC(),
		}, nil
	})
	if err != nil {
		metrics.RecordMatchError()
		return types.MatchResult{}, err
	}

	metrics.RecordMatchRecorded()
	metrics.RecordMatchLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordRatingChange(result.WinnerRatingChange)
	metrics.RecordRatingChange(result.LoserRatingChange)
	metrics.UpdateMatchesTotal(s.store.CountMatches(ctx))

	return result, nil
}

// Leaderboard returns a page of brands ordered by descending rating.
func (s *Service) Leaderboard(ctx context.Context, limit, offset int) ([]types.LeaderboardEntry, error) {
	entries, err := s.store.Leaderboard(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	page := make([]types.LeaderboardEntry, len(entries))
	for i, e := range entries {
		page[i] = types.LeaderboardEntry{
			Rank:     e.Rank,
			Position: e.Position,
			BrandID:  e.Brand.ID,
			Name:     e.Brand.Name,
			Rating:   e.Brand.Rating,
			Tier:     e.Brand.Tier,
		}
	}
	return page, nil
}

// Rank returns the ranked summary of a single brand.
func (s *Service) Rank(ctx context.Context, brandID uuid.UUID) (types.BrandSummary, error) {
	return s.summarize(ctx, brandID)
}

// RandomPair returns two distinct brands for a face-off.
func (s *Service) RandomPair(ctx context.Context) ([2]*model.Brand, error) {
	return s.store.RandomPair(ctx)
}

// CreateBrand persists a manually curated brand. Competitive state is
// forced to the newcomer defaults regardless of the input.
func (s *Service) CreateBrand(ctx context.Context, b *model.Brand) (*model.Brand, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.Rating = model.DefaultRating
	b.Tier = model.TierUnranked
	b.Wins, b.Losses, b.Ties = 0, 0, 0
	if b.TotalLocations < 1 {
		b.TotalLocations = 1
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	if err := s.store.CreateBrand(ctx, b); err != nil {
		return nil, err
	}
	metrics.RecordBrandCreated()
	metrics.UpdateBrandsTotal(s.store.CountBrands(ctx))
	return b.Clone(), nil
}

// GetBrand returns a brand by id.
func (s *Service) GetBrand(ctx context.Context, id uuid.UUID) (*model.Brand, error) {
	return s.store.GetBrand(ctx, id)
}

// ListBrands returns every brand in ascending id order.
func (s *Service) ListBrands(ctx context.Context) ([]*model.Brand, error) {
	return s.store.ListBrands(ctx)
}

// UpdateBrand applies a field-mask partial update to a brand's
// descriptive fields. Rating, tier, counters and regions are not
// editable through this path.
func (s *Service) UpdateBrand(ctx context.Context, id uuid.UUID, upd repository.BrandUpdate) (*model.Brand, error) {
	return s.store.UpdateBrand(ctx, id, upd)
}

// DeleteBrand removes a brand.
func (s *Service) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteBrand(ctx, id); err != nil {
		return err
	}
	metrics.UpdateBrandsTotal(s.store.CountBrands(ctx))
	return nil
}

// MatchesFor returns a brand's match history, most recent first.
func (s *Service) MatchesFor(ctx context.Context, brandID uuid.UUID, limit int) ([]*model.Match, error) {
	return s.store.MatchesFor(ctx, brandID, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":           s.started,
		"enrichEnabled":     s.enrichEnabled,
		"enrichWorkerCount": s.enrichWorkerCount,
	}

	if s.started {
		totalBrands := s.store.CountBrands(ctx)
		totalSightings := s.store.CountSightings(ctx)
		totalMatches := s.store.CountMatches(ctx)

		stats["totalBrands"] = totalBrands
		stats["totalSightings"] = totalSightings
		stats["totalMatches"] = totalMatches
		stats["cachedSightings"] = s.cache.Size()

		if s.enrichQueue != nil {
			stats["enrichQueueLength"] = s.enrichQueue.Len(ctx)
		}

		// Update metrics
		metrics.UpdateBrandsTotal(totalBrands)
		metrics.UpdateSightingsTotal(totalSightings)
		metrics.UpdateMatchesTotal(totalMatches)
	}

	return stats
}

// summarize builds the ranked read shape for one brand.
func (s *Service) summarize(ctx context.Context, id uuid.UUID) (types.BrandSummary, error) {
	brand, err := s.store.GetBrand(ctx, id)
	if err != nil {
		return types.BrandSummary{}, err
	}
	rank, err := s.store.RankOf(ctx, id)
	if err != nil {
		return types.BrandSummary{}, err
	}
	return types.BrandSummary{
		ID:             brand.ID,
		Name:           brand.Name,
		Rating:         brand.Rating,
		Tier:           brand.Tier,
		Rank:           rank,
		Wins:           brand.Wins,
		Losses:         brand.Losses,
		Ties:           brand.Ties,
		TotalLocations: brand.TotalLocations,
		Regions:        brand.Regions,
	}, nil
}
