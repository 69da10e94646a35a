package repository

import (
	"bytes"
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teaelo/teaelo/internal/domain/model"
	"github.com/teaelo/teaelo/pkg/metrics"
)

// MemoryStore is the in-memory Store implementation.
//
// Locking: the store-level RWMutex guards the maps and the match log.
// Each brand additionally carries its own mutex; UpdatePair acquires
// the two participants' mutexes in ascending id order, which serializes
// the read-modify-write of a brand's rating without a global write lock
// and makes deadlock between concurrent matches impossible.
type MemoryStore struct {
	mu        sync.RWMutex
	brands    map[uuid.UUID]*brandRecord
	sightings map[string]*model.Sighting

	matchMu sync.RWMutex
	matches []*model.Match

	rngMu sync.Mutex
	rng   *rand.Rand
}

type brandRecord struct {
	mu    sync.Mutex
	brand *model.Brand
}

// NewMemoryStore constructs an in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		brands:    make(map[uuid.UUID]*brandRecord),
		sightings: make(map[string]*model.Sighting),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // pair picking, not crypto
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) CreateBrand(_ context.Context, b *model.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.brands[b.ID]; exists {
		return ErrConflict
	}
	s.brands[b.ID] = &brandRecord{brand: b.Clone()}
	metrics.UpdateBrandsTotal(len(s.brands))
	return nil
}

func (s *MemoryStore) GetBrand(_ context.Context, id uuid.UUID) (*model.Brand, error) {
	s.mu.RLock()
	rec, ok := s.brands[id]
	s.mu.RUnlock()
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.brand.Clone(), nil
}

func (s *MemoryStore) ListBrands(_ context.Context) ([]*model.Brand, error) {
	s.mu.RLock()
	records := make([]*brandRecord, 0, len(s.brands))
	for _, rec := range s.brands {
		records = append(records, rec)
	}
	s.mu.RUnlock()

	out := make([]*model.Brand, 0, len(records))
	for _, rec := range records {
		rec.mu.Lock()
		out = append(out, rec.brand.Clone())
		rec.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out, nil
}

func (s *MemoryStore) UpdateBrand(_ context.Context, id uuid.UUID, upd BrandUpdate) (*model.Brand, error) {
	s.mu.RLock()
	rec, ok := s.brands[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	b := rec.brand
	if upd.Name != nil {
		b.Name = *upd.Name
	}
	if upd.Description != nil {
		b.Description = *upd.Description
	}
	if upd.WebsiteURL != nil {
		b.WebsiteURL = *upd.WebsiteURL
	}
	if upd.LogoURL != nil {
		b.LogoURL = *upd.LogoURL
	}
	if upd.CountryOfOrigin != nil {
		b.CountryOfOrigin = *upd.CountryOfOrigin
	}
	if upd.EstablishedYear != nil {
		b.EstablishedYear = *upd.EstablishedYear
	}
	return b.Clone(), nil
}

func (s *MemoryStore) DeleteBrand(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.brands[id]; !ok {
		return ErrNotFound
	}
	delete(s.brands, id)
	metrics.UpdateBrandsTotal(len(s.brands))
	return nil
}

func (s *MemoryStore) MergeSighting(_ context.Context, brandID uuid.UUID, region string) (*model.Brand, error) {
	s.mu.RLock()
	rec, ok := s.brands[brandID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	b := rec.brand
	if region != "" && !b.HasRegion(region) {
		b.Regions = append(b.Regions, region)
	}
	b.TotalLocations++
	return b.Clone(), nil
}

func (s *MemoryStore) AddSighting(_ context.Context, sg *model.Sighting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sightings[sg.PlaceID]; exists {
		return ErrDuplicateSighting
	}
	cp := *sg
	s.sightings[sg.PlaceID] = &cp
	metrics.UpdateSightingsTotal(len(s.sightings))
	return nil
}

func (s *MemoryStore) UpdatePair(_ context.Context, idA, idB uuid.UUID, fn PairFunc) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	if idA == idB {
		return ErrSelfPair
	}

	s.mu.RLock()
	recA, okA := s.brands[idA]
	recB, okB := s.brands[idB]
	s.mu.RUnlock()
	if !okA || !okB {
		metrics.RecordErrorByComponent("repository", "not_found")
		return ErrNotFound
	}

	// Fixed acquisition order by id prevents deadlock when two matches
	// share both participants in opposite order.
	first, second := recA, recB
	if bytes.Compare(idA[:], idB[:]) > 0 {
		first, second = recB, recA
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	// fn works on copies; nothing is observable unless it succeeds.
	copyA := recA.brand.Clone()
	copyB := recB.brand.Clone()
	match, err := fn(copyA, copyB)
	if err != nil {
		return err
	}

	recA.brand = copyA
	recB.brand = copyB
	if match != nil {
		s.matchMu.Lock()
		s.matches = append(s.matches, match)
		total := len(s.matches)
		s.matchMu.Unlock()
		metrics.UpdateMatchesTotal(total)
	}
	return nil
}

func (s *MemoryStore) RankOf(ctx context.Context, id uuid.UUID) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	target, err := s.GetBrand(ctx, id)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	records := make([]*brandRecord, 0, len(s.brands))
	for _, rec := range s.brands {
		records = append(records, rec)
	}
	s.mu.RUnlock()

	higher := 0
	for _, rec := range records {
		rec.mu.Lock()
		if rec.brand.Rating > target.Rating {
			higher++
		}
		rec.mu.Unlock()
	}
	return higher + 1, nil
}

func (s *MemoryStore) Leaderboard(ctx context.Context, limit, offset int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if limit < 1 || offset < 0 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	all, err := s.ListBrands(ctx)
	if err != nil {
		return nil, err
	}
	// Rating desc, then name asc, then id asc: fully deterministic.
	sort.Slice(all, func(i, j int) bool {
		if all[i].Rating != all[j].Rating {
			return all[i].Rating > all[j].Rating
		}
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return bytes.Compare(all[i].ID[:], all[j].ID[:]) < 0
	})

	// Competition ranking over the full sorted population: the first
	// of a rating group carries index+1, the rest share it.
	ranks := make([]int, len(all))
	for i := range all {
		if i > 0 && all[i].Rating == all[i-1].Rating {
			ranks[i] = ranks[i-1]
		} else {
			ranks[i] = i + 1
		}
	}

	if offset >= len(all) {
		return []Entry{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	page := make([]Entry, 0, end-offset)
	for i := offset; i < end; i++ {
		page = append(page, Entry{
			Brand:    all[i],
			Rank:     ranks[i],
			Position: i + 1,
		})
	}
	return page, nil
}

func (s *MemoryStore) RandomPair(ctx context.Context) ([2]*model.Brand, error) {
	all, err := s.ListBrands(ctx)
	if err != nil {
		return [2]*model.Brand{}, err
	}
	if len(all) < 2 {
		return [2]*model.Brand{}, ErrInsufficientBrands
	}

	s.rngMu.Lock()
	i := s.rng.Intn(len(all))
	j := s.rng.Intn(len(all) - 1)
	s.rngMu.Unlock()
	if j >= i {
		j++
	}
	return [2]*model.Brand{all[i], all[j]}, nil
}

func (s *MemoryStore) MatchesFor(_ context.Context, brandID uuid.UUID, limit int) ([]*model.Match, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	s.matchMu.RLock()
	defer s.matchMu.RUnlock()

	out := make([]*model.Match, 0, limit)
	for i := len(s.matches) - 1; i >= 0 && len(out) < limit; i-- {
		m := s.matches[i]
		if m.WinnerID == brandID || m.LoserID == brandID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) CountBrands(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.brands)
}

func (s *MemoryStore) CountSightings(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sightings)
}

func (s *MemoryStore) CountMatches(_ context.Context) int {
	s.matchMu.RLock()
	defer s.matchMu.RUnlock()
	return len(s.matches)
}
