package repository

import "math/rand"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithRand sets the random source used by RandomPair. Tests inject a
// seeded source for reproducible pairs.
func WithRand(r *rand.Rand) Option {
	return func(s *MemoryStore) {
		if r != nil {
			s.rng = r
		}
	}
}
