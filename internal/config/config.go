// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load(ctx) layers file and environment sources on top of the defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// SightingCacheSize pre-sizes the place-id link cache.
	SightingCacheSize int `koanf:"sighting_cache_size"`

	// EnrichEnabled toggles background brand enrichment.
	EnrichEnabled bool `koanf:"enrich_enabled"`

	// EnrichQueueSize bounds the in-memory enrichment queue.
	EnrichQueueSize int `koanf:"enrich_queue_size"`

	// EnrichWorkerCount sets the number of enrichment workers.
	EnrichWorkerCount int `koanf:"enrich_worker_count"`

	// NEREnabled toggles the named-entity extraction stage of brand name
	// normalization. The statistical model costs startup time and memory;
	// the rest of the pipeline works without it.
	NEREnabled bool `koanf:"ner_enabled"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		MaxLeaderboardLimit: 100,
		SightingCacheSize:   100_000,
		EnrichEnabled:       true,
		EnrichQueueSize:     10_000,
		EnrichWorkerCount:   4,
		NEREnabled:          true,
	}
}
