package simulation

import (
	"context"
	"fmt"
	"log"
)

// submitObservations submits observations in ordered discovery batches.
// Batches are sent sequentially so that merge decisions build on brands
// created by earlier batches, the way a real ingest feed behaves.
func submitObservations(ctx context.Context, config *Config, observations []Observation, stats *Stats) (map[string]BrandSummary, error) {
	numBatches := (len(observations) + config.BatchSize - 1) / config.BatchSize
	log.Printf("📤 Submitting %d observations in %d batches of up to %d...", len(observations), numBatches, config.BatchSize)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/discovery"

	brands := make(map[string]BrandSummary)
	failures := 0
	submitted := 0

	for start := 0; start < len(observations); start += config.BatchSize {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during submission: %w", ctx.Err())
		default:
		}

		end := start + config.BatchSize
		if end > len(observations) {
			end = len(observations)
		}
		batch := observations[start:end]

		resp, err := client.Post(url, batch)
		if err != nil {
			return nil, fmt.Errorf("discovery request failed: %w", err)
		}

		var result DiscoveryResponse
		if err := decodeResponse(resp, StatusOK, &result); err != nil {
			return nil, fmt.Errorf("discovery batch %d failed: %w", start/config.BatchSize, err)
		}

		submitted += len(batch)
		failures += len(result.Failures)
		for _, b := range result.Brands {
			brands[b.ID] = b
		}

		if config.Verbose {
			log.Printf("📊 Batch %d/%d: %d brands so far, %d failures",
				start/config.BatchSize+1, numBatches, len(brands), failures)
		}
	}

	stats.ObservationsSubmitted = submitted
	stats.BrandsResolved = len(brands)
	stats.DiscoveryFailures = failures

	log.Printf(`✅ Observation submission completed:
   Submitted: %d
   Distinct brands: %d
   Failures: %d
`, submitted, len(brands), failures)

	return brands, nil
}
