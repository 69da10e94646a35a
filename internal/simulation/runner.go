package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/teaelo/teaelo/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete simulation: discovery ingest, match play,
// ranking retrieval and verification.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting teaelo simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("observations", config.NumObservations),
		logger.Int("matches", config.NumMatches),
		logger.Int("batchSize", config.BatchSize),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate noisy observations
	observations, err := generateObservations(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("observation generation failed: %w", err)
	}

	// Step 3: Submit discovery batches
	brands, err := submitObservations(ctx, config, observations, stats)
	if err != nil {
		return fmt.Errorf("observation submission failed: %w", err)
	}

	// Step 4: Play matches
	if err := playMatches(ctx, config, brands, stats); err != nil {
		return fmt.Errorf("match play failed: %w", err)
	}

	// Step 5: Let enrichment workers drain
	logger.Get().Info(ctx, "waiting for background processing")
	time.Sleep(ProcessingDelay)

	// Step 6: Retrieve rankings concurrently
	rankings, err := retrieveRankings(ctx, config, brands, stats)
	if err != nil {
		return fmt.Errorf("ranking retrieval failed: %w", err)
	}

	// Step 7: Get leaderboard
	leaderboard, err := getLeaderboard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	// Step 8: Verify results
	if err := verifyResults(config, rankings, leaderboard, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 9: Save observations to file
	if err := saveObservationsToFile(ctx, config, observations); err != nil {
		logger.Get().Warn(ctx, "failed to save observations to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveObservationsToFile saves the generated observations to a JSON file.
func saveObservationsToFile(ctx context.Context, config *Config, observations []Observation) error {
	if len(observations) == 0 {
		return fmt.Errorf("no observations to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_observations_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(observations); err != nil {
		return fmt.Errorf("failed to write observations: %w", err)
	}

	logger.Get().Info(ctx, "observations saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var dedupFactor, matchesPerSecond float64

	if stats.BrandsResolved > 0 {
		dedupFactor = float64(stats.ObservationsSubmitted) / float64(stats.BrandsResolved)
	}

	if stats.Duration > 0 {
		matchesPerSecond = float64(stats.MatchesPlayed) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("observationsGenerated", stats.ObservationsGenerated),
		logger.Int("observationsSubmitted", stats.ObservationsSubmitted),
		logger.Int("brandsResolved", stats.BrandsResolved),
		logger.Int("discoveryFailures", stats.DiscoveryFailures),
		logger.Int("matchesPlayed", stats.MatchesPlayed),
		logger.Int("matchesFailed", stats.MatchesFailed),
		logger.Int("rankingsRetrieved", stats.RankingsRetrieved),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("dedupFactor", dedupFactor),
		logger.Float64("matchesPerSecond", matchesPerSecond))
}
