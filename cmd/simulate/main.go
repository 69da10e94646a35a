package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/teaelo/teaelo/internal/simulation"
)

// Default configuration constants.
const (
	defaultNumObservations = 500
	defaultNumMatches      = 2000
	defaultBatchSize       = 25
	defaultTopN            = 50
	defaultWorkers         = 2 // multiplier for runtime.NumCPU()
	defaultTimeout         = 30 * time.Second
	defaultRunTimeout      = 10 * time.Minute
)

func main() {
	var (
		baseURL         = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numObservations = flag.Int("observations", defaultNumObservations, "Number of store observations to generate")
		numMatches      = flag.Int("matches", defaultNumMatches, "Number of matches to play")
		batchSize       = flag.Int("batch", defaultBatchSize, "Observations per discovery request")
		topN            = flag.Int("top", defaultTopN, "Number of top entries to fetch from leaderboard")
		workers         = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout         = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile      = flag.String("output", "", "Output file for generated observations (default: generated_observations_TIMESTAMP.json)")
		logFile         = flag.String("log", "", "Log file for simulation output (default: simulation_log_TIMESTAMP.log)")
		verbose         = flag.Bool("verbose", false, "Enable verbose logging")
		help            = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulation.ShowHelp()
		return
	}

	// Setup logging
	if err := simulation.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create simulation configuration
	config := &simulation.Config{
		BaseURL:         *baseURL,
		NumObservations: *numObservations,
		NumMatches:      *numMatches,
		BatchSize:       *batchSize,
		TopN:            *topN,
		Workers:         *workers,
		Timeout:         *timeout,
		OutputFile:      *outputFile,
		LogFile:         *logFile,
		Verbose:         *verbose,
	}

	// Run the simulation
	if err := simulation.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
