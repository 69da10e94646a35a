package simulation

import "time"

// Config holds configuration for the simulation run
type Config struct {
	BaseURL         string        // Base URL of the service
	NumObservations int           // Number of store observations to generate
	NumMatches      int           // Number of matches to play
	BatchSize       int           // Observations per discovery request
	TopN            int           // Number of top entries to fetch
	Workers         int           // Number of concurrent workers
	Timeout         time.Duration // HTTP request timeout
	OutputFile      string        // Output file for observations
	LogFile         string        // Log file for simulation output
	Verbose         bool          // Enable verbose logging
}

// Observation represents one raw store sighting to be submitted
type Observation struct {
	PlaceID string   `json:"place_id"`
	Name    string   `json:"name"`
	Country string   `json:"country"`
	City    string   `json:"city,omitempty"`
	Types   []string `json:"types,omitempty"`
}

// BrandSummary represents a resolved brand in a discovery response
type BrandSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Rating         int    `json:"rating"`
	Tier           string `json:"tier"`
	Rank           int    `json:"rank"`
	Wins           int    `json:"wins"`
	Losses         int    `json:"losses"`
	Ties           int    `json:"ties"`
	TotalLocations int    `json:"total_locations"`
}

// DiscoveryResponse represents the response from a discovery batch
type DiscoveryResponse struct {
	Brands   []BrandSummary `json:"brands"`
	Failures []struct {
		PlaceID string `json:"place_id"`
		Reason  string `json:"reason"`
	} `json:"failures"`
}

// Entry represents a leaderboard entry
type Entry struct {
	Rank     int    `json:"rank"`
	Position int    `json:"position"`
	BrandID  string `json:"brand_id"`
	Name     string `json:"name"`
	Rating   int    `json:"rating"`
	Tier     string `json:"tier"`
}

// MatchOutcome represents the response from a match submission
type MatchOutcome struct {
	WinnerID           string `json:"winner_id"`
	WinnerNewRating    int    `json:"winner_new_rating"`
	WinnerRatingChange int    `json:"winner_rating_change"`
	LoserID            string `json:"loser_id"`
	LoserNewRating     int    `json:"loser_new_rating"`
	LoserRatingChange  int    `json:"loser_rating_change"`
	IsTie              bool   `json:"is_tie"`
}

// Stats holds simulation statistics
type Stats struct {
	ObservationsGenerated int
	ObservationsSubmitted int
	BrandsResolved        int
	DiscoveryFailures     int
	MatchesPlayed         int
	MatchesFailed         int
	RankingsRetrieved     int
	LeaderboardEntries    int
	StartTime             time.Time
	EndTime               time.Time
	Duration              time.Duration
}
