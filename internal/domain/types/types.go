// Package types contains common types used across the application
package types

import "github.com/google/uuid"

// BrandSummary is the read shape for a single brand, annotated with its
// rank at response time. Rank uses the count-based formula: number of
// brands with a strictly greater rating, plus one.
type BrandSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Rating         int       `json:"rating"`
	Tier           string    `json:"tier"`
	Rank           int       `json:"rank"`
	Wins           int       `json:"wins"`
	Losses         int       `json:"losses"`
	Ties           int       `json:"ties"`
	TotalLocations int       `json:"total_locations"`
	Regions        []string  `json:"regions_present"`
}

// LeaderboardEntry is one row of a leaderboard page. Rank is the
// count-based rank (ties share it); Position is the row's place in the
// paginated listing (offset + index + 1). The two diverge when ratings
// tie, and both are exposed deliberately.
type LeaderboardEntry struct {
	Rank     int       `json:"rank"`
	Position int       `json:"position"`
	BrandID  uuid.UUID `json:"brand_id"`
	Name     string    `json:"name"`
	Rating   int       `json:"rating"`
	Tier     string    `json:"tier"`
}

// MatchResult reports both participants' new ratings and signed deltas.
type MatchResult struct {
	WinnerID           uuid.UUID `json:"winner_id"`
	WinnerNewRating    int       `json:"winner_new_rating"`
	WinnerRatingChange int       `json:"winner_rating_change"`
	WinnerTier         string    `json:"winner_tier"`
	LoserID            uuid.UUID `json:"loser_id"`
	LoserNewRating     int       `json:"loser_new_rating"`
	LoserRatingChange  int       `json:"loser_rating_change"`
	LoserTier          string    `json:"loser_tier"`
	IsTie              bool      `json:"is_tie"`
}

// DiscoveryFailure reports one observation that could not be resolved.
type DiscoveryFailure struct {
	PlaceID string `json:"place_id"`
	Reason  string `json:"reason"`
}

// DiscoveryResult is the response body for a discovery batch. Brands
// contains the deduplicated set of resolved brands; Failures lists
// observations that failed after earlier ones were already committed
// (partial-success semantics, documented in openapi.yaml).
type DiscoveryResult struct {
	Brands   []BrandSummary     `json:"brands"`
	Failures []DiscoveryFailure `json:"failures,omitempty"`
}
