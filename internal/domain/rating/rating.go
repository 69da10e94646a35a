// Package rating implements the ELO-style rating update used after a
// head-to-head match between two brands.
//
// The update is intentionally asymmetric: each side applies its own
// K-factor, derived from its own rating and match history, so two brands
// with different histories move by different amounts for the same result.
package rating

import "math"

// Rating constants. The K-factor is dynamic per brand:
// placement phase converges quickly, the elite phase dampens swings at
// the top of the ladder, everything else uses the classic chess value.
const (
	// PlacementMatches is the number of matches below which a brand is
	// still considered to be in placement.
	PlacementMatches = 15

	// EliteRating is the rating at or above which the elite K applies.
	EliteRating = 1300

	KPlacement = 60
	KElite     = 16
	KStandard  = 32

	logisticBase    = 10
	logisticDivisor = 400
)

// Tier thresholds, evaluated top-down; first match wins.
const (
	tierSRating = 1400
	tierARating = 1300
	tierBRating = 1200
	tierCRating = 1100
	tierDRating = 1000
)

// Standing is the rating-relevant state of one participant.
type Standing struct {
	Rating   int
	Contests int // total recorded matches: wins + losses + ties
}

// ExpectedScore returns the probability (0..1) that a player rated a
// beats a player rated b. ExpectedScore(a,b) + ExpectedScore(b,a) == 1.
func ExpectedScore(a, b int) float64 {
	return 1 / (1 + math.Pow(logisticBase, float64(b-a)/logisticDivisor))
}

// KFactor returns the volatility multiplier for one side, based on that
// side's own rating and match count.
func KFactor(r, contests int) int {
	switch {
	case contests < PlacementMatches:
		return KPlacement
	case r >= EliteRating:
		return KElite
	default:
		return KStandard
	}
}

// Update computes new ratings for a and b. If tie is false, a is the
// winner. Each side is updated independently with its own K-factor.
// Results are rounded to the nearest integer, ties away from zero
// (math.Round), which is the rounding rule used project-wide.
func Update(a, b Standing, tie bool) (newA, newB int) {
	scoreA, scoreB := 1.0, 0.0
	if tie {
		scoreA, scoreB = 0.5, 0.5
	}

	expectedA := ExpectedScore(a.Rating, b.Rating)
	expectedB := ExpectedScore(b.Rating, a.Rating)

	kA := float64(KFactor(a.Rating, a.Contests))
	kB := float64(KFactor(b.Rating, b.Contests))

	newA = int(math.Round(float64(a.Rating) + kA*(scoreA-expectedA)))
	newB = int(math.Round(float64(b.Rating) + kB*(scoreB-expectedB)))
	return newA, newB
}

// TierFor maps a rating to its tier label.
func TierFor(r int) string {
	switch {
	case r >= tierSRating:
		return "S"
	case r >= tierARating:
		return "A"
	case r >= tierBRating:
		return "B"
	case r >= tierCRating:
		return "C"
	case r >= tierDRating:
		return "D"
	default:
		return "F"
	}
}
