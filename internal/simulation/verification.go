package simulation

import (
	"fmt"
	"log"
	"sort"
)

// verifyResults checks the leaderboard against per-brand rankings.
func verifyResults(config *Config, rankings, leaderboard []Entry, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	if len(rankings) == 0 {
		return fmt.Errorf("no rankings to verify")
	}

	sortedRankings := make([]Entry, len(rankings))
	copy(sortedRankings, rankings)
	sort.Slice(sortedRankings, func(i, j int) bool {
		return sortedRankings[i].Rating > sortedRankings[j].Rating
	})

	if len(leaderboard) > 0 {
		if err := verifyLeaderboardConsistency(sortedRankings, leaderboard); err != nil {
			log.Printf("⚠️  Leaderboard consistency warning: %v", err)
		} else {
			log.Println("✅ Leaderboard consistency verified")
		}
	}

	if stats.ObservationsSubmitted > 0 && stats.BrandsResolved >= stats.ObservationsSubmitted {
		log.Printf("⚠️  No deduplication happened: %d observations produced %d brands",
			stats.ObservationsSubmitted, stats.BrandsResolved)
	}

	displayTopBrands(sortedRankings, leaderboard, config.Verbose)

	log.Println("✅ Result verification completed")
	return nil
}

// verifyLeaderboardConsistency checks ordering and rank arithmetic.
func verifyLeaderboardConsistency(sortedRankings, leaderboard []Entry) error {
	if len(leaderboard) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	topRanking := sortedRankings[0]
	topLeaderboard := leaderboard[0]

	if topRanking.Rating != topLeaderboard.Rating {
		return fmt.Errorf("top leaderboard rating (%d) does not match top ranked rating (%d)",
			topLeaderboard.Rating, topRanking.Rating)
	}

	for i := 1; i < len(leaderboard); i++ {
		if leaderboard[i].Rating > leaderboard[i-1].Rating {
			return fmt.Errorf("leaderboard not properly sorted: entry %d has higher rating than entry %d",
				i, i-1)
		}
	}

	// Positions are sequential; ranks never exceed positions and ties
	// share a rank.
	for i, entry := range leaderboard {
		if entry.Position != i+1 {
			return fmt.Errorf("entry %d has position %d, want %d", i, entry.Position, i+1)
		}
		if entry.Rank > entry.Position {
			return fmt.Errorf("entry %d has rank %d greater than position %d", i, entry.Rank, entry.Position)
		}
		if i > 0 && entry.Rating == leaderboard[i-1].Rating && entry.Rank != leaderboard[i-1].Rank {
			return fmt.Errorf("entries %d and %d tie on rating but have different ranks", i-1, i)
		}
	}

	return nil
}

// displayTopBrands shows the top brands from rankings and leaderboard.
func displayTopBrands(sortedRankings, leaderboard []Entry, verbose bool) {
	topN := 10
	if len(sortedRankings) < topN {
		topN = len(sortedRankings)
	}

	log.Printf("🏆 Top %d brands by rating:", topN)
	for i := 0; i < topN; i++ {
		entry := sortedRankings[i]
		log.Printf("   %d. %s - Rating: %d (%s)", i+1, entry.Name, entry.Rating, entry.Tier)
	}

	if len(leaderboard) > 0 {
		leaderboardTopN := topN
		if len(leaderboard) < leaderboardTopN {
			leaderboardTopN = len(leaderboard)
		}

		log.Printf("🥇 Top %d from leaderboard:", leaderboardTopN)
		for i := 0; i < leaderboardTopN; i++ {
			entry := leaderboard[i]
			log.Printf("   %d. %s - Rating: %d (rank %d)", entry.Position, entry.Name, entry.Rating, entry.Rank)
		}
	}

	if verbose && len(sortedRankings) > 0 {
		maxRating := sortedRankings[0].Rating
		minRating := sortedRankings[len(sortedRankings)-1].Rating
		sum := 0
		for _, entry := range sortedRankings {
			sum += entry.Rating
		}

		log.Printf(`📊 Rating statistics:
   Average: %.1f
   Maximum: %d
   Minimum: %d
`, float64(sum)/float64(len(sortedRankings)), maxRating, minRating)
	}
}
