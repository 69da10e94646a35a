package simulation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// matchRequest mirrors the POST /matches body.
type matchRequest struct {
	WinnerID        string `json:"winner_id"`
	LoserID         string `json:"loser_id"`
	IsTie           bool   `json:"is_tie"`
	LocationCountry string `json:"location_country,omitempty"`
}

// Tie frequency: roughly one match in ten.
const tieDivisor = 10

// playMatches plays random pairings concurrently. Outcomes are biased by
// roster strength so the final leaderboard has a verifiable ordering
// tendency.
func playMatches(ctx context.Context, config *Config, brands map[string]BrandSummary, stats *Stats) error {
	if len(brands) < 2 {
		return fmt.Errorf("need at least two brands to play matches, have %d", len(brands))
	}

	log.Printf("⚔️  Playing %d matches with %d workers...", config.NumMatches, config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/matches"

	ids := make([]string, 0, len(brands))
	for id := range brands {
		ids = append(ids, id)
	}

	var (
		played int64
		failed int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	matchChan := make(chan matchRequest, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for req := range matchChan {
				select {
				case <-ctx.Done():
					return
				default:
					resp, err := client.Post(url, req)
					if err != nil {
						atomic.AddInt64(&failed, 1)
						continue
					}
					var outcome MatchOutcome
					if err := decodeResponse(resp, StatusOK, &outcome); err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("⚠️  Match failed: %v", err)
						}
						continue
					}
					atomic.AddInt64(&played, 1)

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						log.Printf("⚔️  Matches: %d/%d played (failed: %d)",
							atomic.LoadInt64(&played)+atomic.LoadInt64(&failed), config.NumMatches, atomic.LoadInt64(&failed))
					}
				}
			}
		}(i)
	}

	go func() {
		defer close(matchChan)
		for i := 0; i < config.NumMatches; i++ {
			select {
			case <-ctx.Done():
				return
			case matchChan <- nextMatch(ids, brands, i):
			}
		}
	}()

	wg.Wait()

	stats.MatchesPlayed = int(atomic.LoadInt64(&played))
	stats.MatchesFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Match play completed:
   Played: %d
   Failed: %d
`, stats.MatchesPlayed, stats.MatchesFailed)

	return nil
}

// nextMatch picks two distinct brands and decides the winner by a
// strength-weighted coin flip.
func nextMatch(ids []string, brands map[string]BrandSummary, seq int) matchRequest {
	a := ids[randomInt(len(ids))]
	b := ids[randomInt(len(ids))]
	for b == a {
		b = ids[randomInt(len(ids))]
	}

	if seq%tieDivisor == 0 {
		return matchRequest{WinnerID: a, LoserID: b, IsTie: true}
	}

	sa := rosterStrength(brands[a].Name)
	sb := rosterStrength(brands[b].Name)
	if randomInt(sa+sb) < sb {
		a, b = b, a
	}

	return matchRequest{WinnerID: a, LoserID: b, LocationCountry: "CA"}
}
