package simulation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

// rankResponse mirrors the GET /rank/{brand_id} body.
type rankResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
	Tier   string `json:"tier"`
	Rank   int    `json:"rank"`
}

// retrieveRankings retrieves per-brand rankings concurrently.
func retrieveRankings(ctx context.Context, config *Config, brands map[string]BrandSummary, stats *Stats) ([]Entry, error) {
	log.Printf("🏆 Retrieving rankings for %d brands with %d workers...", len(brands), config.Workers)

	client := newHTTPClient(config.Timeout)

	ids := make([]string, 0, len(brands))
	for id := range brands {
		ids = append(ids, id)
	}

	rankings := make([]Entry, len(ids))
	var (
		retrieved int64
		failed    int64
	)

	idxChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for index := range idxChan {
				select {
				case <-ctx.Done():
					return
				default:
					entry, err := retrieveSingleRanking(client, config.BaseURL, ids[index])
					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("⚠️  Failed to get rank for %s: %v", ids[index], err)
						}
					} else {
						rankings[index] = entry
						atomic.AddInt64(&retrieved, 1)
					}
				}
			}
		}(i)
	}

	go func() {
		defer close(idxChan)
		for i := range ids {
			select {
			case <-ctx.Done():
				return
			case idxChan <- i:
			}
		}
	}()

	wg.Wait()

	// Filter out failed retrievals
	validRankings := make([]Entry, 0, len(rankings))
	for _, entry := range rankings {
		if entry.BrandID != "" {
			validRankings = append(validRankings, entry)
		}
	}

	stats.RankingsRetrieved = len(validRankings)

	log.Printf(`✅ Ranking retrieval completed:
   Retrieved: %d
   Failed: %d
`, len(validRankings), int(atomic.LoadInt64(&failed)))

	return validRankings, nil
}

// retrieveSingleRanking retrieves ranking for a single brand.
func retrieveSingleRanking(client *HTTPClient, baseURL, brandID string) (Entry, error) {
	url := fmt.Sprintf("%s/rank/%s", baseURL, brandID)

	resp, err := client.Get(url)
	if err != nil {
		return Entry{}, fmt.Errorf("request failed: %w", err)
	}

	var summary rankResponse
	if err := decodeResponse(resp, StatusOK, &summary); err != nil {
		return Entry{}, err
	}

	return Entry{
		Rank:    summary.Rank,
		BrandID: summary.ID,
		Name:    summary.Name,
		Rating:  summary.Rating,
		Tier:    summary.Tier,
	}, nil
}

// getLeaderboard retrieves the top N leaderboard entries.
func getLeaderboard(ctx context.Context, config *Config, stats *Stats) ([]Entry, error) {
	log.Printf("🥇 Getting top %d leaderboard entries...", config.TopN)

	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/leaderboard?limit=%d", config.BaseURL, config.TopN)

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var leaderboard []Entry
	if err := decodeResponse(resp, StatusOK, &leaderboard); err != nil {
		return nil, err
	}

	stats.LeaderboardEntries = len(leaderboard)
	log.Printf("✅ Retrieved %d leaderboard entries", len(leaderboard))

	return leaderboard, nil
}
