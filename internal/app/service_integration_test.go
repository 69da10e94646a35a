package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	service "github.com/teaelo/teaelo/internal/app"
	"github.com/teaelo/teaelo/internal/domain/enrich"
	"github.com/teaelo/teaelo/internal/domain/model"
)

func TestServiceIntegration_DiscoveryToLeaderboard(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	Convey("Given a service fed a noisy discovery feed", t, func() {
		svc := newTestService(t)

		observations := []model.Observation{
			{PlaceID: "g-001", RawName: "The Alley - Toronto Downtown", Country: "CA", City: "Toronto"},
			{PlaceID: "g-002", RawName: "The Alley | Flushing", Country: "US", City: "New York"},
			{PlaceID: "g-003", RawName: "Chatime Canada Ltd.", Country: "CA", City: "Vancouver"},
			{PlaceID: "g-004", RawName: "chatime", Country: "SG"},
			{PlaceID: "g-005", RawName: "Gong Cha", Country: "TW", City: "Taipei"},
		}

		result, err := svc.Discover(ctx, observations)
		So(err, ShouldBeNil)
		So(result.Failures, ShouldBeEmpty)

		Convey("The feed collapses to three canonical brands", func() {
			So(result.Brands, ShouldHaveLength, 3)

			// "Chatime Canada Ltd." canonicalizes to "Chatime Canada"
			// with NER off; the bare "chatime" merges into it by
			// similarity and the brand keeps its first canonical name.
			byName := map[string]int{}
			for _, b := range result.Brands {
				byName[b.Name] = b.TotalLocations
			}
			So(byName["The Alley"], ShouldEqual, 2)
			So(byName["Chatime Canada"], ShouldEqual, 2)
			So(byName["Gong Cha"], ShouldEqual, 1)
		})

		Convey("And a season of matches produces a consistent leaderboard", func() {
			So(result.Brands, ShouldHaveLength, 3)
			a, b, c := result.Brands[0].ID, result.Brands[1].ID, result.Brands[2].ID

			// a beats b twice, b beats c, a ties c.
			for _, m := range []struct {
				winner, loser uuid.UUID
				tie           bool
			}{
				{a, b, false},
				{a, b, false},
				{b, c, false},
				{a, c, true},
			} {
				_, err := svc.RecordMatch(ctx, m.winner, m.loser, m.tie, "", "")
				So(err, ShouldBeNil)
			}

			page, err := svc.Leaderboard(ctx, 10, 0)
			So(err, ShouldBeNil)
			So(page, ShouldHaveLength, 3)
			So(page[0].BrandID, ShouldEqual, a)

			// Ratings on the page are monotonically non-increasing and
			// ranks never decrease.
			for i := 1; i < len(page); i++ {
				So(page[i].Rating, ShouldBeLessThanOrEqualTo, page[i-1].Rating)
				So(page[i].Rank, ShouldBeGreaterThanOrEqualTo, page[i-1].Rank)
				So(page[i].Position, ShouldEqual, i+1)
			}

			// Every contest is audited.
			stats := svc.GetStats()
			So(stats["totalMatches"], ShouldEqual, 4)

			historyA, err := svc.MatchesFor(ctx, a, 10)
			So(err, ShouldBeNil)
			So(historyA, ShouldHaveLength, 3)
			// Newest first.
			So(historyA[0].IsTie, ShouldBeTrue)
		})
	})
}

func TestServiceIntegration_Enrichment(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	Convey("Given a service with background enrichment enabled", t, func() {
		svc := service.New(
			service.WithNEREnabled(false),
			service.WithEnrichmentEnabled(true),
			service.WithEnrichWorkerCount(2),
			service.WithEnricher(enrich.Static{}),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("A newly discovered brand gains metadata shortly after", func() {
			result, err := svc.Discover(ctx, []model.Observation{
				{PlaceID: "g-100", RawName: "Tiger Sugar", Country: "TW"},
			})
			So(err, ShouldBeNil)
			So(result.Brands, ShouldHaveLength, 1)
			id := result.Brands[0].ID

			deadline := time.After(2 * time.Second)
			for {
				brand, err := svc.GetBrand(ctx, id)
				So(err, ShouldBeNil)
				if brand.Description != "" {
					So(brand.Description, ShouldContainSubstring, "TW")
					So(brand.WebsiteURL, ShouldNotBeEmpty)
					break
				}
				select {
				case <-deadline:
					t.Fatal("enrichment never applied")
				case <-time.After(10 * time.Millisecond):
				}
			}
		})
	})
}

func TestServiceIntegration_ConcurrentMatches(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	Convey("Given two brands hammered by opposite-direction matches", t, func() {
		svc := newTestService(t)
		result, err := svc.Discover(ctx, []model.Observation{
			{PlaceID: "g-1", RawName: "Chatime", Country: "CA"},
			{PlaceID: "g-2", RawName: "Gong Cha", Country: "TW"},
		})
		So(err, ShouldBeNil)
		a, b := result.Brands[0].ID, result.Brands[1].ID

		const rounds = 50
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				_, _ = svc.RecordMatch(ctx, a, b, false, "", "")
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				_, _ = svc.RecordMatch(ctx, b, a, false, "", "")
			}
		}()
		wg.Wait()

		Convey("Then every match is accounted for exactly once", func() {
			brandA, err := svc.GetBrand(ctx, a)
			So(err, ShouldBeNil)
			brandB, err := svc.GetBrand(ctx, b)
			So(err, ShouldBeNil)

			So(brandA.Contests(), ShouldEqual, 2*rounds)
			So(brandB.Contests(), ShouldEqual, 2*rounds)
			So(brandA.Wins, ShouldEqual, rounds)
			So(brandB.Wins, ShouldEqual, rounds)

			stats := svc.GetStats()
			So(stats["totalMatches"], ShouldEqual, 2*rounds)

			historyA, err := svc.MatchesFor(ctx, a, 2*rounds)
			So(err, ShouldBeNil)
			So(historyA, ShouldHaveLength, 2*rounds)

			// Audit chain: every record's after-ratings are internally
			// consistent with its deltas.
			for _, m := range historyA {
				So(m.WinnerRatingAfter, ShouldBeGreaterThanOrEqualTo, m.WinnerRatingBefore)
				So(m.LoserRatingAfter, ShouldBeLessThanOrEqualTo, m.LoserRatingBefore)
			}
		})
	})
}
