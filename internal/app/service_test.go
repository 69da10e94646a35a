package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/teaelo/teaelo/internal/adapters/repository"
	service "github.com/teaelo/teaelo/internal/app"
	"github.com/teaelo/teaelo/internal/domain/model"
	"github.com/teaelo/teaelo/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// newTestService starts a service without the NER model or background
// enrichment so tests stay fast and deterministic.
func newTestService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	opts = append([]service.Option{
		service.WithNEREnabled(false),
		service.WithEnrichmentEnabled(false),
	}, opts...)
	svc := service.New(opts...)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithSightingCacheSize(1_000),
			service.WithEnrichQueueSize(500),
			service.WithEnrichWorkerCount(2),
			service.WithNEREnabled(false),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithNEREnabled(false), service.WithEnrichmentEnabled(false))
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Discover(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := newTestService(t)

		Convey("When discovering a batch with repeats of one brand", func() {
			result, err := svc.Discover(ctx, []model.Observation{
				{PlaceID: "pl-1", RawName: "The Alley - Toronto Downtown", Country: "CA"},
				{PlaceID: "pl-2", RawName: "The Alley | Flushing", Country: "US"},
			})

			Convey("Then exactly one brand comes back with both regions", func() {
				So(err, ShouldBeNil)
				So(result.Failures, ShouldBeEmpty)
				So(result.Brands, ShouldHaveLength, 1)
				So(result.Brands[0].Name, ShouldEqual, "The Alley")
				So(result.Brands[0].TotalLocations, ShouldEqual, 2)
				So(result.Brands[0].Regions, ShouldResemble, []string{"CA", "US"})
				So(result.Brands[0].Tier, ShouldEqual, model.TierUnranked)
				So(result.Brands[0].Rating, ShouldEqual, model.DefaultRating)
			})
		})

		Convey("When a batch contains an unusable observation", func() {
			result, err := svc.Discover(ctx, []model.Observation{
				{PlaceID: "pl-1", RawName: "Chatime", Country: "CA"},
				{PlaceID: "pl-2", RawName: "   ", Country: "CA"},
				{PlaceID: "pl-3", RawName: "Gong Cha", Country: "TW"},
			})

			Convey("Then earlier and later observations still commit", func() {
				So(err, ShouldBeNil)
				So(result.Brands, ShouldHaveLength, 2)
				So(result.Failures, ShouldHaveLength, 1)
				So(result.Failures[0].PlaceID, ShouldEqual, "pl-2")
			})
		})

		Convey("When the same place id arrives twice", func() {
			first, err := svc.Discover(ctx, []model.Observation{
				{PlaceID: "pl-1", RawName: "Chatime", Country: "CA"},
			})
			So(err, ShouldBeNil)

			second, err := svc.Discover(ctx, []model.Observation{
				{PlaceID: "pl-1", RawName: "Chatime", Country: "CA"},
			})

			Convey("Then the counter does not move a second time", func() {
				So(err, ShouldBeNil)
				So(second.Brands, ShouldHaveLength, 1)
				So(second.Brands[0].ID, ShouldEqual, first.Brands[0].ID)
				So(second.Brands[0].TotalLocations, ShouldEqual, 1)
			})
		})
	})
}

func TestService_RecordMatch(t *testing.T) {
	ctx := context.Background()

	seedTwoBrands := func(t *testing.T, svc *service.Service) (uuid.UUID, uuid.UUID) {
		t.Helper()
		result, err := svc.Discover(ctx, []model.Observation{
			{PlaceID: "pl-1", RawName: "Chatime", Country: "CA"},
			{PlaceID: "pl-2", RawName: "Machi Machi", Country: "TW"},
		})
		So(err, ShouldBeNil)
		So(result.Brands, ShouldHaveLength, 2)
		return result.Brands[0].ID, result.Brands[1].ID
	}

	Convey("Given two fresh brands at the default rating", t, func() {
		svc := newTestService(t)
		winnerID, loserID := seedTwoBrands(t, svc)

		Convey("When recording a decisive match", func() {
			result, err := svc.RecordMatch(ctx, winnerID, loserID, false, "CA", "Toronto")

			Convey("Then both sides move by the newcomer K", func() {
				So(err, ShouldBeNil)
				So(result.WinnerNewRating, ShouldEqual, 1230)
				So(result.WinnerRatingChange, ShouldEqual, 30)
				So(result.LoserNewRating, ShouldEqual, 1170)
				So(result.LoserRatingChange, ShouldEqual, -30)
				So(result.IsTie, ShouldBeFalse)
			})

			Convey("And tiers leave Unranked", func() {
				So(err, ShouldBeNil)
				So(result.WinnerTier, ShouldEqual, "B")
				So(result.LoserTier, ShouldEqual, "C")
			})

			Convey("And counters and history update", func() {
				So(err, ShouldBeNil)
				winner, err := svc.GetBrand(ctx, winnerID)
				So(err, ShouldBeNil)
				So(winner.Wins, ShouldEqual, 1)
				So(winner.Losses, ShouldEqual, 0)

				loser, err := svc.GetBrand(ctx, loserID)
				So(err, ShouldBeNil)
				So(loser.Losses, ShouldEqual, 1)

				history, err := svc.MatchesFor(ctx, winnerID, 10)
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 1)
				So(history[0].WinnerRatingBefore, ShouldEqual, 1200)
				So(history[0].WinnerRatingAfter, ShouldEqual, 1230)
				So(history[0].LoserRatingBefore, ShouldEqual, 1200)
				So(history[0].LoserRatingAfter, ShouldEqual, 1170)
				So(history[0].LocationCountry, ShouldEqual, "CA")
			})
		})

		Convey("When recording a tie between equals", func() {
			result, err := svc.RecordMatch(ctx, winnerID, loserID, true, "", "")

			Convey("Then nothing moves but ties count", func() {
				So(err, ShouldBeNil)
				So(result.WinnerRatingChange, ShouldEqual, 0)
				So(result.LoserRatingChange, ShouldEqual, 0)
				So(result.IsTie, ShouldBeTrue)

				winner, err := svc.GetBrand(ctx, winnerID)
				So(err, ShouldBeNil)
				So(winner.Ties, ShouldEqual, 1)
				So(winner.Wins, ShouldEqual, 0)
			})
		})

		Convey("When a brand faces itself", func() {
			_, err := svc.RecordMatch(ctx, winnerID, winnerID, false, "", "")

			Convey("Then the match is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a participant does not exist", func() {
			_, err := svc.RecordMatch(ctx, winnerID, uuid.New(), false, "", "")

			Convey("Then the match is rejected and nothing changes", func() {
				So(err, ShouldNotBeNil)
				winner, err := svc.GetBrand(ctx, winnerID)
				So(err, ShouldBeNil)
				So(winner.Rating, ShouldEqual, model.DefaultRating)
				So(winner.Contests(), ShouldEqual, 0)
			})
		})
	})
}

func TestService_Reads(t *testing.T) {
	ctx := context.Background()

	Convey("Given a population with match history", t, func() {
		svc := newTestService(t)
		result, err := svc.Discover(ctx, []model.Observation{
			{PlaceID: "pl-1", RawName: "Chatime", Country: "CA"},
			{PlaceID: "pl-2", RawName: "Machi Machi", Country: "TW"},
			{PlaceID: "pl-3", RawName: "Happy Lemon", Country: "US"},
		})
		So(err, ShouldBeNil)
		ids := make([]uuid.UUID, len(result.Brands))
		for i, b := range result.Brands {
			ids[i] = b.ID
		}

		_, err = svc.RecordMatch(ctx, ids[0], ids[1], false, "", "")
		So(err, ShouldBeNil)

		Convey("The leaderboard orders by descending rating", func() {
			page, err := svc.Leaderboard(ctx, 10, 0)
			So(err, ShouldBeNil)
			So(page, ShouldHaveLength, 3)
			So(page[0].BrandID, ShouldEqual, ids[0])
			So(page[0].Rank, ShouldEqual, 1)
			So(page[0].Position, ShouldEqual, 1)
			So(page[1].Rating, ShouldBeGreaterThanOrEqualTo, page[2].Rating)
		})

		Convey("Pagination offsets positions", func() {
			page, err := svc.Leaderboard(ctx, 10, 1)
			So(err, ShouldBeNil)
			So(page, ShouldHaveLength, 2)
			So(page[0].Position, ShouldEqual, 2)
		})

		Convey("Rank summarizes a single brand", func() {
			summary, err := svc.Rank(ctx, ids[1])
			So(err, ShouldBeNil)
			So(summary.Rank, ShouldEqual, 3) // lost its only match
			So(summary.Losses, ShouldEqual, 1)
		})

		Convey("RandomPair returns two distinct brands", func() {
			pair, err := svc.RandomPair(ctx)
			So(err, ShouldBeNil)
			So(pair[0].ID, ShouldNotEqual, pair[1].ID)
		})
	})

	Convey("Given fewer than two brands", t, func() {
		svc := newTestService(t)
		_, err := svc.Discover(ctx, []model.Observation{
			{PlaceID: "pl-1", RawName: "Chatime", Country: "CA"},
		})
		So(err, ShouldBeNil)

		Convey("RandomPair refuses", func() {
			_, err := svc.RandomPair(ctx)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestService_BrandCRUD(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := newTestService(t)

		Convey("Creating a brand forces newcomer defaults", func() {
			created, err := svc.CreateBrand(ctx, &model.Brand{
				Name:   "Tiger Sugar",
				Rating: 9999, // must be ignored
				Wins:   42,
			})
			So(err, ShouldBeNil)
			So(created.Rating, ShouldEqual, model.DefaultRating)
			So(created.Tier, ShouldEqual, model.TierUnranked)
			So(created.Wins, ShouldEqual, 0)
			So(created.TotalLocations, ShouldEqual, 1)

			Convey("And a field-mask update touches only named fields", func() {
				desc := "Brown sugar boba chain."
				updated, err := svc.UpdateBrand(ctx, created.ID, repository.BrandUpdate{Description: &desc})
				So(err, ShouldBeNil)
				So(updated.Description, ShouldEqual, desc)
				So(updated.Name, ShouldEqual, "Tiger Sugar")
				So(updated.Rating, ShouldEqual, model.DefaultRating)
			})

			Convey("And deleting removes it", func() {
				So(svc.DeleteBrand(ctx, created.ID), ShouldBeNil)
				_, err := svc.GetBrand(ctx, created.ID)
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithNEREnabled(false), service.WithEnrichmentEnabled(false))

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it should return basic stats", func() {
				So(stats, ShouldNotBeNil)
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}
