package enrich_test

import (
	"context"
	"testing"
	"time"

	enrich "github.com/teaelo/teaelo/internal/domain/enrich"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStaticEnricher(t *testing.T) {
	ctx := context.Background()

	Convey("Given the static enricher", t, func() {
		e := enrich.Static{Clock: func() time.Time {
			return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		}}

		Convey("It derives metadata from name and region only", func() {
			md, err := e.Enrich(ctx, "The Alley", "CA")
			So(err, ShouldBeNil)
			So(md.Description, ShouldEqual, "A popular local spot in CA.")
			So(md.WebsiteURL, ShouldEqual, "https://www.google.com/search?q=The+Alley")
			So(md.CountryOfOrigin, ShouldEqual, "CA")
			So(md.EstablishedYear, ShouldEqual, 2025)
		})

		Convey("A missing region hint still yields a description", func() {
			md, err := e.Enrich(ctx, "Chatime", "")
			So(err, ShouldBeNil)
			So(md.Description, ShouldEqual, "A popular local spot in its home market.")
			So(md.CountryOfOrigin, ShouldBeEmpty)
		})

		Convey("An empty name is rejected", func() {
			_, err := e.Enrich(ctx, "", "CA")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("The no-op enricher returns empty metadata without error", t, func() {
		md, err := enrich.Noop{}.Enrich(ctx, "Anything", "US")
		So(err, ShouldBeNil)
		So(md, ShouldResemble, enrich.Metadata{})
	})
}
