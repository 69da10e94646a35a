package normalize_test

import (
	"context"
	"strings"
	"testing"

	normalize "github.com/teaelo/teaelo/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

// stubExtractor returns a fixed answer, standing in for the NLP model.
type stubExtractor struct {
	core string
	ok   bool
}

func (s stubExtractor) Init(context.Context) error { return nil }
func (s stubExtractor) Close() error               { return nil }
func (s stubExtractor) Extract(_ context.Context, _ string) (string, bool) {
	return s.core, s.ok
}

func TestNormalize(t *testing.T) {
	ctx := context.Background()

	Convey("Given a normalizer without an extractor", t, func() {
		n := normalize.New(normalize.WithExtractor(normalize.NopExtractor{}))

		Convey("Legal-entity suffixes are stripped", func() {
			So(n.Normalize(ctx, "Chatime Canada Ltd.", nil), ShouldEqual, "Chatime Canada")
			So(n.Normalize(ctx, "Boba Guys Inc", nil), ShouldEqual, "Boba Guys")
			So(n.Normalize(ctx, "Teehaus GmbH", nil), ShouldEqual, "Teehaus")
		})

		Convey("A trailing category token from the tags is removed", func() {
			So(n.Normalize(ctx, "Kung Fu Tea Store", []string{"tea_store"}), ShouldEqual, "Kung Fu")
			So(n.Normalize(ctx, "Presotea Cafe", []string{"cafe"}), ShouldEqual, "Presotea")
		})

		Convey("A name that is nothing but the category survives", func() {
			So(n.Normalize(ctx, "Tea Store", []string{"tea_store"}), ShouldEqual, "Tea Store")
		})

		Convey("Text after the first separator is dropped", func() {
			So(n.Normalize(ctx, "Chatime - University Ave", nil), ShouldEqual, "Chatime")
			So(n.Normalize(ctx, "Chatime | Waterloo", nil), ShouldEqual, "Chatime")
			So(n.Normalize(ctx, "CoCo @ Union Square", nil), ShouldEqual, "Coco")
			So(n.Normalize(ctx, "Gong Cha – Downtown", nil), ShouldEqual, "Gong Cha")
		})

		Convey("Output is trimmed and title-cased", func() {
			So(n.Normalize(ctx, "  the ALLEY  ", nil), ShouldEqual, "The Alley")
		})

		Convey("A separator-leading name falls back instead of going empty", func() {
			// Everything before the separator is whitespace; stage output
			// would be empty, so the previous stage's output is kept.
			out := n.Normalize(ctx, "- Chatime", nil)
			So(out, ShouldNotBeEmpty)
		})

		Convey("Whitespace-only input yields empty output", func() {
			So(n.Normalize(ctx, "   ", nil), ShouldEqual, "")
		})
	})

	Convey("Given a normalizer with a confident extractor", t, func() {
		n := normalize.New(normalize.WithExtractor(stubExtractor{core: "The Alley", ok: true}))

		Convey("The organization core wins over location noise", func() {
			So(n.Normalize(ctx, "The Alley at Waterloo", nil), ShouldEqual, "The Alley")
		})

		Convey("A short canonical name is never overridden", func() {
			// "Coco" sits at the advisory threshold; extraction is skipped.
			So(n.Normalize(ctx, "coco", nil), ShouldEqual, "Coco")
		})

		Convey("A name one rune past the threshold is still advisable", func() {
			So(n.Normalize(ctx, "cocoa", nil), ShouldEqual, "The Alley")
		})
	})

	Convey("Given an extractor whose answer is too short", t, func() {
		n := normalize.New(normalize.WithExtractor(stubExtractor{core: "Al", ok: true}))

		Convey("The advisory result is discarded", func() {
			So(n.Normalize(ctx, "The Alley at Waterloo", nil), ShouldEqual, "The Alley At Waterloo")
		})
	})

	Convey("The two worked examples resolve to the same canonical name", t, func() {
		n := normalize.New(normalize.WithExtractor(stubExtractor{core: "The Alley", ok: true}))
		a := n.Normalize(ctx, "The Alley Waterloo", nil)
		b := n.Normalize(ctx, "The Alley - Toronto Downtown", nil)
		So(a, ShouldEqual, "The Alley")
		So(b, ShouldEqual, a)
	})
}

func TestNERExtractorRemainder(t *testing.T) {
	Convey("Given the location-strip fallback", t, func() {
		// Exercised through the stub-free path only when the model is
		// loadable; keep this as a pure helper-behavior check.
		n := normalize.New()
		out := n.Normalize(context.Background(), strings.Repeat("a", 5)+" Ltd", nil)
		So(out, ShouldEqual, "Aaaaa")
	})
}
