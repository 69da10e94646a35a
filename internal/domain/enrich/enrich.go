// Package enrich defines the pluggable collaborator that fills a newly
// created brand's descriptive metadata. Enrichment is best-effort: a
// failing enricher never blocks or fails brand creation.
package enrich

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Metadata is the descriptive payload an enricher produces. Empty
// fields are left untouched on the brand.
type Metadata struct {
	Description     string
	WebsiteURL      string
	LogoURL         string
	CountryOfOrigin string
	EstablishedYear int
}

// Enricher populates metadata for a canonical brand name. A region hint
// (usually the country code of the first sighting) may inform the
// result and may be empty.
type Enricher interface {
	Enrich(ctx context.Context, canonicalName, regionHint string) (Metadata, error)
}

// Noop returns empty metadata and never fails. Used in tests and when
// enrichment is disabled.
type Noop struct{}

func (Noop) Enrich(context.Context, string, string) (Metadata, error) {
	return Metadata{}, nil
}

// Static derives generic metadata from the name and region hint alone.
// It encodes no knowledge of specific brands; richer sources plug in
// behind the same interface.
type Static struct {
	// Clock supplies the year used when no establishment data exists.
	// Nil means time.Now.
	Clock func() time.Time
}

func (s Static) Enrich(_ context.Context, canonicalName, regionHint string) (Metadata, error) {
	if canonicalName == "" {
		return Metadata{}, fmt.Errorf("enrich: %w", ErrEmptyName)
	}
	now := time.Now
	if s.Clock != nil {
		now = s.Clock
	}
	region := regionHint
	if region == "" {
		region = "its home market"
	}
	return Metadata{
		Description:     fmt.Sprintf("A popular local spot in %s.", region),
		WebsiteURL:      "https://www.google.com/search?q=" + url.QueryEscape(canonicalName),
		LogoURL:         "https://placehold.co/100",
		CountryOfOrigin: regionHint,
		EstablishedYear: now().Year(),
	}, nil
}
