// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRating is the rating assigned to every newly created brand.
const DefaultRating = 1200

// TierUnranked is the tier of a brand that has not fought a match yet.
const TierUnranked = "Unranked"

// Brand is a canonical competitor: the deduplicated identity behind
// any number of observed store locations.
type Brand struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	WebsiteURL      string    `json:"website_url,omitempty"`
	LogoURL         string    `json:"logo_url,omitempty"`
	CountryOfOrigin string    `json:"country_of_origin,omitempty"`
	EstablishedYear int       `json:"established_year,omitempty"`

	// Presence, maintained only by resolver merges.
	TotalLocations int      `json:"total_locations"`
	Regions        []string `json:"regions_present"`

	// Competitive state, maintained only by match recording.
	Rating int    `json:"rating"`
	Tier   string `json:"tier"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Ties   int    `json:"ties"`

	CreatedAt time.Time `json:"created_at"`
}

// Contests returns the total number of recorded matches for the brand.
func (b *Brand) Contests() int {
	return b.Wins + b.Losses + b.Ties
}

// HasRegion reports whether code is already in the brand's region set.
func (b *Brand) HasRegion(code string) bool {
	for _, r := range b.Regions {
		if r == code {
			return true
		}
	}
	return false
}

// Clone returns a deep copy; mutating the copy never aliases the original.
func (b *Brand) Clone() *Brand {
	c := *b
	c.Regions = append([]string(nil), b.Regions...)
	return &c
}

// Observation is one raw real-world record of a physical store, as
// received from a place-discovery source.
type Observation struct {
	PlaceID  string   `json:"place_id"`
	RawName  string   `json:"name"`
	Country  string   `json:"country"`
	City     string   `json:"city,omitempty"`
	Category []string `json:"types,omitempty"`
}

// Sighting links an external place id to the brand it resolved to.
// The link is immutable once written.
type Sighting struct {
	ID           uuid.UUID `json:"id"`
	PlaceID      string    `json:"place_id"`
	BrandID      uuid.UUID `json:"brand_id"`
	CountryCode  string    `json:"country_code,omitempty"`
	City         string    `json:"city,omitempty"`
	LastVerified time.Time `json:"last_verified"`
}

// Match is the immutable audit record of one contest. Before/after
// ratings snapshot the update that produced them.
type Match struct {
	ID                 uuid.UUID `json:"id"`
	WinnerID           uuid.UUID `json:"winner_id"`
	LoserID            uuid.UUID `json:"loser_id"`
	WinnerRatingBefore int       `json:"winner_rating_before"`
	WinnerRatingAfter  int       `json:"winner_rating_after"`
	LoserRatingBefore  int       `json:"loser_rating_before"`
	LoserRatingAfter   int       `json:"loser_rating_after"`
	IsTie              bool      `json:"is_tie"`
	LocationCountry    string    `json:"location_country,omitempty"`
	LocationCity       string    `json:"location_city,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}
