package simulation

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/teaelo/teaelo/pkg/logger"
)

// brandRoster lists the canonical chains the generator draws from.
// Earlier entries are treated as stronger competitors during match play.
var brandRoster = []string{
	"The Alley",
	"Chatime",
	"Gong Cha",
	"CoCo Fresh Tea & Juice",
	"Tiger Sugar",
	"Kung Fu Tea",
	"Sharetea",
	"Machi Machi",
	"Happy Lemon",
	"Yi Fang Taiwan Fruit Tea",
	"Presotea",
	"Boba Guys",
}

// locales pair a country code with cities used for noisy suffixes.
var locales = []struct {
	country string
	cities  []string
}{
	{"CA", []string{"Toronto", "Vancouver", "Montreal", "Calgary"}},
	{"US", []string{"Flushing", "San Francisco", "Seattle", "Houston"}},
	{"GB", []string{"London", "Manchester"}},
	{"AU", []string{"Sydney", "Melbourne"}},
	{"TW", []string{"Taipei", "Taichung"}},
}

// Noise template cases.
const (
	caseCleanName = iota
	caseCitySuffix
	casePipeSuffix
	caseAtSuffix
	caseLegalSuffix
	caseCategorySuffix
	caseLowercase
	caseUppercase
	noiseCaseCount
)

// randomInt returns a uniform random int in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateObservations creates noisy store sightings across the roster.
func generateObservations(ctx context.Context, config *Config, stats *Stats) ([]Observation, error) {
	logger.Get().Info(ctx, "generating store observations", logger.Int("numObservations", config.NumObservations))

	observations := make([]Observation, config.NumObservations)
	for i := range observations {
		observations[i] = generateSingleObservation(i)
	}

	stats.ObservationsGenerated = len(observations)
	logger.Get().Info(ctx, "generated observations successfully", logger.Int("count", len(observations)))

	return observations, nil
}

// generateSingleObservation creates one sighting with a noisy name variant.
func generateSingleObservation(index int) Observation {
	brand := brandRoster[randomInt(len(brandRoster))]
	locale := locales[randomInt(len(locales))]
	city := locale.cities[randomInt(len(locale.cities))]

	name := applyNameNoise(brand, city)

	placeID := "sim_" + strconv.Itoa(index) + "_" + strconv.FormatInt(time.Now().UnixNano(), 36)

	categories := []string{"cafe", "food", "point_of_interest"}
	if randomInt(4) == 0 {
		categories = append([]string{"bubble_tea_shop"}, categories...)
	}

	return Observation{
		PlaceID: placeID,
		Name:    name,
		Country: locale.country,
		City:    city,
		Types:   categories,
	}
}

// applyNameNoise produces the kinds of name variants seen in real place
// data for the same chain.
func applyNameNoise(brand, city string) string {
	switch randomInt(noiseCaseCount) {
	case caseCitySuffix:
		return brand + " - " + city
	case casePipeSuffix:
		return brand + " | " + city
	case caseAtSuffix:
		return brand + " @ " + city + " Mall"
	case caseLegalSuffix:
		return brand + " Ltd."
	case caseCategorySuffix:
		return brand + " Bubble Tea"
	case caseLowercase:
		return strings.ToLower(brand)
	case caseUppercase:
		return strings.ToUpper(brand)
	default:
		return brand
	}
}

// rosterStrength returns a weight for match outcomes: brands earlier in
// the roster win more often, giving the leaderboard a shape to verify.
func rosterStrength(name string) int {
	for i, b := range brandRoster {
		if strings.EqualFold(b, name) {
			return len(brandRoster) - i
		}
	}
	return 1
}
