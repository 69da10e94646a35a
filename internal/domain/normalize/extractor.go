package normalize

import (
	"context"
	"fmt"
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// connectors are tokens that join a brand core to a trailing location,
// as in "The Alley at Waterloo". They are trimmed after location spans
// are removed.
var connectors = map[string]struct{}{
	"at":   {},
	"in":   {},
	"on":   {},
	"by":   {},
	"near": {},
	"the":  {}, // only when left dangling, e.g. "Gong Cha at the Mall"
}

// NERExtractor isolates organization cores with the prose NLP model.
// It uses entity labels two ways: organization spans are preferred
// directly; when the model only finds location spans (GPE/LOC), those
// spans and their connecting tokens are removed and the remainder is
// treated as the organization core.
type NERExtractor struct{}

// NewNERExtractor creates a prose-backed extractor.
func NewNERExtractor() *NERExtractor {
	return &NERExtractor{}
}

// Init forces the model load so the first request does not pay for it.
func (e *NERExtractor) Init(_ context.Context) error {
	if _, err := prose.NewDocument("warm up"); err != nil {
		return fmt.Errorf("load NLP model: %w", err)
	}
	return nil
}

// Close releases extractor resources. The prose model is read-only and
// garbage-collected, so there is nothing to tear down.
func (e *NERExtractor) Close() error { return nil }

// Extract returns the organization span of text, or ("", false) when
// the model finds nothing usable.
func (e *NERExtractor) Extract(_ context.Context, text string) (string, bool) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return "", false
	}

	var orgs, locs []string
	for _, ent := range doc.Entities() {
		switch ent.Label {
		case "ORG", "ORGANIZATION":
			orgs = append(orgs, ent.Text)
		case "GPE", "LOC", "LOCATION", "FAC":
			locs = append(locs, ent.Text)
		}
	}

	if core := strings.TrimSpace(strings.Join(orgs, " ")); core != "" {
		return core, true
	}
	if len(locs) == 0 {
		return "", false
	}

	// Location-only hit: strip the location spans and whatever joined
	// them to the name, and keep the rest as the core.
	remainder := text
	for _, loc := range locs {
		remainder = strings.ReplaceAll(remainder, loc, " ")
	}
	words := strings.Fields(remainder)
	for len(words) > 0 {
		if _, ok := connectors[strings.ToLower(words[len(words)-1])]; !ok {
			break
		}
		words = words[:len(words)-1]
	}
	core := strings.Join(words, " ")
	if core == "" || strings.EqualFold(core, strings.TrimSpace(text)) {
		return "", false
	}
	return core, true
}

// NopExtractor never extracts. It is the deterministic substitute used
// in tests and when NER is disabled by configuration.
type NopExtractor struct{}

func (NopExtractor) Init(context.Context) error                  { return nil }
func (NopExtractor) Extract(context.Context, string) (string, bool) { return "", false }
func (NopExtractor) Close() error                                { return nil }
