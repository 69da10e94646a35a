// Package normalize canonicalizes raw observed store names into
// comparable brand names.
//
// The pipeline runs five stages in order, each consuming the previous
// stage's output: legal-suffix stripping, trailing category-token
// removal, advisory organization extraction, separator truncation, and
// final trim + title-casing. A stage that would produce an empty string
// falls back to the previous non-empty output; Normalize never returns
// an empty string for non-empty input.
package normalize

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Extraction thresholds. The organization extractor is advisory: its
// result must be longer than minOrgChars, and it never overrides a
// canonical name of minAdvisoryInput runes or fewer (short names like
// "Coco" are exactly what NER tends to miss).
const (
	minOrgChars      = 3
	minAdvisoryInput = 4
)

// separators mark the start of location/descriptor noise appended to a
// brand name, e.g. "Chatime - University Ave".
const separators = "|-–@"

// Extractor isolates the organization core of a name, if it can do so
// confidently. Implementations carry an explicit lifecycle so tests can
// substitute a deterministic stub.
type Extractor interface {
	// Init prepares the extractor (e.g. loads a model).
	Init(ctx context.Context) error

	// Extract returns the organization span of text and true, or
	// ("", false) when extraction is unavailable or low-confidence.
	Extract(ctx context.Context, text string) (string, bool)

	// Close releases extractor resources.
	Close() error
}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithExtractor sets the organization extractor. Nil disables the
// extraction stage.
func WithExtractor(e Extractor) Option {
	return func(n *Normalizer) {
		n.extractor = e
	}
}

// Normalizer canonicalizes raw names. Zero-value-safe apart from the
// optional extractor; construct with New.
type Normalizer struct {
	extractor Extractor
}

// New creates a Normalizer with configuration options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize canonicalizes raw into a comparable brand name using the
// observation's category tags as context.
func (n *Normalizer) Normalize(ctx context.Context, raw string, categories []string) string {
	out := strings.TrimSpace(raw)
	if out == "" {
		return ""
	}

	out = fallback(out, stripLegalTerms(out))
	out = fallback(out, stripCategorySuffix(out, categories))

	if n.extractor != nil && utf8.RuneCountInString(out) > minAdvisoryInput {
		if core, ok := n.extractor.Extract(ctx, out); ok {
			core = strings.TrimSpace(core)
			if utf8.RuneCountInString(core) > minOrgChars {
				out = core
			}
		}
	}

	out = fallback(out, cutAtSeparator(out))
	return titleCase(strings.TrimSpace(out))
}

// fallback returns next unless it is empty or whitespace-only, in which
// case the previous stage's output is kept.
func fallback(prev, next string) string {
	if strings.TrimSpace(next) == "" {
		return prev
	}
	return strings.TrimSpace(next)
}

// stripLegalTerms removes leading and trailing legal-entity tokens.
func stripLegalTerms(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 {
		if _, ok := legalTerms[strings.ToLower(words[len(words)-1])]; !ok {
			break
		}
		words = words[:len(words)-1]
	}
	for len(words) > 0 {
		if _, ok := legalTerms[strings.ToLower(words[0])]; !ok {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// stripCategorySuffix removes a trailing generic category token when it
// matches one of the supplied tags in lower-case, space-separated form:
// tag "tea_store" strips a trailing "tea store". A name that consists of
// nothing but the category is left alone.
func stripCategorySuffix(s string, categories []string) string {
	out := s
	for _, tag := range categories {
		readable := strings.ToLower(strings.ReplaceAll(tag, "_", " "))
		if readable == "" {
			continue
		}
		lower := strings.ToLower(out)
		if strings.HasSuffix(lower, " "+readable) {
			out = strings.TrimSpace(out[:len(out)-len(readable)-1])
		}
	}
	return out
}

// cutAtSeparator keeps only the text before the first separator rune.
func cutAtSeparator(s string) string {
	if i := strings.IndexAny(s, separators); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// titleCase upper-cases the first letter of every word and lower-cases
// the rest, the way Python's str.title() renders "the ALLEY" as
// "The Alley".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
			prevLetter = false
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLetter = true
		}
	}
	return b.String()
}
