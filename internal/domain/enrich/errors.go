package enrich

import "errors"

// Sentinel kinds for enrichment errors.
var (
	ErrEmptyName   = errors.New("empty canonical name")
	ErrUnavailable = errors.New("enrichment source unavailable")
)
