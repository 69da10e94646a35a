package resolve

import "errors"

// Sentinel kinds for resolution errors.
var (
	// ErrUnusableName means the raw name normalized to nothing; the
	// observation cannot identify a brand.
	ErrUnusableName = errors.New("observation name normalizes to empty")
)
