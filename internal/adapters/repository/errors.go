package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound           = errors.New("brand not found")
	ErrConflict           = errors.New("brand already exists")
	ErrSelfPair           = errors.New("a brand cannot fight itself")
	ErrInsufficientBrands = errors.New("not enough brands to form a pair")
	ErrInvalidLimit       = errors.New("invalid leaderboard limit")
	ErrDuplicateSighting  = errors.New("sighting already linked")
)
