package repository

import "errors"

// Sentinel kinds for rating store errors.
var (
	ErrNotFound    = errors.New("player not rated")
	ErrUnavailable = errors.New("rating store unavailable")
)
