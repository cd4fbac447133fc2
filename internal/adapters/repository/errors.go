package repository

import "errors"

// Sentinel kinds for match registry errors.
var (
	ErrMatchNotFound = errors.New("match not found")
	ErrMatchExists   = errors.New("match already exists")
	ErrCapacity      = errors.New("match capacity reached")
	ErrInvalidID     = errors.New("invalid match id")
)
