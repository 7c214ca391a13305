package db

import "errors"

// Domain-level database error sentinels.
var (
	// Product errors
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)
