// Package errors provides the sentinel errors of the storefront service.
package errors

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductExists   = errors.New("product already exists")
	ErrImageNotFound   = errors.New("image not found")

	// ErrSearchUnavailable is returned when every planned search query failed.
	ErrSearchUnavailable = errors.New("search unavailable")

	// ErrInvalidCursor is returned for a pagination cursor that cannot be decoded
	// or was produced under a different ordering.
	ErrInvalidCursor = errors.New("invalid cursor")
)
