// Package store provides the product document store and image storage ports.
package store

import (
	"context"
)

// ProductStore is the document store holding catalog products.
// Implementations: PgStore (PostgreSQL), InMemory (tests and local runs), BreakerStore (decorator).
type ProductStore interface {
	// Save inserts or fully replaces the product document with the same ID.
	Save(ctx context.Context, p Product) error

	// FindByID returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*Product, error)

	// Delete returns ErrProductNotFound if no product exists with the given ID.
	Delete(ctx context.Context, id string) error

	// Query runs a single declarative query. An unknown field or kind is an error.
	Query(ctx context.Context, q Query) ([]Product, error)

	// List returns up to params.Limit products ordered by dateAdded desc, id asc,
	// starting after params.After.
	List(ctx context.Context, params ListParams) ([]Product, error)

	// Count returns the number of products in the catalog.
	Count(ctx context.Context) (int64, error)
}
