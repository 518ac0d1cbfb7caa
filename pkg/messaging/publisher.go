package messaging

import (
	"context"
)

const (
	ProductsStream         = "PRODUCTS"
	ProductsSubjectPattern = "products.>"

	ProductCreatedSubject = "products.created"
	ProductUpdatedSubject = "products.updated"
	ProductDeletedSubject = "products.deleted"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
