package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/storefront/pkg/messaging"
)

// ProductChangedEvent announces a write to the product catalog.
// Consumers use it to invalidate caches derived from the catalog.
type ProductChangedEvent struct {
	Kind      string    `json:"kind"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Keywords  []string  `json:"keywords,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

func (e ProductChangedEvent) Subject() string {
	switch e.Kind {
	case KindCreated:
		return messaging.ProductCreatedSubject
	case KindDeleted:
		return messaging.ProductDeletedSubject
	default:
		return messaging.ProductUpdatedSubject
	}
}

func (e ProductChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
