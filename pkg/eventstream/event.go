// Package eventstream publishes product change events to an event stream
// backend so downstream consumers (feeds, analytics) can react to catalog
// writes without polling the API.
package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/minimartco/minimart/pkg/catalog"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeProductCreated is emitted after a product is inserted.
	EventTypeProductCreated = "minimart.product.created"

	// EventTypeProductUpdated is emitted after a product is updated.
	EventTypeProductUpdated = "minimart.product.updated"

	// EventTypeProductDeleted is emitted after a product is deleted.
	EventTypeProductDeleted = "minimart.product.deleted"
)

// ProductEvent is a transport-neutral event payload for a product change.
// Product is nil for delete events; ProductID is always set.
type ProductEvent struct {
	SchemaVersion int              `json:"schema_version"`
	EventType     string           `json:"event_type"`
	EventID       string           `json:"event_id"`
	EmittedAt     time.Time        `json:"emitted_at"`
	ProductID     int              `json:"product_id"`
	Product       *catalog.Product `json:"product,omitempty"`
}

// NewProductEvent builds a v1 event for the given change.
func NewProductEvent(eventType string, productID int, product *catalog.Product) *ProductEvent {
	return &ProductEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		ProductID:     productID,
		Product:       product,
	}
}
