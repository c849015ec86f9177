package events

import (
	"time"

	"github.com/spec-kit/inventory-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProductAdded   EventType = "product_added"
	EventProductRemoved EventType = "product_removed"
	EventStockChanged   EventType = "stock_changed"
)

// Event represents a catalog event emitted by the inventory service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ProductID string      `json:"product_id"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ProductAddedPayload payload.
type ProductAddedPayload struct {
	Product domain.Product `json:"product"`
}

// ProductRemovedPayload payload.
type ProductRemovedPayload struct {
	ProductID string `json:"product_id"`
}

// StockChangedPayload payload.
type StockChangedPayload struct {
	Product domain.Product     `json:"product"`
	Change  domain.StockChange `json:"change"`
}
