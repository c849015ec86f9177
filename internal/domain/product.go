package domain

import "time"

// Product is the domain model for a catalog item.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// StockChange is an append-only audit record of a stock mutation.
// Records are never updated or deleted, and they survive removal of
// the product they reference.
type StockChange struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Delta     int       `json:"delta"`
	Timestamp time.Time `json:"timestamp"`
}
