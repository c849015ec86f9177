package dto

// AddProductRequest payload for creating a product.
type AddProductRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// UpdateStockRequest payload for a stock mutation. Delta may be
// negative.
type UpdateStockRequest struct {
	Delta int `json:"delta"`
}
