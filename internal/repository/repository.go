package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/inventory-service/internal/domain"
)

// Sentinel errors returned by repository implementations. Services map
// these onto caller-facing errors.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository defines persistence access for products and their
// stock-change audit log.
//
// UpdateStock must apply the read-modify-write as one atomic unit per
// product: two concurrent calls on the same product may not both
// observe the pre-update quantity. Reads must not serialize against
// each other.
type ProductRepository interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Add(ctx context.Context, product *domain.Product) error
	UpdateStock(ctx context.Context, productID string, delta int) (*domain.Product, *domain.StockChange, error)
	Remove(ctx context.Context, id string) (bool, error)
	StockChanges(ctx context.Context) ([]domain.StockChange, error)
}

// UserRepository defines read access to credential records. Records
// are provisioned out of band; the core never writes them.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
