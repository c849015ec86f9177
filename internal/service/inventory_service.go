package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/auth"
	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/events"
	"github.com/spec-kit/inventory-service/internal/observability"
	"github.com/spec-kit/inventory-service/internal/repository"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

// protectedPayload is returned by ProtectedResource; the operation
// exists to prove the gate is enforced on non-mutating reads too.
const protectedPayload = "Secret data for admins"

// InventoryService is the set of catalog operations. Every operation
// takes the resolved caller identity explicitly; gated operations
// check the required role before any repository access.
type InventoryService struct {
	products   repository.ProductRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewInventoryService builds the service. dispatcher and metrics may be nil.
func NewInventoryService(products repository.ProductRepository, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{products: products, dispatcher: dispatcher, metrics: metrics, logger: logger}
}

// GetProduct looks up a product by id. Open to any identity; an absent
// product is not an error.
func (s *InventoryService) GetProduct(ctx context.Context, _ domain.Identity, id string) (*domain.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	return product, nil
}

// ListProducts returns products in repository order. When both limit
// and offset are supplied it returns the [offset, offset+limit) slice;
// out-of-range windows yield an empty page, never an error.
func (s *InventoryService) ListProducts(ctx context.Context, _ domain.Identity, limit, offset *int) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if limit == nil || offset == nil {
		return products, nil
	}

	start := *offset
	if start < 0 {
		start = 0
	}
	if start >= len(products) {
		return []domain.Product{}, nil
	}
	end := start + *limit
	if end < start {
		end = start
	}
	if end > len(products) {
		end = len(products)
	}
	return products[start:end], nil
}

// AddProduct creates a product with a fresh id. Requires the admin
// role; a negative initial quantity is rejected before any write.
func (s *InventoryService) AddProduct(ctx context.Context, identity domain.Identity, name string, quantity int) (*domain.Product, error) {
	if err := auth.Require(identity, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, apperrors.NewInvalidArgument("quantity cannot be negative", map[string]any{"quantity": quantity})
	}

	product := &domain.Product{
		ID:       uuid.NewString(),
		Name:     name,
		Quantity: quantity,
	}
	if err := s.products.Add(ctx, product); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, identity, events.EventProductAdded, product.ID, events.ProductAddedPayload{Product: *product})
	s.logger.Info("product added", zap.String("product_id", product.ID), zap.String("actor", identity.Subject))
	return product, nil
}

// UpdateStock atomically applies delta to a product's quantity and
// appends a StockChange record. Requires the manager role.
func (s *InventoryService) UpdateStock(ctx context.Context, identity domain.Identity, productID string, delta int) (*domain.Product, error) {
	if err := auth.Require(identity, domain.RoleManager); err != nil {
		return nil, err
	}

	product, change, err := s.products.UpdateStock(ctx, productID, delta)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, apperrors.NewNotFound("product", map[string]any{"product_id": productID})
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, apperrors.NewInvalidState("stock cannot go negative", map[string]any{"product_id": productID, "delta": delta})
		default:
			return nil, apperrors.MapError(err)
		}
	}

	s.metrics.RecordStockMutation()
	s.publish(ctx, identity, events.EventStockChanged, product.ID, events.StockChangedPayload{Product: *product, Change: *change})
	s.logger.Info("stock updated",
		zap.String("product_id", product.ID),
		zap.Int("delta", delta),
		zap.Int("quantity", product.Quantity),
		zap.String("actor", identity.Subject))
	return product, nil
}

// RemoveProduct deletes a product if present and reports whether a
// deletion occurred. Requires the admin role; an absent id is not an
// error. Audit records referencing the product are kept.
func (s *InventoryService) RemoveProduct(ctx context.Context, identity domain.Identity, id string) (bool, error) {
	if err := auth.Require(identity, domain.RoleAdmin); err != nil {
		return false, err
	}

	deleted, err := s.products.Remove(ctx, id)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	if deleted {
		s.publish(ctx, identity, events.EventProductRemoved, id, events.ProductRemovedPayload{ProductID: id})
		s.logger.Info("product removed", zap.String("product_id", id), zap.String("actor", identity.Subject))
	}
	return deleted, nil
}

// StockChanges returns the full audit log. Requires the admin role.
func (s *InventoryService) StockChanges(ctx context.Context, identity domain.Identity) ([]domain.StockChange, error) {
	if err := auth.Require(identity, domain.RoleAdmin); err != nil {
		return nil, err
	}
	changes, err := s.products.StockChanges(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return changes, nil
}

// ProtectedResource returns a fixed payload. Requires the admin role.
func (s *InventoryService) ProtectedResource(identity domain.Identity) (string, error) {
	if err := auth.Require(identity, domain.RoleAdmin); err != nil {
		return "", err
	}
	return protectedPayload, nil
}

func (s *InventoryService) publish(ctx context.Context, identity domain.Identity, eventType events.EventType, productID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ProductID: productID,
		Actor:     identity.Subject,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
