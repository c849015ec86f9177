package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/events"
	"github.com/spec-kit/inventory-service/internal/observability"
	"github.com/spec-kit/inventory-service/internal/repository/jsonstore"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

var (
	adminIdentity   = domain.Identity{Subject: "admin", Role: domain.RoleAdmin}
	managerIdentity = domain.Identity{Subject: "manager", Role: domain.RoleManager}
	guestIdentity   = domain.GuestIdentity()
)

func newService(t *testing.T) *InventoryService {
	t.Helper()
	store, err := jsonstore.New("", nil)
	require.NoError(t, err)
	return NewInventoryService(store, events.NewInMemoryDispatcher(), nil, nil)
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}

func TestAddProductThenList(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.AddProduct(ctx, adminIdentity, "Laptop", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Laptop", created.Name)
	assert.Equal(t, 10, created.Quantity)

	products, err := svc.ListProducts(ctx, guestIdentity, nil, nil)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, created.ID, products[0].ID)
}

func TestAddProductRejectsNegativeQuantity(t *testing.T) {
	svc := newService(t)

	_, err := svc.AddProduct(context.Background(), adminIdentity, "Laptop", -1)
	assert.Equal(t, "INVALID_ARGUMENT", errorCode(t, err))

	products, err := svc.ListProducts(context.Background(), guestIdentity, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRoleEnforcement(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	// addProduct requires admin
	for _, identity := range []domain.Identity{managerIdentity, guestIdentity} {
		_, err := svc.AddProduct(ctx, identity, "Laptop", 5)
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	}
	products, err := svc.ListProducts(ctx, guestIdentity, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, products, "unauthorized calls must not create records")

	created, err := svc.AddProduct(ctx, adminIdentity, "Laptop", 5)
	require.NoError(t, err)

	// updateStock requires manager, exactly
	for _, identity := range []domain.Identity{adminIdentity, guestIdentity} {
		_, err := svc.UpdateStock(ctx, identity, created.ID, -1)
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	}

	// removeProduct, stock changes and protected resource require admin
	_, err = svc.RemoveProduct(ctx, managerIdentity, created.ID)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	_, err = svc.StockChanges(ctx, managerIdentity)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	_, err = svc.ProtectedResource(guestIdentity)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}

func TestUpdateStockAuditTrail(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.AddProduct(ctx, adminIdentity, "Laptop", 10)
	require.NoError(t, err)

	updated, err := svc.UpdateStock(ctx, managerIdentity, created.ID, -6)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	changes, err := svc.StockChanges(ctx, adminIdentity)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, created.ID, changes[0].ProductID)
	assert.Equal(t, -6, changes[0].Delta)
}

func TestUpdateStockInvariant(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.AddProduct(ctx, adminIdentity, "Laptop", 3)
	require.NoError(t, err)

	_, err = svc.UpdateStock(ctx, managerIdentity, created.ID, -4)
	assert.Equal(t, "INVALID_STATE", errorCode(t, err))

	p, err := svc.GetProduct(ctx, guestIdentity, created.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 3, p.Quantity)

	changes, err := svc.StockChanges(ctx, adminIdentity)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestUpdateStockUnknownProduct(t *testing.T) {
	svc := newService(t)

	_, err := svc.UpdateStock(context.Background(), managerIdentity, "missing", 1)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}

func TestConcurrentUpdateStock(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.AddProduct(ctx, adminIdentity, "Laptop", 5)
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.UpdateStock(ctx, managerIdentity, created.ID, -3)
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.Equal(t, "INVALID_STATE", apperrors.ToDomainError(err).Code)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one update must lose")

	p, err := svc.GetProduct(ctx, guestIdentity, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Quantity)
}

func TestGetProductAbsent(t *testing.T) {
	svc := newService(t)

	p, err := svc.GetProduct(context.Background(), guestIdentity, "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestListProductsPagination(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"A", "B", "C", "D"} {
		p, err := svc.AddProduct(ctx, adminIdentity, name, 1)
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	limit, offset := 2, 1
	page, err := svc.ListProducts(ctx, guestIdentity, &limit, &offset)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[1], page[0].ID)
	assert.Equal(t, ids[2], page[1].ID)

	// window past the end is an empty page, not an error
	offset = 10
	page, err = svc.ListProducts(ctx, guestIdentity, &limit, &offset)
	require.NoError(t, err)
	assert.Empty(t, page)

	// limit without offset returns everything
	page, err = svc.ListProducts(ctx, guestIdentity, &limit, nil)
	require.NoError(t, err)
	assert.Len(t, page, 4)

	// partial trailing window
	limit, offset = 10, 3
	page, err = svc.ListProducts(ctx, guestIdentity, &limit, &offset)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[3], page[0].ID)
}

func TestRemoveProduct(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.AddProduct(ctx, adminIdentity, "Laptop", 1)
	require.NoError(t, err)

	deleted, err := svc.RemoveProduct(ctx, adminIdentity, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// absent id is not an error
	deleted, err = svc.RemoveProduct(ctx, adminIdentity, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestProtectedResource(t *testing.T) {
	svc := newService(t)

	payload, err := svc.ProtectedResource(adminIdentity)
	require.NoError(t, err)
	assert.Equal(t, "Secret data for admins", payload)
}

func TestUpdateStockCountsMutations(t *testing.T) {
	store, err := jsonstore.New("", nil)
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	svc := NewInventoryService(store, events.NewInMemoryDispatcher(), metrics, nil)
	ctx := context.Background()

	created, err := svc.AddProduct(ctx, adminIdentity, "Laptop", 5)
	require.NoError(t, err)

	_, err = svc.UpdateStock(ctx, managerIdentity, created.ID, -2)
	require.NoError(t, err)

	// a rejected update is not a mutation
	_, err = svc.UpdateStock(ctx, managerIdentity, created.ID, -10)
	require.Error(t, err)

	mutations, _, _ := metrics.InventoryCounts()
	assert.Equal(t, int64(1), mutations)
}
