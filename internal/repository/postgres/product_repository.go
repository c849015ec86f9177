// Package postgres provides pgx-backed repository implementations,
// selected when POSTGRES_DSN is configured.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/repository"
)

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a Postgres-backed implementation.
func NewProductRepository(pool *pgxpool.Pool) repository.ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	const query = `SELECT id, name, quantity FROM products WHERE id=$1`

	var p domain.Product
	if err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Quantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	const query = `SELECT id, name, quantity FROM products ORDER BY seq`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepository) Add(ctx context.Context, product *domain.Product) error {
	const query = `INSERT INTO products (id, name, quantity) VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, product.ID, product.Name, product.Quantity)
	return err
}

// UpdateStock locks the product row for the duration of the
// transaction so concurrent updates on the same product serialize.
func (r *productRepository) UpdateStock(ctx context.Context, productID string, delta int) (*domain.Product, *domain.StockChange, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var p domain.Product
	const selectQuery = `SELECT id, name, quantity FROM products WHERE id=$1 FOR UPDATE`
	if err := tx.QueryRow(ctx, selectQuery, productID).Scan(&p.ID, &p.Name, &p.Quantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, repository.ErrProductNotFound
		}
		return nil, nil, err
	}

	next := p.Quantity + delta
	if next < 0 {
		return nil, nil, repository.ErrInsufficientStock
	}

	const updateQuery = `UPDATE products SET quantity=$2 WHERE id=$1`
	if _, err := tx.Exec(ctx, updateQuery, productID, next); err != nil {
		return nil, nil, err
	}

	change := domain.StockChange{
		ID:        uuid.NewString(),
		ProductID: productID,
		Delta:     delta,
		Timestamp: time.Now(),
	}
	const insertQuery = `INSERT INTO stock_changes (id, product_id, delta, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, insertQuery, change.ID, change.ProductID, change.Delta, change.Timestamp); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	p.Quantity = next
	return &p, &change, nil
}

func (r *productRepository) Remove(ctx context.Context, id string) (bool, error) {
	const query = `DELETE FROM products WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *productRepository) StockChanges(ctx context.Context) ([]domain.StockChange, error) {
	const query = `SELECT id, product_id, delta, created_at FROM stock_changes ORDER BY seq`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []domain.StockChange
	for rows.Next() {
		var c domain.StockChange
		if err := rows.Scan(&c.ID, &c.ProductID, &c.Delta, &c.Timestamp); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
