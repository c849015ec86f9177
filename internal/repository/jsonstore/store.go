// Package jsonstore provides the default repository backend: an
// in-memory catalog mirrored to indented JSON files, one file per
// record kind. With an empty data directory the store runs purely in
// memory, which the tests rely on.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/repository"
)

const (
	productsFile     = "products.json"
	stockChangesFile = "stock_changes.json"
	usersFile        = "users.json"
)

// Store holds products, the stock-change log and credential records.
// A single RWMutex serializes mutations while allowing concurrent
// reads; products keep their insertion order.
type Store struct {
	mu       sync.RWMutex
	dir      string
	logger   *zap.Logger
	products []domain.Product
	changes  []domain.StockChange
	users    map[string]domain.User

	now func() time.Time
}

var _ repository.ProductRepository = (*Store)(nil)
var _ repository.UserRepository = (*Store)(nil)

// New loads existing data files from dir, seeding default credential
// records when none exist. An empty dir disables persistence.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		dir:    dir,
		logger: logger,
		users:  make(map[string]domain.User),
		now:    time.Now,
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		if err := loadFile(filepath.Join(dir, productsFile), &s.products); err != nil {
			return nil, err
		}
		if err := loadFile(filepath.Join(dir, stockChangesFile), &s.changes); err != nil {
			return nil, err
		}
		var users []domain.User
		if err := loadFile(filepath.Join(dir, usersFile), &users); err != nil {
			return nil, err
		}
		for _, u := range users {
			s.users[u.Username] = u
		}
	}

	if len(s.users) == 0 {
		s.seedUsers()
	}

	return s, nil
}

func (s *Store) seedUsers() {
	seed := []domain.User{
		{Username: "admin", Password: "adminpass", Role: domain.RoleAdmin},
		{Username: "manager", Password: "managerpass", Role: domain.RoleManager},
	}
	for _, u := range seed {
		s.users[u.Username] = u
	}
	if s.dir != "" {
		if err := writeFile(filepath.Join(s.dir, usersFile), seed); err != nil {
			s.logger.Warn("unable to seed users file", zap.Error(err))
		} else {
			s.logger.Info("seeded default users", zap.Int("count", len(seed)))
		}
	}
}

// Get returns a product by id.
func (s *Store) Get(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

// List returns all products in insertion order.
func (s *Store) List(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// Add appends a product. The append is rolled back when the write to
// disk fails, so memory never reports state the files do not hold.
func (s *Store) Add(_ context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, *product)
	if err := s.persistProducts(); err != nil {
		s.products = s.products[:len(s.products)-1]
		return err
	}
	return nil
}

// UpdateStock applies delta to the product's quantity and appends a
// StockChange record, all under the store's write lock so concurrent
// updates on the same product cannot both observe the old quantity.
// The mutation only sticks once both files are written; a failed write
// restores the previous quantity and audit log.
func (s *Store) UpdateStock(_ context.Context, productID string, delta int) (*domain.Product, *domain.StockChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID != productID {
			continue
		}
		next := s.products[i].Quantity + delta
		if next < 0 {
			return nil, nil, repository.ErrInsufficientStock
		}
		prev := s.products[i].Quantity
		s.products[i].Quantity = next

		change := domain.StockChange{
			ID:        uuid.NewString(),
			ProductID: productID,
			Delta:     delta,
			Timestamp: s.now(),
		}
		s.changes = append(s.changes, change)

		if err := s.persistProducts(); err != nil {
			s.products[i].Quantity = prev
			s.changes = s.changes[:len(s.changes)-1]
			return nil, nil, err
		}
		if err := s.persistChanges(); err != nil {
			s.products[i].Quantity = prev
			s.changes = s.changes[:len(s.changes)-1]
			if perr := s.persistProducts(); perr != nil {
				s.logger.Warn("unable to restore products file after failed audit write", zap.Error(perr))
			}
			return nil, nil, err
		}

		p := s.products[i]
		return &p, &change, nil
	}

	return nil, nil, repository.ErrProductNotFound
}

// Remove deletes a product if present. The stock-change log keeps any
// records referencing the removed product. A failed write restores the
// product at its original position.
func (s *Store) Remove(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			removed := s.products[i]
			s.products = append(s.products[:i], s.products[i+1:]...)
			if err := s.persistProducts(); err != nil {
				s.products = append(s.products, domain.Product{})
				copy(s.products[i+1:], s.products[i:])
				s.products[i] = removed
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// StockChanges returns the full audit log in append order.
func (s *Store) StockChanges(_ context.Context) ([]domain.StockChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.StockChange, len(s.changes))
	copy(out, s.changes)
	return out, nil
}

// GetByUsername looks up a credential record.
func (s *Store) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) persistProducts() error {
	if s.dir == "" {
		return nil
	}
	return writeFile(filepath.Join(s.dir, productsFile), s.products)
}

func (s *Store) persistChanges() error {
	if s.dir == "" {
		return nil
	}
	return writeFile(filepath.Join(s.dir, stockChangesFile), s.changes)
}

func loadFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeFile(path string, data any) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
