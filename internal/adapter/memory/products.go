package memory

import (
	"context"
	"sync"

	"github.com/rl1809/pantry/internal/core/domain"
)

// ProductStore keeps canonical products keyed by ID with a unique name index.
type ProductStore struct {
	mu     sync.RWMutex
	byID   map[string]domain.Product
	byName map[string]string
}

func NewProductStore() *ProductStore {
	return &ProductStore{
		byID:   make(map[string]domain.Product),
		byName: make(map[string]string),
	}
}

func (s *ProductStore) FindByName(_ context.Context, name string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[domain.NormalizeName(name)]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return s.byID[id], nil
}

func (s *ProductStore) FindByID(_ context.Context, id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *ProductStore) Create(ctx context.Context, product domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	name := domain.NormalizeName(product.Name)
	if _, ok := s.byName[name]; ok {
		return domain.ErrConflict
	}
	if _, ok := s.byID[product.ID]; ok {
		return domain.ErrConflict
	}
	product.Name = name
	product.Unit = domain.NormalizeUnit(product.Unit)
	s.byID[product.ID] = product
	s.byName[name] = product.ID
	return nil
}
