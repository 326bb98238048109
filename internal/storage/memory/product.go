// Package memory provides concurrent in-memory implementations of the
// domain repositories. Each store guards its map with an RWMutex; reads
// return copies, so callers never observe concurrent mutation.
package memory

import (
	"context"
	"sync"

	"github.com/yuki/checkout-server/internal/domain/product"
)

var _ product.Repository = (*ProductStore)(nil)

// ProductStore holds the product catalog keyed by product code. It is
// populated once at startup and read-mostly thereafter.
type ProductStore struct {
	mu       sync.RWMutex
	products map[string]product.Product
}

// NewProductStore returns an empty ProductStore.
func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[string]product.Product)}
}

// Save stores the product under its code, replacing any previous entry.
func (s *ProductStore) Save(_ context.Context, p product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.Code] = p
	return nil
}

// FindByCode returns the product with the given code, or product.ErrNotFound.
func (s *ProductStore) FindByCode(_ context.Context, code string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[code]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

// FindAll returns a snapshot copy of the catalog.
func (s *ProductStore) FindAll(_ context.Context) (map[string]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]product.Product, len(s.products))
	for code, p := range s.products {
		snapshot[code] = p
	}
	return snapshot, nil
}
