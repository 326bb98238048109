package memory

import (
	"context"
	"sync"

	"github.com/yuki/checkout-server/internal/domain/basket"
)

var _ basket.Repository = (*BasketStore)(nil)

// BasketStore holds open baskets keyed by basket id. The store owns its
// values exclusively: Save copies the basket in and lookups copy it out, so
// no caller ever holds a reference to stored state across calls.
type BasketStore struct {
	mu      sync.RWMutex
	baskets map[string]*basket.Basket
}

// NewBasketStore returns an empty BasketStore.
func NewBasketStore() *BasketStore {
	return &BasketStore{baskets: make(map[string]*basket.Basket)}
}

// Save stores a deep copy of the basket under its id.
func (s *BasketStore) Save(_ context.Context, b *basket.Basket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baskets[b.ID] = b.Clone()
	return nil
}

// FindByID returns a deep copy of the basket with the given id, or
// basket.ErrNotFound.
func (s *BasketStore) FindByID(_ context.Context, id string) (*basket.Basket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.baskets[id]
	if !ok {
		return nil, basket.ErrNotFound
	}
	return b.Clone(), nil
}

// FindByCustomerID scans for the customer's basket and returns a deep copy,
// or basket.ErrNotFound. The basket service keeps at most one open basket
// per customer, so the scan has at most one match.
func (s *BasketStore) FindByCustomerID(_ context.Context, customerID string) (*basket.Basket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.baskets {
		if b.CustomerID == customerID {
			return b.Clone(), nil
		}
	}
	return nil, basket.ErrNotFound
}

// Delete removes the basket with the given id. Deleting an absent basket is
// a no-op.
func (s *BasketStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.baskets, id)
	return nil
}
