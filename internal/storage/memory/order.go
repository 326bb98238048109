package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yuki/checkout-server/internal/domain/order"
)

var _ order.Repository = (*OrderStore)(nil)

// OrderStore holds completed orders keyed by order id. The store is
// append-only: orders are never mutated or deleted once created.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

// NewOrderStore returns an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]order.Order)}
}

// Create appends a new order.
func (s *OrderStore) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = *o
	return nil
}

// FindByID returns the order with the given id, or order.ErrNotFound.
func (s *OrderStore) FindByID(_ context.Context, id string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

// FindAll returns a snapshot of all orders sorted by creation time.
func (s *OrderStore) FindAll(_ context.Context) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(order.Order) bool { return true }), nil
}

// FindByCustomerID returns the customer's orders sorted by creation time.
func (s *OrderStore) FindByCustomerID(_ context.Context, customerID string) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(o order.Order) bool { return o.CustomerID == customerID }), nil
}

// snapshot copies matching orders out of the map, oldest first. Callers must
// hold at least the read lock.
func (s *OrderStore) snapshot(match func(order.Order) bool) []order.Order {
	out := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if match(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
