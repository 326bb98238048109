package order

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yuki/checkout-server/internal/domain/basket"
	"github.com/yuki/checkout-server/internal/domain/payment"
	"github.com/yuki/checkout-server/internal/domain/pricing"
)

// Service turns baskets into orders. It composes the payment validator, the
// pricing engine, and the basket and order stores.
type Service struct {
	orders  Repository
	baskets basket.Repository
	pricer  *pricing.Engine
	cards   *payment.Validator

	locks keyedLocks

	newID func() string
	now   func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(
	orders Repository,
	baskets basket.Repository,
	pricer *pricing.Engine,
	cards *payment.Validator,
) *Service {
	return &Service{
		orders:  orders,
		baskets: baskets,
		pricer:  pricer,
		cards:   cards,
		newID:   func() string { return uuid.New().String() },
		now:     time.Now,
	}
}

// Checkout converts the basket into an immutable order:
//
//  1. look up the basket;
//  2. validate the payment card (no state touched on failure);
//  3. compute the final price from current catalog and promotion state;
//  4. persist a new order with a fresh id and timestamp;
//  5. delete the basket.
//
// Concurrent checkouts of the same basket are serialized on a per-basket
// lock, so the loser observes the deleted basket and fails with
// basket.ErrNotFound instead of producing a second order. The order-write
// and basket-delete in steps 4-5 are still two separate store operations:
// a crash between them leaves both an order and a stale basket. That gap is
// accepted for this in-memory single-process design.
func (s *Service) Checkout(ctx context.Context, basketID, cardNumber, expiryDate string) (*Order, error) {
	unlock := s.locks.lock(basketID)
	defer unlock()

	b, err := s.baskets.FindByID(ctx, basketID)
	if err != nil {
		return nil, err
	}

	if err := s.cards.ProcessPayment(cardNumber, expiryDate); err != nil {
		return nil, err
	}

	total, err := s.pricer.Total(ctx, b.Items, b.DiscountCode)
	if err != nil {
		return nil, errors.Wrap(err, "price basket")
	}

	o := &Order{
		ID:           s.newID(),
		CustomerID:   b.CustomerID,
		TotalPrice:   total,
		CreatedAt:    s.now(),
		DiscountCode: b.DiscountCode,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	if err := s.baskets.Delete(ctx, basketID); err != nil {
		return nil, errors.Wrap(err, "delete basket")
	}

	zctx.From(ctx).Info("Basket checked out",
		zap.String("basket_id", basketID),
		zap.String("order_id", o.ID),
		zap.String("customer_id", o.CustomerID),
		zap.String("total", total.String()),
	)

	return o, nil
}

// Get returns a single order by id.
func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	return s.orders.FindByID(ctx, orderID)
}

// List returns all orders sorted by creation time.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.FindAll(ctx)
}

// ListByCustomer returns the customer's orders sorted by creation time.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	return s.orders.FindByCustomerID(ctx, customerID)
}

// keyedLocks hands out one mutex per key. Entries are removed once the last
// holder releases, so the map does not grow with the number of baskets ever
// checked out.
type keyedLocks struct {
	mu sync.Mutex
	m  map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedLocks) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.m == nil {
		k.m = make(map[string]*keyedLock)
	}
	l, ok := k.m[key]
	if !ok {
		l = &keyedLock{}
		k.m[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.m, key)
		}
		k.mu.Unlock()
	}
}
