package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when an order lookup misses.
var ErrNotFound = errors.New("order not found")

// Order is the immutable record of a completed, priced purchase. The total
// is frozen at checkout time and never recomputed.
type Order struct {
	ID           string
	CustomerID   string
	TotalPrice   decimal.Decimal
	CreatedAt    time.Time
	DiscountCode string
}

// Repository defines persistence operations for orders. The store is
// append-only: orders are created once and never mutated or deleted.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	// FindAll returns all orders sorted by creation time.
	FindAll(ctx context.Context) ([]Order, error)
	FindByCustomerID(ctx context.Context, customerID string) ([]Order, error)
}
