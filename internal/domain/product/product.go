package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Products are
// created once at load time and never mutated afterwards.
type Product struct {
	Code      string
	Name      string
	FullPrice decimal.Decimal
}

// Repository defines operations on the product catalog. The catalog is
// populated once at startup and is read-mostly thereafter.
type Repository interface {
	Save(ctx context.Context, p Product) error
	FindByCode(ctx context.Context, code string) (*Product, error)
	// FindAll returns a point-in-time snapshot of the catalog keyed by
	// product code. Callers never observe concurrent mutation.
	FindAll(ctx context.Context) (map[string]Product, error)
}
