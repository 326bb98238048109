package promotion

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a discount code does not resolve to a promotion.
var ErrNotFound = errors.New("promotion not found")

// Promotion maps a discount code to a percentage reduction in [0,100].
// Promotions are created once at load time and never mutated afterwards.
type Promotion struct {
	Code            string
	DiscountPercent decimal.Decimal
}

// Repository defines operations on the promotion catalog.
type Repository interface {
	Save(ctx context.Context, p Promotion) error
	FindByCode(ctx context.Context, code string) (*Promotion, error)
	FindAll(ctx context.Context) (map[string]Promotion, error)
}
