// Package pricing computes basket totals from the current catalog and
// promotion state. Totals are always derived, never stored on the basket:
// a catalog price change is reflected in every unpriced basket until
// checkout freezes the total into an order.
package pricing

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/yuki/checkout-server/internal/domain/product"
	"github.com/yuki/checkout-server/internal/domain/promotion"
)

var hundred = decimal.NewFromInt(100)

// Engine calculates basket totals using decimal arithmetic throughout.
// It is shared by the basket-view and checkout paths.
type Engine struct {
	products   product.Repository
	promotions promotion.Repository
}

// NewEngine creates a pricing Engine backed by the given catalogs.
func NewEngine(products product.Repository, promotions promotion.Repository) *Engine {
	return &Engine{
		products:   products,
		promotions: promotions,
	}
}

// Total computes the priced total for the given items, applying the discount
// code when it resolves to a promotion. Items whose product code is absent
// from the catalog are skipped; a discount code that does not resolve applies
// no discount. Neither case is an error here: code validity is enforced by
// the caller that set it on the basket.
//
// The discount amount is rounded to 2 decimal places (half away from zero)
// before subtraction, and the final total is rounded the same way.
func (e *Engine) Total(ctx context.Context, items map[string]int, discountCode string) (decimal.Decimal, error) {
	catalog, err := e.products.FindAll(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "load catalog")
	}

	subtotal := Subtotal(items, catalog)

	if discountCode == "" {
		return subtotal.Round(2), nil
	}

	promo, err := e.promotions.FindByCode(ctx, discountCode)
	if err != nil {
		if errors.Is(err, promotion.ErrNotFound) {
			return subtotal.Round(2), nil
		}
		return decimal.Zero, errors.Wrap(err, "lookup promotion")
	}

	return ApplyDiscount(subtotal, promo.DiscountPercent), nil
}

// Subtotal returns the sum of fullPrice * quantity over all items present in
// the catalog. Unknown product codes contribute nothing.
func Subtotal(items map[string]int, catalog map[string]product.Product) decimal.Decimal {
	sum := decimal.Zero
	for code, qty := range items {
		p, ok := catalog[code]
		if !ok {
			continue
		}
		sum = sum.Add(p.FullPrice.Mul(decimal.NewFromInt(int64(qty))))
	}
	return sum
}

// ApplyDiscount subtracts percent% of subtotal, clamping the result at zero.
// Both the discount amount and the final total are rounded to 2 decimal
// places, half away from zero.
func ApplyDiscount(subtotal, percent decimal.Decimal) decimal.Decimal {
	discount := subtotal.Mul(percent).Div(hundred).Round(2)
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return total.Round(2)
}
