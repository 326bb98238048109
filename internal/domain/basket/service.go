package basket

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yuki/checkout-server/internal/domain/pricing"
	"github.com/yuki/checkout-server/internal/domain/product"
	"github.com/yuki/checkout-server/internal/domain/promotion"
)

// View is a priced snapshot of a basket. The total is recomputed from
// current catalog and promotion state on every read.
type View struct {
	Basket *Basket
	Total  decimal.Decimal
}

// Service implements basket lifecycle operations: create, read, add product,
// apply discount. Checkout lives in the order package.
type Service struct {
	baskets    Repository
	products   product.Repository
	promotions promotion.Repository
	pricer     *pricing.Engine
	newID      func() string
}

// NewService creates a basket Service with the required dependencies.
func NewService(
	baskets Repository,
	products product.Repository,
	promotions promotion.Repository,
	pricer *pricing.Engine,
) *Service {
	return &Service{
		baskets:    baskets,
		products:   products,
		promotions: promotions,
		pricer:     pricer,
		newID:      func() string { return uuid.New().String() },
	}
}

// Create opens an empty basket for the customer. A customer may hold at most
// one open basket at a time; a second create fails with ErrCustomerHasBasket.
func (s *Service) Create(ctx context.Context, customerID string) (*View, error) {
	if _, err := s.baskets.FindByCustomerID(ctx, customerID); err == nil {
		return nil, ErrCustomerHasBasket
	} else if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "check existing basket")
	}

	b := New(s.newID(), customerID)
	if err := s.baskets.Save(ctx, b); err != nil {
		return nil, errors.Wrap(err, "save basket")
	}
	return s.view(ctx, b)
}

// Get returns the priced view of the basket with the given id.
func (s *Service) Get(ctx context.Context, basketID string) (*View, error) {
	b, err := s.baskets.FindByID(ctx, basketID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, b)
}

// GetByCustomer returns the priced view of the customer's open basket.
func (s *Service) GetByCustomer(ctx context.Context, customerID string) (*View, error) {
	b, err := s.baskets.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, b)
}

// AddProduct adds quantity units of the given product to the basket,
// accumulating on top of any existing quantity. The product must exist in
// the catalog and the quantity must be positive; on failure the basket is
// left untouched.
func (s *Service) AddProduct(ctx context.Context, basketID, productCode string, quantity int) (*View, error) {
	b, err := s.baskets.FindByID(ctx, basketID)
	if err != nil {
		return nil, err
	}

	if _, err := s.products.FindByCode(ctx, productCode); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, &InvalidQuantityError{ProductCode: productCode, Quantity: quantity}
	}

	b.AddItem(productCode, quantity)
	if err := s.baskets.Save(ctx, b); err != nil {
		return nil, errors.Wrap(err, "save basket")
	}
	return s.view(ctx, b)
}

// ApplyDiscount sets the discount code on the basket, overwriting any
// previously applied code. The code must resolve in the promotion catalog.
func (s *Service) ApplyDiscount(ctx context.Context, basketID, discountCode string) (*View, error) {
	b, err := s.baskets.FindByID(ctx, basketID)
	if err != nil {
		return nil, err
	}

	if _, err := s.promotions.FindByCode(ctx, discountCode); err != nil {
		if errors.Is(err, promotion.ErrNotFound) {
			return nil, &InvalidDiscountCodeError{Code: discountCode}
		}
		return nil, errors.Wrap(err, "lookup promotion")
	}

	b.DiscountCode = discountCode
	if err := s.baskets.Save(ctx, b); err != nil {
		return nil, errors.Wrap(err, "save basket")
	}
	return s.view(ctx, b)
}

func (s *Service) view(ctx context.Context, b *Basket) (*View, error) {
	total, err := s.pricer.Total(ctx, b.Items, b.DiscountCode)
	if err != nil {
		return nil, errors.Wrap(err, "price basket")
	}
	return &View{Basket: b, Total: total}, nil
}
