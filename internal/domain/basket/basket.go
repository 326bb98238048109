package basket

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for basket operations.
var (
	// ErrNotFound is returned when a basket lookup misses.
	ErrNotFound = errors.New("basket not found")
	// ErrCustomerHasBasket is returned when a customer who already has an
	// open basket tries to create another one.
	ErrCustomerHasBasket = errors.New("customer already has an open basket")
)

// InvalidQuantityError indicates an add-product request with a non-positive
// quantity.
type InvalidQuantityError struct {
	ProductCode string
	Quantity    int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s, got %d", e.ProductCode, e.Quantity)
}

// InvalidDiscountCodeError indicates a discount code that does not resolve
// to any promotion.
type InvalidDiscountCodeError struct {
	Code string
}

func (e *InvalidDiscountCodeError) Error() string {
	return fmt.Sprintf("invalid discount code: %s", e.Code)
}

// Basket holds the products a customer intends to purchase before checkout.
// Items maps product code to quantity; quantities are always positive.
// A basket is mutable until checkout removes it from the store.
type Basket struct {
	ID           string
	CustomerID   string
	Items        map[string]int
	DiscountCode string
}

// New creates an empty basket for the given customer.
func New(id, customerID string) *Basket {
	return &Basket{
		ID:         id,
		CustomerID: customerID,
		Items:      make(map[string]int),
	}
}

// AddItem increments the stored quantity for the given product code.
// Adding to an absent code starts from zero.
func (b *Basket) AddItem(productCode string, quantity int) {
	b.Items[productCode] += quantity
}

// Clone returns a deep copy of the basket. The store uses this to keep
// exclusive ownership of its values.
func (b *Basket) Clone() *Basket {
	items := make(map[string]int, len(b.Items))
	for code, qty := range b.Items {
		items[code] = qty
	}
	return &Basket{
		ID:           b.ID,
		CustomerID:   b.CustomerID,
		Items:        items,
		DiscountCode: b.DiscountCode,
	}
}

// Repository defines persistence operations for baskets. Implementations
// must hand out copies: no caller holds a live reference to stored state.
type Repository interface {
	Save(ctx context.Context, b *Basket) error
	FindByID(ctx context.Context, id string) (*Basket, error)
	// FindByCustomerID returns the customer's open basket. The service
	// layer guarantees at most one basket per customer, so the linear
	// scan underneath never has to break a tie.
	FindByCustomerID(ctx context.Context, customerID string) (*Basket, error)
	Delete(ctx context.Context, id string) error
}
