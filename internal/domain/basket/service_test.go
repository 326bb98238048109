package basket_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuki/checkout-server/internal/domain/basket"
	"github.com/yuki/checkout-server/internal/domain/pricing"
	"github.com/yuki/checkout-server/internal/domain/product"
	"github.com/yuki/checkout-server/internal/domain/promotion"
	"github.com/yuki/checkout-server/internal/storage/memory"
)

type fixture struct {
	baskets *memory.BasketStore
	service *basket.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	products := memory.NewProductStore()
	require.NoError(t, products.Save(ctx, product.Product{
		Code: "TSHIRT", Name: "Classic T-Shirt", FullPrice: decimal.RequireFromString("19.99"),
	}))
	require.NoError(t, products.Save(ctx, product.Product{
		Code: "MUG", Name: "Ceramic Mug", FullPrice: decimal.RequireFromString("9.95"),
	}))

	promotions := memory.NewPromotionStore()
	require.NoError(t, promotions.Save(ctx, promotion.Promotion{
		Code: "SAVE10", DiscountPercent: decimal.NewFromInt(10),
	}))

	baskets := memory.NewBasketStore()
	pricer := pricing.NewEngine(products, promotions)

	return &fixture{
		baskets: baskets,
		service: basket.NewService(baskets, products, promotions, pricer),
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.service.Create(ctx, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, view.Basket.ID)
	assert.Equal(t, "alice", view.Basket.CustomerID)
	assert.Empty(t, view.Basket.Items)
	assert.True(t, view.Total.IsZero())

	t.Run("second basket for same customer rejected", func(t *testing.T) {
		_, err := f.service.Create(ctx, "alice")
		require.ErrorIs(t, err, basket.ErrCustomerHasBasket)
	})

	t.Run("other customers unaffected", func(t *testing.T) {
		_, err := f.service.Create(ctx, "bob")
		require.NoError(t, err)
	})
}

func TestService_AddProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.service.Create(ctx, "alice")
	require.NoError(t, err)
	id := view.Basket.ID

	t.Run("quantities accumulate", func(t *testing.T) {
		_, err := f.service.AddProduct(ctx, id, "TSHIRT", 2)
		require.NoError(t, err)

		view, err := f.service.AddProduct(ctx, id, "TSHIRT", 3)
		require.NoError(t, err)
		assert.Equal(t, 5, view.Basket.Items["TSHIRT"])
	})

	t.Run("zero quantity rejected without mutation", func(t *testing.T) {
		_, err := f.service.AddProduct(ctx, id, "TSHIRT", 0)
		var qtyErr *basket.InvalidQuantityError
		require.ErrorAs(t, err, &qtyErr)
		assert.Equal(t, "TSHIRT", qtyErr.ProductCode)

		view, err := f.service.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 5, view.Basket.Items["TSHIRT"])
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		_, err := f.service.AddProduct(ctx, id, "TSHIRT", -1)
		var qtyErr *basket.InvalidQuantityError
		require.ErrorAs(t, err, &qtyErr)
	})

	t.Run("unknown product rejected", func(t *testing.T) {
		_, err := f.service.AddProduct(ctx, id, "GHOST", 1)
		require.ErrorIs(t, err, product.ErrNotFound)
	})

	t.Run("unknown basket rejected", func(t *testing.T) {
		_, err := f.service.AddProduct(ctx, "missing", "TSHIRT", 1)
		require.ErrorIs(t, err, basket.ErrNotFound)
	})
}

func TestService_ApplyDiscount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.service.Create(ctx, "alice")
	require.NoError(t, err)
	id := view.Basket.ID

	_, err = f.service.AddProduct(ctx, id, "TSHIRT", 1)
	require.NoError(t, err)

	t.Run("valid code applies", func(t *testing.T) {
		view, err := f.service.ApplyDiscount(ctx, id, "SAVE10")
		require.NoError(t, err)
		assert.Equal(t, "SAVE10", view.Basket.DiscountCode)
		// 19.99 - 10% (2.00 after rounding) = 17.99
		assert.True(t, view.Total.Equal(decimal.RequireFromString("17.99")),
			"got %s", view.Total)
	})

	t.Run("invalid code rejected", func(t *testing.T) {
		_, err := f.service.ApplyDiscount(ctx, id, "BOGUS")
		var discErr *basket.InvalidDiscountCodeError
		require.ErrorAs(t, err, &discErr)
		assert.Equal(t, "BOGUS", discErr.Code)
	})

	t.Run("last write wins", func(t *testing.T) {
		_, err := f.service.ApplyDiscount(ctx, id, "SAVE10")
		require.NoError(t, err)

		view, err := f.service.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "SAVE10", view.Basket.DiscountCode)
	})

	t.Run("unknown basket rejected", func(t *testing.T) {
		_, err := f.service.ApplyDiscount(ctx, "missing", "SAVE10")
		require.ErrorIs(t, err, basket.ErrNotFound)
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.service.Create(ctx, "alice")
	require.NoError(t, err)

	t.Run("by id", func(t *testing.T) {
		view, err := f.service.Get(ctx, created.Basket.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", view.Basket.CustomerID)
	})

	t.Run("by customer", func(t *testing.T) {
		view, err := f.service.GetByCustomer(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, created.Basket.ID, view.Basket.ID)
	})

	t.Run("miss by id", func(t *testing.T) {
		_, err := f.service.Get(ctx, "missing")
		require.ErrorIs(t, err, basket.ErrNotFound)
	})

	t.Run("miss by customer", func(t *testing.T) {
		_, err := f.service.GetByCustomer(ctx, "nobody")
		require.ErrorIs(t, err, basket.ErrNotFound)
	})

	t.Run("total tracks current catalog state", func(t *testing.T) {
		_, err := f.service.AddProduct(ctx, created.Basket.ID, "MUG", 2)
		require.NoError(t, err)

		view, err := f.service.Get(ctx, created.Basket.ID)
		require.NoError(t, err)
		assert.True(t, view.Total.Equal(decimal.RequireFromString("19.90")),
			"got %s", view.Total)
	})
}
