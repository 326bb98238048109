package pricing

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuki/checkout-server/internal/domain/product"
	"github.com/yuki/checkout-server/internal/domain/promotion"
)

// --- Mock implementations ---

type mockProductRepo struct {
	catalog map[string]product.Product
	err     error
}

func (m *mockProductRepo) Save(_ context.Context, _ product.Product) error { return nil }

func (m *mockProductRepo) FindByCode(_ context.Context, code string) (*product.Product, error) {
	p, ok := m.catalog[code]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) FindAll(_ context.Context) (map[string]product.Product, error) {
	return m.catalog, m.err
}

type mockPromotionRepo struct {
	promotions map[string]promotion.Promotion
	err        error
}

func (m *mockPromotionRepo) Save(_ context.Context, _ promotion.Promotion) error { return nil }

func (m *mockPromotionRepo) FindByCode(_ context.Context, code string) (*promotion.Promotion, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.promotions[code]
	if !ok {
		return nil, promotion.ErrNotFound
	}
	return &p, nil
}

func (m *mockPromotionRepo) FindAll(_ context.Context) (map[string]promotion.Promotion, error) {
	return m.promotions, nil
}

// --- Helpers ---

func newCatalog() map[string]product.Product {
	return map[string]product.Product{
		"TSHIRT": {Code: "TSHIRT", Name: "Classic T-Shirt", FullPrice: decimal.RequireFromString("19.99")},
		"MUG":    {Code: "MUG", Name: "Ceramic Mug", FullPrice: decimal.RequireFromString("9.95")},
		"ROUND":  {Code: "ROUND", Name: "Round Number", FullPrice: decimal.RequireFromString("100.00")},
	}
}

func newEngine(catalog map[string]product.Product, promos map[string]promotion.Promotion) *Engine {
	return NewEngine(
		&mockProductRepo{catalog: catalog},
		&mockPromotionRepo{promotions: promos},
	)
}

// --- Tests ---

func TestEngine_Total(t *testing.T) {
	ctx := context.Background()
	tenPercent := map[string]promotion.Promotion{
		"SAVE10": {Code: "SAVE10", DiscountPercent: decimal.NewFromInt(10)},
	}

	tests := []struct {
		name         string
		items        map[string]int
		discountCode string
		promos       map[string]promotion.Promotion
		want         string
	}{
		{
			name:  "empty basket is zero",
			items: map[string]int{},
			want:  "0",
		},
		{
			name:         "empty basket with discount is still zero",
			items:        map[string]int{},
			discountCode: "SAVE10",
			promos:       tenPercent,
			want:         "0",
		},
		{
			name:  "single item",
			items: map[string]int{"MUG": 1},
			want:  "9.95",
		},
		{
			name:  "quantities multiply",
			items: map[string]int{"TSHIRT": 3},
			want:  "59.97",
		},
		{
			name:  "unknown product code skipped",
			items: map[string]int{"TSHIRT": 1, "GHOST": 5},
			want:  "19.99",
		},
		{
			name:         "ten percent off a round subtotal",
			items:        map[string]int{"ROUND": 1},
			discountCode: "SAVE10",
			promos:       tenPercent,
			want:         "90",
		},
		{
			name:         "unresolved discount code applies nothing",
			items:        map[string]int{"ROUND": 1},
			discountCode: "BOGUS",
			promos:       tenPercent,
			want:         "100",
		},
		{
			name:         "discount amount rounds half away from zero",
			items:        map[string]int{"MUG": 1}, // 9.95, 10% -> 0.995 -> 1.00
			discountCode: "SAVE10",
			promos:       tenPercent,
			want:         "8.95",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(newCatalog(), tt.promos)
			total, err := e.Total(ctx, tt.items, tt.discountCode)
			require.NoError(t, err)
			assert.True(t, total.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", total, tt.want)
		})
	}
}

func TestEngine_Total_CatalogError(t *testing.T) {
	boom := errors.New("boom")
	e := NewEngine(
		&mockProductRepo{err: boom},
		&mockPromotionRepo{},
	)

	_, err := e.Total(context.Background(), map[string]int{"X": 1}, "")
	require.ErrorIs(t, err, boom)
}

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		percent  string
		want     string
	}{
		{name: "zero percent", subtotal: "50.00", percent: "0", want: "50"},
		{name: "full discount", subtotal: "50.00", percent: "100", want: "0"},
		{name: "fractional percent", subtotal: "100.00", percent: "15.5", want: "84.5"},
		{name: "repeating decimal rounds", subtotal: "10.00", percent: "33.33", want: "6.67"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyDiscount(
				decimal.RequireFromString(tt.subtotal),
				decimal.RequireFromString(tt.percent),
			)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}
