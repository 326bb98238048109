package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuki/checkout-server/internal/storage/memory"
)

const sampleDoc = `{
  "products": [
    {"productCode": "TSHIRT", "name": "Classic T-Shirt", "fullPrice": 19.99},
    {"productCode": "MUG", "name": "Ceramic Mug", "fullPrice": "9.95"}
  ],
  "promotions": [
    {"discountCode": "SAVE10", "discountPercent": 10},
    {"discountCode": "VIP15", "discountPercent": "15.5"}
  ]
}`

func newLoader() (*Loader, *memory.ProductStore, *memory.PromotionStore) {
	products := memory.NewProductStore()
	promotions := memory.NewPromotionStore()
	return NewLoader(products, promotions), products, promotions
}

func TestLoader_LoadBytes(t *testing.T) {
	ctx := context.Background()
	l, products, promotions := newLoader()

	stats, err := l.LoadBytes(ctx, []byte(sampleDoc))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Products)
	assert.Equal(t, 2, stats.Promotions)

	p, err := products.FindByCode(ctx, "MUG")
	require.NoError(t, err)
	assert.True(t, p.FullPrice.Equal(decimal.RequireFromString("9.95")))

	promo, err := promotions.FindByCode(ctx, "VIP15")
	require.NoError(t, err)
	assert.True(t, promo.DiscountPercent.Equal(decimal.RequireFromString("15.5")))
}

func TestLoader_LoadBytes_Invalid(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: "nope"},
		{name: "product missing code", doc: `{"products": [{"name": "x", "fullPrice": 1}]}`},
		{name: "negative price", doc: `{"products": [{"productCode": "X", "fullPrice": -1}]}`},
		{name: "percent above 100", doc: `{"promotions": [{"discountCode": "X", "discountPercent": 101}]}`},
		{name: "non numeric price", doc: `{"products": [{"productCode": "X", "fullPrice": true}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _, _ := newLoader()
			_, err := l.LoadBytes(ctx, []byte(tt.doc))
			require.Error(t, err)
		})
	}
}

func TestLoader_LoadFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	plain := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(plain, []byte(sampleDoc), 0o644))

	gzipped := filepath.Join(dir, "extra.json.gz")
	f, err := os.Create(gzipped)
	require.NoError(t, err)
	zw := pgzip.NewWriter(f)
	_, err = zw.Write([]byte(`{"products": [{"productCode": "CAP", "name": "Baseball Cap", "fullPrice": 14}]}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	l, products, promotions := newLoader()
	require.NoError(t, l.LoadFiles(ctx, plain, gzipped))

	for _, code := range []string{"TSHIRT", "MUG", "CAP"} {
		_, err := products.FindByCode(ctx, code)
		require.NoError(t, err, code)
	}
	_, err = promotions.FindByCode(ctx, "SAVE10")
	require.NoError(t, err)
}

func TestLoader_LoadFiles_MissingFile(t *testing.T) {
	l, _, _ := newLoader()
	err := l.LoadFiles(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
