// Package catalog seeds the product and promotion stores from JSON data
// files before the server accepts traffic.
package catalog

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yuki/checkout-server/internal/domain/product"
	"github.com/yuki/checkout-server/internal/domain/promotion"
)

// Stats reports how many entries a load pass stored.
type Stats struct {
	Products   int
	Promotions int
}

// Loader parses catalog data documents and stores their products and
// promotions. A document is a JSON object with optional "products" and
// "promotions" arrays; prices and percentages are accepted as JSON numbers
// or numeric strings.
type Loader struct {
	products   product.Repository
	promotions promotion.Repository
}

// NewLoader creates a Loader writing into the given catalogs.
func NewLoader(products product.Repository, promotions promotion.Repository) *Loader {
	return &Loader{products: products, promotions: promotions}
}

// LoadFiles loads every path concurrently. Files ending in .gz are
// transparently decompressed. The first failure cancels the rest.
func (l *Loader) LoadFiles(ctx context.Context, paths ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		g.Go(func() error {
			stats, err := l.loadFile(ctx, path)
			if err != nil {
				return errors.Wrapf(err, "load %s", path)
			}
			zctx.From(ctx).Info("Catalog file loaded",
				zap.String("path", path),
				zap.Int("products", stats.Products),
				zap.Int("promotions", stats.Promotions),
			)
			return nil
		})
	}
	return g.Wait()
}

// LoadBytes parses a single in-memory document, used for the embedded
// default catalog.
func (l *Loader) LoadBytes(ctx context.Context, data []byte) (Stats, error) {
	return l.load(ctx, bytes.NewReader(data))
}

func (l *Loader) loadFile(ctx context.Context, path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, errors.Wrap(err, "open")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return Stats{}, errors.Wrap(err, "gzip reader")
		}
		defer zr.Close()
		r = zr
	}
	return l.load(ctx, r)
}

func (l *Loader) load(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats
	d := jx.Decode(r, 4096)

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "products":
			return d.Arr(func(d *jx.Decoder) error {
				p, err := decodeProduct(d)
				if err != nil {
					return err
				}
				if err := l.products.Save(ctx, p); err != nil {
					return errors.Wrapf(err, "save product %s", p.Code)
				}
				stats.Products++
				return nil
			})
		case "promotions":
			return d.Arr(func(d *jx.Decoder) error {
				p, err := decodePromotion(d)
				if err != nil {
					return err
				}
				if err := l.promotions.Save(ctx, p); err != nil {
					return errors.Wrapf(err, "save promotion %s", p.Code)
				}
				stats.Promotions++
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return Stats{}, errors.Wrap(err, "decode catalog document")
	}
	return stats, nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productCode":
			p.Code, err = d.Str()
		case "name":
			p.Name, err = d.Str()
		case "fullPrice":
			p.FullPrice, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return product.Product{}, err
	}
	if p.Code == "" {
		return product.Product{}, errors.New("product missing productCode")
	}
	if p.FullPrice.IsNegative() {
		return product.Product{}, errors.Errorf("product %s has negative price", p.Code)
	}
	return p, nil
}

func decodePromotion(d *jx.Decoder) (promotion.Promotion, error) {
	var p promotion.Promotion
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "discountCode":
			p.Code, err = d.Str()
		case "discountPercent":
			p.DiscountPercent, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return promotion.Promotion{}, err
	}
	if p.Code == "" {
		return promotion.Promotion{}, errors.New("promotion missing discountCode")
	}
	if p.DiscountPercent.IsNegative() || p.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return promotion.Promotion{}, errors.Errorf("promotion %s percent out of [0,100]", p.Code)
	}
	return p, nil
}

// decodeDecimal reads a JSON number or a numeric string as a decimal.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(strings.Trim(n.String(), `"`))
}
