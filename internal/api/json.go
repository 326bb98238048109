package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-faster/jx"

	"github.com/yuki/checkout-server/internal/domain/basket"
	"github.com/yuki/checkout-server/internal/domain/order"
	"github.com/yuki/checkout-server/internal/domain/product"
)

// writeJSON encodes a response body with jx and writes it with the given
// status code.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func encodeBasketView(e *jx.Encoder, v *basket.View) {
	e.ObjStart()
	e.FieldStart("basketId")
	e.Str(v.Basket.ID)
	e.FieldStart("customerId")
	e.Str(v.Basket.CustomerID)

	e.FieldStart("products")
	e.ObjStart()
	// Stable key order for predictable payloads.
	codes := make([]string, 0, len(v.Basket.Items))
	for code := range v.Basket.Items {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		e.FieldStart(code)
		e.Int(v.Basket.Items[code])
	}
	e.ObjEnd()

	e.FieldStart("discountCode")
	if v.Basket.DiscountCode == "" {
		e.Null()
	} else {
		e.Str(v.Basket.DiscountCode)
	}
	e.FieldStart("totalPrice")
	e.Num(jx.Num(v.Total.String()))
	e.ObjEnd()
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("orderId")
	e.Str(o.ID)
	e.FieldStart("customerId")
	e.Str(o.CustomerID)
	e.FieldStart("totalPrice")
	e.Num(jx.Num(o.TotalPrice.String()))
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.UTC().Format(time.RFC3339Nano))
	e.FieldStart("discountCode")
	if o.DiscountCode == "" {
		e.Null()
	} else {
		e.Str(o.DiscountCode)
	}
	e.ObjEnd()
}

func encodeProduct(e *jx.Encoder, p *product.Product) {
	e.ObjStart()
	e.FieldStart("productCode")
	e.Str(p.Code)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("fullPrice")
	e.Num(jx.Num(p.FullPrice.String()))
	e.ObjEnd()
}

// addProductRequest is the body of PUT /api/baskets/{basketId}/products.
type addProductRequest struct {
	ProductCode string
	Quantity    int
}

func decodeAddProductRequest(data []byte) (addProductRequest, error) {
	var req addProductRequest
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productCode":
			req.ProductCode, err = d.Str()
		case "quantity":
			req.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	return req, err
}

// applyDiscountRequest is the body of PUT /api/baskets/{basketId}/discount.
type applyDiscountRequest struct {
	DiscountCode string
}

func decodeApplyDiscountRequest(data []byte) (applyDiscountRequest, error) {
	var req applyDiscountRequest
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "discountCode":
			req.DiscountCode, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	return req, err
}

// checkoutRequest is the body of POST /api/orders/checkout/{basketId}.
type checkoutRequest struct {
	CardNumber string
	ExpiryDate string
}

func decodeCheckoutRequest(data []byte) (checkoutRequest, error) {
	var req checkoutRequest
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "cardNumber":
			req.CardNumber, err = d.Str()
		case "expiryDate":
			req.ExpiryDate, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	return req, err
}
