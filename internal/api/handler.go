// Package api exposes the checkout service over HTTP. Handlers decode
// requests, delegate to the domain services, and translate domain errors
// into status codes.
package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/yuki/checkout-server/internal/domain/basket"
	"github.com/yuki/checkout-server/internal/domain/order"
	"github.com/yuki/checkout-server/internal/domain/product"
)

// Handler serves the checkout API.
type Handler struct {
	baskets  *basket.Service
	orders   *order.Service
	products product.Repository

	checkouts metric.Int64Counter
}

// NewHandler constructs a Handler with the required domain dependencies.
// The meter records a counter of placed orders.
func NewHandler(
	baskets *basket.Service,
	orders *order.Service,
	products product.Repository,
	meter metric.Meter,
) (*Handler, error) {
	checkouts, err := meter.Int64Counter("checkout.orders.placed",
		metric.WithDescription("Number of baskets successfully converted to orders"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create checkout counter")
	}

	return &Handler{
		baskets:   baskets,
		orders:    orders,
		products:  products,
		checkouts: checkouts,
	}, nil
}

// Routes registers all API endpoints on the mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/baskets", h.createBasket)
	mux.HandleFunc("GET /api/baskets", h.getBasketByCustomer)
	mux.HandleFunc("GET /api/baskets/{basketId}", h.getBasket)
	mux.HandleFunc("PUT /api/baskets/{basketId}/products", h.addProduct)
	mux.HandleFunc("PUT /api/baskets/{basketId}/discount", h.applyDiscount)

	mux.HandleFunc("POST /api/orders/checkout/{basketId}", h.checkout)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{orderId}", h.getOrder)
	mux.HandleFunc("GET /api/orders/customer/{customerId}", h.listOrdersByCustomer)

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{productCode}", h.getProduct)
}
