package api

import (
	"io"
	"net/http"

	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/yuki/checkout-server/internal/domain/order"
)

// checkout converts the basket into an immutable order using the card
// details from the request body.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeInvalidRequest(w, "unreadable request body")
		return
	}
	req, err := decodeCheckoutRequest(body)
	if err != nil {
		writeInvalidRequest(w, "malformed request body")
		return
	}

	o, err := h.orders.Checkout(r.Context(), r.PathValue("basketId"), req.CardNumber, req.ExpiryDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.checkouts.Add(r.Context(), 1, metric.WithAttributes(
		attribute.Bool("discount.applied", o.DiscountCode != ""),
	))

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// getOrder returns a single order by id.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("orderId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// listOrders returns every order, oldest first.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOrderList(w, orders)
}

// listOrdersByCustomer returns the customer's orders, oldest first.
func (h *Handler) listOrdersByCustomer(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByCustomer(r.Context(), r.PathValue("customerId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOrderList(w, orders)
}

func writeOrderList(w http.ResponseWriter, orders []order.Order) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range orders {
			encodeOrder(e, &orders[i])
		}
		e.ArrEnd()
	})
}
