package api

import (
	"io"
	"net/http"

	"github.com/go-faster/jx"
)

// createBasket opens an empty basket for the customer named in the
// customerId query parameter.
func (h *Handler) createBasket(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customerId")
	if customerID == "" {
		writeInvalidRequest(w, "customerId query parameter is required")
		return
	}

	view, err := h.baskets.Create(r.Context(), customerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeBasketView(e, view) })
}

// getBasket returns the priced view of a basket by id.
func (h *Handler) getBasket(w http.ResponseWriter, r *http.Request) {
	view, err := h.baskets.Get(r.Context(), r.PathValue("basketId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeBasketView(e, view) })
}

// getBasketByCustomer returns the priced view of a customer's open basket.
func (h *Handler) getBasketByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customerId")
	if customerID == "" {
		writeInvalidRequest(w, "customerId query parameter is required")
		return
	}

	view, err := h.baskets.GetByCustomer(r.Context(), customerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeBasketView(e, view) })
}

// addProduct adds quantity units of a product to the basket.
func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeInvalidRequest(w, "unreadable request body")
		return
	}
	req, err := decodeAddProductRequest(body)
	if err != nil {
		writeInvalidRequest(w, "malformed request body")
		return
	}

	view, err := h.baskets.AddProduct(r.Context(), r.PathValue("basketId"), req.ProductCode, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeBasketView(e, view) })
}

// applyDiscount sets the basket's discount code, replacing any previous one.
func (h *Handler) applyDiscount(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeInvalidRequest(w, "unreadable request body")
		return
	}
	req, err := decodeApplyDiscountRequest(body)
	if err != nil {
		writeInvalidRequest(w, "malformed request body")
		return
	}

	view, err := h.baskets.ApplyDiscount(r.Context(), r.PathValue("basketId"), req.DiscountCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeBasketView(e, view) })
}
