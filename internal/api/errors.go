package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/yuki/checkout-server/internal/domain/basket"
	"github.com/yuki/checkout-server/internal/domain/order"
	"github.com/yuki/checkout-server/internal/domain/payment"
	"github.com/yuki/checkout-server/internal/domain/product"
	"github.com/yuki/checkout-server/internal/domain/promotion"
)

// Error codes exposed in API error responses.
const (
	codeNotFound       = "RESOURCE_NOT_FOUND"
	codeInvalidRequest = "INVALID_REQUEST"
	codePaymentError   = "PAYMENT_ERROR"
	codeInternal       = "INTERNAL_ERROR"
)

// writeError maps a domain error to an HTTP status and JSON error body.
// Unclassified errors are logged and reduced to a generic message so
// internal detail never leaks to the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(err)
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Unhandled error", zap.Error(err))
	}
	writeErrorResponse(w, status, code, msg)
}

// writeInvalidRequest reports a malformed or rejected request body.
func writeInvalidRequest(w http.ResponseWriter, msg string) {
	writeErrorResponse(w, http.StatusBadRequest, codeInvalidRequest, msg)
}

func classify(err error) (status int, code, msg string) {
	var (
		payErr  *payment.Error
		qtyErr  *basket.InvalidQuantityError
		discErr *basket.InvalidDiscountCodeError
	)

	switch {
	case errors.Is(err, basket.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, promotion.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, codeNotFound, err.Error()
	case errors.As(err, &payErr):
		return http.StatusBadRequest, codePaymentError, payErr.Msg
	case errors.As(err, &qtyErr),
		errors.As(err, &discErr),
		errors.Is(err, basket.ErrCustomerHasBasket):
		return http.StatusBadRequest, codeInvalidRequest, err.Error()
	default:
		return http.StatusInternalServerError, codeInternal, "an unexpected error occurred"
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Str(code)
		e.FieldStart("message")
		e.Str(msg)
		e.ObjEnd()
	})
}
