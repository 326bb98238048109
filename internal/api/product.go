package api

import (
	"net/http"
	"sort"

	"github.com/go-faster/jx"
)

// listProducts returns the full catalog sorted by product code.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.products.FindAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	codes := make([]string, 0, len(catalog))
	for code := range catalog {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, code := range codes {
			p := catalog[code]
			encodeProduct(e, &p)
		}
		e.ArrEnd()
	})
}

// getProduct returns a single catalog product by code.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.FindByCode(r.Context(), r.PathValue("productCode"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, p) })
}
