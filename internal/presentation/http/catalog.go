package httppresentation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/catalog"
)

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Catalog.List(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(products, toProductResponse))
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Catalog.Get(r.Context(),
		callerFrom(r.Context()),
		r.URL.Query().Get("email"),
		chi.URLParam(r, "id"),
	)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	p, err := h.svc.Catalog.Create(r.Context(), catalog.CreateProductInput{
		Caller:   callerFrom(r.Context()),
		Claimed:  r.URL.Query().Get("email"),
		Details:  req.details(),
		Quantity: req.AvailableQuantity,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

// handleUpdateProduct ignores availableQuantity; stock has its own routes.
func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	p, err := h.svc.Catalog.Update(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "id"), req.details())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.Delete(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	p, err := h.svc.Catalog.SetQuantity(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleDecrement(w http.ResponseWriter, r *http.Request) {
	var req decrementRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	p, err := h.svc.Catalog.Decrement(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}
