package httppresentation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apporder "github.com/Zhima-Mochi/minishop-marketplace/internal/application/order"
	domorder "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
)

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	o, err := h.svc.Orders.Create(r.Context(), apporder.CreateOrderInput{
		Caller:    callerFrom(r.Context()),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Contact: domorder.Contact{
			BuyerName: req.BuyerName,
			Phone:     req.Phone,
			Address:   req.Address,
		},
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders.List(r.Context(), callerFrom(r.Context()))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(orders, toOrderResponse))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Orders.Get(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleCreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	intent, err := h.svc.Orders.CreatePaymentIntent(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentIntentResponse{
		CaptureHandle: intent.CaptureHandle,
		ClientSecret:  intent.ClientSecret,
	})
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	o, err := h.svc.Orders.RecordPayment(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "id"), req.TransactionID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleMarkShipped(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Orders.MarkShipped(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Orders.Cancel(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
