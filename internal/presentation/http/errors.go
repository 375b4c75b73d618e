package httppresentation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application"
	domauth "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/auth"
	domidentity "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/identity"
	domorder "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
	domproduct "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
	domreview "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/review"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability/logctx"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps use case errors onto HTTP status codes.
func statusFor(err error) int {
	var upstream *application.UpstreamError
	switch {
	case errors.Is(err, domauth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domauth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domorder.ErrInvalidTransition),
		errors.Is(err, domproduct.ErrInsufficientStock),
		errors.Is(err, dompayment.ErrCaptureRejected),
		errors.Is(err, dompayment.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, domidentity.ErrNotFound),
		errors.Is(err, domproduct.ErrNotFound),
		errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, dompayment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrValidation),
		errors.Is(err, domidentity.ErrInvalidEmail),
		errors.Is(err, domidentity.ErrInvalidRole),
		errors.Is(err, domproduct.ErrInvalidQuantity),
		errors.Is(err, domproduct.ErrInvalidAmount),
		errors.Is(err, domproduct.ErrInvalidPrice),
		errors.Is(err, domproduct.ErrNameRequired),
		errors.Is(err, domorder.ErrInvalidQuantity),
		errors.Is(err, domreview.ErrInvalidRating):
		return http.StatusBadRequest
	case errors.As(err, &upstream) && upstream.Peer == application.PeerPaymentGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError writes the mapped status. Server-side failures are logged
// and reported with a generic message.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logctx.FromOr(r.Context(), h.log).Error("http_request_failed",
			observability.F("route", routePattern(r)),
			observability.F("status", status),
			observability.F("error", err.Error()),
		)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON rejects unknown fields. An empty body decodes to the zero value.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return application.Validation("malformed request body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
