package httppresentation

import (
	"context"
	"net/http"
	"strings"

	domauth "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/auth"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability/logctx"
)

type callerKey struct{}

// requireIdentity verifies the bearer token and stores the caller email on
// the request context. Routes behind it read the caller with callerFrom.
func (h *Handler) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			h.writeDomainError(w, r, domauth.ErrUnauthorized)
			return
		}
		email, err := h.svc.Guard.RequireIdentity(r.Context(), token)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), callerKey{}, email)
		ctx = logctx.Enrich(ctx, h.log, observability.F("caller", email))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerFrom(ctx context.Context) string {
	email, _ := ctx.Value(callerKey{}).(string)
	return email
}

// bearerToken reads "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
