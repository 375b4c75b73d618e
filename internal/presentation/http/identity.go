package httppresentation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apporder "github.com/Zhima-Mochi/minishop-marketplace/internal/application/order"
)

// handleUpsertProfile is the sign-in entry point: it stores the profile and
// returns a fresh identity token. No credential is required.
func (h *Handler) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	res, err := h.svc.Identity.UpsertProfile(r.Context(), chi.URLParam(r, "email"), req.fields())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Inserted {
		status = http.StatusCreated
	}
	writeJSON(w, status, upsertProfileResponse{
		Profile:  toProfileResponse(res.Profile),
		Inserted: res.Inserted,
		Token:    res.Token,
	})
}

func (h *Handler) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.svc.Identity.ListProfiles(r.Context(), callerFrom(r.Context()), r.URL.Query().Get("email"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(profiles, toProfileResponse))
}

func (h *Handler) handleIsAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.svc.Identity.IsAdmin(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "email"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adminResponse{Admin: admin})
}

// handleGrantAdmin takes the requester from ?email= and requires it to be
// the caller.
func (h *Handler) handleGrantAdmin(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Identity.GrantAdmin(r.Context(),
		callerFrom(r.Context()),
		r.URL.Query().Get("email"),
		chi.URLParam(r, "email"),
	)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

func (h *Handler) handleRevokeAdmin(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Identity.RevokeAdmin(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "email"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	report, err := h.svc.Reconcile.RunAs(r.Context(), callerFrom(r.Context()), apporder.ReconcileCommand{DryRun: req.DryRun})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
