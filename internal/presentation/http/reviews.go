package httppresentation

import (
	"net/http"

	appreview "github.com/Zhima-Mochi/minishop-marketplace/internal/application/review"
)

func (h *Handler) handleAddReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	rv, err := h.svc.Reviews.Add(r.Context(), appreview.AddReviewInput{
		Caller:  callerFrom(r.Context()),
		Claimed: r.URL.Query().Get("email"),
		Name:    req.Name,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReviewResponse(rv))
}

func (h *Handler) handleListHomeReviews(w http.ResponseWriter, r *http.Request) {
	h.listReviews(w, r, appreview.HomeLimit)
}

func (h *Handler) handleListAllReviews(w http.ResponseWriter, r *http.Request) {
	h.listReviews(w, r, 0)
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request, limit int) {
	reviews, err := h.svc.Reviews.List(r.Context(), limit)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(reviews, toReviewResponse))
}
