package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"tunemart/core/review"
)

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReviewHandler adds a customer review to a listing.
func (h *APIHandler) CreateReviewHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	musicID, err := pathID(mux.Vars(r), "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	rev, err := h.reviews.Create(r.Context(), musicID, review.Input{Rating: req.Rating, Comment: req.Comment}, claims.Username)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Review created successfully", rev)
}

// UpdateReviewHandler edits the caller's own review.
func (h *APIHandler) UpdateReviewHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	rev, err := h.reviews.Update(r.Context(), id, review.Input{Rating: req.Rating, Comment: req.Comment}, claims.Username)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Review updated successfully", rev)
}

// DeleteReviewHandler removes the caller's own review.
func (h *APIHandler) DeleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.reviews.Delete(r.Context(), id, claims.Username); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Review deleted successfully", nil)
}

// ListReviewsHandler returns one page of a listing's reviews.
func (h *APIHandler) ListReviewsHandler(w http.ResponseWriter, r *http.Request) {
	musicID, err := pathID(mux.Vars(r), "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	page, size, err := parsePaging(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	result, err := h.reviews.ListByMusic(r.Context(), musicID, page, size)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "OK", result)
}
