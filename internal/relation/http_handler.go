package relation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bookstore/internal/book"
	"bookstore/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type patchRelationReq struct {
	Like        *bool   `json:"like"`
	InBookmarks *bool   `json:"in_bookmarks"`
	Rate        *int    `json:"rate" validate:"omitempty,min=1,max=5"`
	Comments    *string `json:"comments" validate:"omitempty,max=10000"`
}

// Get handles GET /relations/{bookID}: the caller's relation to the book.
// Reads never create the relation.
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == 0 {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	bookID, err := strconv.ParseInt(r.PathValue("bookID"), 10, 64)
	if err != nil || bookID <= 0 {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Relation not found", nil)
		return
	}

	rel, err := h.service.Get(r.Context(), userID, bookID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Relation not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, rel, nil)
}

// Patch handles PATCH /relations/{bookID}: merge the caller's relation to
// the book, creating it implicitly when absent.
func (h *HTTPHandler) Patch(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == 0 {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	bookID, err := strconv.ParseInt(r.PathValue("bookID"), 10, 64)
	if err != nil || bookID <= 0 {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}

	var req patchRelationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	rel, err := h.service.Apply(r.Context(), userID, bookID, Patch{
		Like:        req.Like,
		InBookmarks: req.InBookmarks,
		Rate:        req.Rate,
		Comments:    req.Comments,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrRateOutOfRange):
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input",
				[]httpx.ErrorDetail{{Field: "rate", Message: ErrRateOutOfRange.Error()}})
		case errors.Is(err, book.ErrNotFound):
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		default:
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	httpx.JSONSuccess(w, r, rel, nil)
}
