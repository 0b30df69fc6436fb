package book

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bookstore/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func callerFrom(r *http.Request) Caller {
	return Caller{ID: httpx.UserIDFrom(r), Staff: httpx.IsStaffFrom(r)}
}

func bookIDFrom(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// List handles GET /books with optional price, search and ordering params.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	q := Query{
		Price:    r.URL.Query().Get("price"),
		Search:   r.URL.Query().Get("search"),
		Ordering: r.URL.Query().Get("ordering"),
	}

	if q.Price != "" {
		if details := httpx.ValidateStruct(struct {
			Price string `validate:"money"`
		}{q.Price}); len(details) > 0 {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
			return
		}
	}

	books, err := h.service.List(r.Context(), q)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, books, map[string]interface{}{"count": len(books)})
}

// Get handles GET /books/{id}.
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := bookIDFrom(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}

	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, b, nil)
}

type createBookReq struct {
	Name       string `json:"name" validate:"required,max=255"`
	Price      string `json:"price" validate:"required,money"`
	AuthorName string `json:"author_name" validate:"required,max=255"`
}

// UnmarshalJSON accepts price as either a JSON number or a string.
func (req *createBookReq) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name       string      `json:"name"`
		Price      json.Number `json:"price"`
		AuthorName string      `json:"author_name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	req.Name = raw.Name
	req.Price = raw.Price.String()
	req.AuthorName = raw.AuthorName
	return nil
}

// Create handles POST /books. The owner is always the authenticated caller;
// any owner field in the payload is dropped during decoding.
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	if caller.ID == 0 {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	var req createBookReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	b, err := h.service.Create(r.Context(), caller, NewBook{
		Name:       req.Name,
		Price:      req.Price,
		AuthorName: req.AuthorName,
	})
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessCreated(w, r, b)
}

// Update handles PUT /books/{id}: every mutable field is required.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// PartialUpdate handles PATCH /books/{id}: only supplied fields change.
func (h *HTTPHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

type updateBookReq struct {
	Name       *string `json:"name"`
	Price      *string `json:"price"`
	AuthorName *string `json:"author_name"`
}

func (req *updateBookReq) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name       *string      `json:"name"`
		Price      *json.Number `json:"price"`
		AuthorName *string      `json:"author_name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	req.Name = raw.Name
	req.AuthorName = raw.AuthorName
	if raw.Price != nil {
		price := raw.Price.String()
		req.Price = &price
	}
	return nil
}

func (req updateBookReq) validate(partial bool) []httpx.ErrorDetail {
	var details []httpx.ErrorDetail
	if !partial {
		if req.Name == nil {
			details = append(details, httpx.ErrorDetail{Field: "name", Message: "name is required"})
		}
		if req.Price == nil {
			details = append(details, httpx.ErrorDetail{Field: "price", Message: "price is required"})
		}
		if req.AuthorName == nil {
			details = append(details, httpx.ErrorDetail{Field: "author_name", Message: "author_name is required"})
		}
	}
	if req.Price != nil {
		details = append(details, httpx.ValidateStruct(struct {
			Price string `validate:"money"`
		}{*req.Price})...)
	}
	return details
}

func (h *HTTPHandler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	caller := callerFrom(r)
	if caller.ID == 0 {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	id, ok := bookIDFrom(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}

	var req updateBookReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if details := req.validate(partial); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	b, err := h.service.Update(r.Context(), caller, id, Update{
		Name:       req.Name,
		Price:      req.Price,
		AuthorName: req.AuthorName,
	})
	if err != nil {
		h.writeMutationError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, b, nil)
}

// Delete handles DELETE /books/{id}.
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	if caller.ID == 0 {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	id, ok := bookIDFrom(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}

	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		h.writeMutationError(w, r, err)
		return
	}

	httpx.JSONSuccessNoContent(w)
}

func (h *HTTPHandler) writeMutationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, r, http.StatusForbidden, "PERMISSION_DENIED", PermissionDeniedMessage, nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
