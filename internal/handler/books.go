package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bookshelf/bookshelf-go/internal/middleware"
	"github.com/bookshelf/bookshelf-go/internal/model"
	"github.com/bookshelf/bookshelf-go/internal/service"
	"github.com/go-chi/chi/v5"
)

// BookHandler handles HTTP requests for the caller's profile and saved books.
type BookHandler struct {
	service *service.BookService
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(svc *service.BookService) *BookHandler {
	return &BookHandler{service: svc}
}

// HandleMe handles GET /api/v1/me requests.
func (h *BookHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetOwnProfile(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		writeBookError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleSaveBook handles POST /api/v1/me/books requests.
func (h *BookHandler) HandleSaveBook(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal.IsAnonymous() {
		writeJSON(w, http.StatusUnauthorized, errorResponse(msgBadCredentials))
		return
	}

	var book model.SavedBook
	if !decodeJSON(w, r, 1<<20, &book) {
		return
	}

	resp, err := h.service.AddBook(r.Context(), principal, book)
	if err != nil {
		writeBookError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleRemoveBook handles DELETE /api/v1/me/books/{book_id} requests.
func (h *BookHandler) HandleRemoveBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "book_id")

	resp, err := h.service.RemoveBook(r.Context(), middleware.PrincipalFromContext(r.Context()), bookID)
	if err != nil {
		writeBookError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeBookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse(msgBadCredentials))
	case errors.Is(err, service.ErrBookIDRequired), errors.Is(err, service.ErrTitleRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	default:
		slog.Error("saved books operation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}
