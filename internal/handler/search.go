package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bookshelf/bookshelf-go/internal/catalog"
	"github.com/bookshelf/bookshelf-go/internal/model"
)

// BookSearcher looks up books in an external catalog.
type BookSearcher interface {
	Search(ctx context.Context, query string) ([]model.SavedBook, error)
}

// SearchHandler handles public catalog searches.
type SearchHandler struct {
	catalog BookSearcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(c BookSearcher) *SearchHandler {
	return &SearchHandler{catalog: c}
}

// HandleSearch handles GET /api/v1/books/search?q= requests. No identity is required.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if len(query) > 256 {
		writeJSON(w, http.StatusBadRequest, errorResponse("query too long"))
		return
	}

	books, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		slog.Warn("catalog search failed", "query", query, "error", err)
		if errors.Is(err, catalog.ErrUpstreamUnavailable) {
			writeJSON(w, http.StatusBadGateway, errorResponse("book search is unavailable"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, model.SearchResponse{Query: query, Books: books})
}
