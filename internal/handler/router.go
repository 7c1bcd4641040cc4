package handler

import (
	"net/http"

	"github.com/bookshelf/bookshelf-go/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth   *AuthHandler
	Books  *BookHandler
	Search *SearchHandler
	Tokens middleware.TokenVerifier
}

// NewRouter builds the HTTP API. Identity is resolved on every route; the
// saved-book handlers reject anonymous callers themselves.
func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.ResolveIdentity(h.Tokens))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", h.Auth.HandleSignup)
		r.Post("/auth/login", h.Auth.HandleLogin)

		r.Get("/books/search", h.Search.HandleSearch)

		r.Get("/me", h.Books.HandleMe)
		r.Post("/me/books", h.Books.HandleSaveBook)
		r.Delete("/me/books/{book_id}", h.Books.HandleRemoveBook)
	})

	return r
}
