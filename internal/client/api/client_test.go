package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookshelf/bookshelf-go/internal/client/mirror"
	"github.com/bookshelf/bookshelf-go/internal/client/session"
	"github.com/bookshelf/bookshelf-go/internal/client/storage"
	"github.com/bookshelf/bookshelf-go/internal/crypto"
	"github.com/bookshelf/bookshelf-go/internal/handler"
	"github.com/bookshelf/bookshelf-go/internal/model"
	"github.com/bookshelf/bookshelf-go/internal/repository"
	"github.com/bookshelf/bookshelf-go/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, query string) ([]model.SavedBook, error) {
	return []model.SavedBook{{BookID: "B1", Title: "T", Authors: []string{model.NoAuthorPlaceholder}}}, nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	tokens, err := crypto.NewTokenService("test-secret", 2*time.Hour)
	require.NoError(t, err)
	store := repository.NewMemoryUserRepository()

	srv := httptest.NewServer(handler.NewRouter(handler.Handlers{
		Auth:   handler.NewAuthHandler(service.NewAuthService(store, tokens)),
		Books:  handler.NewBookHandler(service.NewBookService(store)),
		Search: handler.NewSearchHandler(stubSearcher{}),
		Tokens: tokens,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newLocalState(t *testing.T) (*session.Cache, storage.Store) {
	t.Helper()
	store, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return session.New(store), store
}

func TestNewClient(t *testing.T) {
	t.Run("With Empty BaseURL", func(t *testing.T) {
		c := NewClient("", nil, nil)
		assert.Equal(t, "http://localhost:8080", c.baseURL)
		assert.Equal(t, http.DefaultClient, c.httpClient)
	})

	t.Run("Trims Trailing Slash", func(t *testing.T) {
		c := NewClient("http://example.com/", nil, nil)
		assert.Equal(t, "http://example.com", c.baseURL)
	})
}

func TestClient_SessionScenario(t *testing.T) {
	srv := newServer(t)
	cache, store := newLocalState(t)
	c := NewClient(srv.URL, cache, srv.Client())
	ctx := context.Background()

	signup, err := c.Signup(ctx, model.CreateUserRequest{Username: "ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, cache.Store(ctx, signup.Token))

	valid, err := cache.IsValid(ctx)
	require.NoError(t, err)
	assert.True(t, valid)

	id, ok, err := cache.Identity(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ana", id.Username)
	saved := mirror.New(store, id.UserID)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, signup.User, me)

	books, err := c.Search(ctx, "anything")
	require.NoError(t, err)
	require.Len(t, books, 1)

	err = saved.Run(ctx, func(s *mirror.Session) error {
		user, err := c.SaveBook(ctx, books[0])
		if err != nil {
			return err
		}
		if err := s.Record(books[0].BookID); err != nil {
			return err
		}

		assert.Len(t, user.SavedBooks, 1)
		assert.Equal(t, "B1", user.SavedBooks[0].BookID)
		return nil
	})
	require.NoError(t, err)

	ids, err := saved.Snapshot(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "B1")

	user, err := c.RemoveBook(ctx, "B1")
	require.NoError(t, err)
	assert.Empty(t, user.SavedBooks)

	ids, err = saved.Snapshot(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "B1", "removal does not prune the local mirror")

	require.NoError(t, cache.Clear(ctx))
	_, err = c.Me(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestClient_LoginFailure(t *testing.T) {
	srv := newServer(t)
	c := NewClient(srv.URL, nil, srv.Client())

	_, err := c.Login(context.Background(), model.LoginRequest{Email: "missing@x.com", Password: "anything"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "bad gateway",
			status: http.StatusBadGateway,
			body:   `{"error":"book search is unavailable"}`,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnavailable) },
		},
		{
			name:   "conflict",
			status: http.StatusConflict,
			body:   `{"error":"email or username already taken"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
				assert.Equal(t, "email or username already taken", apiErr.Message)
			},
		},
		{
			name:   "plain text error",
			status: http.StatusInternalServerError,
			body:   "boom\n",
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, "boom", apiErr.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, nil, server.Client()).Search(context.Background(), "dune")
			tt.check(t, err)
		})
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(model.UserResponse{ID: "u-1"})
	}))
	defer server.Close()

	cache, _ := newLocalState(t)
	ctx := context.Background()
	require.NoError(t, cache.Store(ctx, "tok"))

	_, err := NewClient(server.URL, cache, server.Client()).Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", got)
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, nil, nil).Me(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
