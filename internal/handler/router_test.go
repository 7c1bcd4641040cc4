package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bookshelf/bookshelf-go/internal/catalog"
	"github.com/bookshelf/bookshelf-go/internal/crypto"
	"github.com/bookshelf/bookshelf-go/internal/model"
	"github.com/bookshelf/bookshelf-go/internal/repository"
	"github.com/bookshelf/bookshelf-go/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	books []model.SavedBook
	err   error
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]model.SavedBook, error) {
	return f.books, f.err
}

type testAPI struct {
	server   *httptest.Server
	store    *repository.MemoryUserRepository
	searcher *fakeSearcher
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	tokens, err := crypto.NewTokenService("test-secret", 2*time.Hour)
	require.NoError(t, err)

	store := repository.NewMemoryUserRepository()
	searcher := &fakeSearcher{}

	router := NewRouter(Handlers{
		Auth:   NewAuthHandler(service.NewAuthService(store, tokens)),
		Books:  NewBookHandler(service.NewBookService(store)),
		Search: NewSearchHandler(searcher),
		Tokens: tokens,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testAPI{server: server, store: store, searcher: searcher}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (a *testAPI) signup(t *testing.T) model.AuthResponse {
	t.Helper()

	status, body := a.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "ana", "email": "ana@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var resp model.AuthResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func decodeUser(t *testing.T, body []byte) model.UserResponse {
	t.Helper()
	var u model.UserResponse
	require.NoError(t, json.Unmarshal(body, &u))
	return u
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(body))
}

func TestRouter_SignupMeSaveRemove(t *testing.T) {
	api := newTestAPI(t)

	status, raw := api.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "ana", "email": "ana@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.NotContains(t, strings.ToLower(string(raw)), "password")

	var signup model.AuthResponse
	require.NoError(t, json.Unmarshal(raw, &signup))
	require.NotEmpty(t, signup.Token)

	status, raw = api.do(t, http.MethodGet, "/api/v1/me", signup.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, signup.User, decodeUser(t, raw))

	status, raw = api.do(t, http.MethodPost, "/api/v1/me/books", signup.Token, map[string]any{
		"bookId": "B1", "title": "T",
	})
	require.Equal(t, http.StatusOK, status, string(raw))
	saved := decodeUser(t, raw)
	require.Len(t, saved.SavedBooks, 1)
	assert.Equal(t, "B1", saved.SavedBooks[0].BookID)
	assert.Equal(t, 1, saved.BookCount)

	status, raw = api.do(t, http.MethodDelete, "/api/v1/me/books/B1", signup.Token, nil)
	require.Equal(t, http.StatusOK, status)
	removed := decodeUser(t, raw)
	for _, b := range removed.SavedBooks {
		assert.NotEqual(t, "B1", b.BookID)
	}
}

func TestRouter_GatedRoutesRejectAnonymous(t *testing.T) {
	api := newTestAPI(t)
	signup := api.signup(t)

	expired, err := crypto.NewTokenService("test-secret", time.Nanosecond)
	require.NoError(t, err)
	staleToken, err := expired.Issue(model.Identity{UserID: signup.User.ID, Email: "ana@x.com", Username: "ana"})
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	forged := signup.Token[:len(signup.Token)-2] + "xx"

	for _, token := range []string{"", "garbage", forged, staleToken} {
		t.Run(fmt.Sprintf("token %q", token), func(t *testing.T) {
			requests := []struct {
				method, path string
				body         any
			}{
				{http.MethodGet, "/api/v1/me", nil},
				{http.MethodPost, "/api/v1/me/books", map[string]string{"bookId": "B1", "title": "T"}},
				{http.MethodDelete, "/api/v1/me/books/B1", nil},
			}

			for _, rq := range requests {
				status, body := api.do(t, rq.method, rq.path, token, rq.body)
				assert.Equal(t, http.StatusUnauthorized, status, "%s %s", rq.method, rq.path)
				assert.JSONEq(t, `{"error":"something went wrong with your credentials"}`, string(body))
			}
		})
	}

	u, err := api.store.GetByID(context.Background(), signup.User.ID)
	require.NoError(t, err)
	assert.Empty(t, u.SavedBooks)
}

func TestRouter_LoginFailuresLookIdentical(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t)

	status, body := api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ana@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	var ok model.AuthResponse
	require.NoError(t, json.Unmarshal(body, &ok))
	assert.NotEmpty(t, ok.Token)

	missingStatus, missingBody := api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "missing@x.com", "password": "anything",
	})
	wrongStatus, wrongBody := api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ana@x.com", "password": "wrongpassword",
	})

	assert.Equal(t, http.StatusUnauthorized, missingStatus)
	assert.Equal(t, missingStatus, wrongStatus)
	assert.Equal(t, string(missingBody), string(wrongBody))
}

func TestRouter_SignupErrors(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t)

	status, _ := api.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "ana2", "email": "ana@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = api.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "bo@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	req, err := http.NewRequest(http.MethodPost, api.server.URL+"/api/v1/auth/signup", strings.NewReader("{"))
	require.NoError(t, err)
	resp, err := api.server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_SaveBookValidation(t *testing.T) {
	api := newTestAPI(t)
	signup := api.signup(t)

	status, _ := api.do(t, http.MethodPost, "/api/v1/me/books", signup.Token, map[string]string{"title": "T"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(t, http.MethodPost, "/api/v1/me/books", signup.Token, map[string]string{"bookId": "B1"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_SearchIsPublic(t *testing.T) {
	api := newTestAPI(t)
	api.searcher.books = []model.SavedBook{{BookID: "B1", Title: "Dune", Authors: []string{"Frank Herbert"}}}

	for _, token := range []string{"", "garbage"} {
		status, body := api.do(t, http.MethodGet, "/api/v1/books/search?q=dune", token, nil)
		require.Equal(t, http.StatusOK, status)

		var resp model.SearchResponse
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Equal(t, "dune", resp.Query)
		assert.Equal(t, api.searcher.books, resp.Books)
	}
}

func TestRouter_SearchUpstreamFailure(t *testing.T) {
	api := newTestAPI(t)
	api.searcher.err = fmt.Errorf("%w: status 503", catalog.ErrUpstreamUnavailable)

	status, _ := api.do(t, http.MethodGet, "/api/v1/books/search?q=dune", "", nil)
	assert.Equal(t, http.StatusBadGateway, status)
}
