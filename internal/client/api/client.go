// Package api is the HTTP client for the Bookshelf server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bookshelf/bookshelf-go/internal/model"
)

var (
	// ErrUnauthenticated is returned for any 401 answer.
	ErrUnauthenticated = errors.New("something went wrong with your credentials")
	// ErrUnavailable is returned when the server or its catalog cannot be reached.
	ErrUnavailable = errors.New("service unavailable")
)

// APIError is any other non-2xx answer.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// TokenSource supplies the bearer token for a request.
type TokenSource interface {
	Current(ctx context.Context) (string, bool, error)
}

// Client calls the Bookshelf HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a Client. tokens may be nil for anonymous use.
func NewClient(baseURL string, tokens TokenSource, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
	}
}

// Signup creates an account.
func (c *Client) Signup(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/signup", req, &resp)
	return resp, err
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", req, &resp)
	return resp, err
}

// Me returns the caller's own profile.
func (c *Client) Me(ctx context.Context) (model.UserResponse, error) {
	var resp model.UserResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &resp)
	return resp, err
}

// SaveBook appends book to the caller's saved list.
func (c *Client) SaveBook(ctx context.Context, book model.SavedBook) (model.UserResponse, error) {
	var resp model.UserResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/me/books", book, &resp)
	return resp, err
}

// RemoveBook removes bookID from the caller's saved list.
func (c *Client) RemoveBook(ctx context.Context, bookID string) (model.UserResponse, error) {
	var resp model.UserResponse
	err := c.do(ctx, http.MethodDelete, "/api/v1/me/books/"+url.PathEscape(bookID), nil, &resp)
	return resp, err
}

// Search queries the book catalog through the server.
func (c *Client) Search(ctx context.Context, query string) ([]model.SavedBook, error) {
	var resp model.SearchResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/books/search?q="+url.QueryEscape(query), nil, &resp)
	return resp.Books, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, ok, err := c.tokens.Current(ctx)
		if err != nil {
			return fmt.Errorf("failed to read session: %w", err)
		}
		if ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthenticated
	case resp.StatusCode == http.StatusBadGateway || resp.StatusCode == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrUnavailable, errorMessage(data))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}
