// Package catalog searches the Google Books catalog and shapes volumes into saved-book data.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bookshelf/bookshelf-go/internal/model"
	"golang.org/x/time/rate"
)

// ErrUpstreamUnavailable is returned when the catalog cannot be reached or answers with an error.
var ErrUpstreamUnavailable = errors.New("book catalog unavailable")

// Client queries the catalog's volumes endpoint. Outbound requests are paced
// by a token bucket shared by all callers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a catalog client. rps bounds outbound requests per second.
func NewClient(baseURL string, rps float64, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

type volumesResponse struct {
	Items []volume `json:"items"`
}

type volume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title       string   `json:"title"`
		Authors     []string `json:"authors"`
		Description string   `json:"description"`
		InfoLink    string   `json:"infoLink"`
		ImageLinks  struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

// Search returns the books matching query. An empty query returns no books
// without calling the catalog.
func (c *Client) Search(ctx context.Context, query string) ([]model.SavedBook, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.SavedBook{}, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	endpoint := c.baseURL + "/volumes?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var body volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstreamUnavailable, err)
	}

	return shapeVolumes(body.Items), nil
}

func shapeVolumes(items []volume) []model.SavedBook {
	books := make([]model.SavedBook, 0, len(items))
	for _, v := range items {
		b := model.SavedBook{
			BookID:      v.ID,
			Title:       v.VolumeInfo.Title,
			Authors:     v.VolumeInfo.Authors,
			Description: v.VolumeInfo.Description,
			Image:       v.VolumeInfo.ImageLinks.Thumbnail,
			Link:        v.VolumeInfo.InfoLink,
		}
		b.Normalize()
		books = append(books, b)
	}
	return books
}
