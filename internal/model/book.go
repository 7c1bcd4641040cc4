package model

// NoAuthorPlaceholder is stored when the catalog lists no authors for a book.
const NoAuthorPlaceholder = "No author to display"

// SavedBook is a catalog book saved to a user's list.
type SavedBook struct {
	BookID      string   `json:"bookId"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	Link        string   `json:"link,omitempty"`
}

// Normalize fills in the author placeholder when no usable author is present.
func (b *SavedBook) Normalize() {
	var authors []string
	for _, a := range b.Authors {
		if a != "" {
			authors = append(authors, a)
		}
	}
	if len(authors) == 0 {
		authors = []string{NoAuthorPlaceholder}
	}
	b.Authors = authors
}

// SearchResponse is the shaped result of a catalog search.
type SearchResponse struct {
	Query string      `json:"query"`
	Books []SavedBook `json:"books"`
}
