package api

import (
	"fmt"

	"github.com/ssargent/shelfdb/pkg/catalog"
	"github.com/ssargent/shelfdb/pkg/codec"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BookPayload is the wire form of a book. The publication date is an
// ISO 8601 calendar date.
type BookPayload struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	CatalogNumber   string `json:"catalog_number"`
	PublicationDate string `json:"publication_date"`
	Quantity        int    `json:"quantity"`
}

// PageResponse is one page of the book listing
type PageResponse struct {
	Books      []BookPayload `json:"books"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalItems int           `json:"total_items"`
	TotalPages int           `json:"total_pages"`
	Sort       string        `json:"sort"`
	Search     string        `json:"search,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind      string
	Port      int
	APIKey    string
	PageSize  int     // Default listing page size
	RateLimit float64 // Write requests per second, 0 disables
	RateBurst int
}

func payloadOf(b codec.Book) BookPayload {
	return BookPayload{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		CatalogNumber:   b.CatalogNumber,
		PublicationDate: b.PublicationDate.Format(codec.DateLayout),
		Quantity:        b.Quantity,
	}
}

// Book converts the payload into a domain book.
func (p BookPayload) Book() (codec.Book, error) {
	published, err := codec.ParseDate(p.PublicationDate)
	if err != nil {
		return codec.Book{}, fmt.Errorf("invalid publication_date %q: expected YYYY-MM-DD", p.PublicationDate)
	}
	return codec.NewBook(p.ID, p.Title, p.Author, p.CatalogNumber, published, p.Quantity), nil
}

func pageResponseOf(p catalog.Page) PageResponse {
	books := make([]BookPayload, 0, len(p.Books))
	for _, b := range p.Books {
		books = append(books, payloadOf(b))
	}
	return PageResponse{
		Books:      books,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
		Sort:       p.Sort,
		Search:     p.Search,
	}
}
