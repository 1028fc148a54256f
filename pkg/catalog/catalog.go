// Package catalog holds the listing helpers the presentation layer applies
// on top of the book store: search, sort and pagination.
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ssargent/shelfdb/pkg/codec"
)

// DefaultPageSize is the page size used when none is requested.
const DefaultPageSize = 5

// Sort keys accepted by Sort.
const (
	SortByID       = "id"
	SortByTitle    = "title"
	SortByAuthor   = "author"
	SortByCatalog  = "catalog"
	SortByDate     = "date"
	SortByQuantity = "quantity"
)

// Query describes one listing request.
type Query struct {
	Search   string
	Sort     string
	Page     int
	PageSize int
}

// Page is one page of a listing.
type Page struct {
	Books      []codec.Book `json:"books"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalItems int          `json:"total_items"`
	TotalPages int          `json:"total_pages"`
	Sort       string       `json:"sort"`
	Search     string       `json:"search,omitempty"`
}

// Search returns the books whose id, title, author or catalog number
// contains term, ignoring case. An empty term matches everything.
func Search(books []codec.Book, term string) []codec.Book {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return slices.Clone(books)
	}

	var matches []codec.Book
	for _, b := range books {
		if containsFold(b.ID, term) ||
			containsFold(b.Title, term) ||
			containsFold(b.Author, term) ||
			containsFold(b.CatalogNumber, term) {
			matches = append(matches, b)
		}
	}
	return matches
}

func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}

// NormalizeSort maps unknown or empty sort keys to SortByID.
func NormalizeSort(key string) string {
	switch key = strings.ToLower(strings.TrimSpace(key)); key {
	case SortByTitle, SortByAuthor, SortByCatalog, SortByDate, SortByQuantity:
		return key
	default:
		return SortByID
	}
}

// Sort returns a sorted copy of books. Ties keep their original order and
// fall back to the id.
func Sort(books []codec.Book, key string) []codec.Book {
	sorted := slices.Clone(books)

	var compare func(a, b codec.Book) int
	switch NormalizeSort(key) {
	case SortByTitle:
		compare = func(a, b codec.Book) int { return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) }
	case SortByAuthor:
		compare = func(a, b codec.Book) int { return cmp.Compare(strings.ToLower(a.Author), strings.ToLower(b.Author)) }
	case SortByCatalog:
		compare = func(a, b codec.Book) int { return cmp.Compare(digits(a.CatalogNumber), digits(b.CatalogNumber)) }
	case SortByDate:
		compare = func(a, b codec.Book) int { return a.PublicationDate.Compare(b.PublicationDate) }
	case SortByQuantity:
		compare = func(a, b codec.Book) int { return cmp.Compare(a.Quantity, b.Quantity) }
	default:
		compare = func(codec.Book, codec.Book) int { return 0 }
	}

	slices.SortStableFunc(sorted, func(a, b codec.Book) int {
		if c := compare(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return sorted
}

// digits strips the hyphens so both catalog notations sort together.
func digits(code string) string {
	return strings.ReplaceAll(code, "-", "")
}

// Paginate slices books into 1-based pages. Pages below 1 clamp to the first
// page and pages past the end clamp to the last one.
func Paginate(books []codec.Book, page, size int) ([]codec.Book, int, int) {
	if size <= 0 {
		size = DefaultPageSize
	}

	totalPages := len(books) / size
	if len(books)%size != 0 {
		totalPages++
	}
	if totalPages == 0 {
		return []codec.Book{}, 1, 0
	}

	page = max(1, min(page, totalPages))
	start := (page - 1) * size
	end := min(start+size, len(books))
	return slices.Clone(books[start:end]), page, totalPages
}

// List applies search, sort and pagination in that order.
func List(books []codec.Book, q Query) Page {
	matched := Search(books, q.Search)
	sortKey := NormalizeSort(q.Sort)
	sorted := Sort(matched, sortKey)

	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	items, page, totalPages := Paginate(sorted, q.Page, size)

	return Page{
		Books:      items,
		Page:       page,
		PageSize:   size,
		TotalItems: len(matched),
		TotalPages: totalPages,
		Sort:       sortKey,
		Search:     strings.TrimSpace(q.Search),
	}
}
