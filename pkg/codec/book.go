package codec

import (
	"fmt"
	"time"
)

// DateLayout is the on-disk form of a publication date.
const DateLayout = time.DateOnly

// Book is a single catalog entry.
type Book struct {
	ID              string    `json:"id"`               // LIB-nnn, immutable once stored
	Title           string    `json:"title"`            // Title of the book
	Author          string    `json:"author"`           // Author name
	CatalogNumber   string    `json:"catalog_number"`   // 13-digit catalog code in plain or hyphenated notation
	PublicationDate time.Time `json:"publication_date"` // Calendar date, time of day is ignored
	Quantity        int       `json:"quantity"`         // Copies on hand
}

// NewBook creates a book with the publication date normalized to midnight UTC.
func NewBook(id, title, author, catalogNumber string, published time.Time, quantity int) Book {
	return Book{
		ID:              id,
		Title:           title,
		Author:          author,
		CatalogNumber:   catalogNumber,
		PublicationDate: DateOf(published),
		Quantity:        quantity,
	}
}

// DateOf drops the clock and zone of t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO 8601 calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Equal reports whether two books carry the same field values.
func (b Book) Equal(other Book) bool {
	return b.ID == other.ID &&
		b.Title == other.Title &&
		b.Author == other.Author &&
		b.CatalogNumber == other.CatalogNumber &&
		DateOf(b.PublicationDate).Equal(DateOf(other.PublicationDate)) &&
		b.Quantity == other.Quantity
}

func (b Book) String() string {
	return fmt.Sprintf("%s %q by %s (%s, %s) x%d",
		b.ID, b.Title, b.Author, b.CatalogNumber, b.PublicationDate.Format(DateLayout), b.Quantity)
}
