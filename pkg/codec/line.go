package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// Delimiter separates fields within a line.
	Delimiter = "|"

	// FieldCount is the number of fields every line must carry.
	FieldCount = 6
)

// ErrMalformedLine is matched by every DecodeError.
var ErrMalformedLine = errors.New("malformed line")

// Reason classifies why a line could not be decoded.
type Reason int

const (
	ReasonFieldCount Reason = iota + 1
	ReasonMalformedDate
	ReasonMalformedQuantity
)

func (r Reason) String() string {
	switch r {
	case ReasonFieldCount:
		return "field count"
	case ReasonMalformedDate:
		return "malformed date"
	case ReasonMalformedQuantity:
		return "malformed quantity"
	default:
		return "unknown"
	}
}

// DecodeError describes a line that could not be turned into a Book.
type DecodeError struct {
	Reason Reason
	Line   string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %q: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %q: %s", e.Line, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is makes every DecodeError match ErrMalformedLine.
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformedLine
}

// LineCodec handles conversion between books and data file lines
type LineCodec struct{}

// NewLineCodec creates a new line codec instance
func NewLineCodec() *LineCodec {
	return &LineCodec{}
}

// Encode renders a book as a single line without the trailing newline.
// Format: id|title|author|catalogNumber|yyyy-mm-dd|quantity
func (c *LineCodec) Encode(b Book) string {
	return strings.Join([]string{
		b.ID,
		b.Title,
		b.Author,
		b.CatalogNumber,
		b.PublicationDate.Format(DateLayout),
		strconv.Itoa(b.Quantity),
	}, Delimiter)
}

// Decode parses a single line (without its newline) into a Book.
func (c *LineCodec) Decode(line string) (Book, error) {
	fields := strings.Split(line, Delimiter)
	if len(fields) != FieldCount {
		return Book{}, &DecodeError{
			Reason: ReasonFieldCount,
			Line:   line,
			Err:    fmt.Errorf("got %d fields, want %d", len(fields), FieldCount),
		}
	}

	published, err := ParseDate(fields[4])
	if err != nil {
		return Book{}, &DecodeError{Reason: ReasonMalformedDate, Line: line, Err: err}
	}

	quantity, err := strconv.Atoi(fields[5])
	if err != nil {
		return Book{}, &DecodeError{Reason: ReasonMalformedQuantity, Line: line, Err: err}
	}
	if quantity < 0 {
		return Book{}, &DecodeError{
			Reason: ReasonMalformedQuantity,
			Line:   line,
			Err:    fmt.Errorf("negative quantity %d", quantity),
		}
	}

	return Book{
		ID:              fields[0],
		Title:           fields[1],
		Author:          fields[2],
		CatalogNumber:   fields[3],
		PublicationDate: published,
		Quantity:        quantity,
	}, nil
}

// CheckFields returns the name of the first text field that would break the
// line format, or "" when the book can be encoded safely.
func CheckFields(b Book) string {
	fields := []struct {
		name  string
		value string
	}{
		{"id", b.ID},
		{"title", b.Title},
		{"author", b.Author},
		{"catalogNumber", b.CatalogNumber},
	}
	for _, f := range fields {
		if strings.ContainsAny(f.value, Delimiter+"\r\n") {
			return f.name
		}
	}
	return ""
}
