// Package codec provides book record serialization and deserialization for ShelfDB.
//
// The codec package implements the flat text line format used by the book
// store's data file. Every line holds exactly one book.
//
// # Line Format
//
// Lines are UTF-8 text with six fields joined by a single '|':
//
//	id|title|author|catalogNumber|publicationDate|quantity
//
// Fields:
//   - id: catalog identifier, e.g. LIB-001
//   - title, author: free text
//   - catalogNumber: 13-digit catalog code, plain or hyphenated (978-0-44-101359-3)
//   - publicationDate: ISO 8601 calendar date (2006-01-02)
//   - quantity: non-negative decimal integer
//
// There is no header and no trailer. The delimiter is reserved and is never
// escaped, so a field containing '|' or a line break can not be stored; use
// CheckFields before encoding anything that came from a user.
//
// # Usage
//
//	lc := codec.NewLineCodec()
//
//	line := lc.Encode(book)
//
//	book, err := lc.Decode(line)
//	if err != nil {
//	    var de *codec.DecodeError
//	    if errors.As(err, &de) && de.Reason == codec.ReasonFieldCount {
//	        // structurally malformed, skip quietly
//	    }
//	}
//
// # Error Handling
//
// Decode reports every failure as a *DecodeError carrying a Reason:
//   - ReasonFieldCount: the line did not split into exactly six fields
//   - ReasonMalformedDate: the date segment is not an ISO 8601 date
//   - ReasonMalformedQuantity: the quantity segment is not a non-negative integer
//
// All of them match ErrMalformedLine with errors.Is.
//
// # Thread Safety
//
// LineCodec instances are stateless and safe for concurrent use. Book is a
// plain value type; copies share nothing.
package codec
