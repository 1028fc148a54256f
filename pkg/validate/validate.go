// Package validate holds the format rules for book identifiers and catalog numbers.
package validate

import "regexp"

var (
	idPattern      = regexp.MustCompile(`^LIB-[0-9]{3}$`)
	catalogPattern = regexp.MustCompile(`^(?:[0-9]{13}|[0-9]{3}-[0-9]-[0-9]{2}-[0-9]{6}-[0-9])$`)
)

// ID reports whether id is "LIB-" followed by exactly three digits.
func ID(id string) bool {
	return idPattern.MatchString(id)
}

// CatalogNumber reports whether code is a 13-digit catalog code, either as
// 13 consecutive digits or hyphenated in 3-1-2-6-1 groups.
func CatalogNumber(code string) bool {
	return catalogPattern.MatchString(code)
}
