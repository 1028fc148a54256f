package store

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// FileWriterConfig holds configuration for the file writer
type FileWriterConfig struct {
	FilePath   string // Path to the data file
	BufferSize int    // Write buffer size
	NoSync     bool   // Skip fsync before rename (tests only)
}

// FileReaderConfig holds configuration for the file reader
type FileReaderConfig struct {
	FilePath string // Path to the data file
}

// BookStoreConfig holds configuration for the book store
type BookStoreConfig struct {
	FilePath string       // Data file, created on first write
	Logger   *slog.Logger // Defaults to slog.Default()
	NoSync   bool         // Skip fsync on persist
}

// LoadResult describes the outcome of the initial background load.
type LoadResult struct {
	Lines    int           `json:"lines"`
	Loaded   int           `json:"loaded"`
	Skipped  int           `json:"skipped"`
	Missing  bool          `json:"missing"` // No data file existed yet
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Stats holds statistics about the store
type Stats struct {
	Books            int        `json:"books"`
	DataSize         int64      `json:"data_size"`
	Persists         int64      `json:"persists"`
	PersistFailures  int64      `json:"persist_failures"`
	LastPersistError string     `json:"last_persist_error,omitempty"`
	Loaded           bool       `json:"loaded"`
	Load             LoadResult `json:"load"`
}

// Errors
var (
	ErrInvalidBook  = errors.New("invalid book")
	ErrDuplicateID  = errors.New("book id already exists")
	ErrBookNotFound = errors.New("book not found")
	ErrStoreClosed  = errors.New("store is closed")
)

// ValidationError reports a field that failed a format rule.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidBook
}

// DuplicateError reports an add whose id is already taken.
type DuplicateError struct {
	ID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("book %s already exists", e.ID)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateID
}

// NotFoundError reports an update of an id the store does not hold.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("book %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrBookNotFound
}
