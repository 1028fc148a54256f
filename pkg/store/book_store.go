package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/ssargent/shelfdb/pkg/codec"
	"github.com/ssargent/shelfdb/pkg/validate"
)

// BookStore is the in-memory book collection backed by a flat data file.
//
// The collection is copy-on-write: a published slice is never modified at
// an index below its length, so readers take the current slice under a read
// lock and iterate it without holding anything. Every mutation rewrites the
// whole data file before returning.
type BookStore struct {
	config BookStoreConfig
	logger *slog.Logger
	writer *FileWriter

	mutex  sync.RWMutex
	books  []codec.Book
	closed bool

	loaded     chan struct{}
	loadResult LoadResult

	persists        int64
	persistFailures int64
	lastPersistErr  error
}

// Open creates the store and starts loading the data file in the
// background. It does not wait for the load; use WaitLoaded or Loaded to
// observe its completion.
func Open(config BookStoreConfig) (*BookStore, error) {
	return open(config, nil)
}

// open lets tests hold the loader before it touches the file.
func open(config BookStoreConfig, beforeLoad func()) (*BookStore, error) {
	if config.FilePath == "" {
		return nil, errors.New("data file path is required")
	}

	writer, err := NewFileWriter(FileWriterConfig{
		FilePath: config.FilePath,
		NoSync:   config.NoSync,
	})
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &BookStore{
		config: config,
		logger: logger.With("path", config.FilePath),
		writer: writer,
		books:  []codec.Book{},
		loaded: make(chan struct{}),
	}

	go s.load(beforeLoad)

	return s, nil
}

// load reads the data file once, appending every decodable line. Rows are
// trusted structurally: identifier and catalog formats are not checked.
func (s *BookStore) load(beforeLoad func()) {
	defer close(s.loaded)

	if beforeLoad != nil {
		beforeLoad()
	}

	start := time.Now()
	var result LoadResult
	defer func() {
		result.Duration = time.Since(start)
		s.mutex.Lock()
		s.loadResult = result
		s.mutex.Unlock()
		s.logger.Info("book store loaded",
			"lines", result.Lines,
			"loaded", result.Loaded,
			"skipped", result.Skipped,
			"duration", result.Duration)
	}()

	reader, err := NewFileReader(FileReaderConfig{FilePath: s.config.FilePath})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("data file does not exist yet, starting empty")
			result.Missing = true
			return
		}
		s.logger.Error("failed to open data file", "error", err)
		result.Err = err
		return
	}
	defer reader.Close()

	for book, err := range reader.Books() {
		if err != nil {
			var de *codec.DecodeError
			if !errors.As(err, &de) {
				s.logger.Error("failed to read data file", "line", reader.Line(), "error", err)
				result.Err = err
				return
			}
			result.Lines++
			result.Skipped++
			if de.Reason == codec.ReasonFieldCount {
				s.logger.Debug("skipping malformed line", "line", reader.Line(), "error", err)
			} else {
				s.logger.Warn("skipping corrupted record", "line", reader.Line(), "reason", de.Reason.String(), "record", de.Line)
			}
			continue
		}

		result.Lines++
		result.Loaded++
		s.mutex.Lock()
		s.books = append(s.books, book)
		s.mutex.Unlock()
	}
}

// Loaded is closed once the background load has finished.
func (s *BookStore) Loaded() <-chan struct{} {
	return s.loaded
}

// WaitLoaded blocks until the background load finishes or ctx is done.
func (s *BookStore) WaitLoaded(ctx context.Context) (LoadResult, error) {
	select {
	case <-s.loaded:
		s.mutex.RLock()
		defer s.mutex.RUnlock()
		return s.loadResult, nil
	case <-ctx.Done():
		return LoadResult{}, ctx.Err()
	}
}

func (s *BookStore) snapshot() []codec.Book {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.books
}

// FindAll iterates over the books in insertion order. The sequence reflects
// the collection as it was when iteration started.
func (s *BookStore) FindAll() iter.Seq[codec.Book] {
	return func(yield func(codec.Book) bool) {
		for _, b := range s.snapshot() {
			if !yield(b) {
				return
			}
		}
	}
}

// List returns a copy of every book in insertion order.
func (s *BookStore) List() []codec.Book {
	return slices.Clone(s.snapshot())
}

// Count returns the number of books currently held.
func (s *BookStore) Count() int {
	return len(s.snapshot())
}

// FindByID returns the book with the given id.
func (s *BookStore) FindByID(id string) (codec.Book, bool) {
	books := s.snapshot()
	if i := indexOf(books, id); i >= 0 {
		return books[i], true
	}
	return codec.Book{}, false
}

func indexOf(books []codec.Book, id string) int {
	return slices.IndexFunc(books, func(b codec.Book) bool {
		return b.ID == id
	})
}

// checkEncodable rejects values that could be written but never read back.
func checkEncodable(book codec.Book) error {
	if field := codec.CheckFields(book); field != "" {
		return &ValidationError{Field: field, Reason: "must not contain '|' or line breaks"}
	}
	if book.Quantity < 0 {
		return &ValidationError{Field: "quantity", Value: strconv.Itoa(book.Quantity), Reason: "must not be negative"}
	}
	if y := book.PublicationDate.Year(); y < 0 || y > 9999 {
		return &ValidationError{Field: "publicationDate", Value: strconv.Itoa(y), Reason: "year must be between 0 and 9999"}
	}
	return nil
}

// Add validates and appends a new book, then rewrites the data file.
func (s *BookStore) Add(book codec.Book) error {
	if !validate.ID(book.ID) {
		return &ValidationError{Field: "id", Value: book.ID, Reason: "want LIB- followed by 3 digits"}
	}
	if !validate.CatalogNumber(book.CatalogNumber) {
		return &ValidationError{Field: "catalogNumber", Value: book.CatalogNumber, Reason: "want 13 digits or 3-1-2-6-1 hyphenated groups"}
	}
	if err := checkEncodable(book); err != nil {
		return err
	}
	book.PublicationDate = codec.DateOf(book.PublicationDate)

	<-s.loaded

	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return ErrStoreClosed
	}
	if indexOf(s.books, book.ID) >= 0 {
		s.mutex.Unlock()
		return &DuplicateError{ID: book.ID}
	}
	s.books = append(s.books, book)
	s.mutex.Unlock()

	s.persistLogged()
	return nil
}

// Update overwrites every field but the id of an existing book, then
// rewrites the data file. Identifier and catalog formats are not re-checked.
func (s *BookStore) Update(book codec.Book) error {
	if err := checkEncodable(book); err != nil {
		return err
	}

	<-s.loaded

	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return ErrStoreClosed
	}
	i := indexOf(s.books, book.ID)
	if i < 0 {
		s.mutex.Unlock()
		return &NotFoundError{ID: book.ID}
	}
	next := slices.Clone(s.books)
	existing := &next[i]
	existing.Title = book.Title
	existing.Author = book.Author
	existing.CatalogNumber = book.CatalogNumber
	existing.PublicationDate = codec.DateOf(book.PublicationDate)
	existing.Quantity = book.Quantity
	s.books = next
	s.mutex.Unlock()

	s.persistLogged()
	return nil
}

// Save adds the book when its id is new and updates it otherwise.
func (s *BookStore) Save(book codec.Book) error {
	<-s.loaded

	if _, ok := s.FindByID(book.ID); ok {
		return s.Update(book)
	}
	return s.Add(book)
}

// DeleteByID removes the book with the given id, if any, then rewrites the
// data file. Deleting an unknown id is not an error.
func (s *BookStore) DeleteByID(id string) error {
	<-s.loaded

	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return ErrStoreClosed
	}
	if indexOf(s.books, id) >= 0 {
		s.books = slices.DeleteFunc(slices.Clone(s.books), func(b codec.Book) bool {
			return b.ID == id
		})
	}
	s.mutex.Unlock()

	s.persistLogged()
	return nil
}

// Persist rewrites the data file from the current collection.
func (s *BookStore) Persist() error {
	err := s.writer.Rewrite(s.snapshot)

	s.mutex.Lock()
	s.persists++
	if err != nil {
		s.persistFailures++
		s.lastPersistErr = err
	}
	s.mutex.Unlock()

	if err != nil {
		return fmt.Errorf("failed to persist books: %w", err)
	}
	return nil
}

// persistLogged is used on the write path, where I/O failures are logged
// and counted but not returned to the caller.
func (s *BookStore) persistLogged() {
	if err := s.Persist(); err != nil {
		s.logger.Error("failed to persist books", "error", err)
	}
}

// Stats returns store statistics
func (s *BookStore) Stats() Stats {
	loaded := false
	select {
	case <-s.loaded:
		loaded = true
	default:
	}

	// The writer lock is taken before ours during Persist; never nest the other way.
	size := s.writer.Size()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stats := Stats{
		Books:           len(s.books),
		DataSize:        size,
		Persists:        s.persists,
		PersistFailures: s.persistFailures,
		Loaded:          loaded,
	}
	if loaded {
		stats.Load = s.loadResult
	}
	if s.lastPersistErr != nil {
		stats.LastPersistError = s.lastPersistErr.Error()
	}
	return stats
}

// Path returns the data file path
func (s *BookStore) Path() string {
	return s.writer.Path()
}

// Close waits for the background load and rejects further writes.
func (s *BookStore) Close() error {
	<-s.loaded

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closed = true
	return nil
}
