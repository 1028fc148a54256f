package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ssargent/shelfdb/pkg/catalog"
	"github.com/ssargent/shelfdb/pkg/store"
)

const (
	maxBodyBytes = 1 << 20
	maxPageSize  = 100
)

// Server holds the API server state
type Server struct {
	repo    BookRepository
	config  ServerConfig
	metrics *Metrics
	logger  *slog.Logger
}

// NewServer creates a new API server
func NewServer(repo BookRepository, config ServerConfig, metrics *Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		repo:    repo,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API and whether the initial load has finished
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !s.repo.Stats().Loaded {
		status = "loading"
	}
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": status})
}

// handleListBooks godoc
//
//	@Summary		List books
//	@Description	Search, sort and page through the catalog
//	@Tags			books
//	@Produce		json
//	@Param			search		query		string	false	"Case-insensitive substring over id, title, author and catalog number"
//	@Param			sort		query		string	false	"id, title, author, catalog, date or quantity"
//	@Param			page		query		int		false	"1-based page number"
//	@Param			page_size	query		int		false	"Books per page"
//	@Success		200			{object}	PageResponse
//	@Failure		400			{object}	map[string]string
//	@Router			/books [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), 1)
	if err != nil {
		sendError(w, "Invalid page parameter", http.StatusBadRequest)
		return
	}
	pageSize, err := intParam(q.Get("page_size"), s.defaultPageSize())
	if err != nil || pageSize <= 0 {
		sendError(w, "Invalid page_size parameter", http.StatusBadRequest)
		return
	}

	result := catalog.List(s.repo.List(), catalog.Query{
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		Page:     page,
		PageSize: min(pageSize, maxPageSize),
	})

	s.metrics.RecordStoreOperation("list", true, time.Since(start))
	sendSuccess(w, pageResponseOf(result))
}

// handleGetBook godoc
//
//	@Summary		Get a book
//	@Description	Retrieve a book by id
//	@Tags			books
//	@Produce		json
//	@Param			id	path		string	true	"Book id (LIB-nnn)"
//	@Success		200	{object}	BookPayload
//	@Failure		404	{object}	map[string]string
//	@Router			/books/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	book, ok := s.repo.FindByID(id)
	s.metrics.RecordStoreOperation("get", ok, time.Since(start))
	if !ok {
		sendError(w, fmt.Sprintf("Book %s not found", id), http.StatusNotFound)
		return
	}
	sendSuccess(w, payloadOf(book))
}

// handleCreateBook godoc
//
//	@Summary		Add a book
//	@Description	Validate and store a new book
//	@Tags			books
//	@Accept			json
//	@Produce		json
//	@Param			book	body		BookPayload	true	"Book"
//	@Success		201		{object}	BookPayload
//	@Failure		400		{object}	map[string]string
//	@Failure		409		{object}	map[string]string
//	@Router			/books [post]
//	@Security		ApiKeyAuth
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var payload BookPayload
	if err := decodeBody(w, r, &payload); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	book, err := payload.Book()
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.repo.Add(book)
	s.metrics.RecordStoreOperation("add", err == nil, time.Since(start))
	if err != nil {
		s.sendStoreError(w, "add", err)
		return
	}

	s.metrics.UpdateStoreStats(s.repo.Stats())
	sendSuccessStatus(w, payloadOf(book), http.StatusCreated)
}

// handleUpdateBook godoc
//
//	@Summary		Update a book
//	@Description	Replace every field except the id
//	@Tags			books
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Book id"
//	@Param			book	body		BookPayload	true	"Book"
//	@Success		200		{object}	BookPayload
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Router			/books/{id} [put]
//	@Security		ApiKeyAuth
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	var payload BookPayload
	if err := decodeBody(w, r, &payload); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if payload.ID != "" && payload.ID != id {
		sendError(w, "Body id does not match path id", http.StatusBadRequest)
		return
	}
	payload.ID = id

	book, err := payload.Book()
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.repo.Update(book)
	s.metrics.RecordStoreOperation("update", err == nil, time.Since(start))
	if err != nil {
		s.sendStoreError(w, "update", err)
		return
	}

	s.metrics.UpdateStoreStats(s.repo.Stats())
	sendSuccess(w, payloadOf(book))
}

// handleDeleteBook godoc
//
//	@Summary		Delete a book
//	@Description	Remove a book by id. Deleting an absent id succeeds and changes nothing.
//	@Tags			books
//	@Produce		json
//	@Param			id	path		string	true	"Book id"
//	@Success		200	{object}	map[string]string
//	@Router			/books/{id} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	_, present := s.repo.FindByID(id)

	err := s.repo.DeleteByID(id)
	s.metrics.RecordStoreOperation("delete", err == nil, time.Since(start))
	if err != nil {
		s.sendStoreError(w, "delete", err)
		return
	}

	s.metrics.UpdateStoreStats(s.repo.Stats())
	message := "Book deleted successfully"
	if !present {
		message = fmt.Sprintf("Book %s not present", id)
	}
	sendSuccess(w, map[string]string{"message": message})
}

// handleStats godoc
//
//	@Summary		Store statistics
//	@Description	Book count, data file size, persist counters and load outcome
//	@Tags			diagnostics
//	@Produce		json
//	@Success		200	{object}	store.Stats
//	@Router			/stats [get]
//	@Security		ApiKeyAuth
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.repo.Stats()
	s.metrics.UpdateStoreStats(stats)
	sendSuccess(w, stats)
}

func (s *Server) defaultPageSize() int {
	if s.config.PageSize > 0 {
		return s.config.PageSize
	}
	return catalog.DefaultPageSize
}

// sendStoreError maps store errors onto HTTP status codes
func (s *Server) sendStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidBook):
		sendError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrDuplicateID):
		sendError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrBookNotFound):
		sendError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrStoreClosed):
		sendError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		s.logger.Error("store operation failed", "op", op, "err", err)
		sendError(w, fmt.Sprintf("Failed to %s book: %v", op, err), http.StatusInternalServerError)
	}
}

// startMetricsUpdater periodically updates store metrics until ctx is done
func (s *Server) startMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.metrics.UpdateStoreStats(s.repo.Stats())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.metrics.UpdateStoreStats(s.repo.Stats())
		}
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON request: %v", err)
	}
	return nil
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
