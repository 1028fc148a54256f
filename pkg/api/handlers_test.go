package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/ssargent/shelfdb/pkg/codec"
	"github.com/ssargent/shelfdb/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duneJSON = `{"id":"LIB-001","title":"Dune","author":"Herbert","catalog_number":"978-0-44-117271-9","publication_date":"1965-08-01","quantity":3}`

func seedBooks(t *testing.T, s *store.BookStore, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		book := codec.NewBook(
			fmt.Sprintf("LIB-%03d", i),
			fmt.Sprintf("Title %02d", i),
			fmt.Sprintf("Author %02d", n-i),
			fmt.Sprintf("%013d", i),
			time.Date(2000+i, 1, 1, 0, 0, 0, 0, time.UTC),
			i,
		)
		require.NoError(t, s.Add(book))
	}
}

func TestServer_handleHealth(t *testing.T) {
	h, _, _ := setupTestRouter(t, ServerConfig{APIKey: testAPIKey})

	w := doRequest(t, h, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var data map[string]string
	response := decodeResponse(t, w, &data)
	assert.True(t, response.Success)
	assert.Equal(t, "healthy", data["status"])
}

func TestServer_CreateAndGet(t *testing.T) {
	h, bookStore, _ := setupTestRouter(t, ServerConfig{APIKey: testAPIKey})

	w := doRequest(t, h, http.MethodPost, "/api/v1/books", duneJSON)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created BookPayload
	decodeResponse(t, w, &created)
	assert.Equal(t, "LIB-001", created.ID)
	assert.Equal(t, "1965-08-01", created.PublicationDate)

	stored, ok := bookStore.FindByID("LIB-001")
	require.True(t, ok)
	assert.Equal(t, "Dune", stored.Title)

	w = doRequest(t, h, http.MethodGet, "/api/v1/books/LIB-001", "")
	require.Equal(t, http.StatusOK, w.Code)
	var fetched BookPayload
	decodeResponse(t, w, &fetched)
	assert.Equal(t, created, fetched)
}

func TestServer_handleCreateBook_Errors(t *testing.T) {
	h, bookStore, _ := setupTestRouter(t, ServerConfig{APIKey: testAPIKey})
	require.NoError(t, bookStore.Add(codec.NewBook("LIB-001", "Dune", "Herbert", "9780441172719", time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC), 3)))

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "duplicate id",
			body:           duneJSON,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "invalid id",
			body:           `{"id":"LIB-1","title":"X","author":"Y","catalog_number":"9780441172719","publication_date":"2000-01-01","quantity":1}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid catalog number",
			body:           `{"id":"LIB-002","title":"X","author":"Y","catalog_number":"12345","publication_date":"2000-01-01","quantity":1}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid date",
			body:           `{"id":"LIB-002","title":"X","author":"Y","catalog_number":"9780441172719","publication_date":"01/01/2000","quantity":1}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "delimiter in title",
			body:           `{"id":"LIB-002","title":"A|B","author":"Y","catalog_number":"9780441172719","publication_date":"2000-01-01","quantity":1}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			body:           `{"id":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown field",
			body:           `{"isbn":"x"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, http.MethodPost, "/api/v1/books", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			response := decodeResponse(t, w, nil)
			assert.False(t, response.Success)
			assert.NotEmpty(t, response.Error)
		})
	}

	assert.Equal(t, 1, bookStore.Count())
}

func TestServer_handleGetBook_NotFound(t *testing.T) {
	h, _, _ := setupTestRouter(t, ServerConfig{APIKey: testAPIKey})

	w := doRequest(t, h, http.MethodGet, "/api/v1/books/LIB-404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_handleUpdateBook(t *testing.T) {
	h, bookStore, _ := setupTestRouter(t, ServerConfig{APIKey: testAPIKey})
	require.NoError(t, bookStore.Add(codec.NewBook("LIB-001", "Dune", "Herbert", "9780441172719", time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC), 3)))

	t.Run("updates fields", func(t *testing.T) {
		body := `{"title":"Dune Messiah","author":"Frank Herbert","catalog_number":"9780441172696","publication_date":"1969-10-15","quantity":5}`
		w := doRequest(t, h, http.MethodPut, "/api/v1/books/LIB-001", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		stored, ok := bookStore.FindByID("LIB-001")
		require.True(t, ok)
		assert.Equal(t, "Dune Messiah", stored.Title)
		assert.Equal(t, 5, stored.Quantity)
	})

	t.Run("unknown id", func(t *testing.T) {
		body := `{"title":"X","author":"Y","catalog_number":"9780441172696","publication_date":"1969-10-15","quantity":1}`
		w := doRequest(t, h, http.MethodPut, "/api/v1/books/LIB-999", body)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("mismatched id", func(t *testing.T) {
		body := `{"id":"LIB-002","title":"X","author":"Y","catalog_number":"9780441172696","publication_date":"1969-10-15","quantity":1}`
		w := doRequest(t, h, http.MethodPut, "/api/v1/books/LIB-001", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative quantity", func(t *testing.T) {
		body := `{"title":"X","author":"Y","catalog_number":"9780441172696","publication_date":"1969-10-15","quantity":-1}`
		w := doRequest(t, h, http.MethodPut, "/api/v1/books/LIB-001", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestServer_handleDeleteBook(t *testing.T) {
	h, bookStore, _ := setupTestRouter(t, ServerConfig{APIKey: testAPIKey})
	seedBooks(t, bookStore, 2)

	w := doRequest(t, h, http.MethodDelete, "/api/v1/books/LIB-001", "")
	require.Equal(t, http.StatusOK, w.Code)
	_, ok := bookStore.FindByID("LIB-001")
	assert.False(t, ok)
	assert.Equal(t, 1, bookStore.Count())

	// Deleting an absent id is a successful no-op.
	w = doRequest(t, h, http.MethodDelete, "/api/v1/books/LIB-001", "")
	require.Equal(t, http.StatusOK, w.Code)
	var data map[string]string
	response := decodeResponse(t, w, &data)
	assert.True(t, response.Success)
	assert.Equal(t, "Book LIB-001 not present", data["message"])
	assert.Equal(t, 1, bookStore.Count())
}

func TestServer_handleListBooks(t *testing.T) {
	h, bookStore, _ := setupTestRouter(t, ServerConfig{APIKey: testAPIKey})
	seedBooks(t, bookStore, 12)

	tests := []struct {
		name       string
		query      string
		wantIDs    []string
		wantPage   int
		wantPages  int
		wantSort   string
		wantStatus int
	}{
		{
			name:       "default page",
			query:      "",
			wantIDs:    []string{"LIB-001", "LIB-002", "LIB-003", "LIB-004", "LIB-005"},
			wantPage:   1,
			wantPages:  3,
			wantSort:   "id",
			wantStatus: http.StatusOK,
		},
		{
			name:       "last page",
			query:      "?page=3",
			wantIDs:    []string{"LIB-011", "LIB-012"},
			wantPage:   3,
			wantPages:  3,
			wantSort:   "id",
			wantStatus: http.StatusOK,
		},
		{
			name:       "page beyond range clamps",
			query:      "?page=99",
			wantIDs:    []string{"LIB-011", "LIB-012"},
			wantPage:   3,
			wantPages:  3,
			wantSort:   "id",
			wantStatus: http.StatusOK,
		},
		{
			name:       "sort by author",
			query:      "?sort=author&page_size=2",
			wantIDs:    []string{"LIB-012", "LIB-011"},
			wantPage:   1,
			wantPages:  6,
			wantSort:   "author",
			wantStatus: http.StatusOK,
		},
		{
			name:       "search",
			query:      "?search=title%2011",
			wantIDs:    []string{"LIB-011"},
			wantPage:   1,
			wantPages:  1,
			wantSort:   "id",
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid page",
			query:      "?page=abc",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid page size",
			query:      "?page_size=0",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, http.MethodGet, "/api/v1/books"+tt.query, "")
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			var page PageResponse
			decodeResponse(t, w, &page)

			ids := make([]string, 0, len(page.Books))
			for _, b := range page.Books {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantSort, page.Sort)
		})
	}
}

func TestServer_handleListBooks_ConfiguredPageSize(t *testing.T) {
	h, bookStore, _ := setupTestRouter(t, ServerConfig{APIKey: testAPIKey, PageSize: 10})
	seedBooks(t, bookStore, 12)

	w := doRequest(t, h, http.MethodGet, "/api/v1/books", "")
	require.Equal(t, http.StatusOK, w.Code)

	var page PageResponse
	decodeResponse(t, w, &page)
	assert.Len(t, page.Books, 10)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 12, page.TotalItems)
}

func TestServer_handleStats(t *testing.T) {
	h, bookStore, _ := setupTestRouter(t, ServerConfig{APIKey: testAPIKey})
	seedBooks(t, bookStore, 3)

	w := doRequest(t, h, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats store.Stats
	decodeResponse(t, w, &stats)
	assert.Equal(t, 3, stats.Books)
	assert.True(t, stats.Loaded)
	assert.EqualValues(t, 3, stats.Persists)
	assert.Positive(t, stats.DataSize)
}

func TestServer_ClosedStore(t *testing.T) {
	h, bookStore, _ := setupTestRouter(t, ServerConfig{APIKey: testAPIKey})
	require.NoError(t, bookStore.Close())

	w := doRequest(t, h, http.MethodPost, "/api/v1/books", duneJSON)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPayloadRoundTrip(t *testing.T) {
	book := codec.NewBook("LIB-007", "Emma", "Austen", "1234567890123", time.Date(1815, 12, 23, 15, 4, 0, 0, time.UTC), 4)

	payload := payloadOf(book)
	assert.Equal(t, "1815-12-23", payload.PublicationDate)

	back, err := payload.Book()
	require.NoError(t, err)
	assert.True(t, book.Equal(back))
}
