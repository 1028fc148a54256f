package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/ssargent/shelfdb/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		apiKey         string
		requestHeader  string
		expectedStatus int
	}{
		{
			name:           "valid API key",
			apiKey:         "test-key",
			requestHeader:  "test-key",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing API key header",
			apiKey:         "test-key",
			requestHeader:  "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid API key",
			apiKey:         "test-key",
			requestHeader:  "wrong-key",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "authentication disabled",
			apiKey:         "",
			requestHeader:  "",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			handler := apiKeyMiddleware(tt.apiKey)(testHandler)

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.requestHeader != "" {
				req.Header.Set("X-API-Key", tt.requestHeader)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusUnauthorized {
				var response APIResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.False(t, response.Success)
				assert.NotEmpty(t, response.Error)
			}
		})
	}
}

func TestWriteLimitMiddleware(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	// One token, refilled far slower than the test runs.
	handler := writeLimitMiddleware(0.001, 1, metrics)(ok)

	serve := func(method string) int {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(method, "/books", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, serve(http.MethodPost))
	assert.Equal(t, http.StatusTooManyRequests, serve(http.MethodPut))
	assert.Equal(t, http.StatusTooManyRequests, serve(http.MethodDelete))
	// Reads are never throttled.
	assert.Equal(t, http.StatusOK, serve(http.MethodGet))

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.rateLimitedTotal))
}

func TestWriteLimitMiddleware_Disabled(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := writeLimitMiddleware(0, 0, nil)(ok)

	for range 20 {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/books", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestSendHelpers(t *testing.T) {
	w := httptest.NewRecorder()
	sendSuccessStatus(w, map[string]string{"k": "v"}, http.StatusCreated)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"k":"v"}}`, w.Body.String())

	w = httptest.NewRecorder()
	sendError(w, "boom", http.StatusTeapot)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"boom"}`, w.Body.String())
}

func TestMetrics_UpdateStoreStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	metrics.UpdateStoreStats(store.Stats{Books: 4, DataSize: 512, Persists: 7, PersistFailures: 2})

	assert.Equal(t, float64(4), testutil.ToFloat64(metrics.books))
	assert.Equal(t, float64(512), testutil.ToFloat64(metrics.dataFileSizeBytes))
	assert.Equal(t, float64(7), testutil.ToFloat64(metrics.persists))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.persistFailures))

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetType() == dto.MetricType_GAUGE {
			assert.False(t, strings.HasSuffix(mf.GetName(), "_total"), mf.GetName())
		}
	}
}
