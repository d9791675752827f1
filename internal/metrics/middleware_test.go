package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/search/semantic", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/search/semantic", "200"))

	req := httptest.NewRequest("GET", "/search/semantic?q=http+router", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/search/semantic", "200"))
	if after-before != 1 {
		t.Errorf("expected one request counted for route, got %f", after-before)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
	if got := testutil.ToFloat64(httpRequestsInFlight); got != 0 {
		t.Errorf("expected no requests in flight after completion, got %f", got)
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/search", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Get("/search/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	r.Post("/admin/sync/index", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	tests := []struct {
		method string
		path   string
		status string
	}{
		{"GET", "/search", "400"},
		{"GET", "/search/health", "503"},
		{"POST", "/admin/sync/index", "409"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, http.NoBody)
			r.ServeHTTP(httptest.NewRecorder(), req)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status))
			if val < 1 {
				t.Errorf("expected requests_total for %s %s with status %s >= 1, got %f",
					tc.method, tc.path, tc.status, val)
			}
		})
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/search", func(w http.ResponseWriter, _ *http.Request) {})

	req := httptest.NewRequest("GET", "/packages/some-random-slug", http.NoBody)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")); val < 1 {
		t.Errorf("expected unmatched 404 to be counted, got %f", val)
	}
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unmatched"},
		{"/", "/"},
		{"/search", "/search"},
		{"/search/", "/search"},
		{"/admin/sync/embeddings", "/admin/sync/embeddings"},
	}

	for _, tc := range tests {
		if got := routeLabel(tc.input); got != tc.expected {
			t.Errorf("routeLabel(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
