package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/properties/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	r.Post("/api/filter", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	return r
}

func serve(r http.Handler, method, path string) int {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	return rr.Code
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := newRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/properties/{id}", "200"))

	serve(r, "GET", "/api/properties/a1")
	serve(r, "GET", "/api/properties/b2")

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/properties/{id}", "200"))
	if got-before != 2 {
		t.Errorf("requests for route pattern = %v, want +2", got-before)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := newRouter()
	tests := []struct {
		method, path, route, status string
	}{
		{"GET", "/api/properties/missing", "/api/properties/{id}", "404"},
		{"POST", "/api/filter", "/api/filter", "400"},
		{"GET", "/api/properties/x1", "/api/properties/{id}", "200"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tt.method, tt.route, tt.status))
			serve(r, tt.method, tt.path)
			after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tt.method, tt.route, tt.status))
			if after-before != 1 {
				t.Errorf("%s %s: delta = %v, want 1", tt.method, tt.path, after-before)
			}
		})
	}
}

func TestMiddleware_StaticFallbackIsUnmatched(t *testing.T) {
	r := newRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "200"))

	serve(r, "GET", "/js/app.3f9a.js")
	serve(r, "GET", "/index.html")

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "200"))
	if after-before != 2 {
		t.Errorf("unmatched delta = %v, want 2", after-before)
	}
}

func TestMiddleware_InFlightReturnsToZero(t *testing.T) {
	r := newRouter()
	serve(r, "GET", "/api/properties/a1")
	if v := testutil.ToFloat64(httpInFlight); v != 0 {
		t.Errorf("in flight = %v after request, want 0", v)
	}
}

func TestRouteLabel_NoRouteContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/x", http.NoBody)
	if got := routeLabel(req); got != unmatchedRoute {
		t.Errorf("routeLabel = %q, want %q", got, unmatchedRoute)
	}
}
