package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/creatives/{creativeID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	for _, path := range []string{"/api/v1/creatives/a", "/api/v1/creatives/b", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/creatives/{creativeID}", "404"))
	if got != 2 {
		t.Errorf("expected 2 requests for pattern, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/ok", "200")); got != 1 {
		t.Errorf("expected implicit 200 to be recorded, got %v", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 2 {
		t.Errorf("expected 2 duration series, got %d", n)
	}
}

func TestRecorders(t *testing.T) {
	m := New()

	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()
	m.AnalysisCompleted(nil)
	m.AnalysisCompleted(errors.New("boom"))
	m.CreativesImported(3)
	m.WebhookEvent("checkout.session.completed", "processed")
	m.ObserveDiversity(45)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"cache hits", testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")), 1},
		{"cache misses", testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")), 2},
		{"analysis success", testutil.ToFloat64(m.analyses.WithLabelValues("success")), 1},
		{"analysis error", testutil.ToFloat64(m.analyses.WithLabelValues("error")), 1},
		{"imported", testutil.ToFloat64(m.imported), 3},
		{"webhook", testutil.ToFloat64(m.webhookEvents.WithLabelValues("checkout.session.completed", "processed")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.CacheHit()
	m.AnalysisCompleted(nil)
	m.CreativesImported(1)
	m.WebhookEvent("x", "y")
	m.ObserveDiversity(10)

	rec := httptest.NewRecorder()
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected pass-through, got %d", rec.Code)
	}
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.CacheHit()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `adintel_dashboard_cache_lookups_total{result="hit"} 1`) {
		t.Errorf("expected cache counter in exposition output")
	}
}
