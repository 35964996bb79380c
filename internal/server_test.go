package internal

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giannis84/ad-intelligence/internal/logging"
	"github.com/go-chi/chi/v5"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewService_Timeouts(t *testing.T) {
	tests := []struct {
		name      string
		cfg       ServiceConfig
		wantRead  time.Duration
		wantWrite time.Duration
		wantIdle  time.Duration
	}{
		{
			name:      "defaults when unset",
			cfg:       ServiceConfig{Addr: ":8000", Logger: testLogger()},
			wantRead:  15 * time.Second,
			wantWrite: 15 * time.Second,
			wantIdle:  60 * time.Second,
		},
		{
			name: "configured values win",
			cfg: ServiceConfig{
				Addr:         ":8000",
				Logger:       testLogger(),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 45 * time.Second,
				IdleTimeout:  2 * time.Minute,
			},
			wantRead:  5 * time.Second,
			wantWrite: 45 * time.Second,
			wantIdle:  2 * time.Minute,
		},
		{
			name:      "only write timeout configured",
			cfg:       ServiceConfig{Addr: ":8001", Logger: testLogger(), WriteTimeout: 30 * time.Second},
			wantRead:  15 * time.Second,
			wantWrite: 30 * time.Second,
			wantIdle:  60 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.cfg)

			if svc.HTTPServer.Addr != tt.cfg.Addr {
				t.Errorf("expected Addr %q, got %q", tt.cfg.Addr, svc.HTTPServer.Addr)
			}
			if svc.HTTPServer.ReadTimeout != tt.wantRead {
				t.Errorf("expected ReadTimeout %v, got %v", tt.wantRead, svc.HTTPServer.ReadTimeout)
			}
			if svc.HTTPServer.WriteTimeout != tt.wantWrite {
				t.Errorf("expected WriteTimeout %v, got %v", tt.wantWrite, svc.HTTPServer.WriteTimeout)
			}
			if svc.HTTPServer.IdleTimeout != tt.wantIdle {
				t.Errorf("expected IdleTimeout %v, got %v", tt.wantIdle, svc.HTTPServer.IdleTimeout)
			}
			if svc.HTTPServer.Handler != svc.Router {
				t.Error("expected HTTPServer.Handler to be the chi router")
			}
		})
	}
}

func TestNewService_NilLoggerFallsBackToDefault(t *testing.T) {
	svc := NewService(ServiceConfig{Addr: ":0"})
	if svc.Logger == nil {
		t.Fatal("expected a logger")
	}
}

func TestNewService_Middleware(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "real ip taken from proxy header",
			headers:    map[string]string{"X-Real-IP": "203.0.113.7"},
			path:       "/remote",
			wantStatus: http.StatusOK,
			wantBody:   "203.0.113.7",
		},
		{
			name:       "panics are recovered",
			path:       "/panic",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unknown path",
			path:       "/missing",
			wantStatus: http.StatusNotFound,
		},
	}

	svc := NewService(ServiceConfig{
		Addr:   ":0",
		Logger: testLogger(),
		Routes: func(r chi.Router) {
			r.Get("/remote", func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, r.RemoteAddr)
			})
			r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
				panic("boom")
			})
		},
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			svc.Router.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantBody != "" && rr.Body.String() != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestNewService_RequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(ServiceConfig{
		Addr:   ":0",
		Logger: slog.New(slog.NewJSONHandler(&buf, nil)),
		Routes: func(r chi.Router) {
			r.Get("/creatives", func(w http.ResponseWriter, r *http.Request) {
				logging.Log(r.Context()).Layer("routes").Info("listed creatives")
				w.WriteHeader(http.StatusOK)
			})
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/creatives", nil)
	req.Header.Set("X-Request-Id", "req-42")
	svc.Router.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) {
		t.Errorf("expected request id in log output, got %s", out)
	}
	if !strings.Contains(out, `"msg":"listed creatives"`) {
		t.Errorf("expected handler log line, got %s", out)
	}
}

func TestNewService_GroupsKeepMiddlewareApart(t *testing.T) {
	blocked := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	registries := []RoutesRegistry{
		func(r chi.Router) {
			r.Use(blocked)
			r.Get("/api/v1/dashboard", func(w http.ResponseWriter, r *http.Request) {})
		},
		func(r chi.Router) {
			r.Post("/webhooks/stripe", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		},
	}

	svc := NewService(ServiceConfig{
		Addr:   ":0",
		Logger: testLogger(),
		Routes: func(r chi.Router) {
			for _, register := range registries {
				r.Group(register)
			}
		},
	})

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{method: http.MethodGet, path: "/api/v1/dashboard", wantStatus: http.StatusUnauthorized},
		{method: http.MethodPost, path: "/webhooks/stripe", wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			svc.Router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}
