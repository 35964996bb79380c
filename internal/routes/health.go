package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// RegisterHealthRoutes creates the health check endpoints and, when a
// metrics handler is given, the Prometheus scrape endpoint.
func RegisterHealthRoutes(db Pinger, metricsHandler http.Handler) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
			if db == nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("database not configured"))
				return
			}
			if err := db.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("database not ready"))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ready"))
		})

		if metricsHandler != nil {
			r.Method(http.MethodGet, "/metrics", metricsHandler)
		}
	}
}
