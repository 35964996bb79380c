package routes

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/giannis84/ad-intelligence/internal/adplatform"
	"github.com/giannis84/ad-intelligence/internal/analyzer"
	"github.com/giannis84/ad-intelligence/internal/auth"
	"github.com/giannis84/ad-intelligence/internal/cache"
	"github.com/giannis84/ad-intelligence/internal/config"
	"github.com/giannis84/ad-intelligence/internal/database"
	"github.com/giannis84/ad-intelligence/internal/handlers"
	"github.com/giannis84/ad-intelligence/internal/logging"
	"github.com/giannis84/ad-intelligence/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// APIConfig carries the collaborators the API routes delegate to. Analyzer,
// AdPlatform and Checkout are optional; their endpoints answer 503 when nil.
type APIConfig struct {
	Repo    database.Repository
	Cache   cache.DashboardCache
	Metrics *metrics.Metrics

	Analyzer   handlers.CreativeAnalyzer
	AdPlatform handlers.AdPlatform
	Checkout   handlers.CheckoutCreator

	OAuthStateSecret   string
	Auth               auth.AuthConfig
	RateLimit          config.RateLimitConfig
	CORSAllowedOrigins []string
}

// RegisterAPIRoutes sets up the authenticated JSON API.
// HTTP concerns are handled here, while business logic is delegated to the handlers package.
func RegisterAPIRoutes(cfg APIConfig) func(r chi.Router) {
	if cfg.Cache == nil {
		cfg.Cache = cache.NoopCache{}
	}
	return func(r chi.Router) {
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(cfg.Metrics.Middleware)
			if len(cfg.CORSAllowedOrigins) > 0 {
				r.Use(cors.Handler(cors.Options{
					AllowedOrigins:   cfg.CORSAllowedOrigins,
					AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
					AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
					AllowCredentials: true,
					MaxAge:           300,
				}))
			}
			if cfg.RateLimit.Requests > 0 {
				r.Use(httprate.LimitByIP(cfg.RateLimit.Requests, cfg.RateLimit.Window))
			}
			r.Use(auth.JWTMiddleware(cfg.Auth))
			r.Use(requireJSONAccept)
			r.Use(requireJSONContentType)

			r.Route("/creatives", func(r chi.Router) {
				r.Get("/", listCreativesRoute(cfg))
				r.Post("/", addCreativeRoute(cfg))
				r.Get("/{creativeID}", getCreativeRoute(cfg))
				r.Delete("/{creativeID}", removeCreativeRoute(cfg))
				r.Post("/{creativeID}/analysis", analyzeCreativeRoute(cfg))
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/", getDashboardRoute(cfg))
				r.Get("/diversity", getDiversityBreakdownRoute(cfg))
			})

			r.Route("/connections/google-ads", func(r chi.Router) {
				r.Get("/authorize", authorizeGoogleAdsRoute(cfg))
				r.Post("/import", importGoogleAdsRoute(cfg))
				r.Delete("/", disconnectGoogleAdsRoute(cfg))
			})

			r.Route("/billing", func(r chi.Router) {
				r.Post("/checkout", startCheckoutRoute(cfg))
				r.Get("/subscription", getSubscriptionRoute(cfg))
			})
		})
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// requireJSONAccept rejects clients that cannot take a JSON response.
func requireJSONAccept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(r.Header.Get("Accept")) {
			respondWithError(w, http.StatusNotAcceptable, "Accept header must include application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func acceptsJSON(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if mediaType == "application/json" || mediaType == "application/*" || mediaType == "*/*" {
			return true
		}
	}
	return false
}

// requireJSONContentType applies to methods that carry a body. Requests with
// an empty body pass through unchecked.
func requireJSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				respondWithError(w, http.StatusUnsupportedMediaType, "Content-Type header must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// errorStatus maps handler errors onto HTTP status codes and client-facing
// messages. notFound names the resource for 404 responses.
func errorStatus(err error, notFound string) (int, string) {
	var validationErr *handlers.ValidationError
	var apiErr *adplatform.APIError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, analyzer.ErrEmptyCreative):
		return http.StatusBadRequest, "Creative has no content to analyze"
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, notFound + " not found"
	case errors.Is(err, database.ErrAlreadyExists):
		return http.StatusConflict, notFound + " already exists"
	case errors.Is(err, handlers.ErrNotConnected):
		return http.StatusConflict, "Google Ads account is not connected"
	case errors.Is(err, adplatform.ErrUnauthorized):
		return http.StatusConflict, "Google Ads authorization expired, reconnect the account"
	case errors.Is(err, adplatform.ErrNoCustomer):
		return http.StatusConflict, "No Google Ads customer is accessible with this account"
	case errors.Is(err, handlers.ErrNotConfigured), errors.Is(err, auth.ErrMissingStateSecret):
		return http.StatusServiceUnavailable, "This integration is not configured"
	case errors.As(err, &apiErr), errors.Is(err, analyzer.ErrInvalidOutput), errors.Is(err, analyzer.ErrModelUnavailable):
		return http.StatusBadGateway, "Upstream service failed"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// respondWithHandlerError logs at Warn for client errors and Error otherwise.
func respondWithHandlerError(w http.ResponseWriter, r *http.Request, op string, err error, notFound string) {
	code, msg := errorStatus(err, notFound)
	log := logging.Log(r.Context()).Layer("routes").Op(op).Account(auth.AccountIDFromContext(r.Context())).
		Int("status_code", code).Err(err)
	if code >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Warn("request rejected")
	}
	respondWithError(w, code, msg)
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}
