package routes

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/giannis84/ad-intelligence/internal/auth"
	"github.com/giannis84/ad-intelligence/internal/database"
	"github.com/giannis84/ad-intelligence/internal/handlers"
	"github.com/giannis84/ad-intelligence/internal/logging"
	"github.com/go-chi/chi/v5"
)

type AuthorizeResponse struct {
	URL string `json:"url"`
}

// OAuthConfig serves the provider redirect. The callback carries no bearer
// token; the account comes from the signed state parameter.
type OAuthConfig struct {
	Repo        database.ConnectionsRepository
	AdPlatform  handlers.AdPlatform
	StateSecret string
	AppBaseURL  string
}

func RegisterOAuthRoutes(cfg OAuthConfig) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/oauth/google-ads/callback", googleAdsCallbackRoute(cfg))
	}
}

func authorizeGoogleAdsRoute(cfg APIConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		accountID := auth.AccountIDFromContext(ctx)

		consentURL, err := handlers.GoogleAdsAuthorizeURL(cfg.AdPlatform, cfg.OAuthStateSecret, accountID)
		if err != nil {
			respondWithHandlerError(w, r, "authorizeGoogleAds", err, "Connection")
			return
		}

		logging.Log(ctx).Layer("routes").Op("authorizeGoogleAds").Account(accountID).
			Int("status_code", http.StatusOK).Info("google ads consent url issued")
		respondWithJSON(w, http.StatusOK, AuthorizeResponse{URL: consentURL})
	}
}

func importGoogleAdsRoute(cfg APIConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		accountID := auth.AccountIDFromContext(ctx)

		logging.Log(ctx).Layer("routes").Op("importGoogleAds").Account(accountID).
			Info("received google ads import request")

		result, err := handlers.ImportGoogleAdsCreatives(ctx, cfg.Repo, cfg.AdPlatform, cfg.Cache, cfg.Metrics, accountID)
		if err != nil {
			respondWithHandlerError(w, r, "importGoogleAds", err, "Connection")
			return
		}

		logging.Log(ctx).Layer("routes").Op("importGoogleAds").Account(accountID).
			Int("imported", result.Imported).Int("status_code", http.StatusOK).
			Info("google ads import completed")
		respondWithJSON(w, http.StatusOK, result)
	}
}

func disconnectGoogleAdsRoute(cfg APIConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		accountID := auth.AccountIDFromContext(ctx)

		if err := handlers.DisconnectGoogleAds(ctx, cfg.Repo, accountID); err != nil {
			respondWithHandlerError(w, r, "disconnectGoogleAds", err, "Connection")
			return
		}

		logging.Log(ctx).Layer("routes").Op("disconnectGoogleAds").Account(accountID).
			Int("status_code", http.StatusOK).Info("google ads disconnected")
		respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Google Ads disconnected successfully"})
	}
}

// googleAdsCallbackRoute always ends in a redirect back to the app. The
// outcome travels in the google_ads query parameter.
func googleAdsCallbackRoute(cfg OAuthConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		if providerErr := q.Get("error"); providerErr != "" {
			logging.Log(ctx).Layer("routes").Op("googleAdsCallback").Str("provider_error", providerErr).
				Warn("google ads consent was not granted")
			http.Redirect(w, r, connectionsURL(cfg.AppBaseURL, "error", providerErr), http.StatusFound)
			return
		}

		conn, err := handlers.CompleteGoogleAdsConnection(ctx, cfg.Repo, cfg.AdPlatform, cfg.StateSecret, q.Get("state"), q.Get("code"))
		if err != nil {
			code, msg := errorStatus(err, "Connection")
			logging.Log(ctx).Layer("routes").Op("googleAdsCallback").Int("status_code", code).Err(err).
				Error("google ads connection failed")
			http.Redirect(w, r, connectionsURL(cfg.AppBaseURL, "error", msg), http.StatusFound)
			return
		}

		logging.Log(ctx).Layer("routes").Op("googleAdsCallback").Account(conn.AccountID).
			Int("status_code", http.StatusFound).Info("google ads connection stored")
		http.Redirect(w, r, connectionsURL(cfg.AppBaseURL, "connected", ""), http.StatusFound)
	}
}

func connectionsURL(base, outcome, reason string) string {
	v := url.Values{}
	v.Set("google_ads", outcome)
	if reason != "" {
		v.Set("reason", reason)
	}
	return strings.TrimRight(base, "/") + "/connections?" + v.Encode()
}
