package routes

import (
	"errors"
	"io"
	"net/http"

	"github.com/giannis84/ad-intelligence/internal/auth"
	"github.com/giannis84/ad-intelligence/internal/billing"
	"github.com/giannis84/ad-intelligence/internal/handlers"
	"github.com/giannis84/ad-intelligence/internal/logging"
	"github.com/giannis84/ad-intelligence/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// maxWebhookBytes matches the payload ceiling Stripe documents for events.
const maxWebhookBytes = 65536

// WebhookConfig serves Stripe deliveries. Authentication is the signature,
// so these routes sit outside the JWT group.
type WebhookConfig struct {
	Processor handlers.WebhookProcessor
	Metrics   *metrics.Metrics
}

func RegisterWebhookRoutes(cfg WebhookConfig) func(r chi.Router) {
	return func(r chi.Router) {
		r.With(cfg.Metrics.Middleware).Post("/webhooks/stripe", stripeWebhookRoute(cfg))
	}
}

func startCheckoutRoute(cfg APIConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		accountID := auth.AccountIDFromContext(ctx)

		logging.Log(ctx).Layer("routes").Op("startCheckout").Account(accountID).
			Info("received checkout request")

		resp, err := handlers.StartCheckout(ctx, cfg.Repo, cfg.Checkout, accountID)
		if err != nil {
			respondWithHandlerError(w, r, "startCheckout", err, "Subscription")
			return
		}

		logging.Log(ctx).Layer("routes").Op("startCheckout").Account(accountID).
			Int("status_code", http.StatusOK).Info("checkout session created")
		respondWithJSON(w, http.StatusOK, resp)
	}
}

func getSubscriptionRoute(cfg APIConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		accountID := auth.AccountIDFromContext(ctx)

		sub, err := handlers.GetSubscription(ctx, cfg.Repo, accountID)
		if err != nil {
			respondWithHandlerError(w, r, "getSubscription", err, "Subscription")
			return
		}

		logging.Log(ctx).Layer("routes").Op("getSubscription").Account(accountID).
			Str("status", string(sub.Status)).Int("status_code", http.StatusOK).
			Info("subscription retrieved")
		respondWithJSON(w, http.StatusOK, sub)
	}
}

func stripeWebhookRoute(cfg WebhookConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
		if err != nil {
			logging.Log(ctx).Layer("routes").Op("stripeWebhook").Err(err).
				Warn("failed to read webhook body")
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		result, err := handlers.HandleStripeWebhook(ctx, cfg.Processor, cfg.Metrics, payload, r.Header.Get("Stripe-Signature"))
		if err != nil {
			if errors.Is(err, billing.ErrInvalidSignature) {
				logging.Log(ctx).Layer("routes").Op("stripeWebhook").Err(err).
					Warn("rejected webhook with invalid signature")
				respondWithError(w, http.StatusBadRequest, "Invalid signature")
				return
			}
			respondWithHandlerError(w, r, "stripeWebhook", err, "Subscription")
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]any{"received": true, "ignored": result.Ignored})
	}
}
