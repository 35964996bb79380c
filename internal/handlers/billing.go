package handlers

import (
	"context"
	"errors"

	"github.com/giannis84/ad-intelligence/internal/billing"
	"github.com/giannis84/ad-intelligence/internal/database"
	"github.com/giannis84/ad-intelligence/internal/logging"
	"github.com/giannis84/ad-intelligence/internal/metrics"
	"github.com/giannis84/ad-intelligence/internal/models"
)

type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (string, error)
}

type WebhookProcessor interface {
	Process(ctx context.Context, payload []byte, signature string) (*billing.WebhookResult, error)
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

// StartCheckout opens a Stripe checkout session, reusing the account's
// Stripe customer when one is already known.
func StartCheckout(ctx context.Context, repo database.SubscriptionsRepository, checkout CheckoutCreator, accountID string) (*CheckoutResponse, error) {
	if checkout == nil {
		return nil, ErrNotConfigured
	}

	req := billing.CheckoutRequest{AccountID: accountID}
	sub, err := repo.GetSubscriptionFromDB(ctx, accountID)
	switch {
	case err == nil:
		req.CustomerID = sub.StripeCustomerID
	case !errors.Is(err, database.ErrNotFound):
		return nil, err
	}

	url, err := checkout.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, err
	}
	return &CheckoutResponse{URL: url}, nil
}

// GetSubscription reports status "none" for accounts that never subscribed.
func GetSubscription(ctx context.Context, repo database.SubscriptionsRepository, accountID string) (*models.Subscription, error) {
	sub, err := repo.GetSubscriptionFromDB(ctx, accountID)
	if errors.Is(err, database.ErrNotFound) {
		return &models.Subscription{AccountID: accountID, Status: models.SubscriptionStatusNone}, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func HandleStripeWebhook(ctx context.Context, processor WebhookProcessor, m *metrics.Metrics, payload []byte, signature string) (*billing.WebhookResult, error) {
	if processor == nil {
		return nil, ErrNotConfigured
	}

	result, err := processor.Process(ctx, payload, signature)
	if err != nil {
		eventType, outcome := "unknown", "error"
		if result != nil {
			eventType = string(result.EventType)
		}
		if errors.Is(err, billing.ErrInvalidSignature) {
			outcome = "rejected"
		}
		m.WebhookEvent(eventType, outcome)
		return nil, err
	}

	outcome := "applied"
	if result.Ignored {
		outcome = "ignored"
	}
	m.WebhookEvent(string(result.EventType), outcome)
	logging.Log(ctx).Layer("handlers").Op("HandleStripeWebhook").Account(result.AccountID).
		Str("event_type", string(result.EventType)).Str("outcome", outcome).
		Str("status", string(result.Status)).Info("stripe webhook processed")
	return result, nil
}
