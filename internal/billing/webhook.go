// Package billing handles Stripe subscriptions: checkout sessions on the way
// in and signed webhook events on the way back.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/giannis84/ad-intelligence/internal/database"
	"github.com/giannis84/ad-intelligence/internal/models"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// accountMetadataKey links Stripe subscriptions back to an account.
const accountMetadataKey = "account_id"

var ErrInvalidSignature = errors.New("invalid stripe signature")

// WebhookResult describes what a delivered event did.
type WebhookResult struct {
	EventType stripe.EventType
	AccountID string
	Status    models.SubscriptionStatus
	Ignored   bool
}

// WebhookProcessor verifies events and folds them into subscription state.
type WebhookProcessor struct {
	secret string
	store  database.SubscriptionsRepository
	now    func() time.Time
}

func NewWebhookProcessor(secret string, store database.SubscriptionsRepository) *WebhookProcessor {
	return &WebhookProcessor{secret: secret, store: store, now: time.Now}
}

// Process verifies the Stripe-Signature header and applies the event.
// Unknown event types are acknowledged and ignored.
func (p *WebhookProcessor) Process(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	result := &WebhookResult{EventType: event.Type}
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("decoding checkout session: %w", err)
		}
		return result, p.applyCheckout(ctx, &session, result)

	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decoding subscription: %w", err)
		}
		deleted := event.Type == stripe.EventTypeCustomerSubscriptionDeleted
		return result, p.applySubscription(ctx, &sub, deleted, result)

	default:
		result.Ignored = true
		return result, nil
	}
}

func (p *WebhookProcessor) applyCheckout(ctx context.Context, session *stripe.CheckoutSession, result *WebhookResult) error {
	if session.ClientReferenceID == "" {
		result.Ignored = true
		return nil
	}

	sub := &models.Subscription{
		AccountID: session.ClientReferenceID,
		Status:    models.SubscriptionStatusActive,
		UpdatedAt: p.now().UTC(),
	}
	if session.Customer != nil {
		sub.StripeCustomerID = session.Customer.ID
	}
	if session.Subscription != nil {
		sub.StripeSubscriptionID = session.Subscription.ID
	}

	// Subscription events may arrive before the checkout completion. Their
	// status wins unless the checkout started a different subscription.
	existing, err := p.store.GetSubscriptionFromDB(ctx, sub.AccountID)
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		return fmt.Errorf("loading subscription: %w", err)
	case existing.Status != "" && existing.Status != models.SubscriptionStatusNone &&
		(sub.StripeSubscriptionID == "" || sub.StripeSubscriptionID == existing.StripeSubscriptionID):
		sub.Status = existing.Status
	}

	result.AccountID, result.Status = sub.AccountID, sub.Status
	if err := p.store.SaveSubscriptionInDB(ctx, sub); err != nil {
		return fmt.Errorf("saving subscription: %w", err)
	}
	return nil
}

func (p *WebhookProcessor) applySubscription(ctx context.Context, s *stripe.Subscription, deleted bool, result *WebhookResult) error {
	accountID := s.Metadata[accountMetadataKey]
	if accountID == "" {
		result.Ignored = true
		return nil
	}

	sub := &models.Subscription{
		AccountID:            accountID,
		StripeSubscriptionID: s.ID,
		Status:               mapStatus(s.Status),
		UpdatedAt:            p.now().UTC(),
	}
	if deleted {
		sub.Status = models.SubscriptionStatusCanceled
	}
	if s.Customer != nil {
		sub.StripeCustomerID = s.Customer.ID
	}
	if s.CurrentPeriodEnd > 0 {
		end := time.Unix(s.CurrentPeriodEnd, 0).UTC()
		sub.CurrentPeriodEnd = &end
	}

	result.AccountID, result.Status = sub.AccountID, sub.Status
	if err := p.store.SaveSubscriptionInDB(ctx, sub); err != nil {
		return fmt.Errorf("saving subscription: %w", err)
	}
	return nil
}

func mapStatus(s stripe.SubscriptionStatus) models.SubscriptionStatus {
	switch s {
	case stripe.SubscriptionStatusActive:
		return models.SubscriptionStatusActive
	case stripe.SubscriptionStatusTrialing:
		return models.SubscriptionStatusTrialing
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return models.SubscriptionStatusPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return models.SubscriptionStatusCanceled
	default:
		return models.SubscriptionStatusNone
	}
}
