package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// CheckoutRequest carries what a subscription checkout needs from the caller.
type CheckoutRequest struct {
	AccountID string
	// CustomerID reuses an existing Stripe customer when set.
	CustomerID string
}

type StripeCheckout struct {
	api        *client.API
	priceID    string
	successURL string
	cancelURL  string
}

// NewStripeCheckout creates sessions against the live Stripe API.
func NewStripeCheckout(secretKey, priceID, appBaseURL string) *StripeCheckout {
	api := &client.API{}
	api.Init(secretKey, nil)
	return newStripeCheckout(api, priceID, appBaseURL)
}

func newStripeCheckout(api *client.API, priceID, appBaseURL string) *StripeCheckout {
	base := strings.TrimRight(appBaseURL, "/")
	return &StripeCheckout{
		api:        api,
		priceID:    priceID,
		successURL: base + "/billing?checkout=success",
		cancelURL:  base + "/billing?checkout=canceled",
	}
}

// CreateCheckoutSession returns the hosted checkout URL.
func (s *StripeCheckout) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(req.AccountID),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(s.priceID),
			Quantity: stripe.Int64(1),
		}},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{accountMetadataKey: req.AccountID},
		},
	}
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	params.Context = ctx

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("creating checkout session: %w", err)
	}
	return session.URL, nil
}
