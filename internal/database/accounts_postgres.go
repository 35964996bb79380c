package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/giannis84/ad-intelligence/internal/models"
)

func (r *PostgresRepository) GetConnectionFromDB(ctx context.Context, accountID string, platform models.Platform) (*models.AdConnection, error) {
	const query = `
		SELECT account_id, platform, customer_id, access_token, refresh_token,
			token_type, expiry, created_at, updated_at
		FROM ad_connections
		WHERE account_id = $1 AND platform = $2`

	var conn models.AdConnection
	var customerID, refreshToken, tokenType sql.NullString
	var expiry sql.NullTime

	err := r.db.QueryRowContext(ctx, query, accountID, string(platform)).Scan(
		&conn.AccountID, &conn.Platform, &customerID, &conn.AccessToken, &refreshToken,
		&tokenType, &expiry, &conn.CreatedAt, &conn.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying connection: %w", err)
	}

	conn.CustomerID = customerID.String
	conn.RefreshToken = refreshToken.String
	conn.TokenType = tokenType.String
	conn.Expiry = expiry.Time
	return &conn, nil
}

// SaveConnectionInDB inserts or replaces the credentials. A refresh token is
// only issued on first consent, so an empty one keeps the stored value.
func (r *PostgresRepository) SaveConnectionInDB(ctx context.Context, conn *models.AdConnection) error {
	const query = `
		INSERT INTO ad_connections (account_id, platform, customer_id, access_token,
			refresh_token, token_type, expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (account_id, platform) DO UPDATE SET
			customer_id   = COALESCE(EXCLUDED.customer_id, ad_connections.customer_id),
			access_token  = EXCLUDED.access_token,
			refresh_token = COALESCE(EXCLUDED.refresh_token, ad_connections.refresh_token),
			token_type    = EXCLUDED.token_type,
			expiry        = EXCLUDED.expiry,
			updated_at    = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		conn.AccountID, string(conn.Platform), nullString(conn.CustomerID), conn.AccessToken,
		nullString(conn.RefreshToken), nullString(conn.TokenType), nullTime(conn.Expiry),
		conn.CreatedAt, conn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving connection: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteConnectionFromDB(ctx context.Context, accountID string, platform models.Platform) error {
	const query = `DELETE FROM ad_connections WHERE account_id = $1 AND platform = $2`

	result, err := r.db.ExecContext(ctx, query, accountID, string(platform))
	if err != nil {
		return fmt.Errorf("deleting connection: %w", err)
	}
	return checkAffected(result)
}

func (r *PostgresRepository) GetSubscriptionFromDB(ctx context.Context, accountID string) (*models.Subscription, error) {
	const query = `
		SELECT account_id, stripe_customer_id, stripe_subscription_id, status,
			current_period_end, updated_at
		FROM subscriptions
		WHERE account_id = $1`

	var sub models.Subscription
	var customerID, subscriptionID sql.NullString
	var periodEnd sql.NullTime

	err := r.db.QueryRowContext(ctx, query, accountID).Scan(
		&sub.AccountID, &customerID, &subscriptionID, &sub.Status, &periodEnd, &sub.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying subscription: %w", err)
	}

	sub.StripeCustomerID = customerID.String
	sub.StripeSubscriptionID = subscriptionID.String
	if periodEnd.Valid {
		t := periodEnd.Time
		sub.CurrentPeriodEnd = &t
	}
	return &sub, nil
}

// SaveSubscriptionInDB upserts billing state. Empty Stripe ids and a nil
// period end leave the stored values untouched.
func (r *PostgresRepository) SaveSubscriptionInDB(ctx context.Context, sub *models.Subscription) error {
	const query = `
		INSERT INTO subscriptions (account_id, stripe_customer_id, stripe_subscription_id,
			status, current_period_end, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (account_id) DO UPDATE SET
			stripe_customer_id     = COALESCE(EXCLUDED.stripe_customer_id, subscriptions.stripe_customer_id),
			stripe_subscription_id = COALESCE(EXCLUDED.stripe_subscription_id, subscriptions.stripe_subscription_id),
			status                 = EXCLUDED.status,
			current_period_end     = COALESCE(EXCLUDED.current_period_end, subscriptions.current_period_end),
			updated_at             = EXCLUDED.updated_at`

	var periodEnd sql.NullTime
	if sub.CurrentPeriodEnd != nil {
		periodEnd = sql.NullTime{Time: *sub.CurrentPeriodEnd, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		sub.AccountID, nullString(sub.StripeCustomerID), nullString(sub.StripeSubscriptionID),
		string(sub.Status), periodEnd, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving subscription: %w", err)
	}
	return nil
}
