package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/giannis84/ad-intelligence/internal/adplatform"
	"github.com/giannis84/ad-intelligence/internal/auth"
	"github.com/giannis84/ad-intelligence/internal/cache"
	"github.com/giannis84/ad-intelligence/internal/database"
	"github.com/giannis84/ad-intelligence/internal/logging"
	"github.com/giannis84/ad-intelligence/internal/metrics"
	"github.com/giannis84/ad-intelligence/internal/models"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// oauthStateTTL bounds how long a user may sit on the consent screen.
const oauthStateTTL = 10 * time.Minute

var ErrNotConnected = errors.New("google ads account is not connected")

// AdPlatform is the Google Ads surface used by the connection flow.
type AdPlatform interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	ListAccessibleCustomers(ctx context.Context, token *oauth2.Token) ([]string, *oauth2.Token, error)
	SearchAds(ctx context.Context, token *oauth2.Token, customerID string) ([]adplatform.ImportedAd, *oauth2.Token, error)
}

// ImportResult summarises one import run.
type ImportResult struct {
	Imported   int    `json:"imported"`
	CustomerID string `json:"customer_id"`
}

// GoogleAdsAuthorizeURL returns the consent URL for the account. The state
// parameter carries the account id back to the unauthenticated callback.
func GoogleAdsAuthorizeURL(platform AdPlatform, stateSecret, accountID string) (string, error) {
	if platform == nil {
		return "", ErrNotConfigured
	}
	state, err := auth.IssueState(stateSecret, accountID, oauthStateTTL)
	if err != nil {
		return "", err
	}
	return platform.AuthCodeURL(state), nil
}

// CompleteGoogleAdsConnection handles the OAuth callback: it verifies the
// state, exchanges the code and stores the tokens against the first customer
// the grant can reach.
func CompleteGoogleAdsConnection(ctx context.Context, repo database.ConnectionsRepository, platform AdPlatform, stateSecret, state, code string) (*models.AdConnection, error) {
	if platform == nil {
		return nil, ErrNotConfigured
	}
	if err := validate(
		func() string { return requireNonEmpty("state", state) },
		func() string { return requireNonEmpty("code", code) },
	); err != nil {
		return nil, err
	}

	accountID, err := auth.ParseState(stateSecret, state)
	if err != nil {
		return nil, &ValidationError{Errors: []string{err.Error()}}
	}

	token, err := platform.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	customers, token, err := platform.ListAccessibleCustomers(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		return nil, adplatform.ErrNoCustomer
	}

	now := time.Now().UTC()
	conn := connectionFromToken(accountID, customers[0], token, now)
	conn.CreatedAt = now
	if err := repo.SaveConnectionInDB(ctx, conn); err != nil {
		return nil, err
	}

	logging.Log(ctx).Layer("handlers").Op("CompleteGoogleAdsConnection").Account(accountID).
		Str("customer_id", conn.CustomerID).Int("accessible_customers", len(customers)).
		Info("google ads connected")
	return conn, nil
}

// ImportGoogleAdsCreatives pulls the connected customer's ads and upserts
// them as own creatives keyed by the platform ad id.
func ImportGoogleAdsCreatives(ctx context.Context, repo database.Repository, platform AdPlatform, dc cache.DashboardCache, m *metrics.Metrics, accountID string) (*ImportResult, error) {
	if platform == nil {
		return nil, ErrNotConfigured
	}

	conn, err := repo.GetConnectionFromDB(ctx, accountID, models.PlatformGoogleAds)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotConnected
	}
	if err != nil {
		return nil, err
	}

	stored := tokenFromConnection(conn)
	ads, current, err := platform.SearchAds(ctx, stored, conn.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("search google ads: %w", err)
	}

	now := time.Now().UTC()
	imported := 0
	for _, ad := range ads {
		creative := ad.Creative(accountID)
		creative.ID = uuid.NewString()
		creative.CreatedAt = now
		creative.UpdatedAt = now
		if err := repo.UpsertImportedCreativeInDB(ctx, creative); err != nil {
			return nil, fmt.Errorf("store imported ad %s: %w", ad.ExternalID, err)
		}
		imported++
	}
	m.CreativesImported(imported)

	if current != nil && current.AccessToken != stored.AccessToken {
		refreshed := connectionFromToken(accountID, conn.CustomerID, current, now)
		if err := repo.SaveConnectionInDB(ctx, refreshed); err != nil {
			logging.Log(ctx).Layer("handlers").Op("ImportGoogleAdsCreatives").Account(accountID).Err(err).
				Warn("failed to persist refreshed token")
		}
	}

	if imported > 0 {
		invalidateDashboard(ctx, dc, accountID)
	}
	return &ImportResult{Imported: imported, CustomerID: conn.CustomerID}, nil
}

func DisconnectGoogleAds(ctx context.Context, repo database.ConnectionsRepository, accountID string) error {
	return repo.DeleteConnectionFromDB(ctx, accountID, models.PlatformGoogleAds)
}

func connectionFromToken(accountID, customerID string, token *oauth2.Token, now time.Time) *models.AdConnection {
	return &models.AdConnection{
		AccountID:    accountID,
		Platform:     models.PlatformGoogleAds,
		CustomerID:   customerID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
		UpdatedAt:    now,
	}
}

func tokenFromConnection(conn *models.AdConnection) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		TokenType:    conn.TokenType,
		Expiry:       conn.Expiry,
	}
}
