package database

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/giannis84/ad-intelligence/internal/models"
)

type connectionKey struct {
	accountID string
	platform  models.Platform
}

// MockRepository is a simple in-memory Repository intended for unit tests only.
// It mirrors the constraints of the Postgres schema: analyses are unique per
// creative and are removed together with their creative.
type MockRepository struct {
	mu            sync.RWMutex
	creatives     map[string]*models.Creative // by creative id
	analyses      map[string]*models.Analysis // by creative id
	connections   map[connectionKey]*models.AdConnection
	subscriptions map[string]*models.Subscription

	// Err, when set, is returned by every method.
	Err error
}

// NewMockRepository returns a MockRepository for testing.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		creatives:     make(map[string]*models.Creative),
		analyses:      make(map[string]*models.Analysis),
		connections:   make(map[connectionKey]*models.AdConnection),
		subscriptions: make(map[string]*models.Subscription),
	}
}

func newestFirst[T any](items []T, created func(T) int64, id func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		if c := cmp.Compare(created(b), created(a)); c != 0 {
			return c
		}
		return cmp.Compare(id(a), id(b))
	})
}

func (r *MockRepository) ListCreativesFromDB(_ context.Context, accountID string) ([]*models.Creative, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	result := []*models.Creative{}
	for _, c := range r.creatives {
		if c.AccountID == accountID {
			cp := *c
			result = append(result, &cp)
		}
	}
	newestFirst(result,
		func(c *models.Creative) int64 { return c.CreatedAt.UnixNano() },
		func(c *models.Creative) string { return c.ID })
	return result, nil
}

func (r *MockRepository) GetCreativeFromDB(_ context.Context, accountID, creativeID string) (*models.Creative, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	c, exists := r.creatives[creativeID]
	if !exists || c.AccountID != accountID {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MockRepository) AddCreativeInDB(_ context.Context, creative *models.Creative) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	if _, exists := r.creatives[creative.ID]; exists {
		return ErrAlreadyExists
	}
	if creative.ExternalID != "" && r.findExternal(creative) != nil {
		return ErrAlreadyExists
	}

	cp := *creative
	r.creatives[creative.ID] = &cp
	return nil
}

func (r *MockRepository) UpsertImportedCreativeInDB(_ context.Context, creative *models.Creative) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	if existing := r.findExternal(creative); existing != nil {
		existing.BrandName = creative.BrandName
		existing.AdCopy = creative.AdCopy
		existing.CTA = creative.CTA
		existing.ImageURL = creative.ImageURL
		existing.Metrics = creative.Metrics
		existing.UpdatedAt = creative.UpdatedAt
		creative.ID = existing.ID
		creative.CreatedAt = existing.CreatedAt
		return nil
	}

	cp := *creative
	r.creatives[creative.ID] = &cp
	return nil
}

func (r *MockRepository) findExternal(creative *models.Creative) *models.Creative {
	for _, c := range r.creatives {
		if c.AccountID == creative.AccountID && c.Platform == creative.Platform &&
			c.ExternalID != "" && c.ExternalID == creative.ExternalID {
			return c
		}
	}
	return nil
}

func (r *MockRepository) DeleteCreativeFromDB(_ context.Context, accountID, creativeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	c, exists := r.creatives[creativeID]
	if !exists || c.AccountID != accountID {
		return ErrNotFound
	}

	delete(r.creatives, creativeID)
	delete(r.analyses, creativeID)
	return nil
}

func (r *MockRepository) ListAnalysesFromDB(_ context.Context, accountID string) ([]*models.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	result := []*models.Analysis{}
	for _, a := range r.analyses {
		if a.AccountID == accountID {
			cp := *a
			result = append(result, &cp)
		}
	}
	newestFirst(result,
		func(a *models.Analysis) int64 { return a.CreatedAt.UnixNano() },
		func(a *models.Analysis) string { return a.ID })
	return result, nil
}

func (r *MockRepository) GetAnalysisFromDB(_ context.Context, accountID, creativeID string) (*models.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	a, exists := r.analyses[creativeID]
	if !exists || a.AccountID != accountID {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MockRepository) SaveAnalysisInDB(_ context.Context, analysis *models.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	if _, exists := r.creatives[analysis.CreativeID]; !exists {
		return ErrNotFound
	}
	if previous, exists := r.analyses[analysis.CreativeID]; exists {
		analysis.ID = previous.ID
	}

	cp := *analysis
	r.analyses[analysis.CreativeID] = &cp
	return nil
}

func (r *MockRepository) GetConnectionFromDB(_ context.Context, accountID string, platform models.Platform) (*models.AdConnection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	conn, exists := r.connections[connectionKey{accountID, platform}]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *conn
	return &cp, nil
}

func (r *MockRepository) SaveConnectionInDB(_ context.Context, conn *models.AdConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	key := connectionKey{conn.AccountID, conn.Platform}
	cp := *conn
	if previous, exists := r.connections[key]; exists {
		if cp.RefreshToken == "" {
			cp.RefreshToken = previous.RefreshToken
		}
		if cp.CustomerID == "" {
			cp.CustomerID = previous.CustomerID
		}
		cp.CreatedAt = previous.CreatedAt
	}
	r.connections[key] = &cp
	return nil
}

func (r *MockRepository) DeleteConnectionFromDB(_ context.Context, accountID string, platform models.Platform) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	key := connectionKey{accountID, platform}
	if _, exists := r.connections[key]; !exists {
		return ErrNotFound
	}
	delete(r.connections, key)
	return nil
}

func (r *MockRepository) GetSubscriptionFromDB(_ context.Context, accountID string) (*models.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	sub, exists := r.subscriptions[accountID]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *MockRepository) SaveSubscriptionInDB(_ context.Context, sub *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	cp := *sub
	if previous, exists := r.subscriptions[sub.AccountID]; exists {
		if cp.StripeCustomerID == "" {
			cp.StripeCustomerID = previous.StripeCustomerID
		}
		if cp.StripeSubscriptionID == "" {
			cp.StripeSubscriptionID = previous.StripeSubscriptionID
		}
		if cp.CurrentPeriodEnd == nil {
			cp.CurrentPeriodEnd = previous.CurrentPeriodEnd
		}
	}
	r.subscriptions[sub.AccountID] = &cp
	return nil
}
