package database

import (
	"context"
	"errors"

	"github.com/giannis84/ad-intelligence/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// CreativesRepository manages creative records. Every read is scoped to one account.
type CreativesRepository interface {
	ListCreativesFromDB(ctx context.Context, accountID string) ([]*models.Creative, error)
	GetCreativeFromDB(ctx context.Context, accountID, creativeID string) (*models.Creative, error)
	AddCreativeInDB(ctx context.Context, creative *models.Creative) error
	// UpsertImportedCreativeInDB inserts a platform import or refreshes the
	// content and metrics of an earlier import of the same external id. The
	// stored id is written back into creative.ID.
	UpsertImportedCreativeInDB(ctx context.Context, creative *models.Creative) error
	// DeleteCreativeFromDB removes the creative and its analysis.
	DeleteCreativeFromDB(ctx context.Context, accountID, creativeID string) error
}

// AnalysesRepository manages analysis records, at most one per creative.
type AnalysesRepository interface {
	ListAnalysesFromDB(ctx context.Context, accountID string) ([]*models.Analysis, error)
	GetAnalysisFromDB(ctx context.Context, accountID, creativeID string) (*models.Analysis, error)
	// SaveAnalysisInDB replaces any previous analysis of the same creative.
	SaveAnalysisInDB(ctx context.Context, analysis *models.Analysis) error
}

// ConnectionsRepository stores ad platform OAuth credentials.
type ConnectionsRepository interface {
	GetConnectionFromDB(ctx context.Context, accountID string, platform models.Platform) (*models.AdConnection, error)
	SaveConnectionInDB(ctx context.Context, conn *models.AdConnection) error
	DeleteConnectionFromDB(ctx context.Context, accountID string, platform models.Platform) error
}

// SubscriptionsRepository stores billing state per account.
type SubscriptionsRepository interface {
	GetSubscriptionFromDB(ctx context.Context, accountID string) (*models.Subscription, error)
	SaveSubscriptionInDB(ctx context.Context, sub *models.Subscription) error
}

// Repository is the full data store used by the API.
type Repository interface {
	CreativesRepository
	AnalysesRepository
	ConnectionsRepository
	SubscriptionsRepository
}
