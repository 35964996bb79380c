package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/giannis84/ad-intelligence/internal/cache"
	"github.com/giannis84/ad-intelligence/internal/database"
	"github.com/giannis84/ad-intelligence/internal/logging"
	"github.com/giannis84/ad-intelligence/internal/models"
	"github.com/google/uuid"
)

// AddCreativeRequest is the body of a manual or competitor creative entry.
type AddCreativeRequest struct {
	SourceType string                     `json:"source_type"`
	BrandName  string                     `json:"brand_name"`
	AdCopy     string                     `json:"ad_copy"`
	CTA        string                     `json:"cta"`
	ImageURL   string                     `json:"image_url"`
	Metrics    *models.PerformanceMetrics `json:"metrics,omitempty"`
}

func ListCreatives(ctx context.Context, repo database.CreativesRepository, accountID string) ([]*models.Creative, error) {
	return repo.ListCreativesFromDB(ctx, accountID)
}

// GetCreative returns the creative joined with its analysis, which is nil
// until the creative has been analyzed.
func GetCreative(ctx context.Context, repo database.Repository, accountID, creativeID string) (*models.CreativeWithAnalysis, error) {
	creative, err := repo.GetCreativeFromDB(ctx, accountID, creativeID)
	if err != nil {
		return nil, err
	}

	analysis, err := repo.GetAnalysisFromDB(ctx, accountID, creativeID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	return &models.CreativeWithAnalysis{Creative: creative, Analysis: analysis}, nil
}

func AddCreative(ctx context.Context, repo database.CreativesRepository, dc cache.DashboardCache, accountID string, req *AddCreativeRequest) (*models.Creative, error) {
	if err := validateAddCreative(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	creative := &models.Creative{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		SourceType: models.SourceType(req.SourceType),
		Platform:   models.PlatformManual,
		BrandName:  strings.TrimSpace(req.BrandName),
		AdCopy:     strings.TrimSpace(req.AdCopy),
		CTA:        strings.TrimSpace(req.CTA),
		ImageURL:   strings.TrimSpace(req.ImageURL),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.Metrics != nil {
		creative.Metrics = *req.Metrics
	}

	if err := repo.AddCreativeInDB(ctx, creative); err != nil {
		return nil, err
	}

	invalidateDashboard(ctx, dc, accountID)
	return creative, nil
}

// RemoveCreative deletes the creative. Its analysis goes with it.
func RemoveCreative(ctx context.Context, repo database.CreativesRepository, dc cache.DashboardCache, accountID, creativeID string) error {
	if err := repo.DeleteCreativeFromDB(ctx, accountID, creativeID); err != nil {
		return err
	}
	invalidateDashboard(ctx, dc, accountID)
	return nil
}

// invalidateDashboard drops the cached dashboard after a mutation. A failure
// only means the entry lives until its TTL, so it is logged and swallowed.
func invalidateDashboard(ctx context.Context, dc cache.DashboardCache, accountID string) {
	if dc == nil {
		return
	}
	if err := dc.Invalidate(ctx, accountID); err != nil {
		logging.Log(ctx).Layer("handlers").Op("invalidateDashboard").Account(accountID).Err(err).
			Warn("failed to invalidate dashboard cache")
	}
}
