package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/giannis84/ad-intelligence/internal/cache"
	"github.com/giannis84/ad-intelligence/internal/database"
	"github.com/giannis84/ad-intelligence/internal/logging"
	"github.com/giannis84/ad-intelligence/internal/metrics"
	"github.com/giannis84/ad-intelligence/internal/models"
	"github.com/google/uuid"
)

// ErrNotConfigured is returned when an optional integration has no credentials.
var ErrNotConfigured = errors.New("integration is not configured")

// CreativeAnalyzer is the opaque AI step. It returns tags only; identity and
// timestamps are filled in here.
type CreativeAnalyzer interface {
	Analyze(ctx context.Context, creative *models.Creative) (*models.Analysis, error)
}

// AnalyzeCreative runs the analyzer over one creative and stores the result,
// replacing any earlier analysis of the same creative.
func AnalyzeCreative(ctx context.Context, repo database.Repository, analyzer CreativeAnalyzer, dc cache.DashboardCache, m *metrics.Metrics, accountID, creativeID string) (*models.Analysis, error) {
	if analyzer == nil {
		return nil, ErrNotConfigured
	}

	creative, err := repo.GetCreativeFromDB(ctx, accountID, creativeID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	analysis, err := analyzer.Analyze(ctx, creative)
	m.AnalysisCompleted(err)
	if err != nil {
		return nil, fmt.Errorf("analyze creative %s: %w", creativeID, err)
	}
	logging.Log(ctx).Layer("handlers").Op("AnalyzeCreative").Creative(creativeID).
		Dur("took", time.Since(start)).Debug("analysis returned")

	analysis.ID = uuid.NewString()
	analysis.CreativeID = creative.ID
	analysis.AccountID = accountID
	analysis.CreatedAt = time.Now().UTC()
	if analysis.VisualElements == nil {
		analysis.VisualElements = []string{}
	}
	if analysis.Recommendations == nil {
		analysis.Recommendations = []string{}
	}

	if err := repo.SaveAnalysisInDB(ctx, analysis); err != nil {
		return nil, err
	}

	invalidateDashboard(ctx, dc, accountID)
	return analysis, nil
}
