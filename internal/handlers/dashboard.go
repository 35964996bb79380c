package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/giannis84/ad-intelligence/internal/cache"
	"github.com/giannis84/ad-intelligence/internal/database"
	"github.com/giannis84/ad-intelligence/internal/logging"
	"github.com/giannis84/ad-intelligence/internal/metrics"
	"github.com/giannis84/ad-intelligence/internal/models"
	"github.com/giannis84/ad-intelligence/internal/scoring"
)

// GetDashboard returns the account's dashboard metrics, served from the cache
// when a fresh entry exists. Cache failures degrade to a recomputation.
func GetDashboard(ctx context.Context, repo database.Repository, dc cache.DashboardCache, m *metrics.Metrics, accountID string) (*scoring.DashboardMetrics, error) {
	log := logging.Log(ctx).Layer("handlers").Op("GetDashboard").Account(accountID)

	// The generation is read before loading so a write that lands mid-load
	// keeps its invalidation.
	cacheable := dc != nil
	var generation int64
	if dc != nil {
		cached, ok, err := dc.Get(ctx, accountID)
		switch {
		case err != nil:
			m.CacheError()
			log.Err(err).Warn("dashboard cache lookup failed")
		case ok:
			m.CacheHit()
			return cached, nil
		default:
			m.CacheMiss()
		}

		if generation, err = dc.Generation(ctx, accountID); err != nil {
			cacheable = false
			logging.Log(ctx).Layer("handlers").Op("GetDashboard").Account(accountID).Err(err).
				Warn("dashboard cache generation unavailable")
		}
	}

	creatives, analyses, err := loadPortfolio(ctx, repo, accountID)
	if err != nil {
		return nil, err
	}

	dashboard := scoring.Dashboard(creatives, analyses)
	m.ObserveDiversity(dashboard.CreativeDiversity.Score)

	if cacheable {
		err := dc.Set(ctx, accountID, generation, &dashboard)
		switch {
		case errors.Is(err, cache.ErrStale):
			logging.Log(ctx).Layer("handlers").Op("GetDashboard").Account(accountID).
				Debug("dashboard changed during load, not caching")
		case err != nil:
			logging.Log(ctx).Layer("handlers").Op("GetDashboard").Account(accountID).Err(err).
				Warn("failed to store dashboard in cache")
		}
	}
	return &dashboard, nil
}

// GetDiversityBreakdown returns the per-dimension view of the same score the
// dashboard card shows.
func GetDiversityBreakdown(ctx context.Context, repo database.Repository, accountID string) (*scoring.DiversityBreakdown, error) {
	creatives, analyses, err := loadPortfolio(ctx, repo, accountID)
	if err != nil {
		return nil, err
	}
	breakdown := scoring.Breakdown(scoring.DefaultWeights(), creatives, analyses)
	return &breakdown, nil
}

func loadPortfolio(ctx context.Context, repo database.Repository, accountID string) ([]*models.Creative, []*models.Analysis, error) {
	creatives, err := repo.ListCreativesFromDB(ctx, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("load creatives: %w", err)
	}
	analyses, err := repo.ListAnalysesFromDB(ctx, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("load analyses: %w", err)
	}
	return creatives, analyses, nil
}
