package scoring

import "github.com/giannis84/ad-intelligence/internal/models"

// PerformanceStats aggregates the creatives that have a measured CTR.
type PerformanceStats struct {
	AvgCTR            *float64 `json:"avgCTR"`
	TotalImpressions  int64    `json:"totalImpressions"`
	TotalClicks       int64    `json:"totalClicks"`
	CreativesWithData int      `json:"creativesWithData"`
}

// DashboardMetrics is everything the dashboard renders for one account.
type DashboardMetrics struct {
	CreativeDiversity DiversityScore   `json:"creativeDiversity"`
	TopInsight        *Insight         `json:"topInsight"`
	PerformanceStats  PerformanceStats `json:"performanceStats"`
}

// Performance computes the mean CTR and click/impression totals over
// creatives with a defined CTR. AvgCTR is nil when no creative has one.
func Performance(creatives []*models.Creative) PerformanceStats {
	var stats PerformanceStats
	sum := 0.0
	for _, c := range creatives {
		if c == nil || !c.Metrics.HasCTR() {
			continue
		}
		stats.CreativesWithData++
		sum += *c.Metrics.CTR
		if c.Metrics.Impressions != nil {
			stats.TotalImpressions += *c.Metrics.Impressions
		}
		if c.Metrics.Clicks != nil {
			stats.TotalClicks += *c.Metrics.Clicks
		}
	}
	if stats.CreativesWithData > 0 {
		avg := sum / float64(stats.CreativesWithData)
		stats.AvgCTR = &avg
	}
	return stats
}

// Dashboard is the single aggregation entry point. The caller is responsible
// for scoping creatives and analyses to one account.
func Dashboard(creatives []*models.Creative, analyses []*models.Analysis) DashboardMetrics {
	return DashboardMetrics{
		CreativeDiversity: Diversity(creatives, analyses),
		TopInsight:        TopInsight(creatives, analyses),
		PerformanceStats:  Performance(creatives),
	}
}
