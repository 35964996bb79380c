package routes

import (
	"net/http"

	"github.com/giannis84/ad-intelligence/internal/auth"
	"github.com/giannis84/ad-intelligence/internal/handlers"
	"github.com/giannis84/ad-intelligence/internal/logging"
)

func getDashboardRoute(cfg APIConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		accountID := auth.AccountIDFromContext(ctx)

		dashboard, err := handlers.GetDashboard(ctx, cfg.Repo, cfg.Cache, cfg.Metrics, accountID)
		if err != nil {
			respondWithHandlerError(w, r, "getDashboard", err, "Dashboard")
			return
		}

		logging.Log(ctx).Layer("routes").Op("getDashboard").Account(accountID).
			Int("diversity_score", dashboard.CreativeDiversity.Score).
			Bool("has_insight", dashboard.TopInsight != nil).Int("status_code", http.StatusOK).
			Info("dashboard computed")
		respondWithJSON(w, http.StatusOK, dashboard)
	}
}

func getDiversityBreakdownRoute(cfg APIConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		accountID := auth.AccountIDFromContext(ctx)

		breakdown, err := handlers.GetDiversityBreakdown(ctx, cfg.Repo, accountID)
		if err != nil {
			respondWithHandlerError(w, r, "getDiversityBreakdown", err, "Dashboard")
			return
		}

		logging.Log(ctx).Layer("routes").Op("getDiversityBreakdown").Account(accountID).
			Int("diversity_score", breakdown.Score).Int("status_code", http.StatusOK).
			Info("diversity breakdown computed")
		respondWithJSON(w, http.StatusOK, breakdown)
	}
}
