package routes

import (
	"encoding/json"
	"net/http"

	"github.com/giannis84/ad-intelligence/internal/auth"
	"github.com/giannis84/ad-intelligence/internal/handlers"
	"github.com/giannis84/ad-intelligence/internal/logging"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps JSON request bodies. Ad copy is the largest field.
const maxBodyBytes = 64 << 10

func listCreativesRoute(cfg APIConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		accountID := auth.AccountIDFromContext(ctx)

		logging.Log(ctx).Layer("routes").Op("listCreatives").Account(accountID).
			Info("received list creatives request")

		creatives, err := handlers.ListCreatives(ctx, cfg.Repo, accountID)
		if err != nil {
			respondWithHandlerError(w, r, "listCreatives", err, "Creatives")
			return
		}

		logging.Log(ctx).Layer("routes").Op("listCreatives").Account(accountID).
			Int("count", len(creatives)).Int("status_code", http.StatusOK).
			Info("creatives retrieved successfully")
		respondWithJSON(w, http.StatusOK, creatives)
	}
}

func addCreativeRoute(cfg APIConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		accountID := auth.AccountIDFromContext(ctx)

		var req handlers.AddCreativeRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			logging.Log(ctx).Layer("routes").Op("addCreative").Account(accountID).Err(err).
				Warn("failed to decode request body")
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		logging.Log(ctx).Layer("routes").Op("addCreative").Account(accountID).Source(req.SourceType).
			Info("received add creative request")

		creative, err := handlers.AddCreative(ctx, cfg.Repo, cfg.Cache, accountID, &req)
		if err != nil {
			respondWithHandlerError(w, r, "addCreative", err, "Creative")
			return
		}

		logging.Log(ctx).Layer("routes").Op("addCreative").Account(accountID).Creative(creative.ID).
			Source(string(creative.SourceType)).Int("status_code", http.StatusCreated).
			Info("creative added successfully")
		respondWithJSON(w, http.StatusCreated, creative)
	}
}

func getCreativeRoute(cfg APIConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		accountID := auth.AccountIDFromContext(ctx)
		creativeID := chi.URLParam(r, "creativeID")

		if err := handlers.ValidateCreativeID(creativeID); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		creative, err := handlers.GetCreative(ctx, cfg.Repo, accountID, creativeID)
		if err != nil {
			respondWithHandlerError(w, r, "getCreative", err, "Creative")
			return
		}

		logging.Log(ctx).Layer("routes").Op("getCreative").Account(accountID).Creative(creativeID).
			Bool("analyzed", creative.Analysis != nil).Int("status_code", http.StatusOK).
			Info("creative retrieved successfully")
		respondWithJSON(w, http.StatusOK, creative)
	}
}

func removeCreativeRoute(cfg APIConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		accountID := auth.AccountIDFromContext(ctx)
		creativeID := chi.URLParam(r, "creativeID")

		if err := handlers.ValidateCreativeID(creativeID); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		logging.Log(ctx).Layer("routes").Op("removeCreative").Account(accountID).Creative(creativeID).
			Info("received remove creative request")

		if err := handlers.RemoveCreative(ctx, cfg.Repo, cfg.Cache, accountID, creativeID); err != nil {
			respondWithHandlerError(w, r, "removeCreative", err, "Creative")
			return
		}

		logging.Log(ctx).Layer("routes").Op("removeCreative").Account(accountID).Creative(creativeID).
			Int("status_code", http.StatusOK).Info("creative removed successfully")
		respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Creative removed successfully"})
	}
}

func analyzeCreativeRoute(cfg APIConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		accountID := auth.AccountIDFromContext(ctx)
		creativeID := chi.URLParam(r, "creativeID")

		if err := handlers.ValidateCreativeID(creativeID); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		logging.Log(ctx).Layer("routes").Op("analyzeCreative").Account(accountID).Creative(creativeID).
			Info("received analyze creative request")

		analysis, err := handlers.AnalyzeCreative(ctx, cfg.Repo, cfg.Analyzer, cfg.Cache, cfg.Metrics, accountID, creativeID)
		if err != nil {
			respondWithHandlerError(w, r, "analyzeCreative", err, "Creative")
			return
		}

		logging.Log(ctx).Layer("routes").Op("analyzeCreative").Account(accountID).Creative(creativeID).
			Str("emotion", analysis.Emotion).Int("status_code", http.StatusOK).
			Info("creative analyzed successfully")
		respondWithJSON(w, http.StatusOK, analysis)
	}
}
