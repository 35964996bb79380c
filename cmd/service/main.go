package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giannis84/ad-intelligence/internal"
	"github.com/giannis84/ad-intelligence/internal/adplatform"
	"github.com/giannis84/ad-intelligence/internal/analyzer"
	"github.com/giannis84/ad-intelligence/internal/billing"
	"github.com/giannis84/ad-intelligence/internal/cache"
	"github.com/giannis84/ad-intelligence/internal/config"
	"github.com/giannis84/ad-intelligence/internal/database"
	"github.com/giannis84/ad-intelligence/internal/handlers"
	"github.com/giannis84/ad-intelligence/internal/logging"
	"github.com/giannis84/ad-intelligence/internal/metrics"
	"github.com/giannis84/ad-intelligence/internal/routes"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.NewLogger("info").Error("failed to load configuration", slog.String(logging.ErrorKey, err.Error()))
		os.Exit(1)
	}

	// Initialize shared dependencies
	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.String("api_addr", cfg.APIAddr()),
		slog.String("health_addr", cfg.HealthAddr()),
		slog.Bool("redis", cfg.RedisEnabled()),
		slog.Bool("google_ads", cfg.GoogleAdsEnabled()),
		slog.Bool("bedrock", cfg.BedrockEnabled()),
		slog.Bool("stripe", cfg.StripeEnabled()),
	)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	// Connect to PostgreSQL and initialise schema
	db, err := database.Connect(cfg.PostgresConnString())
	if err != nil {
		logger.Error("failed to initialise database", slog.String(logging.ErrorKey, err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	repo := database.NewPostgresRepository(db)
	logger.Info("database ready")

	m := metrics.New()

	// Optional integrations stay nil when unconfigured; their routes answer 503.
	var dashboardCache cache.DashboardCache = cache.NoopCache{}
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = cache.NewRedisClient(startupCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Error("failed to connect to redis", slog.String(logging.ErrorKey, err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		dashboardCache = cache.NewRedisCache(redisClient, cfg.DashboardCacheTTL)
		logger.Info("dashboard cache ready", slog.Duration("ttl", cfg.DashboardCacheTTL))
	}

	var creativeAnalyzer handlers.CreativeAnalyzer
	if cfg.BedrockEnabled() {
		a, err := analyzer.NewBedrockAnalyzer(startupCtx, cfg.AWSRegion, cfg.BedrockModelID)
		if err != nil {
			logger.Error("failed to initialise bedrock analyzer", slog.String(logging.ErrorKey, err.Error()))
			os.Exit(1)
		}
		creativeAnalyzer = a
	}

	var adPlatform handlers.AdPlatform
	if cfg.GoogleAdsEnabled() {
		adPlatform = adplatform.NewGoogleAds(adplatform.GoogleAdsConfig{
			ClientID:        cfg.GoogleAdsClientID,
			ClientSecret:    cfg.GoogleAdsClientSecret,
			RedirectURL:     cfg.GoogleAdsRedirectURL,
			DeveloperToken:  cfg.GoogleAdsDeveloperToken,
			LoginCustomerID: cfg.GoogleAdsLoginCustomerID,
			APIVersion:      cfg.GoogleAdsAPIVersion,
		})
	}

	var checkout handlers.CheckoutCreator
	var webhooks handlers.WebhookProcessor
	if cfg.StripeEnabled() {
		checkout = billing.NewStripeCheckout(cfg.StripeSecretKey, cfg.StripePriceID, cfg.AppBaseURL)
		webhooks = billing.NewWebhookProcessor(cfg.StripeWebhookSecret, repo)
	}

	ready := routes.PingFunc(func(ctx context.Context) error {
		if err := repo.Ping(ctx); err != nil {
			return err
		}
		if redisClient != nil {
			return redisClient.Ping(ctx).Err()
		}
		return nil
	})

	// Create health check and ad intelligence http services
	healthService := internal.NewService(internal.ServiceConfig{
		Addr:   cfg.HealthAddr(),
		Logger: logger,
		Routes: routes.RegisterHealthRoutes(ready, m.Handler()),
	})
	apiRoutes := []internal.RoutesRegistry{
		routes.RegisterAPIRoutes(routes.APIConfig{
			Repo:               repo,
			Cache:              dashboardCache,
			Metrics:            m,
			Analyzer:           creativeAnalyzer,
			AdPlatform:         adPlatform,
			Checkout:           checkout,
			OAuthStateSecret:   cfg.OAuthStateSecret,
			Auth:               cfg.AuthConfig(),
			RateLimit:          cfg.RateLimitConfig(),
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		}),
		routes.RegisterOAuthRoutes(routes.OAuthConfig{
			Repo:        repo,
			AdPlatform:  adPlatform,
			StateSecret: cfg.OAuthStateSecret,
			AppBaseURL:  cfg.AppBaseURL,
		}),
		routes.RegisterWebhookRoutes(routes.WebhookConfig{
			Processor: webhooks,
			Metrics:   m,
		}),
	}
	apiService := internal.NewService(internal.ServiceConfig{
		Addr:   cfg.APIAddr(),
		Logger: logger,
		Routes: func(r chi.Router) {
			for _, register := range apiRoutes {
				r.Group(register)
			}
		},
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	})

	// Start http service threads
	go func() {
		if err := healthService.ListenAndServeWrapper("health check api"); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health check service failed", slog.String(logging.ErrorKey, err.Error()))
			os.Exit(1)
		}
	}()
	go func() {
		if err := apiService.ListenAndServeWrapper("ad intelligence api"); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ad intelligence service failed", slog.String(logging.ErrorKey, err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit

	// Shutdown http service threads gracefully
	logger.Info("shutting down service", slog.String("signal", receivedSignal.String()))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiService.HTTPServer.Shutdown(ctx); err != nil {
		logger.Error("API service shutdown error", slog.String(logging.ErrorKey, err.Error()))
	}
	if err := healthService.HTTPServer.Shutdown(ctx); err != nil {
		logger.Error("health service shutdown error", slog.String(logging.ErrorKey, err.Error()))
	}
	logger.Info("exiting...")
}
