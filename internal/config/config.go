package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/giannis84/ad-intelligence/internal/auth"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath        = "config.yaml"
	defaultDotEnvPath        = ".env"
	defaultDashboardCacheTTL = 5 * time.Minute
	defaultGoogleAdsVersion  = "v17"
	defaultAWSRegion         = "us-east-1"
)

// Config holds the application configuration.
type Config struct {
	APIPort    string `yaml:"api_port"`
	HealthPort string `yaml:"health_port"`
	LogLevel   string `yaml:"log_level"`

	// HTTP server timeouts (optional, defaults apply in server.go)
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// AppBaseURL is the front-end origin users are redirected back to after
	// OAuth and checkout flows.
	AppBaseURL         string   `yaml:"app_base_url"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	// JWT signing secret shared with the identity provider. When empty, only
	// unsigned tokens (alg=none) are accepted if AllowUnsignedTokens is true.
	JWTSecret string `yaml:"-"`

	// AllowUnsignedTokens permits unsigned JWT tokens (alg=none) when true.
	// This should ONLY be enabled for local development and testing.
	// Requires explicit opt-in via ALLOW_UNSIGNED_TOKENS=true env var.
	AllowUnsignedTokens bool `yaml:"-"`

	// Database configuration (env vars only, secrets must not live in config.yaml)
	DBHost     string `yaml:"-"`
	DBPort     string `yaml:"-"`
	DBUser     string `yaml:"-"`
	DBPassword string `yaml:"-"`
	DBName     string `yaml:"-"`

	// Rate limiting configuration
	RateLimitRequests int           `yaml:"rate_limit_requests"` // Max requests per window (0 = disabled)
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`   // Time window for rate limiting

	// Dashboard cache (disabled when RedisAddr is empty)
	RedisAddr         string        `yaml:"redis_addr"`
	RedisPassword     string        `yaml:"-"`
	RedisDB           int           `yaml:"redis_db"`
	DashboardCacheTTL time.Duration `yaml:"dashboard_cache_ttl"`

	// Google Ads connector (disabled unless client id, secret and developer token are set)
	GoogleAdsClientID        string `yaml:"-"`
	GoogleAdsClientSecret    string `yaml:"-"`
	GoogleAdsDeveloperToken  string `yaml:"-"`
	GoogleAdsLoginCustomerID string `yaml:"google_ads_login_customer_id"`
	GoogleAdsRedirectURL     string `yaml:"google_ads_redirect_url"`
	GoogleAdsAPIVersion      string `yaml:"google_ads_api_version"`
	OAuthStateSecret         string `yaml:"-"`

	// AI analysis step
	BedrockModelID string `yaml:"bedrock_model_id"`
	AWSRegion      string `yaml:"aws_region"`

	// Billing (disabled when StripeSecretKey is empty)
	StripeSecretKey     string `yaml:"-"`
	StripeWebhookSecret string `yaml:"-"`
	StripePriceID       string `yaml:"stripe_price_id"`
}

// Load reads configuration with the following precedence (highest wins):
//  1. Environment variables (a .env file, if present, is loaded into the
//     environment first without overriding variables that are already set)
//  2. YAML config file (path from CONFIG_PATH env var, or "config.yaml")
//
// Secrets (database, JWT, OAuth, Stripe) are loaded exclusively from the environment.
func Load() (*Config, error) {
	dotenv := os.Getenv("DOTENV_PATH")
	if dotenv == "" {
		dotenv = defaultDotEnvPath
	}
	if _, err := os.Stat(dotenv); err == nil {
		if err := godotenv.Load(dotenv); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", dotenv, err)
		}
	}

	cfg := &Config{}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	overrideString(&cfg.APIPort, "API_PORT")
	overrideString(&cfg.HealthPort, "HEALTH_PORT")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.AppBaseURL, "APP_BASE_URL")
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}

	if cfg.APIPort == "" {
		return nil, fmt.Errorf("api_port is required (set via config file or API_PORT env var)")
	}
	if cfg.HealthPort == "" {
		return nil, fmt.Errorf("health_port is required (set via config file or HEALTH_PORT env var)")
	}

	// Database configuration from environment variables
	cfg.DBHost = os.Getenv("POSTGRES_HOST")
	cfg.DBPort = os.Getenv("POSTGRES_PORT")
	cfg.DBUser = os.Getenv("POSTGRES_USER")
	cfg.DBPassword = os.Getenv("POSTGRES_PASSWORD")
	cfg.DBName = os.Getenv("POSTGRES_DB")

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.AllowUnsignedTokens = os.Getenv("ALLOW_UNSIGNED_TOKENS") == "true"

	overrideDuration(&cfg.ReadTimeout, "READ_TIMEOUT")
	overrideDuration(&cfg.WriteTimeout, "WRITE_TIMEOUT")
	overrideDuration(&cfg.IdleTimeout, "IDLE_TIMEOUT")

	if cfg.DBHost == "" {
		return nil, fmt.Errorf("POSTGRES_HOST env var is required")
	}
	if cfg.DBPort == "" {
		return nil, fmt.Errorf("POSTGRES_PORT env var is required")
	}
	if cfg.DBUser == "" {
		return nil, fmt.Errorf("POSTGRES_USER env var is required")
	}
	if cfg.DBPassword == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD env var is required")
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("POSTGRES_DB env var is required")
	}

	// Rate limiting configuration (env vars override config file)
	overrideInt(&cfg.RateLimitRequests, "RATE_LIMIT_REQUESTS")
	overrideDuration(&cfg.RateLimitWindow, "RATE_LIMIT_WINDOW")
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow == 0 {
		cfg.RateLimitWindow = time.Minute
	}

	// Dashboard cache
	overrideString(&cfg.RedisAddr, "REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	overrideInt(&cfg.RedisDB, "REDIS_DB")
	overrideDuration(&cfg.DashboardCacheTTL, "DASHBOARD_CACHE_TTL")
	if cfg.DashboardCacheTTL <= 0 {
		cfg.DashboardCacheTTL = defaultDashboardCacheTTL
	}

	// Google Ads connector
	cfg.GoogleAdsClientID = os.Getenv("GOOGLE_ADS_CLIENT_ID")
	cfg.GoogleAdsClientSecret = os.Getenv("GOOGLE_ADS_CLIENT_SECRET")
	cfg.GoogleAdsDeveloperToken = os.Getenv("GOOGLE_ADS_DEVELOPER_TOKEN")
	cfg.OAuthStateSecret = os.Getenv("OAUTH_STATE_SECRET")
	overrideString(&cfg.GoogleAdsLoginCustomerID, "GOOGLE_ADS_LOGIN_CUSTOMER_ID")
	overrideString(&cfg.GoogleAdsRedirectURL, "GOOGLE_ADS_REDIRECT_URL")
	overrideString(&cfg.GoogleAdsAPIVersion, "GOOGLE_ADS_API_VERSION")
	if cfg.GoogleAdsAPIVersion == "" {
		cfg.GoogleAdsAPIVersion = defaultGoogleAdsVersion
	}
	if cfg.GoogleAdsEnabled() {
		if cfg.GoogleAdsRedirectURL == "" {
			return nil, fmt.Errorf("google_ads_redirect_url is required when the Google Ads connector is configured")
		}
		if cfg.OAuthStateSecret == "" {
			return nil, fmt.Errorf("OAUTH_STATE_SECRET env var is required when the Google Ads connector is configured")
		}
	}

	// AI analysis
	overrideString(&cfg.BedrockModelID, "BEDROCK_MODEL_ID")
	overrideString(&cfg.AWSRegion, "AWS_REGION")
	if cfg.AWSRegion == "" {
		cfg.AWSRegion = defaultAWSRegion
	}

	// Billing
	cfg.StripeSecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.StripeWebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	overrideString(&cfg.StripePriceID, "STRIPE_PRICE_ID")
	if cfg.StripeEnabled() && (cfg.StripeWebhookSecret == "" || cfg.StripePriceID == "") {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET and stripe_price_id are required when STRIPE_SECRET_KEY is set")
	}

	return cfg, nil
}

func overrideString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func overrideDuration(dst *time.Duration, env string) {
	if v := os.Getenv(env); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PostgresConnString returns a PostgreSQL connection string.
func (c *Config) PostgresConnString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// APIAddr returns the listen address for the API server.
func (c *Config) APIAddr() string {
	return ":" + c.APIPort
}

// HealthAddr returns the listen address for the health check server.
func (c *Config) HealthAddr() string {
	return ":" + c.HealthPort
}

// AuthConfig returns the JWT authentication configuration.
func (c *Config) AuthConfig() auth.AuthConfig {
	return auth.AuthConfig{
		Secret:              c.JWTSecret,
		AllowUnsignedTokens: c.AllowUnsignedTokens,
	}
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Requests int           // Max requests per window (0 = disabled)
	Window   time.Duration // Time window for rate limiting
}

// RateLimitConfig returns the rate limiting configuration.
func (c *Config) RateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests: c.RateLimitRequests,
		Window:   c.RateLimitWindow,
	}
}

// RedisEnabled reports whether the dashboard cache should use Redis.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

// GoogleAdsEnabled reports whether the Google Ads connector is configured.
func (c *Config) GoogleAdsEnabled() bool {
	return c.GoogleAdsClientID != "" && c.GoogleAdsClientSecret != "" && c.GoogleAdsDeveloperToken != ""
}

// BedrockEnabled reports whether AI analysis is available.
func (c *Config) BedrockEnabled() bool { return c.BedrockModelID != "" }

// StripeEnabled reports whether billing is configured.
func (c *Config) StripeEnabled() bool { return c.StripeSecretKey != "" }
