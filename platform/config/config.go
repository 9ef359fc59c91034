// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
// Configuration is read once at process start; components receive narrow
// interfaces instead of the full struct.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// AuthConfig provides settings for inbound token verification.
// Token issuance lives with the external identity provider; the backend
// only verifies signatures and resolves the subject.
type AuthConfig interface {
	GetAuthJWTSecret() string
	IsDemoAuthEnabled() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// StripeConfig provides settings for Stripe Checkout and Connect.
type StripeConfig interface {
	GetStripeSecretKey() string
	GetStripeWebhookSecret() string
	GetPlatformFeeBps() int64
	GetAppBaseURL() string
	IsStripeEnabled() bool
}

// PolarConfig provides settings for Polar subscription billing.
type PolarConfig interface {
	GetPolarAccessToken() string
	GetPolarWebhookSecret() string
	GetPolarProProductID() string
	GetPolarServer() string
	GetAppBaseURL() string
}

// AdminConfig provides settings for the admin module.
type AdminConfig interface {
	GetAdminClaimSecret() string
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketUploads() string
	IsMinIOEnabled() bool
}

// SchedulerConfig provides settings for the asynq background job client.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	AuthJWTSecret       string
	DemoAuthEnabled     bool
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	AppBaseURL          string
	AdminClaimSecret    string
	StripeSecretKey     string
	StripeWebhookSecret string
	PlatformFeeBps      int64
	PolarAccessToken    string
	PolarWebhookSecret  string
	PolarProProductID   string
	PolarServer         string
	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOUseSSL         bool
	MinIOMaxFileSize    int64
	MinioBucketUploads  string
	RedisURL            string
	RedisTLSInsecure    bool
	AsynqQueueName      string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// AuthConfig implementation
func (c *Config) GetAuthJWTSecret() string { return c.AuthJWTSecret }
func (c *Config) IsDemoAuthEnabled() bool  { return c.DemoAuthEnabled }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// StripeConfig implementation
func (c *Config) GetStripeSecretKey() string     { return c.StripeSecretKey }
func (c *Config) GetStripeWebhookSecret() string { return c.StripeWebhookSecret }
func (c *Config) GetPlatformFeeBps() int64       { return c.PlatformFeeBps }
func (c *Config) IsStripeEnabled() bool          { return c.StripeSecretKey != "" }

// PolarConfig implementation
func (c *Config) GetPolarAccessToken() string   { return c.PolarAccessToken }
func (c *Config) GetPolarWebhookSecret() string { return c.PolarWebhookSecret }
func (c *Config) GetPolarProProductID() string  { return c.PolarProProductID }
func (c *Config) GetPolarServer() string        { return c.PolarServer }

// Shared
func (c *Config) GetAppBaseURL() string { return c.AppBaseURL }

// AdminConfig implementation
func (c *Config) GetAdminClaimSecret() string { return c.AdminClaimSecret }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string       { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string      { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string      { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool           { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64     { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketUploads() string  { return c.MinioBucketUploads }
func (c *Config) IsMinIOEnabled() bool           { return c.MinIOEndpoint != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		AuthJWTSecret:       getEnv("AUTH_JWT_SECRET", ""),
		DemoAuthEnabled:     strings.EqualFold(getEnv("ALLOW_DEMO_AUTH", "false"), "true"),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		CORSAllowCreds:      strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:          getEnv("APP_BASE_URL", "http://localhost:3000"),
		AdminClaimSecret:    getEnv("ADMIN_CLAIM_SECRET", ""),
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		PlatformFeeBps:      feeBps(getEnv("STRIPE_PLATFORM_FEE_BPS", "")),
		PolarAccessToken:    getEnv("POLAR_ACCESS_TOKEN", ""),
		PolarWebhookSecret:  getEnv("POLAR_WEBHOOK_SECRET", ""),
		PolarProProductID:   getEnv("POLAR_PRO_PRODUCT_ID", ""),
		PolarServer:         getEnv("POLAR_SERVER", "sandbox"),
		MinIOEndpoint:       getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:      getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:         strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:    mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinioBucketUploads:  getEnv("MINIO_BUCKET_UPLOADS", "handylink-uploads"),
		RedisURL:            getEnv("REDIS_URL", ""),
		RedisTLSInsecure:    strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:      getEnv("ASYNQ_QUEUE", "default"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AuthJWTSecret == "" && !cfg.DemoAuthEnabled {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required unless ALLOW_DEMO_AUTH is true")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// feeBps parses the platform fee in basis points, clamped to [0, 10000].
// Defaults to 1000 (10%).
func feeBps(raw string) int64 {
	if raw == "" {
		return 1000
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 || n > 10_000 {
		return 1000
	}
	return n
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
