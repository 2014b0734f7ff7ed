package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"invoiceflow/internal/logger"
)

// Config holds runtime configuration for the service and the worker.
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	Port     int    `envconfig:"PORT" default:"8080"`
	TimeZone string `envconfig:"TIME_ZONE" default:"Asia/Kolkata"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	MinioRegion    string `envconfig:"MINIO_REGION" default:"us-east-1"`
	InvoiceBucket  string `envconfig:"MINIO_INVOICE_BUCKET" default:"invoices"`
	BackupBucket   string `envconfig:"MINIO_BACKUP_BUCKET" default:"backups"`

	JWTSecret  string        `envconfig:"JWT_SECRET"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"168h"`

	// AdminEmails is the allow-list checked by the auth gate. Matching is case-sensitive.
	AdminEmails []string `envconfig:"ADMIN_EMAILS"`

	OAuthJWKSURL  string `envconfig:"OAUTH_JWKS_URL"`
	OAuthAudience string `envconfig:"OAUTH_AUDIENCE"`
	OAuthIssuer   string `envconfig:"OAUTH_ISSUER"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	SMTPHost     string `envconfig:"SMTP_HOST" default:"127.0.0.1"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"1025"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"no-reply@invoiceflow.local"`
	ResetURLBase string `envconfig:"RESET_URL_BASE" default:"http://localhost:3000/reset-password"`

	SellerName    string `envconfig:"SELLER_NAME" default:"InvoiceFlow Store"`
	SellerAddress string `envconfig:"SELLER_ADDRESS"`
	SellerGSTIN   string `envconfig:"SELLER_GSTIN"`

	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"300"`
	BackupCron         string `envconfig:"BACKUP_CRON" default:"0 2 * * *"`

	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string `envconfig:"LOG_FORMAT" default:"console"`
	LogTimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02T15:04:05Z07:00"`
	LogOutput     string `envconfig:"LOG_OUTPUT" default:"stdout"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("TIME_ZONE: %w", err)
	}
	if len(c.AdminList()) == 0 {
		return errors.New("ADMIN_EMAILS must list at least one admin email")
	}
	return nil
}

// AdminList returns the trimmed, non-empty admin emails.
func (c *Config) AdminList() []string {
	out := make([]string, 0, len(c.AdminEmails))
	for _, email := range c.AdminEmails {
		if email = strings.TrimSpace(email); email != "" {
			out = append(out, email)
		}
	}
	return out
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}
