package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Auth           AuthConfig
	Logging        LoggingConfig
	CORS           CORSConfig
	RateLimit      RateLimitConfig
	Email          EmailConfig
	Payment        PaymentConfig
	Instagram      InstagramConfig
	Blob           BlobConfig
	Jobs           JobsConfig
	AdminBootstrap AdminBootstrapConfig
	Environment    string
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MaxIdle        int
}

type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowAllOrigins bool
	AllowedOrigins  []string
}

type RateLimitConfig struct {
	PublicPerMinute   int
	AdminPerMinute    int
	LoginPer15Minutes int
}

type EmailConfig struct {
	ResendAPIKey string
	From         string
	FeedbackTo   string
}

type PaymentConfig struct {
	BaseURL     string
	Token       string
	RedirectURL string
	WebhookURL  string
}

type InstagramConfig struct {
	BaseURL     string
	AccessToken string
	FetchLimit  int
}

type BlobConfig struct {
	Dir string
}

type JobsConfig struct {
	TokenSweepInterval time.Duration
	StatRollupInterval time.Duration
}

type AdminBootstrapConfig struct {
	Username string
	Password string
	Email    string
}

func Load() (Config, error) {
	env := getEnv("ENVIRONMENT", "development")
	cfg := Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvInt("SERVER_PORT", 8080),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
			MaxIdle:        getEnvInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", ""),
			AccessTokenTTL:  time.Duration(getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 15)) * time.Minute,
			RefreshTokenTTL: time.Duration(getEnvInt("REFRESH_TOKEN_TTL_HOURS", 168)) * time.Hour,
			Issuer:          getEnv("JWT_ISSUER", "streetcode"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		CORS: CORSConfig{
			AllowAllOrigins: env == "development",
			AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute:   getEnvInt("RATE_LIMIT_PUBLIC", 120),
			AdminPerMinute:    getEnvInt("RATE_LIMIT_ADMIN", 0),
			LoginPer15Minutes: getEnvInt("RATE_LIMIT_LOGIN", 5),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", "noreply@streetcode.local"),
			FeedbackTo:   getEnv("EMAIL_FEEDBACK_TO", ""),
		},
		Payment: PaymentConfig{
			BaseURL:     getEnv("PAYMENT_BASE_URL", "https://api.monobank.ua"),
			Token:       getEnv("PAYMENT_TOKEN", ""),
			RedirectURL: getEnv("PAYMENT_REDIRECT_URL", ""),
			WebhookURL:  getEnv("PAYMENT_WEBHOOK_URL", ""),
		},
		Instagram: InstagramConfig{
			BaseURL:     getEnv("INSTAGRAM_BASE_URL", "https://graph.instagram.com"),
			AccessToken: getEnv("INSTAGRAM_ACCESS_TOKEN", ""),
			FetchLimit:  getEnvInt("INSTAGRAM_FETCH_LIMIT", 10),
		},
		Blob: BlobConfig{
			Dir: getEnv("BLOB_DIR", "data/blobs"),
		},
		Jobs: JobsConfig{
			// The sweep interval is deliberately coarse; expired tokens are
			// rejected at use time, the sweep only reclaims storage.
			TokenSweepInterval: time.Duration(getEnvInt("TOKEN_SWEEP_INTERVAL_HOURS", 240)) * time.Hour,
			StatRollupInterval: time.Duration(getEnvInt("STAT_ROLLUP_INTERVAL_HOURS", 24)) * time.Hour,
		},
		AdminBootstrap: AdminBootstrapConfig{
			Username: getEnv("ADMIN_USERNAME", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
			Email:    getEnv("ADMIN_EMAIL", ""),
		},
		Environment: env,
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if env != "development" && env != "test" && len(cfg.CORS.AllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS is required outside development")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
