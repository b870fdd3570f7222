package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
	Auth     AuthConfig
	Admin    AdminConfig
	Defaults DefaultsConfig
	Billing  BillingConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type RedisConfig struct {
	URL string
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

type AuthConfig struct {
	RequireAPIKeys    bool
	KeyHeader         string // default: Authorization Bearer <key>
	AgentHeaderName   string // optional: X-Client-Type
	EnableAgentHeader bool   // if true, require AgentHeaderName to be one of [agent,human]
}

type AdminConfig struct {
	AdminSecret string
}

// DefaultsConfig tunes the smart-defaults pattern engine
type DefaultsConfig struct {
	MinFrequency   int           // observations required before a value is suggested
	MaxSuggestions int           // autocomplete result cap
	SessionTTL     time.Duration // wizard session lifetime
	RequestsPerMin int           // in-process fallback rate limit for learn/defaults
}

type BillingConfig struct {
	StripeSecretKey     string
	StripeWebhookSecret string
	PriceLiteMonthly    string
	PriceProMonthly     string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string
	PortalReturnURL     string
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                    getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:             getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:            getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:             getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulShutdownTimeout: getEnvDuration("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", 1*time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		Auth: AuthConfig{
			RequireAPIKeys:    getEnvBool("AUTH_REQUIRE_API_KEYS", false),
			KeyHeader:         getEnv("AUTH_KEY_HEADER", "Authorization"),
			AgentHeaderName:   getEnv("AUTH_AGENT_HEADER", "X-Client-Type"),
			EnableAgentHeader: getEnvBool("AUTH_ENABLE_AGENT_HEADER", false),
		},
		Admin: AdminConfig{
			AdminSecret: getEnv("ADMIN_SECRET", ""),
		},
		Defaults: DefaultsConfig{
			MinFrequency:   getEnvInt("DEFAULTS_MIN_FREQUENCY", 2),
			MaxSuggestions: getEnvInt("DEFAULTS_MAX_SUGGESTIONS", 5),
			SessionTTL:     getEnvDuration("WIZARD_SESSION_TTL", 30*time.Minute),
			RequestsPerMin: getEnvInt("DEFAULTS_REQUESTS_PER_MIN", 120),
		},
		Billing: BillingConfig{
			StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			PriceLiteMonthly:    getEnv("STRIPE_PRICE_LITE_MONTHLY", ""),
			PriceProMonthly:     getEnv("STRIPE_PRICE_PRO_MONTHLY", ""),
			CheckoutSuccessURL:  getEnv("STRIPE_CHECKOUT_SUCCESS_URL", "https://app.audeasy.example.com/billing/success"),
			CheckoutCancelURL:   getEnv("STRIPE_CHECKOUT_CANCEL_URL", "https://app.audeasy.example.com/billing/cancel"),
			PortalReturnURL:     getEnv("STRIPE_PORTAL_RETURN_URL", "https://app.audeasy.example.com/billing"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}
	if c.Defaults.MinFrequency < 1 {
		return fmt.Errorf("defaults min frequency must be at least 1")
	}
	if c.Defaults.MaxSuggestions < 1 {
		return fmt.Errorf("defaults max suggestions must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
