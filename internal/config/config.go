package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Order store backends.
const (
	OrderStoreFile     = "file"
	OrderStorePostgres = "postgres"
)

// Notification delivery modes.
const (
	NotifyModeSync  = "sync"
	NotifyModeAsync = "async"
)

// Shipped e-mail policies.
const (
	ShippedEmailAlways     = "always"
	ShippedEmailTransition = "transition"
)

// fallbackMerchantEmail always receives new-order notifications.
const fallbackMerchantEmail = "umut.uygur30@gmail.com"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	S3       S3Config
	Storage  StorageConfig
	Mail     MailConfig
	Notify   NotifyConfig
	Shipping ShippingConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds the static admin credentials.
type AuthConfig struct {
	AdminUser string
	AdminPass string
}

// S3Config holds AWS S3 configuration for catalog blobs.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "catalog/")
}

// StorageConfig selects where orders and catalog blobs live.
type StorageConfig struct {
	OrderStore string
	OrdersFile string
	CatalogDir string
}

// MailConfig holds SMTP settings and notification recipients.
type MailConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	Recipients []string
	Timeout    time.Duration
}

// NotifyConfig controls how notifications are delivered.
type NotifyConfig struct {
	Mode               string
	MaxRetries         int
	ShippedEmailPolicy string
}

// ShippingConfig holds the delivery pricing rule.
type ShippingConfig struct {
	FreeThreshold float64
	FlatFee       float64
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	smtpUser := getEnv("SMTP_USER", "")

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8787),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "saniteetti"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 1),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			AdminUser: getEnv("ADMIN_USER", "admin"),
			AdminPass: getEnv("ADMIN_PASS", "saniteetti123"),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "eu-north-1"),
			Prefix:  getEnv("S3_PREFIX", "catalog/"),
		},
		Storage: StorageConfig{
			OrderStore: getEnv("ORDER_STORE", OrderStoreFile),
			OrdersFile: getEnv("ORDERS_FILE", "data/orders.json"),
			CatalogDir: getEnv("CATALOG_DIR", "data/catalog"),
		},
		Mail: MailConfig{
			Host:       getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			User:       smtpUser,
			Password:   getEnv("SMTP_PASS", ""),
			From:       getEnv("MAIL_FROM", smtpUser),
			Recipients: merchantRecipients(getEnv("MAIL_TO", fallbackMerchantEmail)),
			Timeout:    getEnvAsDuration("MAIL_TIMEOUT", 10*time.Second),
		},
		Notify: NotifyConfig{
			Mode:               getEnv("NOTIFY_MODE", NotifyModeSync),
			MaxRetries:         getEnvAsInt("NOTIFY_MAX_RETRIES", 5),
			ShippedEmailPolicy: getEnv("SHIPPED_EMAIL_POLICY", ShippedEmailAlways),
		},
		Shipping: ShippingConfig{
			FreeThreshold: getEnvAsFloat("FREE_SHIPPING_THRESHOLD", 250),
			FlatFee:       getEnvAsFloat("FLAT_SHIPPING_FEE", 15),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Auth.AdminUser == "" || c.Auth.AdminPass == "" {
		return fmt.Errorf("admin credentials are required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	switch c.Storage.OrderStore {
	case OrderStoreFile:
		if c.Storage.OrdersFile == "" {
			return fmt.Errorf("orders file is required when order store is file")
		}
	case OrderStorePostgres:
		if err := c.Database.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid order store: %s (must be file or postgres)", c.Storage.OrderStore)
	}

	if c.Storage.CatalogDir == "" {
		return fmt.Errorf("catalog directory is required")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Mail.Port < 1 || c.Mail.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", c.Mail.Port)
	}

	if c.Mail.Timeout <= 0 {
		return fmt.Errorf("mail timeout must be positive")
	}

	if c.Notify.Mode != NotifyModeSync && c.Notify.Mode != NotifyModeAsync {
		return fmt.Errorf("invalid notify mode: %s (must be sync or async)", c.Notify.Mode)
	}

	if c.Notify.MaxRetries < 0 {
		return fmt.Errorf("notify max retries cannot be negative")
	}

	if c.Notify.ShippedEmailPolicy != ShippedEmailAlways && c.Notify.ShippedEmailPolicy != ShippedEmailTransition {
		return fmt.Errorf("invalid shipped email policy: %s (must be always or transition)", c.Notify.ShippedEmailPolicy)
	}

	if c.Shipping.FreeThreshold < 0 || c.Shipping.FlatFee < 0 {
		return fmt.Errorf("shipping threshold and fee cannot be negative")
	}

	return nil
}

func (c *DatabaseConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}

	if c.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Configured reports whether SMTP credentials are present.
func (c *MailConfig) Configured() bool {
	return c.User != "" && c.Password != ""
}

// merchantRecipients splits MAIL_TO on commas and always appends the fallback
// owner address, dropping blanks and duplicates.
func merchantRecipients(raw string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, addr := range append(strings.Split(raw, ","), fallbackMerchantEmail) {
		addr = strings.TrimSpace(addr)
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
