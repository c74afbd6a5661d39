package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string
	Environment  string
	Database     DatabaseConfig
	Shopify      ShopifyConfig
	Redis        RedisConfig
	Pricing      PricingConfig
	Confirmation ConfirmationConfig
	LogLevel     string
	LogFormat    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type ShopifyConfig struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	// RateLimit is the sustained Admin API calls per second
	RateLimit float64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PricingConfig struct {
	CatalogPath string
}

// ConfirmationConfig tunes the price confirmation poll loop
type ConfirmationConfig struct {
	MaxAttempts    int
	PollInterval   time.Duration
	PriceTolerance float64
	SettleDelay    time.Duration
}

// DefaultConfirmationConfig returns the platform's observed cadence: 15 reads, 2s apart, 1 cent tolerance
func DefaultConfirmationConfig() ConfirmationConfig {
	return ConfirmationConfig{
		MaxAttempts:    15,
		PollInterval:   2 * time.Second,
		PriceTolerance: 0.01,
		SettleDelay:    3 * time.Second,
	}
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SHOPIFY_API_VERSION", "2024-01")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	defaults := DefaultConfirmationConfig()

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "configurator"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:  getEnvOrViper("SHOPIFY_SHOP_DOMAIN", ""),
			AccessToken: getEnvOrViper("SHOPIFY_ACCESS_TOKEN", ""),
			APIVersion:  getEnvOrViper("SHOPIFY_API_VERSION", "2024-01"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrViper("REDIS_ADDR", ""),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
		},
		Pricing: PricingConfig{
			CatalogPath: getEnvOrViper("PRICING_CATALOG_PATH", "catalog.yaml"),
		},
		LogLevel:  getEnvOrViper("LOG_LEVEL", "info"),
		LogFormat: getEnvOrViper("LOG_FORMAT", ""),
	}

	var err error
	if cfg.Shopify.RateLimit, err = getFloat("SHOPIFY_RATE_LIMIT", 2); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Confirmation.MaxAttempts, err = getInt("CONFIRM_MAX_ATTEMPTS", defaults.MaxAttempts); err != nil {
		return nil, err
	}
	if cfg.Confirmation.PollInterval, err = getDuration("CONFIRM_POLL_INTERVAL", defaults.PollInterval); err != nil {
		return nil, err
	}
	if cfg.Confirmation.PriceTolerance, err = getFloat("CONFIRM_PRICE_TOLERANCE", defaults.PriceTolerance); err != nil {
		return nil, err
	}
	if cfg.Confirmation.SettleDelay, err = getDuration("CONFIRM_SETTLE_DELAY", defaults.SettleDelay); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.Shopify.ShopDomain == "" {
		return nil, fmt.Errorf("SHOPIFY_SHOP_DOMAIN is required")
	}
	if cfg.Shopify.AccessToken == "" {
		return nil, fmt.Errorf("SHOPIFY_ACCESS_TOKEN is required")
	}
	if cfg.Confirmation.MaxAttempts < 1 {
		return nil, fmt.Errorf("CONFIRM_MAX_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 2s: %w", key, err)
	}
	return v, nil
}
