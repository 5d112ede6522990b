package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Bot
	BotToken      string
	WebhookSecret string
	SkipToken     string
	CancelToken   string
	SessionTTL    time.Duration
	HistorySize   int
	Currency      string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Rate limiting (per user, webhook and API)
	RateLimitPerMinute int
	RateLimitBurst     int

	// Market data
	Market MarketConfig

	// S3 Storage
	S3 S3Config
}

// MarketConfig holds the external quote feeds configuration
type MarketConfig struct {
	CurrencyURL string
	CryptoURL   string
	Timeout     time.Duration
	MinRefresh  time.Duration // 0 disables outbound throttling
	WarmEvery   time.Duration // 0 disables the background refresh
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string // Empty disables statement export
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Enabled reports whether statement export is configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	sessionTTL, err := getDurationEnv("SESSION_TTL", 0)
	if err != nil {
		return nil, err
	}
	marketTimeout, err := getDurationEnv("MARKET_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	minRefresh, err := getDurationEnv("MARKET_MIN_REFRESH", 0)
	if err != nil {
		return nil, err
	}
	warmEvery, err := getDurationEnv("MARKET_WARM_INTERVAL", 0)
	if err != nil {
		return nil, err
	}
	historySize, err := getIntEnv("HISTORY_SIZE", 5)
	if err != nil {
		return nil, err
	}
	perMinute, err := getIntEnv("RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return nil, err
	}
	burst, err := getIntEnv("RATE_LIMIT_BURST", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BotToken:           getEnv("BOT_TOKEN", ""),
		WebhookSecret:      getEnv("WEBHOOK_SECRET", ""),
		SkipToken:          getEnv("SKIP_TOKEN", "пропустить"),
		CancelToken:        getEnv("CANCEL_TOKEN", "❌ Отмена"),
		SessionTTL:         sessionTTL,
		HistorySize:        historySize,
		Currency:           strings.ToUpper(getEnv("CURRENCY", "RUB")),
		Port:               getEnv("PORT", "8080"),
		CORSOrigins:        strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:                getEnv("ENV", "development"),
		RateLimitPerMinute: perMinute,
		RateLimitBurst:     burst,
		Market: MarketConfig{
			CurrencyURL: getEnv("CURRENCY_RATES_URL", ""),
			CryptoURL:   getEnv("CRYPTO_RATES_URL", ""),
			Timeout:     marketTimeout,
			MinRefresh:  minRefresh,
			WarmEvery:   warmEvery,
		},
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("HISTORY_SIZE must be positive")
	}
	if c.Market.Timeout <= 0 {
		return fmt.Errorf("MARKET_TIMEOUT must be positive")
	}
	if c.SessionTTL < 0 || c.Market.MinRefresh < 0 || c.Market.WarmEvery < 0 {
		return fmt.Errorf("SESSION_TTL, MARKET_MIN_REFRESH and MARKET_WARM_INTERVAL must not be negative")
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// IsProduction reports whether the app runs with ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 30s or 10m: %w", key, err)
	}
	return d, nil
}
