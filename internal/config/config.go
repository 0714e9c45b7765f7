package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"paydash/internal/logger"
	"paydash/internal/reconcile"
)

type Config struct {
	// Omie API Configuration
	OmieAppKey    string
	OmieAppSecret string
	OmieBaseURL   string
	OmieTimeout   time.Duration
	OmiePageSize  int

	// Directory Cache Configuration
	CacheTTL time.Duration

	// HTTP Server Configuration
	ListenAddr string

	// Business Rule Overrides
	SupplierIDs     []int64
	ExpectedAmounts map[int64]decimal.Decimal

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OmieAppKey:    getEnv("OMIE_APP_KEY", ""),
		OmieAppSecret: getEnv("OMIE_APP_SECRET", ""),
		OmieBaseURL:   getEnv("OMIE_BASE_URL", ""),
		ListenAddr:    getEnv("DASH_LISTEN_ADDR", ":8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}

	var err error
	if config.OmieTimeout, err = getDuration("OMIE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if config.CacheTTL, err = getDuration("DASH_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if config.OmiePageSize, err = getInt("OMIE_PAGE_SIZE", 500); err != nil {
		return nil, err
	}
	if config.SupplierIDs, err = parseSupplierIDs(os.Getenv("DASH_SUPPLIER_IDS")); err != nil {
		return nil, err
	}
	if config.ExpectedAmounts, err = parseExpectedAmounts(os.Getenv("DASH_EXPECTED_AMOUNTS")); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.OmieAppKey == "" {
		return fmt.Errorf("OMIE_APP_KEY is required")
	}
	if c.OmieAppSecret == "" {
		return fmt.Errorf("OMIE_APP_SECRET is required")
	}
	if c.OmiePageSize <= 0 {
		return fmt.Errorf("OMIE_PAGE_SIZE must be positive")
	}
	return nil
}

// Rules returns the supplier business rules: the built-in defaults with any
// environment overrides applied.
func (c *Config) Rules() reconcile.SupplierRules {
	rules := reconcile.DefaultRules()
	if len(c.SupplierIDs) > 0 {
		rules.AllowedIDs = c.SupplierIDs
	}
	for id, amount := range c.ExpectedAmounts {
		rules.ExpectedAmounts[id] = amount
	}
	return rules
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

// parseSupplierIDs parses a comma-separated list of numeric supplier codes.
func parseSupplierIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("DASH_SUPPLIER_IDS: invalid supplier id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseExpectedAmounts parses "id:amount" pairs, e.g.
// "4807594928:1250.00,4807594778:989.90".
func parseExpectedAmounts(raw string) (map[int64]decimal.Decimal, error) {
	amounts := make(map[int64]decimal.Decimal)
	if strings.TrimSpace(raw) == "" {
		return amounts, nil
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idText, amountText, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("DASH_EXPECTED_AMOUNTS: entry %q is not id:amount", part)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(idText), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("DASH_EXPECTED_AMOUNTS: invalid supplier id %q", idText)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(amountText))
		if err != nil {
			return nil, fmt.Errorf("DASH_EXPECTED_AMOUNTS: invalid amount %q", amountText)
		}
		amounts[id] = amount
	}
	return amounts, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return value, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return value, nil
}
