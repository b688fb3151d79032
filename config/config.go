package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"hiloActivator/internal/adapters/logger"
	"hiloActivator/internal/domain"
	"hiloActivator/internal/strategy/indicators"
)

// Parameter ranges offered to users.
const (
	MinLimit  = 50
	MaxLimit  = 1000
	MinPeriod = 2
	MaxPeriod = 100
	MinShift  = 0
	MaxShift  = 10
)

// Intervals lists the kline intervals accepted for analysis.
var Intervals = []string{"1d", "4h", "1h", "15m", "5m", "1m", "30m", "1w"}

// IsValidInterval reports whether interval is one of Intervals.
func IsValidInterval(interval string) bool {
	for _, i := range Intervals {
		if i == interval {
			return true
		}
	}
	return false
}

// Config holds all application configuration.
type Config struct {
	// Binance API (public endpoints only, keys are optional)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Analysis
	Symbol    string // BASE/QUOTE, e.g. BTC/USDT
	Interval  string
	Limit     int
	Period    int // 0 selects the asset preset
	Shift     int
	Smoothing indicators.MovingAverageType

	// Cache
	CacheDBPath string // empty keeps the cache in memory
	CacheTTL    time.Duration

	// Exchange connection
	RequestsPerSecond float64
	MaxRetries        int

	// Chart
	ChartWidth  int
	ChartHeight int

	// Logging
	LogLevel  logrus.Level
	LogFormat logger.Format
}

// EffectivePeriod returns the configured period, or the preset for Symbol.
func (c *Config) EffectivePeriod() int {
	if c.Period > 0 {
		return c.Period
	}
	return domain.PeriodFor(c.Symbol)
}

// HiloConfig returns the indicator parameters.
func (c *Config) HiloConfig() indicators.HiloConfig {
	return indicators.HiloConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: c.EffectivePeriod()},
		Shift:           c.Shift,
		Smoothing:       c.Smoothing,
	}
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true)

	cfg.Symbol = getEnv("SYMBOL", "BTC/USDT")
	cfg.Interval = getEnv("INTERVAL", "1d")

	if cfg.Limit, err = getEnvAsIntRequired("LIMIT", 120); err != nil {
		errs = append(errs, fmt.Sprintf("invalid LIMIT: %v", err))
	}
	if cfg.Period, err = getEnvAsIntRequired("HILO_PERIOD", 0); err != nil {
		errs = append(errs, fmt.Sprintf("invalid HILO_PERIOD: %v", err))
	}
	if cfg.Shift, err = getEnvAsIntRequired("HILO_SHIFT", 1); err != nil {
		errs = append(errs, fmt.Sprintf("invalid HILO_SHIFT: %v", err))
	}
	if cfg.Smoothing, err = indicators.ParseMovingAverageType(getEnv("HILO_SMOOTHING", "EMA")); err != nil {
		errs = append(errs, fmt.Sprintf("invalid HILO_SMOOTHING: %v", err))
	}

	cfg.CacheDBPath = getEnv("CACHE_DB_PATH", "")
	ttlSeconds, err := getEnvAsIntRequired("CACHE_TTL_SECONDS", 3600)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CACHE_TTL_SECONDS: %v", err))
	}
	cfg.CacheTTL = time.Duration(ttlSeconds) * time.Second

	if cfg.RequestsPerSecond, err = getEnvAsFloatRequired("REQUEST_RATE_PER_SECOND", 10); err != nil {
		errs = append(errs, fmt.Sprintf("invalid REQUEST_RATE_PER_SECOND: %v", err))
	}
	cfg.MaxRetries = getEnvAsInt("MAX_RETRIES", 3)

	cfg.ChartWidth = getEnvAsInt("CHART_WIDTH", 1600)
	cfg.ChartHeight = getEnvAsInt("CHART_HEIGHT", 800)

	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogFormat = logger.Format(getEnv("LOG_FORMAT", string(logger.FormatPrefixed)))

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Symbol) == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	if !IsValidInterval(c.Interval) {
		errs = append(errs, fmt.Sprintf("INTERVAL must be one of %s", strings.Join(Intervals, ", ")))
	}
	if c.Limit < MinLimit || c.Limit > MaxLimit {
		errs = append(errs, fmt.Sprintf("LIMIT must be between %d and %d", MinLimit, MaxLimit))
	}
	if c.Period != 0 && (c.Period < MinPeriod || c.Period > MaxPeriod) {
		errs = append(errs, fmt.Sprintf("HILO_PERIOD must be between %d and %d", MinPeriod, MaxPeriod))
	}
	if c.Shift < MinShift || c.Shift > MaxShift {
		errs = append(errs, fmt.Sprintf("HILO_SHIFT must be between %d and %d", MinShift, MaxShift))
	}
	if !c.Smoothing.Valid() {
		errs = append(errs, "HILO_SMOOTHING must be SMA or EMA")
	}
	if c.CacheTTL < 0 {
		errs = append(errs, "CACHE_TTL_SECONDS cannot be negative")
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, "REQUEST_RATE_PER_SECOND cannot be negative")
	}
	if c.MaxRetries < 0 {
		errs = append(errs, "MAX_RETRIES cannot be negative")
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		errs = append(errs, "CHART_WIDTH and CHART_HEIGHT must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := getEnvAsIntRequired(key, defaultValue)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
