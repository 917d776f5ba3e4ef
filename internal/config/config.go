package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Storage   StorageConfig
	Import    ImportConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Payroll   PayrollConfig
	Cron      CronConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	QueryTimeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
	Required         bool
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

type StorageConfig struct {
	BasePath string
	BaseURL  string
}

// ImportConfig limits attendance spreadsheet uploads
type ImportConfig struct {
	MaxUploadBytes int64
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// RedisConfig is optional; an empty Addr disables idempotency keys
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

type PayrollConfig struct {
	DefaultCreatedBy int64
}

type CronConfig struct {
	OpenPeriodInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Warn("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	queryTimeout, err := time.ParseDuration(getEnv("QUERY_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUERY_TIMEOUT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:         getEnv("DB_HOST", "localhost"),
		Port:         dbPort,
		User:         getEnv("DB_USER", "postgres"),
		Password:     getEnv("DB_PASSWORD", ""),
		Name:         getEnv("DB_NAME", "hrms_payroll"),
		SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		QueryTimeout: queryTimeout,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	authRequired, err := strconv.ParseBool(getEnv("AUTH_REQUIRED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_REQUIRED: %w", err)
	}
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "8h"),
		Required:         authRequired,
	}

	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
	}

	maxUploadMB, err := strconv.ParseInt(getEnv("IMPORT_MAX_UPLOAD_MB", "10"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid IMPORT_MAX_UPLOAD_MB: %w", err)
	}
	config.Import = ImportConfig{MaxUploadBytes: maxUploadMB << 20}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	config.RateLimit = RateLimitConfig{RequestsPerSecond: rps, Burst: burst}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	idempotencyTTL, err := time.ParseDuration(getEnv("IDEMPOTENCY_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
	}
	config.Redis = RedisConfig{
		Addr:           getEnv("REDIS_ADDR", ""),
		Password:       getEnv("REDIS_PASSWORD", ""),
		DB:             redisDB,
		IdempotencyTTL: idempotencyTTL,
	}

	createdBy, err := strconv.ParseInt(getEnv("PAYROLL_DEFAULT_CREATED_BY", "1"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_DEFAULT_CREATED_BY: %w", err)
	}
	config.Payroll = PayrollConfig{DefaultCreatedBy: createdBy}

	openPeriodInterval, err := time.ParseDuration(getEnv("CRON_OPEN_PERIOD_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_OPEN_PERIOD_INTERVAL: %w", err)
	}
	config.Cron = CronConfig{OpenPeriodInterval: openPeriodInterval}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Import.MaxUploadBytes <= 0 {
		return fmt.Errorf("IMPORT_MAX_UPLOAD_MB must be positive")
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.Cron.OpenPeriodInterval <= 0 {
		return fmt.Errorf("CRON_OPEN_PERIOD_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
