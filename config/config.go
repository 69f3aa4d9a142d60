// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// HTTP API
	HTTP HTTPConfig

	// Redis (primary snapshot store)
	Redis RedisConfig

	// PostgreSQL (optional snapshot archive)
	Archive ArchiveConfig

	// Generative AI collaborator
	GenAI GenAIConfig

	// Observability
	Log LogConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxBodyBytes int64

	// API key protection for write endpoints. The env carries bcrypt
	// hashes, comma-separated; empty means an open instance.
	APIKeyHeader string
	APIKeyHashes []string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// Timeouts
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ArchiveConfig holds the optional PostgreSQL snapshot archive settings.
type ArchiveConfig struct {
	// Enabled toggles the archive entirely. The registry works without
	// it; the archive only adds durable snapshot history.
	Enabled bool

	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Pool settings
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
}

// GenAIConfig holds the generative-language collaborator settings.
type GenAIConfig struct {
	// EnableInsights toggles the AI endpoints (insight + avatar). The
	// registry works fully without them.
	EnableInsights bool

	BaseURL    string
	APIKey     string
	TextModel  string
	ImageModel string

	RequestTimeout time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string // debug, info, warn, error
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App:     loadAppConfig(),
		HTTP:    loadHTTPConfig(),
		Redis:   loadRedisConfig(),
		Archive: loadArchiveConfig(),
		GenAI:   loadGenAIConfig(),
		Log:     loadLogConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func loadAppConfig() AppConfig {
	env := Environment(getEnv("APP_ENV", "development"))
	return AppConfig{
		Name:            getEnv("APP_NAME", "eduflow-registry"),
		Environment:     env,
		Debug:           env == EnvDevelopment || getEnvBool("APP_DEBUG", false),
		Version:         getEnv("APP_VERSION", "0.1.0"),
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Host:         getEnv("HTTP_HOST", "0.0.0.0"),
		Port:         getEnvInt("HTTP_PORT", 8080),
		ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		MaxBodyBytes: int64(getEnvInt("HTTP_MAX_BODY_BYTES", 1<<20)),
		APIKeyHeader: getEnv("HTTP_API_KEY_HEADER", "X-API-Key"),
		APIKeyHashes: getEnvSlice("HTTP_API_KEY_HASHES", nil),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host:         getEnv("REDIS_HOST", "localhost"),
		Port:         getEnvInt("REDIS_PORT", 6379),
		Password:     getEnv("REDIS_PASSWORD", ""),
		DB:           getEnvInt("REDIS_DB", 0),
		PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
		MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func loadArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		Enabled:         getEnvBool("ARCHIVE_ENABLED", false),
		Host:            getEnv("ARCHIVE_DB_HOST", "localhost"),
		Port:            getEnvInt("ARCHIVE_DB_PORT", 5432),
		User:            getEnv("ARCHIVE_DB_USER", "eduflow"),
		Password:        getEnv("ARCHIVE_DB_PASSWORD", ""),
		Database:        getEnv("ARCHIVE_DB_NAME", "eduflow"),
		SSLMode:         getEnv("ARCHIVE_DB_SSLMODE", "disable"),
		MaxConns:        getEnvInt("ARCHIVE_DB_MAX_CONNS", 4),
		MinConns:        getEnvInt("ARCHIVE_DB_MIN_CONNS", 1),
		ConnMaxLifetime: getEnvDuration("ARCHIVE_DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

func loadGenAIConfig() GenAIConfig {
	return GenAIConfig{
		EnableInsights: getEnvBool("GENAI_ENABLED", false),
		BaseURL:        getEnv("GENAI_BASE_URL", "https://generativelanguage.googleapis.com"),
		APIKey:         getEnv("GENAI_API_KEY", ""),
		TextModel:      getEnv("GENAI_TEXT_MODEL", "gemini-2.5-flash"),
		ImageModel:     getEnv("GENAI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		RequestTimeout: getEnvDuration("GENAI_REQUEST_TIMEOUT", 30*time.Second),
	}
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, "HTTP_PORT must be 1-65535")
	}

	if c.GenAI.EnableInsights && c.GenAI.APIKey == "" {
		errs = append(errs, "GENAI_API_KEY is required when GENAI_ENABLED=true")
	}

	if c.App.Environment == EnvProduction && len(c.HTTP.APIKeyHashes) == 0 {
		errs = append(errs, "HTTP_API_KEY_HASHES is required in production")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvSlice(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
