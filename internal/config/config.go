package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"recon-backend/internal/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTPPort       string
	DatabaseDriver string // sqlite | postgres
	DatabaseDSN    string
	JWTSecret      string
	CORSOrigins    string

	TokenExpiresInHours   int
	LoginRateLimit        int
	LoginRateWindow       time.Duration
	AllowExportsForReader bool

	ExportDir  string // raporların yazılacağı klasör
	ExportFont string

	LogLevel  string
	LogFormat string
	LogOutput string
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		DatabaseDriver:        strings.ToLower(getEnv("DATABASE_DRIVER", DriverSQLite)),
		DatabaseDSN:           getEnv("DATABASE_DSN", "data.db"),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		CORSOrigins:           getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		TokenExpiresInHours:   getEnvInt("TOKEN_EXPIRES_HOURS", 24),
		LoginRateLimit:        getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow:       time.Duration(getEnvInt("LOGIN_RATE_WINDOW_MINUTES", 15)) * time.Minute,
		AllowExportsForReader: getEnvBool("ALLOW_EXPORTS_FOR_READER", true),
		ExportDir:             getEnv("EXPORT_DIR", "./exported-files"),
		ExportFont:            getEnv("EXPORT_FONT", "微软雅黑"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogOutput:             getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.TokenExpiresInHours <= 0 {
		return fmt.Errorf("TOKEN_EXPIRES_HOURS must be positive")
	}
	return nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	return nil
}

// RunOptions is the fixed part of a reconciliation run, resolved once at
// startup and passed down explicitly.
type RunOptions struct {
	ExportDir string
	Font      string
}

func (c *Config) RunOptions() RunOptions {
	return RunOptions{ExportDir: c.ExportDir, Font: c.ExportFont}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		Output: c.LogOutput,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
