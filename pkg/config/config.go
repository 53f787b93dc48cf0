package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Remote order gateway
	Gateway GatewayConfig

	// Polling and scheduled jobs
	Poll PollConfig

	// Logging
	LogLevel  string
	LogFormat string
	LogDir    string
}

// GatewayConfig holds the remote order gateway connection settings.
type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// Requests per second allowed against the gateway.
	RateLimit float64
}

// PollConfig holds order-status polling and cron job settings.
type PollConfig struct {
	// Interval between status checks while orders are in flight.
	Interval time.Duration

	// Cron expressions (with seconds field).
	RefreshSchedule string
	CleanupSchedule string

	// Log files older than this are removed by the cleanup job.
	LogMaxAge time.Duration
}

// Load reads configuration from environment variables. Explicit env file
// paths, when given, take precedence over the default .env probing.
// Only this function calls os.Getenv().
func Load(envFiles ...string) (*Config, error) {
	loadEnvFile(envFiles)

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Gateway: GatewayConfig{
			BaseURL:   getEnv("GATEWAY_BASE_URL", "http://127.0.0.1:5001"),
			APIKey:    getEnv("GATEWAY_API_KEY", ""),
			Timeout:   getEnvAsDuration("GATEWAY_TIMEOUT", "30s"),
			RateLimit: getEnvAsFloat("GATEWAY_RATE_LIMIT", 10),
		},

		Poll: PollConfig{
			Interval:        getEnvAsDuration("POLL_INTERVAL", "10s"),
			RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 30 6 * * *"),
			CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "0 0 0 * * 0"),
			LogMaxAge:       getEnvAsDuration("LOG_MAX_AGE", "168h"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogDir:    getEnv("LOG_DIR", "logs"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("GATEWAY_BASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Poll.Interval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries explicit paths first, then .env from known locations
func loadEnvFile(explicit []string) {
	paths := make([]string, 0, len(explicit)+3)
	for _, p := range explicit {
		if p != "" {
			paths = append(paths, p)
		}
	}
	paths = append(paths, ".env")

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
