// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/Seeksy-app/runway/internal/modules/forecast"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	// Forecast defaults, overridable per request
	DefaultGrowthRate float64 // Monthly revenue growth rate (e.g. 0.05)
	DefaultHorizon    int     // Simulation horizon in months

	Backup *BackupConfig
}

// BackupConfig holds R2/S3 backup configuration.
// Backups are disabled when the bucket or credentials are empty.
type BackupConfig struct {
	Enabled         bool
	Bucket          string
	Endpoint        string // S3-compatible endpoint URL (Cloudflare R2)
	AccessKeyID     string
	SecretAccessKey string
	Schedule        string // cron expression for the backup job
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic:
	// 1. Check RUNWAY_DATA_DIR environment variable
	// 2. If not set, default to ./data
	// 3. Always resolve to absolute path and ensure it exists
	dataDir := getEnv("RUNWAY_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:           absDataDir,
		Port:              getEnvAsInt("RUNWAY_PORT", 8010),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DefaultGrowthRate: getEnvAsFloat("RUNWAY_GROWTH_RATE", forecast.DefaultGrowthRate),
		DefaultHorizon:    getEnvAsInt("RUNWAY_HORIZON_MONTHS", forecast.DefaultHorizonMonths),
		Backup:            loadBackupConfig(),
	}

	if cfg.DefaultHorizon < 0 {
		return nil, fmt.Errorf("RUNWAY_HORIZON_MONTHS must be >= 0, got %d", cfg.DefaultHorizon)
	}

	return cfg, nil
}

// loadBackupConfig reads R2 backup settings from the environment.
// The backup job is only enabled when bucket and both credentials are present.
func loadBackupConfig() *BackupConfig {
	cfg := &BackupConfig{
		Bucket:          getEnv("R2_BUCKET", ""),
		Endpoint:        getEnv("R2_ENDPOINT", ""),
		AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		Schedule:        getEnv("R2_BACKUP_SCHEDULE", "0 0 4 * * SUN"),
	}

	cfg.Enabled = cfg.Bucket != "" && cfg.AccessKeyID != "" && cfg.SecretAccessKey != ""

	return cfg
}

// getEnv retrieves an environment variable value, returning a fallback if the
// variable is not set or is empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer
func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvAsFloat retrieves an environment variable as a float
func getEnvAsFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvAsBool retrieves an environment variable as a boolean
func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
