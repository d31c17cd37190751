// Package config provides configuration management for the simulation engine:
// process-level settings from the environment plus the immutable assumption
// snapshot with validated refresh-file overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process-level application configuration.
type Config struct {
	DataDir     string // Base directory for the results database and reports
	LogLevel    string
	LogFile     string // Optional rotating log file
	Port        int
	DevMode     bool
	RefreshPath string // Path to the refresh-inputs override file (JSON)
	CronSpec    string // Optional cron expression for scheduled re-runs
	Workers     int    // Replication engine parallelism (0/1 = sequential)
}

// Load reads configuration from environment variables (.env supported).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("COSTCO_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	refreshPath := getEnv("COSTCO_REFRESH_PATH", "")
	if refreshPath == "" {
		refreshPath = filepath.Join(absDataDir, "latest_inputs.json")
	}

	return &Config{
		DataDir:     absDataDir,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
		Port:        getEnvAsInt("PORT", 8010),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		RefreshPath: refreshPath,
		CronSpec:    getEnv("COSTCO_RUN_CRON", ""),
		Workers:     getEnvAsInt("COSTCO_WORKERS", 0),
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
