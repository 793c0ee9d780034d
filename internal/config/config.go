// Package config provides configuration management for the pmctrack scraper.
//
// Configuration is loaded once at startup from environment variables, with
// an optional .env file as fallback, and stays immutable afterwards. The
// scraper only consumes this surface; deployment mechanics own it.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. .env file in the working directory (via godotenv)
//  3. Hard-coded defaults (lowest priority)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default identity string sent by the browser session. A plain desktop
// Chrome UA; the portal rejects obviously empty agents.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Supported storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Config holds all application configuration.
type Config struct {
	// Portal
	PortalURL string // Token search page URL
	UserAgent string // Identity string for the browser session

	// Browser
	ChromePath string // Chrome/Chromium binary path ("" = auto-discover)
	Headless   bool   // Headless toggle (true in production)

	// Timing
	SearchTimeout  time.Duration // Max wait for a result or no-data indicator
	OverlayTimeout time.Duration // Max wait for the history overlay (distinct from search)
	PollInterval   time.Duration // Polling cadence while waiting on the portal
	TokenDelay     time.Duration // Fixed floor between consecutive tokens

	// Storage
	StorageBackend string // "sqlite" or "mysql"
	SQLitePath     string // SQLite database file path
	MySQLDSN       string // MySQL DSN, required when backend is "mysql"

	// Output
	ReportDir string // Directory for JSON/CSV/PNG report artifacts

	// Telegram (optional, notifications disabled if not set)
	TelegramBotToken string
	TelegramChatID   string
}

// Load builds the configuration from environment variables with defaults.
//
// An external .env file is honored first so local runs can override the
// environment without exporting variables.
func Load() (*Config, error) {
	// Optional .env file; absence is normal in deployed environments
	_ = godotenv.Load()

	cfg := &Config{
		PortalURL: getEnvOrDefault("PORTAL_URL", "https://complaint.pmc.gov.in/rptTokenDetailsByTokenCitizen"),
		UserAgent: getEnvOrDefault("USER_AGENT", defaultUserAgent),

		ChromePath: os.Getenv("CHROME_PATH"),
		Headless:   getEnvBool("HEADLESS", true),

		SearchTimeout:  getEnvDuration("SEARCH_TIMEOUT", 20*time.Second),
		OverlayTimeout: getEnvDuration("OVERLAY_TIMEOUT", 10*time.Second),
		PollInterval:   getEnvDuration("POLL_INTERVAL", 500*time.Millisecond),
		TokenDelay:     getEnvDuration("TOKEN_DELAY", 3*time.Second),

		StorageBackend: getEnvOrDefault("STORAGE_BACKEND", BackendSQLite),
		SQLitePath:     getEnvOrDefault("SQLITE_PATH", "pmc_complaints.db"),
		MySQLDSN:       os.Getenv("MYSQL_DSN"),

		ReportDir: getEnvOrDefault("REPORT_DIR", defaultReportDir()),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present and values are sensible.
func (c *Config) Validate() error {
	if c.PortalURL == "" {
		return fmt.Errorf("PORTAL_URL cannot be empty")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("USER_AGENT cannot be empty")
	}

	switch c.StorageBackend {
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN is required for the mysql backend")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be sqlite or mysql, got %q", c.StorageBackend)
	}

	if c.SearchTimeout <= 0 {
		return fmt.Errorf("SEARCH_TIMEOUT must be positive, got %v", c.SearchTimeout)
	}
	if c.OverlayTimeout <= 0 {
		return fmt.Errorf("OVERLAY_TIMEOUT must be positive, got %v", c.OverlayTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %v", c.PollInterval)
	}
	if c.TokenDelay < 0 {
		return fmt.Errorf("TOKEN_DELAY cannot be negative, got %v", c.TokenDelay)
	}

	return nil
}

// defaultReportDir prefers the working directory, falling back to the
// system temp dir in constrained runtimes where the CWD is read-only.
func defaultReportDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return os.TempDir()
	}
	probe, err := os.CreateTemp(wd, ".pmctrack-probe-*")
	if err != nil {
		return os.TempDir()
	}
	probe.Close()
	os.Remove(probe.Name())
	return wd
}

// Helper functions for environment variable parsing

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns the environment variable as a bool or a default if not set/invalid
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default if not set/invalid.
//
// Accepts standard Go duration strings like "5s", "10m", "1h30m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
