package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORTAL_URL", "USER_AGENT", "SEARCH_TIMEOUT", "OVERLAY_TIMEOUT",
		"POLL_INTERVAL", "TOKEN_DELAY", "STORAGE_BACKEND", "SQLITE_PATH",
		"MYSQL_DSN", "HEADLESS",
	} {
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if cfg.PortalURL == "" {
		t.Error("expected default portal URL to be set")
	}
	if cfg.StorageBackend != "sqlite" {
		t.Errorf("expected default backend sqlite but got %q", cfg.StorageBackend)
	}
	if cfg.SearchTimeout != 20*time.Second {
		t.Errorf("expected default SearchTimeout=20s but got %v", cfg.SearchTimeout)
	}
	if cfg.TokenDelay != 3*time.Second {
		t.Errorf("expected default TokenDelay=3s but got %v", cfg.TokenDelay)
	}
	if !cfg.Headless {
		t.Error("expected headless by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	os.Setenv("TOKEN_DELAY", "5s")
	os.Setenv("STORAGE_BACKEND", "mysql")
	os.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/pmc")
	defer func() {
		os.Unsetenv("TOKEN_DELAY")
		os.Unsetenv("STORAGE_BACKEND")
		os.Unsetenv("MYSQL_DSN")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if cfg.TokenDelay != 5*time.Second {
		t.Errorf("expected TokenDelay=5s but got %v", cfg.TokenDelay)
	}
	if cfg.StorageBackend != "mysql" {
		t.Errorf("expected backend mysql but got %q", cfg.StorageBackend)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			PortalURL:      "https://example.com/search",
			UserAgent:      "test-agent",
			SearchTimeout:  time.Second,
			OverlayTimeout: time.Second,
			PollInterval:   100 * time.Millisecond,
			TokenDelay:     time.Second,
			StorageBackend: "sqlite",
			SQLitePath:     "test.db",
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:      "missing portal URL",
			mutate:    func(c *Config) { c.PortalURL = "" },
			expectErr: true,
		},
		{
			name:      "unknown backend",
			mutate:    func(c *Config) { c.StorageBackend = "cassandra" },
			expectErr: true,
		},
		{
			name:      "mysql backend without DSN",
			mutate:    func(c *Config) { c.StorageBackend = "mysql"; c.MySQLDSN = "" },
			expectErr: true,
		},
		{
			name:      "zero search timeout",
			mutate:    func(c *Config) { c.SearchTimeout = 0 },
			expectErr: true,
		},
		{
			name:      "negative token delay",
			mutate:    func(c *Config) { c.TokenDelay = -time.Second },
			expectErr: true,
		},
		{
			name:   "zero token delay is allowed",
			mutate: func(c *Config) { c.TokenDelay = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected error but got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		envValue     string
		defaultValue time.Duration
		expected     time.Duration
	}{
		{
			name:         "valid duration",
			key:          "TEST_DURATION",
			envValue:     "7s",
			defaultValue: time.Second,
			expected:     7 * time.Second,
		},
		{
			name:         "invalid duration uses default",
			key:          "TEST_DURATION_INVALID",
			envValue:     "soon",
			defaultValue: time.Second,
			expected:     time.Second,
		},
		{
			name:         "empty uses default",
			key:          "TEST_DURATION_EMPTY",
			envValue:     "",
			defaultValue: time.Second,
			expected:     time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			result := getEnvDuration(tt.key, tt.defaultValue)
			if result != tt.expected {
				t.Errorf("expected %v but got %v", tt.expected, result)
			}
		})
	}
}
