package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Marketplace
	BaseURL  string
	PerPage  int
	MaxPages int // 0 = all pages
	Order    string

	// Browser
	LoginTimeout time.Duration // <= 0 waits indefinitely
	Headless     bool          // run the form-fill browser without a window
	BrowserBin   string
	DelayProfile string // "cautious", "normal", "aggressive", "none"

	// HTTP client
	ProxyURL    string
	HTTPTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// HTTP server
	HTTPPort string
	APIKey   string
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "https://www.vinted.fr",
		PerPage:      20,
		Order:        "relevance",
		LoginTimeout: 180 * time.Second,
		DelayProfile: "normal",
		HTTPTimeout:  30 * time.Second,
		LogLevel:     "info",
		LogFormat:    "text",
		HTTPPort:     "8080",
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("RELIST_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("RELIST_PER_PAGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PerPage = n
		}
	}
	if v := os.Getenv("RELIST_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MaxPages = n
		}
	}
	if v := os.Getenv("RELIST_ORDER"); v != "" {
		c.Order = v
	}
	if v := os.Getenv("RELIST_LOGIN_TIMEOUT"); v != "" {
		if d, ok := parseSeconds(v); ok {
			c.LoginTimeout = d
		}
	}
	if v := os.Getenv("RELIST_HEADLESS"); v == "true" {
		c.Headless = true
	}
	if v := os.Getenv("ROD_BROWSER_BIN"); v != "" {
		c.BrowserBin = v
	}
	if v := os.Getenv("RELIST_DELAY_PROFILE"); v != "" {
		c.DelayProfile = v
	}
	if v := os.Getenv("RELIST_PROXY"); v != "" {
		c.ProxyURL = v
	}
	if v := os.Getenv("RELIST_HTTP_TIMEOUT"); v != "" {
		if d, ok := parseSeconds(v); ok && d > 0 {
			c.HTTPTimeout = d
		}
	}
	if v := os.Getenv("RELIST_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("RELIST_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("RELIST_API_KEY"); v != "" {
		c.APIKey = v
	}
}

// parseSeconds accepts a Go duration ("90s", "2m") or a bare number of seconds.
func parseSeconds(v string) (time.Duration, bool) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, true
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	return 0, false
}
