package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Browser BrowserConfig
	Scraper ScraperConfig
	Log     LogConfig
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is the proxy URL for all browser and preflight traffic.
	Proxy string
}

// ScraperConfig controls lookup behavior.
type ScraperConfig struct {
	// SearchURL is the parts-search URL template. The query-escaped
	// keyword is substituted for the single %s verb.
	SearchURL string

	// KeywordTimeout is the deadline for one full keyword lookup
	// (navigate, render, extract, screenshot).
	KeywordTimeout time.Duration // default: 30s

	// RequestsPerSecond paces navigations so the parts site is not
	// hammered between keywords.
	RequestsPerSecond float64 // default: 0.5

	// Burst is the token-bucket burst size for pacing.
	Burst int // default: 1

	// BlockedResourceTypes lists resource types to block during
	// navigation. Images and stylesheets stay enabled by default so
	// the per-keyword screenshots remain legible.
	// default: ["Media", "Font"]
	BlockedResourceTypes []string

	// BlockAds blocks requests to known ad and tracking domains.
	BlockAds bool // default: true

	// Stealth injects the stealth JS that masks navigator.webdriver.
	Stealth bool // default: true

	// SkipPreflight disables the HTTP reachability check that runs
	// before the browser session starts.
	SkipPreflight bool // default: false
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:   envBoolOr("TOSSHIN_HEADLESS", true),
			NoSandbox:  envBoolOr("TOSSHIN_NO_SANDBOX", false),
			BrowserBin: os.Getenv("TOSSHIN_BROWSER_BIN"),
			Proxy:      os.Getenv("TOSSHIN_PROXY"),
		},
		Scraper: ScraperConfig{
			SearchURL:         envOr("TOSSHIN_SEARCH_URL", "https://www.tosshin.com/parts-search?keyword=%s"),
			KeywordTimeout:    envDurationOr("TOSSHIN_KEYWORD_TIMEOUT", 30*time.Second),
			RequestsPerSecond: envFloatOr("TOSSHIN_RATE_RPS", 0.5),
			Burst:             envIntOr("TOSSHIN_RATE_BURST", 1),
			BlockedResourceTypes: envSliceOr("TOSSHIN_BLOCKED_RESOURCES", []string{
				"Media", "Font",
			}),
			BlockAds:      envBoolOr("TOSSHIN_BLOCK_ADS", true),
			Stealth:       envBoolOr("TOSSHIN_STEALTH", true),
			SkipPreflight: envBoolOr("TOSSHIN_SKIP_PREFLIGHT", false),
		},
		Log: LogConfig{
			Level:  envOr("TOSSHIN_LOG_LEVEL", "info"),
			Format: envOr("TOSSHIN_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
