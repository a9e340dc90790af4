// Package config loads courtside settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Fetch modes understood by the scraper.
const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// DefaultUserAgent identifies the fetcher as an ordinary desktop browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Firefox/121.0"

// Config holds every tunable of a courtside process.
type Config struct {
	// Store
	DatabaseURL string

	// Source
	BaseURL           string
	TeamCode          string
	TeamName          string
	Season            int
	UserAgent         string
	HTTPTimeout       time.Duration
	RequestsPerMinute int
	FetchMode         string

	// Used when the scoreboard cannot be read.
	FallbackWins   int
	FallbackLosses int

	// Redis (optional)
	RedisURL     string
	PageCacheTTL time.Duration

	// Serving
	RESTPort         string
	WSPort           string
	CORSAllowOrigins []string
	IngestCron       string
	EnableScheduler  bool

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables with defaults.
// Values that are set but do not parse are errors, not defaults.
func Load() (*Config, error) {
	env := &envParser{}
	cfg := &Config{
		DatabaseURL: envOr("DATABASE_URL", "sqlite://nba_data.db"),

		BaseURL:           strings.TrimRight(envOr("BREF_BASE_URL", "https://www.basketball-reference.com"), "/"),
		TeamCode:          strings.ToUpper(envOr("TEAM_CODE", "LAL")),
		TeamName:          envOr("TEAM_NAME", "Los Angeles Lakers"),
		Season:            env.Int("SEASON", 2024),
		UserAgent:         envOr("USER_AGENT", DefaultUserAgent),
		HTTPTimeout:       env.Duration("HTTP_TIMEOUT", 30*time.Second),
		RequestsPerMinute: env.Int("REQUESTS_PER_MINUTE", 20),
		FetchMode:         strings.ToLower(envOr("FETCH_MODE", FetchModeHTTP)),

		FallbackWins:   env.Int("FALLBACK_WINS", 17),
		FallbackLosses: env.Int("FALLBACK_LOSSES", 15),

		RedisURL:     envOr("REDIS_URL", ""),
		PageCacheTTL: env.Duration("PAGE_CACHE_TTL", 10*time.Minute),

		RESTPort: envOr("REST_PORT", "8080"),
		WSPort:   envOr("WS_PORT", "8081"),
		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:8501",
			"http://localhost:3000",
		}),
		IngestCron:      envOr("INGEST_CRON", "0 3 * * *"),
		EnableScheduler: env.Bool("ENABLE_SCHEDULER", true),

		LogLevel:  strings.ToLower(envOr("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(envOr("LOG_FORMAT", "text")),
	}

	if err := env.Err(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.TeamCode == "" {
		return fmt.Errorf("TEAM_CODE must be set")
	}
	if c.Season < 1947 {
		return fmt.Errorf("SEASON %d is not a valid season year", c.Season)
	}
	if c.FetchMode != FetchModeHTTP && c.FetchMode != FetchModeBrowser {
		return fmt.Errorf("FETCH_MODE must be %q or %q, got %q", FetchModeHTTP, FetchModeBrowser, c.FetchMode)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.RequestsPerMinute <= 0 {
		return fmt.Errorf("REQUESTS_PER_MINUTE must be positive")
	}
	if c.FallbackWins < 0 || c.FallbackLosses < 0 {
		return fmt.Errorf("fallback record must be non-negative")
	}
	return nil
}

// TeamPageURL is the single page every extraction reads from.
func (c *Config) TeamPageURL() string {
	return fmt.Sprintf("%s/teams/%s/%d.html", c.BaseURL, c.TeamCode, c.Season)
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.LogLevel)}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLevel(level string) slog.Level {
	switch level {
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

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envParser reads typed variables and remembers every value that failed
// to parse.
type envParser struct {
	errs []error
}

func (p *envParser) Int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s=%q is not an integer", key, v))
		return fallback
	}
	return n
}

func (p *envParser) Bool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s=%q is not a boolean", key, v))
		return fallback
	}
	return b
}

func (p *envParser) Duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s=%q is not a duration", key, v))
		return fallback
	}
	return d
}

// Err joins every parse failure, or returns nil.
func (p *envParser) Err() error {
	return errors.Join(p.errs...)
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
