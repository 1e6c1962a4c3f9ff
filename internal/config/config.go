// Package config defines the client and dev server configuration and their
// layered loading: defaults, then an optional YAML file, then environment.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// Config is the client configuration.
type Config struct {
	// ServerURL is the root of the platform API
	ServerURL string `koanf:"server_url"`

	// DBPath is the bbolt file holding tokens and the cached user
	DBPath string `koanf:"db_path"`

	// CachePath is the sqlite file of the offline cache; empty disables it
	CachePath string `koanf:"cache_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr, when set, serves /metrics during long-running commands
	MetricsAddr string `koanf:"metrics_addr"`

	// RequestTimeout bounds a single API request.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// RefreshSkew refreshes access tokens expiring within this window before use.
	RefreshSkew time.Duration `koanf:"refresh_skew"`

	// WatchInterval is the polling period of `leaderboard --watch`.
	WatchInterval time.Duration `koanf:"watch_interval"`

	// PageSize is the default page size of lists and leaderboards.
	PageSize int `koanf:"page_size"`
}

// New returns a Config filled with defaults.
func New() *Config {
	return &Config{
		ServerURL:      "http://localhost:8000",
		DBPath:         "fantasy11.db",
		CachePath:      "fantasy11-cache.db",
		LogLevel:       "warn",
		RequestTimeout: 30 * time.Second,
		RefreshSkew:    30 * time.Second,
		WatchInterval:  15 * time.Second,
		PageSize:       20,
	}
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server_url %q is not an absolute URL", c.ServerURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server_url must use http or https, got %q", u.Scheme)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.RefreshSkew < 0 {
		return fmt.Errorf("refresh_skew must not be negative")
	}
	if c.WatchInterval < time.Second {
		return fmt.Errorf("watch_interval must be at least 1s")
	}
	if c.PageSize <= 0 || c.PageSize > 100 {
		return fmt.Errorf("page_size must be between 1 and 100")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// DevServer is the configuration of the local fake API.
type DevServer struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// JWTSecret signs access tokens.
	JWTSecret string `koanf:"jwt_secret"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// AccessTTL is the lifetime of access tokens.
	AccessTTL time.Duration `koanf:"access_ttl"`

	// RefreshTTL is the lifetime of refresh tokens.
	RefreshTTL time.Duration `koanf:"refresh_ttl"`

	// DBPath is the sqlite database; ":memory:" keeps everything in process.
	DBPath string `koanf:"db_path"`

	// AuthRateLimit is the number of /api/auth requests allowed per client per minute.
	AuthRateLimit int `koanf:"auth_rate_limit"`

	// BcryptCost is the cost of password hashes.
	BcryptCost int `koanf:"bcrypt_cost"`

	// TokenCleanupInterval is how often expired refresh tokens are purged.
	TokenCleanupInterval time.Duration `koanf:"token_cleanup_interval"`

	// Seed loads demo contests, users and leaderboards on start.
	Seed bool `koanf:"seed"`
}

// NewDevServer returns a DevServer filled with defaults.
func NewDevServer() *DevServer {
	return &DevServer{
		Addr:       ":8000",
		JWTSecret:  "dev-secret-change-me",
		LogLevel:   "info",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		DBPath:     ":memory:",

		AuthRateLimit:        30,
		BcryptCost:           10,
		TokenCleanupInterval: time.Hour,
		Seed:                 true,
	}
}

// Validate checks the loaded values.
func (c *DevServer) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if len(c.JWTSecret) < 8 {
		return fmt.Errorf("jwt_secret must be at least 8 characters")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.AuthRateLimit <= 0 {
		return fmt.Errorf("auth_rate_limit must be positive")
	}
	// Пределы bcrypt.MinCost и bcrypt.MaxCost
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31")
	}
	if c.TokenCleanupInterval <= 0 {
		return fmt.Errorf("token_cleanup_interval must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}
