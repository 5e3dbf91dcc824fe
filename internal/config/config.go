package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Search    SearchConfig
	Chat      ChatConfig
	Assets    AssetConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	Env             string        `env:"SERVER_ENV" envDefault:"development"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string `env:"DB_HOST" envDefault:"localhost"`
	Port      string `env:"DB_PORT" envDefault:"8000"`
	Namespace string `env:"DB_NAMESPACE" envDefault:"hearth"`
	Database  string `env:"DB_DATABASE" envDefault:"main"`
	User      string `env:"DB_USER" envDefault:"root"`
	Password  string `env:"DB_PASSWORD" envDefault:"root"`

	// Zero disables the keepalive
	KeepaliveInterval time.Duration `env:"DB_KEEPALIVE_INTERVAL" envDefault:"30s"`
}

// JWTConfig holds JWT signing settings
type JWTConfig struct {
	PrivateKeyPath string `env:"JWT_PRIVATE_KEY_PATH" envDefault:"./keys/private.pem"`
	PublicKeyPath  string `env:"JWT_PUBLIC_KEY_PATH" envDefault:"./keys/public.pem"`
	ExpirationMins int    `env:"JWT_EXPIRATION_MINS" envDefault:"60"`
	Issuer         string `env:"JWT_ISSUER" envDefault:"hearth.forgo.software"`
}

// SearchConfig holds proximity search settings
type SearchConfig struct {
	PageSize     int    `env:"SEARCH_PAGE_SIZE" envDefault:"500"`
	DefaultLimit int    `env:"SEARCH_DEFAULT_LIMIT" envDefault:"100"`
	MaxLimit     int    `env:"SEARCH_MAX_LIMIT" envDefault:"500"`
	DefaultUnit  string `env:"SEARCH_DEFAULT_UNIT" envDefault:"mi"`
}

// ChatConfig holds chat settings
type ChatConfig struct {
	NodeID           int64         `env:"CHAT_NODE_ID" envDefault:"1"`
	MaxMessageLength int           `env:"CHAT_MAX_MESSAGE_LENGTH" envDefault:"4000"`
	Heartbeat        time.Duration `env:"CHAT_HEARTBEAT_INTERVAL" envDefault:"30s"`
}

// AssetConfig holds upload settings
type AssetConfig struct {
	MaxBytes int `env:"ASSET_MAX_BYTES" envDefault:"5242880"`
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	Burst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads configuration from the given variables instead of the
// process environment
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Search.DefaultUnit = strings.ToLower(strings.TrimSpace(cfg.Search.DefaultUnit))
	return &cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}
	if c.Database.KeepaliveInterval < 0 {
		errs = append(errs, errors.New("DB_KEEPALIVE_INTERVAL must not be negative"))
	}

	if c.IsProduction() {
		if c.JWT.PrivateKeyPath == "" {
			errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH is required in production"))
		}
		if c.JWT.PublicKeyPath == "" {
			errs = append(errs, errors.New("JWT_PUBLIC_KEY_PATH is required in production"))
		}
	}
	if c.JWT.ExpirationMins <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MINS must be positive"))
	}

	if c.Search.PageSize <= 0 {
		errs = append(errs, errors.New("SEARCH_PAGE_SIZE must be positive"))
	}
	if c.Search.MaxLimit <= 0 {
		errs = append(errs, errors.New("SEARCH_MAX_LIMIT must be positive"))
	}
	if c.Search.DefaultLimit <= 0 || c.Search.DefaultLimit > c.Search.MaxLimit {
		errs = append(errs, fmt.Errorf("SEARCH_DEFAULT_LIMIT must be between 1 and SEARCH_MAX_LIMIT (%d)", c.Search.MaxLimit))
	}
	if c.Search.DefaultUnit != "mi" && c.Search.DefaultUnit != "km" {
		errs = append(errs, fmt.Errorf("SEARCH_DEFAULT_UNIT must be 'mi' or 'km', got '%s'", c.Search.DefaultUnit))
	}

	// snowflake reserves 10 bits for the node
	if c.Chat.NodeID < 0 || c.Chat.NodeID > 1023 {
		errs = append(errs, fmt.Errorf("CHAT_NODE_ID must be between 0 and 1023, got %d", c.Chat.NodeID))
	}
	if c.Chat.MaxMessageLength <= 0 {
		errs = append(errs, errors.New("CHAT_MAX_MESSAGE_LENGTH must be positive"))
	}

	if c.Assets.MaxBytes <= 0 {
		errs = append(errs, errors.New("ASSET_MAX_BYTES must be positive"))
	}

	if c.RateLimit.RPS <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be positive"))
	}
	if c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
