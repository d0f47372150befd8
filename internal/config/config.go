// Package config loads moodflix configuration from defaults, an optional
// YAML file, .env files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: MOODFLIX_DATABASE__URL sets database.url.
const EnvPrefix = "MOODFLIX_"

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultPlaceholderImageURL replaces missing or invalid content images.
const DefaultPlaceholderImageURL = "https://via.placeholder.com/300x450.png?text=No+Image"

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

var (
	// ErrMissingDatabaseURL is returned when no database URL is configured.
	ErrMissingDatabaseURL = errors.New("missing database URL (set MOODFLIX_DATABASE__URL or DATABASE_URL)")

	// ErrMissingJWTSecret is returned when no token signing secret is configured.
	ErrMissingJWTSecret = errors.New("missing JWT secret (set MOODFLIX_AUTH__JWT_SECRET)")
)

// Config is the full application configuration.
type Config struct {
	Database    DatabaseConfig    `koanf:"database"`
	Server      ServerConfig      `koanf:"server"`
	Auth        AuthConfig        `koanf:"auth"`
	Async       AsyncConfig       `koanf:"async"`
	Maintenance MaintenanceConfig `koanf:"maintenance"`
	Logging     LoggingConfig     `koanf:"logging"`
}

type DatabaseConfig struct {
	URL      string `koanf:"url"`
	MaxConns int32  `koanf:"max_conns"`
	Migrate  bool   `koanf:"migrate"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	AuthRateLimit   int           `koanf:"auth_rate_limit"` // requests per minute per IP on signup/login
}

type AuthConfig struct {
	JWTSecret  string        `koanf:"jwt_secret"`
	TokenTTL   time.Duration `koanf:"token_ttl"`
	BcryptCost int           `koanf:"bcrypt_cost"`
}

type AsyncConfig struct {
	Workers   int `koanf:"workers"`
	QueueSize int `koanf:"queue_size"`
}

type MaintenanceConfig struct {
	PlaceholderImageURL string `koanf:"placeholder_image_url"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			MaxConns: 10,
			Migrate:  true,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AuthRateLimit:   20,
		},
		Auth: AuthConfig{
			TokenTTL:   time.Hour,
			BcryptCost: 10,
		},
		Async: AsyncConfig{
			Workers:   3,
			QueueSize: 64,
		},
		Maintenance: MaintenanceConfig{
			PlaceholderImageURL: DefaultPlaceholderImageURL,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. Precedence, lowest first: defaults, the
// YAML file at path (or the first default path found), .env files, process
// environment.
func Load(path string) (*Config, error) {
	loadDotEnv()

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Plain DATABASE_URL is honored for compatibility with hosting platforms.
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}

	return cfg, nil
}

// Validate checks the settings the server cannot run without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return ErrMissingDatabaseURL
	}
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.Async.Workers <= 0 {
		return fmt.Errorf("async.workers must be positive, got %d", c.Async.Workers)
	}
	return nil
}

// envKey maps MOODFLIX_AUTH__JWT_SECRET to auth.jwt_secret.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// loadDotEnv loads .env.local then .env. Variables already set in the
// environment are never overwritten.
func loadDotEnv() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}
