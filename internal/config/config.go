// Package config handles loading and validating runtime configuration for the
// golf trips API. Values come from the environment (12-factor style), optionally
// seeded from a .env file in development and a YAML file named by
// GOLF_TRIPS_CONFIG. Precedence, low to high: defaults, YAML file, environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	// godotenv reads a .env file and loads its key=value pairs into the process
	// environment, which the env provider below then picks up.
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileEnvVar names the environment variable that points at an optional YAML config file.
const FileEnvVar = "GOLF_TRIPS_CONFIG"

// Config holds all runtime configuration values for the application.
type Config struct {
	Port        string `koanf:"port"`         // TCP port the HTTP server listens on
	DatabaseURL string `koanf:"database_url"` // PostgreSQL connection string
	Env         string `koanf:"env"`          // "development", "staging" or "production"
	LogLevel    string `koanf:"log_level"`    // debug, info, warn, error

	// MigrationsPath is the directory holding golang-migrate SQL files.
	MigrationsPath string `koanf:"migrations_path"`

	// AuthJWTSecret verifies owner tokens issued by the identity provider (HS256).
	AuthJWTSecret string `koanf:"auth_jwt_secret"`

	// ClubhouseJWTSecret signs the tokens handed out after a clubhouse password check.
	ClubhouseJWTSecret string `koanf:"clubhouse_jwt_secret"`
	// ClubhouseSessionTTL is how long a clubhouse token stays valid.
	ClubhouseSessionTTL time.Duration `koanf:"clubhouse_session_ttl"`
	// ClubhouseLoginPerMinute and ClubhouseLoginBurst bound password attempts per client IP.
	ClubhouseLoginPerMinute int `koanf:"clubhouse_login_per_minute"`
	ClubhouseLoginBurst     int `koanf:"clubhouse_login_burst"`
}

// Defaults returns a Config with every optional setting filled in.
func Defaults() *Config {
	return &Config{
		Port:                    "8080",
		Env:                     "development",
		LogLevel:                "info",
		MigrationsPath:          "migrations",
		ClubhouseSessionTTL:     7 * 24 * time.Hour,
		ClubhouseLoginPerMinute: 10,
		ClubhouseLoginBurst:     5,
	}
}

// knownKeys limits the env provider to the keys Config understands, so the
// rest of the process environment is never unmarshalled.
var knownKeys = map[string]bool{
	"port": true, "database_url": true, "env": true, "log_level": true,
	"migrations_path": true, "auth_jwt_secret": true, "clubhouse_jwt_secret": true,
	"clubhouse_session_ttl": true, "clubhouse_login_per_minute": true, "clubhouse_login_burst": true,
}

// Load reads configuration and validates it.
func Load() (*Config, error) {
	// A missing .env file is fine: real environment variables are set by the
	// deployment platform in production.
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv(FileEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if !knownKeys[key] {
			return ""
		}
		return key
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.IsDevelopment() {
		if cfg.AuthJWTSecret == "" {
			cfg.AuthJWTSecret = devSecret
		}
		if cfg.ClubhouseJWTSecret == "" {
			cfg.ClubhouseJWTSecret = devSecret
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// devSecret signs tokens when a development setup leaves the secrets unset.
const devSecret = "golf-trips-development-only"

// IsDevelopment reports whether the process runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks required settings. Secrets may be empty in development only.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if !c.IsDevelopment() {
		if c.AuthJWTSecret == "" {
			errs = append(errs, errors.New("AUTH_JWT_SECRET is required outside development"))
		}
		if c.ClubhouseJWTSecret == "" {
			errs = append(errs, errors.New("CLUBHOUSE_JWT_SECRET is required outside development"))
		}
	}
	if c.ClubhouseLoginPerMinute <= 0 || c.ClubhouseLoginBurst <= 0 {
		errs = append(errs, errors.New("clubhouse login limits must be positive"))
	}
	if c.ClubhouseSessionTTL <= 0 {
		errs = append(errs, errors.New("CLUBHOUSE_SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}
