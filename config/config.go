package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const defaultSessionSecret = "change-me-in-production"

type Config struct {
	// Server
	Port           string        `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UseHTTPS       bool          `yaml:"use_https"`

	// Database
	DatabasePath string `yaml:"database_path"`

	// Listing
	PageSize    int `yaml:"page_size"`
	MaxPageSize int `yaml:"max_page_size"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // json/console

	// Auth
	OIDCIssuerURL    string        `yaml:"oidc_issuer_url"`
	OIDCClientID     string        `yaml:"oidc_client_id"`
	OIDCClientSecret string        `yaml:"oidc_client_secret"`
	OIDCCallbackURL  string        `yaml:"oidc_callback_url"`
	SessionSecret    string        `yaml:"session_secret"`
	SessionLifetime  time.Duration `yaml:"session_lifetime"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Port:            "8080",
		RequestTimeout:  60 * time.Second,
		DatabasePath:    "contacts.db",
		PageSize:        10,
		MaxPageSize:     100,
		LogLevel:        "info",
		LogFormat:       "json",
		SessionSecret:   defaultSessionSecret,
		SessionLifetime: time.Hour,
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file and the environment, each overriding the previous.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	_ = godotenv.Load()

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.UseHTTPS = getEnvBool("USE_HTTPS", cfg.UseHTTPS)

	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)

	cfg.PageSize = getEnvInt("PAGE_SIZE", cfg.PageSize)
	cfg.MaxPageSize = getEnvInt("MAX_PAGE_SIZE", cfg.MaxPageSize)

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	cfg.OIDCIssuerURL = getEnv("OIDC_ISSUER_URL", cfg.OIDCIssuerURL)
	cfg.OIDCClientID = getEnv("OIDC_CLIENT_ID", cfg.OIDCClientID)
	cfg.OIDCClientSecret = getEnv("OIDC_CLIENT_SECRET", cfg.OIDCClientSecret)
	cfg.OIDCCallbackURL = getEnv("OIDC_CALLBACK_URL", cfg.OIDCCallbackURL)
	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.SessionLifetime = getEnvDuration("SESSION_LIFETIME", cfg.SessionLifetime)

	return cfg, nil
}

// AuthEnabled reports whether OpenID Connect login is configured.
func (c *Config) AuthEnabled() bool {
	return c.OIDCIssuerURL != ""
}

// Validate rejects unusable settings and warns about insecure ones.
func (c *Config) Validate(log *zap.Logger) error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database path is required")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.MaxPageSize < c.PageSize {
		return fmt.Errorf("max page size %d is below page size %d", c.MaxPageSize, c.PageSize)
	}

	if c.AuthEnabled() {
		var missing []string
		if c.OIDCClientID == "" {
			missing = append(missing, "OIDC_CLIENT_ID")
		}
		if c.OIDCClientSecret == "" {
			missing = append(missing, "OIDC_CLIENT_SECRET")
		}
		if c.OIDCCallbackURL == "" {
			missing = append(missing, "OIDC_CALLBACK_URL")
		}
		if len(missing) > 0 {
			return fmt.Errorf("OIDC is enabled but %s not set", strings.Join(missing, ", "))
		}
		if c.SessionSecret == defaultSessionSecret {
			log.Warn("SESSION_SECRET is default, change in production")
		}
		if !c.UseHTTPS {
			log.Warn("session cookies are not marked secure, set USE_HTTPS=true in production")
		}
	} else {
		log.Warn("OIDC_ISSUER_URL is not set, all requests run as anonymous")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return v
}
