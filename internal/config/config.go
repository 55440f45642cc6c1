package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	// Backend is the upstream REST API that owns /login and /courses
	Backend struct {
		BaseURL string `yaml:"base_url" env:"BACKEND_BASE_URL"`
		Timeout string `yaml:"timeout" env:"BACKEND_TIMEOUT"`
	} `yaml:"backend"`

	Session struct {
		Secret        string `yaml:"secret" env:"SESSION_SECRET"`
		Issuer        string `yaml:"issuer" env:"SESSION_ISSUER"`
		MaxAge        string `yaml:"max_age" env:"SESSION_MAX_AGE"`
		SecureCookies bool   `yaml:"secure_cookies" env:"SESSION_SECURE_COOKIES"`
	} `yaml:"session"`

	CSRF struct {
		// Key is 32 bytes, hex encoded
		Key            string   `yaml:"key" env:"CSRF_KEY"`
		TrustedOrigins []string `yaml:"trusted_origins" env:"CSRF_TRUSTED_ORIGINS"`
	} `yaml:"csrf"`

	Email struct {
		ResendAPIKey string   `yaml:"resend_api_key" env:"RESEND_API_KEY"`
		From         string   `yaml:"from" env:"EMAIL_FROM"`
		ContactTo    []string `yaml:"contact_to" env:"EMAIL_CONTACT_TO"`
	} `yaml:"email"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// The file is optional; env vars alone are enough in containers
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Backend.BaseURL = "http://localhost:5000"
	config.Backend.Timeout = "10s"

	config.Session.Issuer = "studycrew.web"
	config.Session.MaxAge = "720h"

	config.CSRF.TrustedOrigins = []string{"localhost:8080", "127.0.0.1:8080"}

	config.Email.From = "StudyCrew <noreply@studycrew.app>"
	config.Email.ContactTo = []string{"hello@studycrew.app"}

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	u, err := url.Parse(config.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend base URL %q must be an absolute URL", config.Backend.BaseURL)
	}

	if _, err := time.ParseDuration(config.Backend.Timeout); err != nil {
		return fmt.Errorf("invalid backend timeout format: %w", err)
	}

	if _, err := time.ParseDuration(config.Session.MaxAge); err != nil {
		return fmt.Errorf("invalid session max age format: %w", err)
	}

	if config.IsProduction() {
		if config.Session.Secret == "" {
			return fmt.Errorf("session secret is required in production")
		}
		if config.CSRF.Key == "" {
			return fmt.Errorf("CSRF key is required in production")
		}
	}

	if config.CSRF.Key != "" {
		if _, err := config.CSRFKey(); err != nil {
			return err
		}
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// CSRFKey decodes the configured CSRF key
func (c *Config) CSRFKey() ([]byte, error) {
	key, err := hex.DecodeString(c.CSRF.Key)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("CSRF key must be 64 hex characters (32 bytes)")
	}
	return key, nil
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt gets an environment variable as an integer or returns a default value
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
