// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"telecrm/platform/validator"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// APIConfig provides settings for talking to the CRM REST API.
type APIConfig interface {
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
	GetAPIRateLimit() float64
	GetAPIRateBurst() int
}

// SessionConfig provides settings for the persisted login session.
type SessionConfig interface {
	GetSessionFile() string
	GetAuthCookieName() string
}

// PresetsConfig provides the optional preset phrases file.
type PresetsConfig interface {
	GetPresetsFile() string
}

// PhoneConfig provides the default region used to parse lead phone numbers.
type PhoneConfig interface {
	GetPhoneRegion() string
}

// LogConfig provides logging destination settings.
type LogConfig interface {
	GetEnv() string
	GetLogFile() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env            string        `validate:"required"`
	APIBaseURL     string        `validate:"required,url"`
	HTTPTimeout    time.Duration `validate:"gte=0"`
	APIRateLimit   float64       `validate:"gte=0"`
	APIRateBurst   int           `validate:"gte=1"`
	SessionFile    string        `validate:"required"`
	AuthCookieName string        `validate:"required"`
	PresetsFile    string
	PhoneRegion    string `validate:"required,len=2"`
	LogFile        string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// APIConfig implementation
func (c *Config) GetAPIBaseURL() string         { return c.APIBaseURL }
func (c *Config) GetHTTPTimeout() time.Duration { return c.HTTPTimeout }
func (c *Config) GetAPIRateLimit() float64      { return c.APIRateLimit }
func (c *Config) GetAPIRateBurst() int          { return c.APIRateBurst }

// SessionConfig implementation
func (c *Config) GetSessionFile() string    { return c.SessionFile }
func (c *Config) GetAuthCookieName() string { return c.AuthCookieName }

// PresetsConfig implementation
func (c *Config) GetPresetsFile() string { return c.PresetsFile }

// PhoneConfig implementation
func (c *Config) GetPhoneRegion() string { return c.PhoneRegion }

// LogConfig implementation
func (c *Config) GetEnv() string     { return c.Env }
func (c *Config) GetLogFile() string { return c.LogFile }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000/api"), "/"),
		HTTPTimeout:    mustDuration(getEnv("HTTP_TIMEOUT", "30s")),
		APIRateLimit:   mustFloat(getEnv("API_RATE_LIMIT", "10")),
		APIRateBurst:   mustInt(getEnv("API_RATE_BURST", "10")),
		SessionFile:    getEnv("SESSION_FILE", defaultSessionFile()),
		AuthCookieName: getEnv("AUTH_COOKIE_NAME", "token"),
		PresetsFile:    getEnv("PRESETS_FILE", ""),
		PhoneRegion:    strings.ToUpper(getEnv("PHONE_REGION", "IN")),
		LogFile:        getEnv("LOG_FILE", ""),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".telecaller-session.json"
	}
	return filepath.Join(dir, "telecaller", "session.json")
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}
