// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort                = 8080
	defaultServerHost                = "0.0.0.0"
	defaultReadTimeout               = 30 * time.Second
	defaultWriteTimeout              = 30 * time.Second
	defaultDatabasePath              = "./data/daohq.db"
	defaultDatabaseConnectionTimeout = 5 * time.Second
	defaultLogLevel                  = "info"
	defaultLogPretty                 = false
	defaultRealtimeBaseURL           = "http://localhost:8080"
	defaultReconnectFloor            = 300 * time.Millisecond
	defaultReconnectStep             = 300 * time.Millisecond
	defaultReconnectCeiling          = 1500 * time.Millisecond
	defaultReconcileInterval         = 15 * time.Second
	defaultWSTokenTTL                = 180 * time.Second
	defaultContentPerHalfHour        = 10
	defaultMusicPerHalfHour          = 10
	defaultMinBookingTime            = 30 * time.Minute
	defaultMaxBookingTime            = 4 * time.Hour
	envPrefix                        = "DAOHQ"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Realtime RealtimeConfig
	Auth     AuthConfig
	Limits   LimitsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path              string
	ConnectionTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// RealtimeConfig holds the live-sync client configuration.
// BaseURL is an http(s) URL; the websocket scheme is derived from it.
type RealtimeConfig struct {
	BaseURL           string
	Token             string
	ReconnectFloor    time.Duration
	ReconnectStep     time.Duration
	ReconnectCeiling  time.Duration
	ReconcileInterval time.Duration
}

// AuthConfig holds websocket token and schema-sync credentials
type AuthConfig struct {
	JWTSecret   string
	WSTokenTTL  time.Duration
	SystemToken string
}

// LimitsConfig holds booking content quotas.
// Content and music limits apply per 30 minutes of booking duration.
type LimitsConfig struct {
	ContentPerHalfHour int
	MusicPerHalfHour   int
	MinBookingTime     time.Duration
	MaxBookingTime     time.Duration
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/daohq")

	// Environment variable settings
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	// Database defaults
	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.connectiontimeout", defaultDatabaseConnectionTimeout)

	// Logging defaults
	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	// Realtime defaults
	v.SetDefault("realtime.baseurl", defaultRealtimeBaseURL)
	v.SetDefault("realtime.reconnectfloor", defaultReconnectFloor)
	v.SetDefault("realtime.reconnectstep", defaultReconnectStep)
	v.SetDefault("realtime.reconnectceiling", defaultReconnectCeiling)
	v.SetDefault("realtime.reconcileinterval", defaultReconcileInterval)

	// Auth defaults
	v.SetDefault("auth.wstokenttl", defaultWSTokenTTL)

	// Limits defaults
	v.SetDefault("limits.contentperhalfhour", defaultContentPerHalfHour)
	v.SetDefault("limits.musicperhalfhour", defaultMusicPerHalfHour)
	v.SetDefault("limits.minbookingtime", defaultMinBookingTime)
	v.SetDefault("limits.maxbookingtime", defaultMaxBookingTime)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}
	if c.Database.ConnectionTimeout <= 0 {
		return fmt.Errorf("invalid database connection timeout: %v (must be > 0)", c.Database.ConnectionTimeout)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	parsed, err := url.Parse(c.Realtime.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid realtime base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid realtime base URL scheme: %q (must be http or https)", parsed.Scheme)
	}

	if c.Realtime.ReconnectFloor <= 0 {
		return fmt.Errorf("invalid reconnect floor: %v (must be > 0)", c.Realtime.ReconnectFloor)
	}
	if c.Realtime.ReconnectCeiling < c.Realtime.ReconnectFloor {
		return fmt.Errorf("invalid reconnect ceiling: %v (must be >= floor %v)",
			c.Realtime.ReconnectCeiling, c.Realtime.ReconnectFloor)
	}
	if c.Realtime.ReconcileInterval <= 0 {
		return fmt.Errorf("invalid reconcile interval: %v (must be > 0)", c.Realtime.ReconcileInterval)
	}

	if c.Auth.WSTokenTTL <= 0 {
		return fmt.Errorf("invalid ws token TTL: %v (must be > 0)", c.Auth.WSTokenTTL)
	}

	if c.Limits.ContentPerHalfHour < 0 || c.Limits.MusicPerHalfHour < 0 {
		return fmt.Errorf("content limits must be non-negative")
	}
	if c.Limits.MaxBookingTime < c.Limits.MinBookingTime {
		return fmt.Errorf("invalid booking time bounds: max %v < min %v",
			c.Limits.MaxBookingTime, c.Limits.MinBookingTime)
	}

	return nil
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
