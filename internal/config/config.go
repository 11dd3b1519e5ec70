package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	LLM    LLMConfig    `mapstructure:"llm" validate:"required"`
	Task   TaskConfig   `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// ShutdownTimeoutSeconds bounds how long in-flight jobs may finish on shutdown
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// Addr returns the host:port the HTTP server listens on
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ShutdownTimeout returns ShutdownTimeoutSeconds as a duration
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Backend     string  `mapstructure:"backend" validate:"required,llm_backend"`
	Model       string  `mapstructure:"model" validate:"required"`
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gt=0"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`

	// APIKey overrides the backend's conventional environment variable
	// (GOOGLE_API_KEY for google). It is never written to logs.
	APIKey string `mapstructure:"api_key"`

	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"gte=0"`

	// ValidateStructuredOutput checks structured answers against their schema
	// before a job completes
	ValidateStructuredOutput bool `mapstructure:"validate_structured_output"`
}

// RequestTimeout returns RequestTimeoutSeconds as a duration
func (c LLMConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// TaskConfig contains settings for background job execution.
type TaskConfig struct {
	// MaxConcurrent caps concurrently executing jobs; 0 means unbounded
	MaxConcurrent int `mapstructure:"max_concurrent" validate:"gte=0"`

	// RetentionMinutes is how long finished jobs stay queryable; 0 keeps them forever
	RetentionMinutes int `mapstructure:"retention_minutes" validate:"gte=0"`

	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes" validate:"gt=0"`
}

// Retention returns RetentionMinutes as a duration
func (c TaskConfig) Retention() time.Duration {
	return time.Duration(c.RetentionMinutes) * time.Minute
}

// SweepInterval returns SweepIntervalMinutes as a duration
func (c TaskConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}
