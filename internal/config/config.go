package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"    validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// ShutdownTimeoutSeconds bounds graceful shutdown of the HTTP server and
	// the task engine.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// ShutdownTimeout returns ShutdownTimeoutSeconds as a duration.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`

	// AutoMigrate applies pending migrations at startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// RedisConfig contains the status cache connection settings.
type RedisConfig struct {
	Addr             string `mapstructure:"addr"               validate:"required,hostname_port"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"                 validate:"gte=0,lte=15"`
	StatusTTLSeconds int    `mapstructure:"status_ttl_seconds" validate:"gt=0"`
}

// StatusTTL returns StatusTTLSeconds as a duration.
func (c RedisConfig) StatusTTL() time.Duration {
	return time.Duration(c.StatusTTLSeconds) * time.Second
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	// GeminiAPIKey enables the Gemini text model. When empty the generators
	// run in simulated mode, unless Required is set.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`

	// Required makes a missing or unusable Gemini configuration fatal at startup.
	Required bool `mapstructure:"required"`

	TextModel         string `mapstructure:"text_model"          validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1"`
}

// TaskConfig contains the task engine settings.
type TaskConfig struct {
	// WorkerCount is the maximum number of tasks processed concurrently.
	WorkerCount int `mapstructure:"worker_count" validate:"gte=1,lte=256"`

	// SimulatedLatencyMS is how long simulated generators pause.
	SimulatedLatencyMS int `mapstructure:"simulated_latency_ms" validate:"gte=0"`

	// StatusWriteTimeoutSeconds bounds each individual store or cache write.
	StatusWriteTimeoutSeconds int `mapstructure:"status_write_timeout_seconds" validate:"gt=0"`
}

// SimulatedLatency returns SimulatedLatencyMS as a duration.
func (c TaskConfig) SimulatedLatency() time.Duration {
	return time.Duration(c.SimulatedLatencyMS) * time.Millisecond
}

// StatusWriteTimeout returns StatusWriteTimeoutSeconds as a duration.
func (c TaskConfig) StatusWriteTimeout() time.Duration {
	return time.Duration(c.StatusWriteTimeoutSeconds) * time.Second
}

// StorageConfig contains the filesystem locations used by the image renderer.
type StorageConfig struct {
	// GeneratedPath is the directory generated images are written under.
	GeneratedPath string `mapstructure:"generated_path" validate:"required"`

	// AssetsPath holds decorative element images (<id>.png). Missing
	// elements are skipped.
	AssetsPath string `mapstructure:"assets_path"`
}

// AuthConfig contains all authentication and authorization settings.
// Authentication is disabled when JWTSecret is empty.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// Enabled reports whether bearer-token authentication is configured.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}
