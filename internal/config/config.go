// Package config provides configuration management for the Content Studio
// service.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SSL mode constants for database connections.
const (
	// SSLModeDisable disables SSL (use only for local development).
	SSLModeDisable = "disable"
	// SSLModeRequire requires SSL but does not verify certificates.
	SSLModeRequire = "require"
	// SSLModeVerifyCA verifies the server certificate against a CA.
	SSLModeVerifyCA = "verify-ca"
	// SSLModeVerifyFull verifies the server certificate and hostname.
	SSLModeVerifyFull = "verify-full"
)

// Config holds all configuration for the Content Studio service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database"`
	// Temporal contains Temporal workflow orchestration settings.
	Temporal TemporalConfig `mapstructure:"temporal"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// AI contains the generation and metadata-extraction collaborator settings.
	AI AIConfig `mapstructure:"ai"`
	// Storage contains object storage (MinIO) settings.
	Storage StorageConfig `mapstructure:"storage"`
	// Kafka contains lifecycle-event publisher settings.
	Kafka KafkaConfig `mapstructure:"kafka"`
	// Generation contains format-generation pipeline settings.
	Generation GenerationConfig `mapstructure:"generation"`
	// Publish contains publish-handoff settings.
	Publish PublishConfig `mapstructure:"publish"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// MetricsPort is the metrics server port (default: 9091).
	MetricsPort int `mapstructure:"metrics_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname.
	Host string `mapstructure:"host"`
	// Port is the PostgreSQL server port (default: 5432).
	Port int `mapstructure:"port"`
	// User is the database username.
	User string `mapstructure:"user"`
	// Password is the database password (use environment variable in production).
	Password string `mapstructure:"password"`
	// Name is the database name.
	Name string `mapstructure:"name"`
	// SSLMode controls SSL connection security (require, verify-ca, verify-full, disable).
	// Default is "require" for production security. Use "disable" only for local development.
	SSLMode string `mapstructure:"ssl_mode"`
	// MaxConns is the maximum number of connections in the pool (default: 50).
	MaxConns int32 `mapstructure:"max_conns"`
	// MinConns is the minimum number of connections to keep open (default: 10).
	MinConns int32 `mapstructure:"min_conns"`
	// MaxConnLifetime is the maximum lifetime of a connection before it's closed.
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// MaxConnIdleTime is the maximum time a connection can be idle before it's closed.
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	// HealthCheckPeriod is the interval between health checks of idle connections.
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	// ConnectTimeout is the maximum time to wait for a connection.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// MigrationPath is the path to migration files (relative or absolute).
	MigrationPath string `mapstructure:"migration_path"`
	// MigrationAutoRun enables automatic migration on startup (default: false).
	MigrationAutoRun bool `mapstructure:"migration_auto_run"`
	// StatementCacheCapacity is the size of the prepared statement cache.
	StatementCacheCapacity int `mapstructure:"statement_cache_capacity"`
}

// TemporalConfig holds Temporal workflow configuration.
type TemporalConfig struct {
	// HostPort is the Temporal server address.
	HostPort string `mapstructure:"host_port"`
	// Namespace is the Temporal namespace.
	Namespace string `mapstructure:"namespace"`
	// TaskQueue is the task queue name for content generation workflows.
	TaskQueue string `mapstructure:"task_queue"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr, file path).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
}

// AIConfig holds the AI collaborator configuration. The generation service
// produces per-format content; the extractor derives topic metadata from a
// transcript when stored metadata is incomplete.
type AIConfig struct {
	// Generation contains the content-generation collaborator settings.
	Generation GenerationServiceConfig `mapstructure:"generation"`
	// Extractor contains the metadata-extraction LLM settings.
	Extractor ExtractorConfig `mapstructure:"extractor"`
}

// GenerationServiceConfig holds the content-generation collaborator settings.
type GenerationServiceConfig struct {
	// BaseURL is the generation service base URL.
	BaseURL string `mapstructure:"base_url"`
	// APIKey authenticates requests (loaded from CONTENTSTUDIO_AI_GENERATION_API_KEY).
	APIKey string `mapstructure:"-"`
	// Timeout is the HTTP timeout for a single generation call. The
	// per-format pipeline deadline is configured separately in
	// generation.format_timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second to the service.
	RateLimit float64 `mapstructure:"rate_limit"`
	// RateBurst is the burst size for the rate limiter.
	RateBurst int `mapstructure:"rate_burst"`
}

// ExtractorConfig holds the metadata-extraction LLM settings.
type ExtractorConfig struct {
	// Enabled controls whether the AI extractor is used at all. When
	// disabled the resolver always uses the deterministic fallback.
	Enabled bool `mapstructure:"enabled"`
	// APIKey is the LLM API key (loaded from CONTENTSTUDIO_AI_EXTRACTOR_API_KEY).
	APIKey string `mapstructure:"-"`
	// Model is the LLM model to use.
	Model string `mapstructure:"model"`
	// BaseURL is the LLM API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the timeout for LLM API calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxRetries is the maximum number of retries for failed calls.
	MaxRetries int `mapstructure:"max_retries"`
	// Temperature is the LLM temperature setting.
	Temperature float64 `mapstructure:"temperature"`
}

// StorageConfig holds object storage (MinIO) settings.
type StorageConfig struct {
	// Enabled controls whether the storage client is configured. When
	// false, storage operations are skipped rather than failing.
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is the MinIO server host:port.
	Endpoint string `mapstructure:"endpoint"`
	// AccessKey is the storage access key (loaded from CONTENTSTUDIO_STORAGE_ACCESS_KEY).
	AccessKey string `mapstructure:"-"`
	// SecretKey is the storage secret key (loaded from CONTENTSTUDIO_STORAGE_SECRET_KEY).
	SecretKey string `mapstructure:"-"`
	// UseSSL enables TLS for the storage connection.
	UseSSL bool `mapstructure:"use_ssl"`
	// Bucket is the bucket holding generated content blobs.
	Bucket string `mapstructure:"bucket"`
	// VideoBucket is the bucket holding avatar video blobs.
	VideoBucket string `mapstructure:"video_bucket"`
}

// KafkaConfig holds lifecycle-event publisher settings.
type KafkaConfig struct {
	// Enabled controls whether Kafka publishing is active.
	Enabled bool `mapstructure:"enabled"`
	// Brokers is the list of Kafka broker addresses.
	Brokers []string `mapstructure:"brokers"`
	// Topic is the Kafka topic to publish lifecycle events to.
	Topic string `mapstructure:"topic"`
	// BatchSize is the maximum number of messages to batch before sending.
	BatchSize int `mapstructure:"batch_size"`
	// BatchTimeout is the maximum time to wait for a batch to fill before sending.
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// GenerationConfig holds format-generation pipeline settings.
type GenerationConfig struct {
	// FormatTimeout is the hard per-format deadline for one generation
	// task. A timeout is treated like any other generation failure.
	FormatTimeout time.Duration `mapstructure:"format_timeout"`
	// MethodID identifies how generated content was produced, stored on
	// every content row written by the pipeline.
	MethodID int `mapstructure:"method_id"`
}

// PublishConfig holds publish-handoff settings.
type PublishConfig struct {
	// TransferURL is the downstream publishing system endpoint.
	TransferURL string `mapstructure:"transfer_url"`
	// TransferTimeout is the timeout for the handoff call.
	TransferTimeout time.Duration `mapstructure:"transfer_timeout"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	params := url.Values{}
	params.Set("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		params.Set("connect_timeout", fmt.Sprintf("%d", int(c.ConnectTimeout.Seconds())))
	}
	if c.StatementCacheCapacity > 0 {
		params.Set("statement_cache_capacity", fmt.Sprintf("%d", c.StatementCacheCapacity))
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		params.Encode(),
	)
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// MetricsAddress returns the metrics server address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("CONTENTSTUDIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/content-studio")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load secrets exclusively from environment variables.
	// These fields use mapstructure:"-" to prevent loading from config files.
	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets populates secret fields exclusively from environment variables.
// These fields are tagged with mapstructure:"-" to prevent loading from config files.
func loadSecrets(cfg *Config) {
	cfg.AI.Generation.APIKey = os.Getenv("CONTENTSTUDIO_AI_GENERATION_API_KEY")
	cfg.AI.Extractor.APIKey = os.Getenv("CONTENTSTUDIO_AI_EXTRACTOR_API_KEY")
	cfg.Storage.AccessKey = os.Getenv("CONTENTSTUDIO_STORAGE_ACCESS_KEY")
	cfg.Storage.SecretKey = os.Getenv("CONTENTSTUDIO_STORAGE_SECRET_KEY")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "contentstudio")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "content_studio")
	// Default to "require" for production security. Use CONTENTSTUDIO_DATABASE_SSL_MODE=disable for local development.
	v.SetDefault("database.ssl_mode", SSLModeRequire)
	v.SetDefault("database.max_conns", 50)
	v.SetDefault("database.min_conns", 10)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")
	v.SetDefault("database.health_check_period", "30s")
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.migration_path", "migrations")
	v.SetDefault("database.migration_auto_run", false)
	v.SetDefault("database.statement_cache_capacity", 512)

	// Temporal defaults
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "content-studio")
	v.SetDefault("temporal.task_queue", "content-studio-tasks")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// AI generation collaborator defaults
	v.SetDefault("ai.generation.base_url", "http://localhost:9200")
	v.SetDefault("ai.generation.timeout", "4m")
	v.SetDefault("ai.generation.rate_limit", 5.0)
	v.SetDefault("ai.generation.rate_burst", 6)

	// AI extractor defaults
	// API keys are loaded exclusively from environment variables (see loadSecrets).
	v.SetDefault("ai.extractor.enabled", true)
	v.SetDefault("ai.extractor.model", "gpt-4-turbo")
	v.SetDefault("ai.extractor.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.extractor.timeout", "60s")
	v.SetDefault("ai.extractor.max_retries", 3)
	v.SetDefault("ai.extractor.temperature", 0.3)

	// Storage defaults
	v.SetDefault("storage.enabled", true)
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "topic-content")
	v.SetDefault("storage.video_bucket", "avatar-videos")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "events.content_studio.lifecycle")
	v.SetDefault("kafka.batch_size", 100)
	v.SetDefault("kafka.batch_timeout", "10ms")

	// Generation pipeline defaults
	v.SetDefault("generation.format_timeout", "5m")
	v.SetDefault("generation.method_id", 1)

	// Publish defaults
	v.SetDefault("publish.transfer_url", "http://localhost:9300/courses")
	v.SetDefault("publish.transfer_timeout", "2m")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate server ports
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}

	// Validate database config
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns (%d) must be >= min_conns (%d)", c.Database.MaxConns, c.Database.MinConns)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	// Validate AI config
	if c.AI.Generation.BaseURL == "" {
		return fmt.Errorf("ai generation base_url is required")
	}
	if c.AI.Generation.RateLimit <= 0 {
		return fmt.Errorf("ai generation rate_limit must be positive")
	}
	if c.AI.Extractor.Enabled && c.AI.Extractor.Model == "" {
		return fmt.Errorf("ai extractor model is required when the extractor is enabled")
	}

	// Validate storage config
	if c.Storage.Enabled {
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("storage endpoint is required when storage is enabled")
		}
		if c.Storage.Bucket == "" || c.Storage.VideoBucket == "" {
			return fmt.Errorf("storage buckets are required when storage is enabled")
		}
	}

	// Validate Kafka config
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers are required when kafka is enabled")
	}

	// Validate generation config
	if c.Generation.FormatTimeout <= 0 {
		return fmt.Errorf("generation format_timeout must be positive")
	}

	// Validate temporal config
	if c.Temporal.HostPort == "" {
		return fmt.Errorf("temporal host_port is required")
	}
	if c.Temporal.TaskQueue == "" {
		return fmt.Errorf("temporal task_queue is required")
	}

	return nil
}
