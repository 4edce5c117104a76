package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Search    SearchConfig    `mapstructure:"search"`
	Content   ContentConfig   `mapstructure:"content"`
	Digest    DigestConfig    `mapstructure:"digest"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type AppConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
}

// IsProduction reports whether the app runs in production mode
func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
	CORSOrigins       []string      `mapstructure:"cors_origins"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	APIToken     string    `mapstructure:"api_token" validate:"required_without=APITokenHash"`
	APITokenHash string    `mapstructure:"api_token_hash"`
	Principal    string    `mapstructure:"principal"`
	JWT          JWTConfig `mapstructure:"jwt"`
}

type JWTConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Issuer  string        `mapstructure:"issuer"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"oneof=postgres mysql sqlite mongo"`
	URL             string        `mapstructure:"url" validate:"required"`
	MaxConns        int32         `mapstructure:"max_conns" validate:"min=1"`
	MinConns        int32         `mapstructure:"min_conns" validate:"min=0,ltefield=MaxConns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout" validate:"gt=0"`
	Retry           RetryConfig   `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"min=0,max=10"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

type SearchConfig struct {
	DefaultLimit int `mapstructure:"default_limit" validate:"min=1,ltefield=MaxLimit"`
	MaxLimit     int `mapstructure:"max_limit" validate:"min=1"`
}

type ContentConfig struct {
	DefaultLanguage string `mapstructure:"default_language" validate:"required"`
	DefaultTone     string `mapstructure:"default_tone" validate:"required"`
}

type DigestConfig struct {
	Window time.Duration `mapstructure:"window" validate:"gt=0"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	URL      string        `mapstructure:"url" validate:"required_if=Enabled true"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" validate:"min=0"`
	Burst             int  `mapstructure:"burst" validate:"min=0"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format       string        `mapstructure:"format" validate:"oneof=json console"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// Load reads configuration from the file named by CONFIG_PATH and environment variables
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}
	return LoadFile(configPath)
}

// LoadFile reads configuration from path and environment variables.
// A missing file is not an error; defaults and env vars still apply.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			fe := errs[0]
			return fmt.Errorf("invalid config: %s failed %s check", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "real-estate-mcp")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", false)

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.middleware_timeout", "30s")
	v.SetDefault("server.cors_origins", []string{"*"})

	// Auth
	v.SetDefault("auth.principal", "api-client")
	v.SetDefault("auth.jwt.enabled", false)
	v.SetDefault("auth.jwt.issuer", "real-estate-mcp")
	v.SetDefault("auth.jwt.ttl", "24h")

	// Database
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.query_timeout", "5s")
	v.SetDefault("database.retry.max_attempts", 0)
	v.SetDefault("database.retry.base_delay", "50ms")
	v.SetDefault("database.retry.max_delay", "1s")

	// Search
	v.SetDefault("search.default_limit", 20)
	v.SetDefault("search.max_limit", 100)

	// Content
	v.SetDefault("content.default_language", "en")
	v.SetDefault("content.default_tone", "professional")

	// Digest
	v.SetDefault("digest.window", "24h")

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.cache_ttl", "10m")

	// Rate limit
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 120)
	v.SetDefault("rate_limit.burst", 20)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_age", "168h") // 7 days
	v.SetDefault("logging.rotation_time", "24h")

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "realestate")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.env", "ENV")
	v.BindEnv("app.debug", "DEBUG")

	// Auth
	v.BindEnv("auth.api_token", "API_TOKEN")
	v.BindEnv("auth.api_token_hash", "API_TOKEN_HASH")

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.url", "DATABASE_URL")

	// Redis
	v.BindEnv("redis.url", "REDIS_URL")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
}
