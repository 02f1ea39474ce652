package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Business    BusinessConfig    `mapstructure:"business"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Webhook     WebhookConfig     `mapstructure:"webhook"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Health      HealthConfig      `mapstructure:"health"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	Env             string        `mapstructure:"env"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SchedulerConfig struct {
	// ExpirySpec is a seconds-enabled cron expression.
	ExpirySpec string        `mapstructure:"expiry_spec"`
	JobTimeout time.Duration `mapstructure:"job_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BusinessConfig struct {
	Timezone          string        `mapstructure:"timezone"`
	RequestTTL        time.Duration `mapstructure:"request_ttl"`
	StatusCacheTTL    time.Duration `mapstructure:"status_cache_ttl"`
	ElevatedRole      string        `mapstructure:"elevated_role"`
	ReconcileAttempts int           `mapstructure:"reconcile_attempts"`
	QRCodeSize        int           `mapstructure:"qr_code_size"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type WebhookConfig struct {
	// Secret enables HMAC verification of PIX callbacks when non-empty.
	Secret string `mapstructure:"secret"`
}

type IdempotencyConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

var defaults = map[string]interface{}{
	"server.port":                 "8080",
	"server.host":                 "0.0.0.0",
	"server.env":                  "development",
	"server.read_timeout":         "15s",
	"server.write_timeout":        "15s",
	"server.shutdown_timeout":     "30s",
	"database.url":                "",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  "5m",
	"redis.addr":                  "localhost:6379",
	"redis.password":              "",
	"redis.db":                    0,
	"scheduler.expiry_spec":       "0 */5 * * * *",
	"scheduler.job_timeout":       "1m",
	"logging.level":               "info",
	"logging.format":              "json",
	"business.timezone":           "UTC",
	"business.request_ttl":        "24h",
	"business.status_cache_ttl":   "5s",
	"business.elevated_role":      "admin",
	"business.reconcile_attempts": 3,
	"business.qr_code_size":       256,
	"auth.jwt_secret":             "",
	"auth.issuer":                 "loan-ledger",
	"auth.token_ttl":              "1h",
	"webhook.secret":              "",
	"idempotency.ttl":             "24h",
	"health.timeout":              "5s",
}

// Load reads configuration from environment variables, after an optional
// .env file has been loaded into the process environment. Nested keys map
// to upper snake case, so business.request_ttl is BUSINESS_REQUEST_TTL.
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Logging keeps the conventional short names.
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
		return fmt.Errorf("BUSINESS_TIMEZONE must be a valid IANA zone: %w", err)
	}

	if c.Business.RequestTTL <= 0 {
		return fmt.Errorf("BUSINESS_REQUEST_TTL must be greater than 0")
	}

	if c.Business.StatusCacheTTL < 0 {
		return fmt.Errorf("BUSINESS_STATUS_CACHE_TTL must not be negative")
	}

	if c.Business.ReconcileAttempts <= 0 {
		return fmt.Errorf("BUSINESS_RECONCILE_ATTEMPTS must be greater than 0")
	}

	if c.Business.ElevatedRole == "" {
		return fmt.Errorf("BUSINESS_ELEVATED_ROLE is required")
	}

	if c.Business.QRCodeSize <= 0 {
		return fmt.Errorf("BUSINESS_QR_CODE_SIZE must be greater than 0")
	}

	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required in production")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Logging.Format)
	}

	if c.Health.Timeout <= 0 {
		return fmt.Errorf("HEALTH_TIMEOUT must be greater than 0")
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Location returns the business timezone used to decide "today".
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
