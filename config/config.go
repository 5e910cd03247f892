// Package config loads the analyzer settings from the environment.
package config

import (
	"fmt"
	"time"

	"energy-analyzer/internal/core"
	pkgredis "energy-analyzer/pkg/redis"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting of the analyzer.
type Config struct {
	Env string `envconfig:"APP_ENV" default:"development" validate:"oneof=development staging testing production"`

	Backend   BackendConfig
	Analytics AnalyticsConfig
	Telegram  TelegramConfig
	HTTP      HTTPConfig
	Redis     pkgredis.Config

	DatabasePath    string        `envconfig:"DATABASE_PATH" default:"./analyzer.db" validate:"required"`
	CacheTTL        time.Duration `envconfig:"CACHE_TTL" default:"1h" validate:"gt=0"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"30m" validate:"gte=0"`
}

// BackendConfig locates the plans REST backend.
type BackendConfig struct {
	BaseURL    string        `envconfig:"BACKEND_BASE_URL" validate:"required,url"`
	Timeout    time.Duration `envconfig:"BACKEND_TIMEOUT" default:"30s" validate:"gt=0"`
	ForceHTTPS bool          `envconfig:"BACKEND_FORCE_HTTPS" default:"false"`
}

// AnalyticsConfig are the usage defaults applied when a user sets none.
type AnalyticsConfig struct {
	UsageKwh float64 `envconfig:"USAGE_KWH" default:"1146" validate:"gt=0"`
	BaseFee  float64 `envconfig:"BASE_FEE" default:"9.95" validate:"gte=0"`
}

// TelegramConfig enables the bot when Token is set.
type TelegramConfig struct {
	Token string `envconfig:"TELEGRAM_BOT_TOKEN"`
	// ChatID restricts /scrape to one chat when non-zero.
	ChatID int64 `envconfig:"TELEGRAM_CHAT_ID"`
}

// HTTPConfig configures the dashboard API.
type HTTPConfig struct {
	Addr      string `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
	RateLimit int    `envconfig:"HTTP_RATE_LIMIT" default:"60" validate:"gt=0"`
}

// Environment returns the typed deployment environment.
func (c *Config) Environment() core.Environment {
	return core.ParseEnvironment(c.Env)
}

// BotEnabled reports whether a Telegram token was configured.
func (c *Config) BotEnabled() bool {
	return c.Telegram.Token != ""
}

// Load reads .env when present and then the process environment.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	cfg, err := FromEnv()
	return cfg, dotenv, err
}

// FromEnv builds and validates the config from the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
