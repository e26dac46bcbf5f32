package app

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	PGDSN      string `envconfig:"PG_DSN" required:"true"`
	PGMaxConns int32  `envconfig:"PG_MAX_CONNS" default:"10"`

	// RedisAddr enables the distributed numbering lock when set.
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	NumberLockTTL time.Duration `envconfig:"NUMBER_LOCK_TTL" default:"5s"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	BillDefaultDueDays int `envconfig:"BILL_DEFAULT_DUE_DAYS" default:"30"`
}

// LoadConfig reads configuration from environment variables, after loading
// an optional .env file outside test mode.
func LoadConfig() (*Config, error) {
	if !InTestMode() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("app: load .env: %w", err)
		}
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if c.PGDSN == "" {
		return errors.New("app: PG_DSN must be provided")
	}
	if c.BillDefaultDueDays <= 0 {
		return errors.New("app: BILL_DEFAULT_DUE_DAYS must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return errors.New("app: RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.NumberLockTTL <= 0 {
		return errors.New("app: NUMBER_LOCK_TTL must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
