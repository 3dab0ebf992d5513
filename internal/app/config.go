package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/pharmadesk/pharmadesk/internal/inventory"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	LowStockThreshold          int `envconfig:"LOW_STOCK_THRESHOLD" default:"50"`
	StockExpiryHorizonDays     int `envconfig:"STOCK_EXPIRY_HORIZON_DAYS" default:"30"`
	CatalogExpiryHorizonMonths int `envconfig:"CATALOG_EXPIRY_HORIZON_MONTHS" default:"6"`
	AlertExpiryHorizonDays     int `envconfig:"ALERT_EXPIRY_HORIZON_DAYS" default:"30"`

	WorkerEnabled bool   `envconfig:"WORKER_ENABLED" default:"true"`
	AlertScanCron string `envconfig:"ALERT_SCAN_CRON" default:"*/15 * * * *"`

	SeedPath string `envconfig:"SEED_PATH"`
}

// LoadConfig reads configuration from environment variables. A .env file in the
// working directory is applied first without overriding variables already set.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("app: load .env: %w", err)
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

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.LowStockThreshold <= 0 {
		errs = append(errs, errors.New("LOW_STOCK_THRESHOLD must be positive"))
	}
	if c.StockExpiryHorizonDays <= 0 {
		errs = append(errs, errors.New("STOCK_EXPIRY_HORIZON_DAYS must be positive"))
	}
	if c.CatalogExpiryHorizonMonths <= 0 {
		errs = append(errs, errors.New("CATALOG_EXPIRY_HORIZON_MONTHS must be positive"))
	}
	if c.AlertExpiryHorizonDays <= 0 {
		errs = append(errs, errors.New("ALERT_EXPIRY_HORIZON_DAYS must be positive"))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("CACHE_TTL must not be negative"))
	}
	if c.WorkerEnabled && strings.TrimSpace(c.AlertScanCron) == "" {
		errs = append(errs, errors.New("ALERT_SCAN_CRON required when the worker is enabled"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("app: invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Policy returns the stock policy described by the configuration.
func (c *Config) Policy() inventory.Policy {
	if c == nil {
		return inventory.DefaultPolicy()
	}
	return inventory.Policy{
		LowStockThreshold: c.LowStockThreshold,
		StockHorizon:      inventory.Horizon{Days: c.StockExpiryHorizonDays},
		CatalogHorizon:    inventory.Horizon{Months: c.CatalogExpiryHorizonMonths},
		AlertHorizon:      inventory.Horizon{Days: c.AlertExpiryHorizonDays},
	}
}
