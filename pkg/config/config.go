package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is intentionally empty; every field carries its full variable
// name in its envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Env variable names referenced from tests and docs.
const (
	EnvAppEnv     = "AURELIA_APP_ENV"
	EnvPort       = "AURELIA_APP_PORT"
	EnvStatePath  = "AURELIA_STATE_PATH"
	EnvShopAPIURL = "AURELIA_SHOP_API_BASE_URL"
	EnvRedisURL   = "AURELIA_REDIS_URL"
)

type Config struct {
	App     AppConfig
	State   StateConfig
	ShopAPI ShopAPIConfig
	Redis   RedisConfig
	Catalog CatalogConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AURELIA_APP_ENV" required:"true"`
	Port         string `envconfig:"AURELIA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AURELIA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AURELIA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StateConfig locates the durable local snapshot database. One sqlite file
// holds all of this instance's state.
type StateConfig struct {
	Path string `envconfig:"AURELIA_STATE_PATH" default:"storefront.db"`
}

// ShopAPIConfig points at the brand's commerce backend.
//
// Timeout defaults to zero on purpose: a hung remote call never blocks a
// local mutation, it just leaves the line item unconfirmed.
type ShopAPIConfig struct {
	BaseURL string        `envconfig:"AURELIA_SHOP_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"AURELIA_SHOP_API_TIMEOUT" default:"0"`
}

// RedisConfig is optional; an empty URL disables the catalog cache.
type RedisConfig struct {
	URL          string        `envconfig:"AURELIA_REDIS_URL"`
	DialTimeout  time.Duration `envconfig:"AURELIA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AURELIA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AURELIA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type CatalogConfig struct {
	CacheTTL time.Duration `envconfig:"AURELIA_CATALOG_CACHE_TTL" default:"5m"`
}
