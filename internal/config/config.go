package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	ShopifyStoreDomain     string        `env:"SHOPIFY_STORE_DOMAIN,required" validate:"required,hostname"`
	ShopifyAccessToken     string        `env:"SHOPIFY_STOREFRONT_ACCESS_TOKEN,required" validate:"required"`
	ShopifyAPIVersion      string        `env:"SHOPIFY_API_VERSION" envDefault:"2024-01" validate:"required"`
	ShopifyPageSize        int           `env:"SHOPIFY_PAGE_SIZE" envDefault:"250" validate:"min=1,max=250"`
	ShopifyVariantPageSize int           `env:"SHOPIFY_VARIANT_PAGE_SIZE" envDefault:"100" validate:"min=1,max=250"`
	ShopifyTimeout         time.Duration `env:"SHOPIFY_TIMEOUT" envDefault:"15s" validate:"gt=0"`

	DiscountMetaobjectType   string `env:"DISCOUNT_METAOBJECT_TYPE"`
	DiscountMetaobjectHandle string `env:"DISCOUNT_METAOBJECT_HANDLE"`

	DiscountCacheTTL   time.Duration `env:"DISCOUNT_CACHE_TTL" envDefault:"5m"`
	ProductCacheTTL    time.Duration `env:"PRODUCT_CACHE_TTL" envDefault:"5m"`
	CollectionCacheTTL time.Duration `env:"COLLECTION_CACHE_TTL" envDefault:"1h"`
	CacheRetention     time.Duration `env:"CACHE_RETENTION" envDefault:"720h"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis postgres"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis"`
	DatabaseURL           string `env:"DATABASE_URL" validate:"required_if=CacheProvider postgres"`

	NavigationConfigPath string `env:"NAVIGATION_CONFIG_PATH"`
	ChromePath           string `env:"CHROME_PATH"`
	PDFFontPath          string `env:"PDF_FONT_PATH"`

	SentryDSN   string `env:"SENTRY_DSN" validate:"omitempty,url"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h" validate:"gt=0"`
	SessionCapacity int           `env:"SESSION_CAPACITY" envDefault:"1000" validate:"min=1"`

	BaseURL string `env:"BASE_URL" validate:"omitempty,url"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	LogFile   string     `env:"LOG_FILE"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	hasType := strings.TrimSpace(c.DiscountMetaobjectType) != ""
	hasHandle := strings.TrimSpace(c.DiscountMetaobjectHandle) != ""
	if hasType != hasHandle {
		return fmt.Errorf("DISCOUNT_METAOBJECT_TYPE and DISCOUNT_METAOBJECT_HANDLE must be set together")
	}

	for name, ttl := range map[string]time.Duration{
		"DISCOUNT_CACHE_TTL":   c.DiscountCacheTTL,
		"PRODUCT_CACHE_TTL":    c.ProductCacheTTL,
		"COLLECTION_CACHE_TTL": c.CollectionCacheTTL,
	} {
		if ttl < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
		if c.CacheRetention > 0 && ttl > c.CacheRetention {
			return fmt.Errorf("%s must not exceed CACHE_RETENTION", name)
		}
	}

	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Hostname() == "" {
			return fmt.Errorf("BASE_URL must be a valid absolute URL")
		}
		if !isLocalHost(parsed.Hostname()) && !strings.EqualFold(parsed.Scheme, "https") {
			return fmt.Errorf("BASE_URL must use https outside local development")
		}
	}

	return nil
}

// DiscountSettingsConfigured reports whether the discount metaobject is set.
func (c *Config) DiscountSettingsConfigured() bool {
	return strings.TrimSpace(c.DiscountMetaobjectType) != "" && strings.TrimSpace(c.DiscountMetaobjectHandle) != ""
}

func isLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}
