package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

const (
	RecentBackendMemory = "memory"
	RecentBackendRedis  = "redis"
)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Redis      config.RedisConfig      `koanf:"redis"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Resilience config.ResilienceConfig `koanf:"resilience"`

	Catalog CatalogConfig `koanf:"catalog"`
	Search  SearchConfig  `koanf:"search"`
	Recent  RecentConfig  `koanf:"recent"`
	Images  ImagesConfig  `koanf:"images"`
}

type CatalogConfig struct {
	PageSize int `koanf:"pagesize"`
	// TotalTTL bounds how long the cached catalog total lives in Redis.
	TotalTTL time.Duration `koanf:"totalttl"`
}

type SearchConfig struct {
	// Limit caps the results of each planned query.
	Limit int `koanf:"limit"`
}

type RecentConfig struct {
	Backend string        `koanf:"backend"`
	Cap     int           `koanf:"cap"`
	TTL     time.Duration `koanf:"ttl"`
}

type ImagesConfig struct {
	BaseURL  string `koanf:"baseurl"`
	MaxBytes int64  `koanf:"maxbytes"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Redis.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.Shutdown.String())

	b.WriteString("\n--- Storefront ---\n")
	b.WriteString(fmt.Sprintf("  catalog.pagesize: %d\n", c.Catalog.PageSize))
	b.WriteString(fmt.Sprintf("  catalog.totalttl: %s\n", c.Catalog.TotalTTL))
	b.WriteString(fmt.Sprintf("  search.limit: %d\n", c.Search.Limit))
	b.WriteString(fmt.Sprintf("  recent.backend: %s\n", c.Recent.Backend))
	b.WriteString(fmt.Sprintf("  recent.cap: %d\n", c.Recent.Cap))
	b.WriteString(fmt.Sprintf("  recent.ttl: %s\n", c.Recent.TTL))
	b.WriteString(fmt.Sprintf("  images.baseurl: %s\n", c.Images.BaseURL))
	b.WriteString(fmt.Sprintf("  images.maxbytes: %d\n", c.Images.MaxBytes))
	return b.String()
}

// Validate checks every block and reports all problems at once.
func (c *Config) Validate() error {
	return errors.Join(
		c.HTTPServer.Validate(),
		c.Database.Validate(),
		c.Log.Validate(),
		c.PProf.Validate(),
		c.Shutdown.Validate(),
		c.GRPC.Validate(),
		c.Telemetry.Validate(),
		c.Redis.Validate(),
		c.NATS.Validate(),
		c.Resilience.Validate(),
		c.validateService(),
	)
}

func (c *Config) validateService() error {
	var errs []error
	if c.Catalog.PageSize < 0 {
		errs = append(errs, fmt.Errorf("catalog page size must not be negative: %d", c.Catalog.PageSize))
	}
	if c.Catalog.TotalTTL < 0 {
		errs = append(errs, fmt.Errorf("catalog total ttl must not be negative: %s", c.Catalog.TotalTTL))
	}
	if c.Search.Limit < 0 {
		errs = append(errs, fmt.Errorf("search limit must not be negative: %d", c.Search.Limit))
	}
	if c.Recent.Backend == "" {
		c.Recent.Backend = RecentBackendMemory
	}
	switch c.Recent.Backend {
	case RecentBackendMemory:
	case RecentBackendRedis:
		if !c.Redis.Enabled() {
			errs = append(errs, fmt.Errorf("recent backend %q requires redis.addr", c.Recent.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported recent backend: %s", c.Recent.Backend))
	}
	if c.Recent.Cap < 0 {
		errs = append(errs, fmt.Errorf("recent cap must not be negative: %d", c.Recent.Cap))
	}
	if c.Images.BaseURL == "" {
		errs = append(errs, fmt.Errorf("images base URL is not configured"))
	}
	if c.Images.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("images max bytes must not be negative: %d", c.Images.MaxBytes))
	}
	return errors.Join(errs...)
}
