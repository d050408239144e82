// Package config loads the inventory service configuration.
//
// Sources, lowest priority first:
//  1. Defaults (Default)
//  2. A YAML file, when a path is given
//  3. INVENTORY_* environment variables
//
// The merged result is validated before it is returned.
package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-inventory-cache/internal/cacheinfra"
)

// Codec names accepted by ServiceConfig.Codec.
const (
	CodecMsgpack = "msgpack"
	CodecJSON    = "json"
)

// Config is the complete service configuration.
type Config struct {
	Log      LogConfig         `yaml:"log"`
	Database DatabaseConfig    `yaml:"database"`
	Cache    cacheinfra.Config `yaml:"cache"`
	Service  ServiceConfig     `yaml:"service"`
	Metrics  MetricsConfig     `yaml:"metrics"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DatabaseConfig selects the SQL backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// EnsureSchema creates the products table on startup when missing.
	EnsureSchema bool `yaml:"ensure_schema"`
}

// ServiceConfig tunes the product service cache behaviour.
type ServiceConfig struct {
	TTL                time.Duration `yaml:"ttl"`
	Namespace          string        `yaml:"namespace"`
	Codec              string        `yaml:"codec"`
	StrictInvalidation bool          `yaml:"strict_invalidation"`
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used when nothing is overridden: an
// in-memory sqlite database and the local cache.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level: "info",
		},
		Database: DatabaseConfig{
			Driver:       "sqlite3",
			DSN:          "file:inventory?mode=memory&cache=shared",
			EnsureSchema: true,
		},
		Cache: cacheinfra.DefaultConfig(),
		Service: ServiceConfig{
			TTL:       5 * time.Minute,
			Namespace: "products",
			Codec:     CodecMsgpack,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "inventory",
		},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Level, validation.In("", "debug", "info", "warn", "error")),
	); err != nil {
		return sectionError("log", err)
	}

	if err := validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.Driver, validation.Required, validation.In("sqlite3", "sqlite", "postgres", "pg", "postgresql")),
		validation.Field(&c.Database.DSN, validation.Required),
	); err != nil {
		return sectionError("database", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return sectionError("cache", err)
	}

	if err := validation.ValidateStruct(&c.Service,
		validation.Field(&c.Service.TTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Service.Namespace, validation.Required),
		validation.Field(&c.Service.Codec, validation.Required, validation.In(CodecMsgpack, CodecJSON)),
	); err != nil {
		return sectionError("service", err)
	}

	// The local store caps every entry at Cache.TTL, so a longer service TTL
	// could never take effect.
	if c.Cache.Backend == cacheinfra.BackendLocal && c.Service.TTL > c.Cache.TTL {
		return sectionError("service", validation.Errors{
			"ttl": validation.NewError("validation_ttl_exceeds_cache",
				"must not exceed cache.ttl ("+c.Cache.TTL.String()+") with the local backend"),
		})
	}

	if c.Metrics.Enabled {
		if err := validation.ValidateStruct(&c.Metrics,
			validation.Field(&c.Metrics.Namespace, validation.Required),
		); err != nil {
			return sectionError("metrics", err)
		}
	}

	return nil
}
