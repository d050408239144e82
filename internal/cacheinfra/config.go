package cacheinfra

import (
	"time"
)

// Backend selects the cache store implementation.
type Backend string

const (
	// BackendLocal keeps entries in process using sturdyc.
	BackendLocal Backend = "local"
	// BackendRedis keeps entries in Redis, standalone or cluster.
	BackendRedis Backend = "redis"
)

// Config holds the configuration for building a cache store.
type Config struct {
	// Backend picks the store. Default: local
	Backend Backend `yaml:"backend"`

	// Capacity defines the maximum number of entries the local store keeps.
	// Must be greater than 0.
	Capacity int `yaml:"capacity"`

	// NumShards determines the number of local cache shards.
	// Must be greater than 0. Default: 256
	NumShards int `yaml:"num_shards"`

	// TTL is the longest lifetime a local entry can have. Per entry TTLs
	// above it are capped. Must be greater than 0.
	TTL time.Duration `yaml:"ttl"`

	// EvictionPercentage specifies what percentage of local entries to evict
	// when the store reaches its capacity. Must be between 1-100.
	EvictionPercentage int `yaml:"eviction_percentage"`

	// EvictionInterval sets how often expired local entries are swept.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration `yaml:"eviction_interval"`

	Redis RedisConfig `yaml:"redis"`

	// Breaker wraps the store in a circuit breaker. Nil disables it.
	Breaker *BreakerConfig `yaml:"breaker"`
}

// RedisConfig configures the Redis backend. More than one address builds a
// cluster client.
type RedisConfig struct {
	Addrs       []string      `yaml:"addrs"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// ScanCount is the COUNT hint sent with every SCAN call.
	ScanCount int64 `yaml:"scan_count"`
}

// BreakerConfig configures the circuit breaker placed in front of a store.
type BreakerConfig struct {
	Name string `yaml:"name"`

	// MaxRequests allowed through while half-open.
	MaxRequests uint32 `yaml:"max_requests"`

	// Interval after which closed state counts are cleared. Zero never clears.
	Interval time.Duration `yaml:"interval"`

	// Timeout spent open before probing again.
	Timeout time.Duration `yaml:"timeout"`

	// FailureThreshold is the failure ratio that trips the breaker, in (0, 1].
	FailureThreshold float64 `yaml:"failure_threshold"`

	// MinRequests needed before the ratio is evaluated.
	MinRequests uint32 `yaml:"min_requests"`
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Backend:            BackendLocal,
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
		Redis: RedisConfig{
			Addrs:       []string{"localhost:6379"},
			DialTimeout: 5 * time.Second,
			ScanCount:   100,
		},
		Breaker: DefaultBreakerConfig("cache"),
	}
}

// DefaultBreakerConfig returns breaker settings named after the guarded store.
func DefaultBreakerConfig(name string) *BreakerConfig {
	return &BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Validate checks if the configuration values are valid.
// Returns an error if any configuration parameter is invalid.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendLocal, BackendRedis:
	default:
		return &ConfigError{Field: "Backend", Message: "must be one of local, redis"}
	}

	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}

	if c.Backend == BackendRedis {
		if len(c.Redis.Addrs) == 0 {
			return &ConfigError{Field: "Redis.Addrs", Message: "must list at least one address"}
		}
		if c.Redis.DB < 0 {
			return &ConfigError{Field: "Redis.DB", Message: "must be non-negative"}
		}
		if c.Redis.ScanCount <= 0 {
			return &ConfigError{Field: "Redis.ScanCount", Message: "must be greater than 0"}
		}
	}

	if b := c.Breaker; b != nil {
		if b.FailureThreshold <= 0 || b.FailureThreshold > 1 {
			return &ConfigError{Field: "Breaker.FailureThreshold", Message: "must be in (0, 1]"}
		}
		if b.Timeout <= 0 {
			return &ConfigError{Field: "Breaker.Timeout", Message: "must be greater than 0"}
		}
		if b.Interval < 0 {
			return &ConfigError{Field: "Breaker.Interval", Message: "must be non-negative"}
		}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
