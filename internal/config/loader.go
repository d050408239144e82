package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-inventory-cache/internal/cacheinfra"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INVENTORY_"

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, goerrors.Wrap(err, goerrors.CategoryInternal, "read config file "+path)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result. The
// environment is not consulted.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := decodeYAML(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "decode config yaml").
			WithTextCode("CONFIG_INVALID_YAML")
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

// applyEnv overlays INVENTORY_* variables. Unparseable values are errors.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	p := envParser{lookup: lookup}

	p.str("LOG_LEVEL", &cfg.Log.Level)
	p.boolean("LOG_DEVELOPMENT", &cfg.Log.Development)

	p.str("DB_DRIVER", &cfg.Database.Driver)
	p.str("DB_DSN", &cfg.Database.DSN)
	p.boolean("DB_ENSURE_SCHEMA", &cfg.Database.EnsureSchema)

	var backend string
	if p.str("CACHE_BACKEND", &backend) {
		cfg.Cache.Backend = cacheinfra.Backend(strings.ToLower(backend))
	}
	p.integer("CACHE_CAPACITY", &cfg.Cache.Capacity)
	p.duration("CACHE_MAX_TTL", &cfg.Cache.TTL)

	var addrs string
	if p.str("REDIS_ADDRS", &addrs) {
		cfg.Cache.Redis.Addrs = splitList(addrs)
	}
	p.str("REDIS_USERNAME", &cfg.Cache.Redis.Username)
	p.str("REDIS_PASSWORD", &cfg.Cache.Redis.Password)
	p.integer("REDIS_DB", &cfg.Cache.Redis.DB)

	var breaker bool
	if p.boolean("CACHE_BREAKER", &breaker) {
		switch {
		case !breaker:
			cfg.Cache.Breaker = nil
		case cfg.Cache.Breaker == nil:
			cfg.Cache.Breaker = cacheinfra.DefaultBreakerConfig("cache")
		}
	}

	p.duration("SERVICE_TTL", &cfg.Service.TTL)
	p.str("SERVICE_NAMESPACE", &cfg.Service.Namespace)
	p.str("SERVICE_CODEC", &cfg.Service.Codec)
	p.boolean("STRICT_INVALIDATION", &cfg.Service.StrictInvalidation)

	p.boolean("METRICS_ENABLED", &cfg.Metrics.Enabled)
	p.str("METRICS_NAMESPACE", &cfg.Metrics.Namespace)

	return errors.Join(p.errs...)
}

type envParser struct {
	lookup lookupFunc
	errs   []error
}

func (p *envParser) get(name string) (string, bool) {
	v, ok := p.lookup(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (p *envParser) str(name string, dst *string) bool {
	v, ok := p.get(name)
	if ok {
		*dst = v
	}
	return ok
}

func (p *envParser) boolean(name string, dst *bool) bool {
	v, ok := p.get(name)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(name, v, err)
		return false
	}
	*dst = b
	return true
}

func (p *envParser) integer(name string, dst *int) bool {
	v, ok := p.get(name)
	if !ok {
		return false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(name, v, err)
		return false
	}
	*dst = n
	return true
}

func (p *envParser) duration(name string, dst *time.Duration) bool {
	v, ok := p.get(name)
	if !ok {
		return false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(name, v, err)
		return false
	}
	*dst = d
	return true
}

func (p *envParser) fail(name, value string, err error) {
	p.errs = append(p.errs, goerrors.Wrap(err, goerrors.CategoryBadInput,
		"invalid value "+strconv.Quote(value)+" for "+EnvPrefix+name).
		WithTextCode("CONFIG_INVALID_ENV"))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sectionError(section string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid "+section+" configuration").
		WithTextCode("CONFIG_INVALID")
}
