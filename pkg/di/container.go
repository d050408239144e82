package di

import (
	"context"
	"errors"

	"github.com/goliatone/go-inventory-cache/cache"
	"github.com/goliatone/go-inventory-cache/internal/bunstore"
	"github.com/goliatone/go-inventory-cache/internal/cacheinfra"
	"github.com/goliatone/go-inventory-cache/internal/config"
	"github.com/goliatone/go-inventory-cache/internal/observability"
	"github.com/goliatone/go-inventory-cache/inventory"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Container provides dependency injection for the inventory components.
// It owns singleton instances of the database, the gateway, the cache store
// and the product service, and releases them on Close.
type Container struct {
	config  config.Config
	logger  *zap.Logger
	db      *bun.DB
	gateway inventory.Gateway
	store   cache.Store
	metrics *observability.Collector
	service *inventory.Service
	closers []func() error
}

// Option customises a Container before its components are built.
type Option func(*Container)

// WithLogger uses logger instead of building one from the configuration.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithStore uses store instead of building one from the cache configuration.
func WithStore(store cache.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithGateway uses gateway instead of opening the configured database.
func WithGateway(gateway inventory.Gateway) Option {
	return func(c *Container) {
		c.gateway = gateway
	}
}

// NewContainer creates a new DI container from cfg.
//
// Components are built in dependency order: logger, database and gateway,
// cache store, metrics, service. If any step fails everything built so far
// is closed.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.build(ctx); err != nil {
		return nil, errors.Join(err, c.Close())
	}
	return c, nil
}

// NewContainerWithDefaults creates a container from config.Default: an
// in-memory sqlite database and the local cache store.
func NewContainerWithDefaults(ctx context.Context, opts ...Option) (*Container, error) {
	return NewContainer(ctx, config.Default(), opts...)
}

func (c *Container) build(ctx context.Context) error {
	if c.logger == nil {
		logger, err := observability.NewLogger(c.config.Log.Level, c.config.Log.Development)
		if err != nil {
			return err
		}
		c.logger = logger
		c.closers = append(c.closers, func() error {
			_ = logger.Sync()
			return nil
		})
	}

	if c.gateway == nil {
		db, err := bunstore.Open(c.config.Database.Driver, c.config.Database.DSN)
		if err != nil {
			return err
		}
		c.db = db
		c.closers = append(c.closers, db.Close)

		if c.config.Database.EnsureSchema {
			if err := bunstore.EnsureSchema(ctx, db); err != nil {
				return err
			}
		}
		c.gateway = bunstore.NewGateway(db)
	}

	if c.store == nil {
		store, closeStore, err := cacheinfra.NewStore(ctx, c.config.Cache, c.logger.Named("cache"))
		if err != nil {
			return err
		}
		c.store = store
		c.closers = append(c.closers, closeStore)
	}

	opts := []inventory.Option{
		inventory.WithLogger(c.logger.Named("inventory")),
		inventory.WithTTL(c.config.Service.TTL),
		inventory.WithNamespace(c.config.Service.Namespace),
		inventory.WithCodec(codecFor(c.config.Service.Codec)),
	}
	if c.config.Metrics.Enabled {
		c.metrics = observability.NewCollector(c.config.Metrics.Namespace)
		opts = append(opts, inventory.WithMetrics(c.metrics))
	}
	if c.config.Service.StrictInvalidation {
		opts = append(opts, inventory.WithStrictInvalidation())
	}

	c.service = inventory.NewService(c.gateway, c.store, opts...)

	c.logger.Info("inventory container ready",
		zap.String("db_driver", c.config.Database.Driver),
		zap.String("cache_backend", string(c.config.Cache.Backend)),
		zap.Duration("ttl", c.config.Service.TTL),
	)
	return nil
}

func codecFor(name string) cache.Codec {
	if name == config.CodecJSON {
		return cache.JSONCodec{}
	}
	return cache.MsgpackCodec{}
}

// Service returns the singleton product service.
func (c *Container) Service() *inventory.Service {
	return c.service
}

// Gateway returns the persistence gateway used by the service.
func (c *Container) Gateway() inventory.Gateway {
	return c.gateway
}

// Store returns the cache store used by the service.
func (c *Container) Store() cache.Store {
	return c.store
}

// DB returns the database handle, or nil when a gateway was injected.
func (c *Container) DB() *bun.DB {
	return c.db
}

// Metrics returns the Prometheus collector, or nil when metrics are disabled.
func (c *Container) Metrics() *observability.Collector {
	return c.metrics
}

// Logger returns the container logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() config.Config {
	return c.config
}

// Close releases owned resources in reverse creation order. It is safe to
// call more than once.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
