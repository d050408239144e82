package cacheinfra

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-inventory-cache/cache"
	"go.uber.org/zap"
)

// NewStore builds the store selected by cfg.Backend, wrapped in a circuit
// breaker when cfg.Breaker is set. The returned close func releases any
// connection the store holds.
func NewStore(ctx context.Context, cfg Config, logger *zap.Logger) (cache.Store, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store   cache.Store
		closeFn = func() error { return nil }
	)

	switch cfg.Backend {
	case BackendRedis:
		rs := NewRedisStore(NewRedisClient(cfg.Redis), cfg.Redis.ScanCount)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, goerrors.Wrap(err, goerrors.CategoryExternal, "redis is not reachable")
		}
		store, closeFn = rs, rs.Close
	default:
		ls, err := NewLocalStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		store = ls
	}

	if cfg.Breaker != nil {
		store = NewBreakerStore(store, *cfg.Breaker, logger.Named("breaker"))
	}

	logger.Debug("cache store ready",
		zap.String("backend", string(cfg.Backend)),
		zap.Bool("breaker", cfg.Breaker != nil),
	)
	return store, closeFn, nil
}
