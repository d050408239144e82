package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-inventory-cache/cache"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCacheUnavailable is returned while the breaker rejects calls.
var ErrCacheUnavailable = goerrors.New("cache store unavailable", goerrors.CategoryExternal).
	WithTextCode("CACHE_UNAVAILABLE")

var _ cache.Store = (*BreakerStore)(nil)

// BreakerStore guards another cache.Store with a circuit breaker so a dead
// backend fails fast instead of stalling every request.
type BreakerStore struct {
	next cache.Store
	cb   *gobreaker.CircuitBreaker
}

type getResult struct {
	value []byte
	ok    bool
}

// NewBreakerStore wraps next. logger may be nil.
func NewBreakerStore(next cache.Store, cfg BreakerConfig, logger *zap.Logger) *BreakerStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
		IsSuccessful: isBreakerSuccess,
	})

	return &BreakerStore{next: next, cb: cb}
}

// isBreakerSuccess keeps caller mistakes and cancellations from counting
// against the backend.
func isBreakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, cache.ErrEmptyKey) ||
		errors.Is(err, cache.ErrEmptyPattern) ||
		errors.Is(err, context.Canceled)
}

// State reports the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

// Get implements cache.Store.
func (b *BreakerStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := b.execute(func() (any, error) {
		value, ok, err := b.next.Get(ctx, key)
		return getResult{value: value, ok: ok}, err
	})
	if err != nil {
		return nil, false, err
	}
	r := res.(getResult)
	return r.value, r.ok, nil
}

// Set implements cache.Store.
func (b *BreakerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.Set(ctx, key, value, ttl)
	})
	return err
}

// Delete implements cache.Store.
func (b *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return err
}

// ScanKeys implements cache.Store.
func (b *BreakerStore) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	res, err := b.execute(func() (any, error) {
		return b.next.ScanKeys(ctx, pattern)
	})
	if err != nil {
		return nil, err
	}
	keys, _ := res.([]string)
	return keys, nil
}

func (b *BreakerStore) execute(fn func() (any, error)) (any, error) {
	res, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: breaker %s: %w", ErrCacheUnavailable, b.cb.Name(), err)
	}
	return res, err
}
