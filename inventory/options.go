package inventory

import (
	"time"

	"github.com/goliatone/go-inventory-cache/cache"
	"go.uber.org/zap"
)

// DefaultTTL is how long the full product list stays cached.
const DefaultTTL = 5 * time.Minute

// DefaultNamespace is the cache namespace owned by the product service.
const DefaultNamespace = "products"

// Metrics receives cache outcomes from the Service.
type Metrics interface {
	// CacheLookup records a read of the full-list entry.
	CacheLookup(hit bool)
	// CachePopulateFailed records a failed write of the full-list entry.
	CachePopulateFailed()
	// Invalidation records one pattern invalidation and its outcome.
	Invalidation(removed int, err error)
}

type nopMetrics struct{}

func (nopMetrics) CacheLookup(bool)        {}
func (nopMetrics) CachePopulateFailed()    {}
func (nopMetrics) Invalidation(int, error) {}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink. A nil sink is ignored.
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTTL overrides DefaultTTL for the full-list entry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCodec overrides the msgpack codec.
func WithCodec(codec cache.Codec) Option {
	return func(s *Service) {
		if codec != nil {
			s.codec = codec
		}
	}
}

// WithNamespace overrides DefaultNamespace.
func WithNamespace(name string) Option {
	return func(s *Service) {
		if ns := cache.NewNamespace(name); ns != "" {
			s.namespace = ns
		}
	}
}

// WithClock overrides time.Now for UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStrictInvalidation makes writes return ErrInvalidationFailed when the
// cache could not be invalidated. By default the failure is only logged.
func WithStrictInvalidation() Option {
	return func(s *Service) {
		s.strict = true
	}
}
