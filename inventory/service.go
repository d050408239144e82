package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-inventory-cache/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service coordinates product reads and writes between the Gateway and a
// cache Store. The full product list is served cache-aside; every
// successful write invalidates the product namespace afterwards.
//
// Service holds no locks. Concurrent misses may each read the gateway and
// repopulate the cache; the last write wins.
type Service struct {
	gateway   Gateway
	store     cache.Store
	codec     cache.Codec
	namespace cache.Namespace
	ttl       time.Duration
	now       func() time.Time
	strict    bool
	logger    *zap.Logger
	metrics   Metrics
}

// NewService creates a Service over gateway and store.
func NewService(gateway Gateway, store cache.Store, opts ...Option) *Service {
	s := &Service{
		gateway:   gateway,
		store:     store,
		codec:     cache.MsgpackCodec{},
		namespace: cache.NewNamespace(DefaultNamespace),
		ttl:       DefaultTTL,
		now:       time.Now,
		logger:    zap.NewNop(),
		metrics:   nopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AllKey is the cache key of the full product list.
func (s *Service) AllKey() string {
	return s.namespace.Key("all")
}

// InvalidationPattern matches every product cache key.
func (s *Service) InvalidationPattern() string {
	return s.namespace.Pattern()
}

// GetAll returns every product ordered by name.
//
// A cache hit is returned as is. On a miss the list is read from the
// gateway and cached for the configured TTL. Cache read failures are
// returned, not treated as misses.
func (s *Service) GetAll(ctx context.Context) ([]Product, error) {
	key := s.AllKey()

	cached, ok, err := cache.GetValue[[]Product](ctx, s.store, s.codec, key)
	if err != nil {
		return nil, fmt.Errorf("read cached products: %w", err)
	}
	s.metrics.CacheLookup(ok)
	if ok {
		normalizeTimes(cached)
		s.logger.Debug("product list served from cache", zap.String("key", key), zap.Int("count", len(cached)))
		return nonNil(cached), nil
	}

	products, err := s.gateway.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	products = nonNil(products)

	if err := cache.SetValue(ctx, s.store, s.codec, key, products, s.ttl); err != nil {
		s.metrics.CachePopulateFailed()
		s.logger.Warn("failed to cache product list",
			zap.String("key", key),
			zap.Duration("ttl", s.ttl),
			zap.Error(err),
		)
	}

	return products, nil
}

// GetByID reads a product straight from the gateway. The boolean is false
// when no product has that id.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Product, bool, error) {
	return s.gateway.GetByID(ctx, id)
}

// Create stores a new product and then invalidates the product cache.
func (s *Service) Create(ctx context.Context, draft Draft) (Product, error) {
	created, err := s.gateway.Insert(ctx, draft.Product())
	if err != nil {
		return Product{}, err
	}
	return created, s.invalidate(ctx, "create", created.ID)
}

// Update overlays changes onto the stored product with the given id.
//
// A missing id yields a *NotFoundError and leaves the cache untouched. ID
// and CreatedAt of the stored record are always kept.
func (s *Service) Update(ctx context.Context, id uuid.UUID, changes Draft) (Product, error) {
	existing, ok, err := s.gateway.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !ok {
		return Product{}, NewNotFoundError(id)
	}

	existing.apply(changes, s.now())

	updated, err := s.gateway.Update(ctx, existing)
	if err != nil {
		return Product{}, err
	}
	return updated, s.invalidate(ctx, "update", id)
}

// Delete removes a product. The cache is invalidated even when id did not
// exist, since the two cases are indistinguishable without another read.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.gateway.Delete(ctx, id); err != nil {
		return err
	}
	return s.invalidate(ctx, "delete", id)
}

// Search returns products whose name or category contains term. It never
// reads or writes the cache. A blank term returns the full list.
func (s *Service) Search(ctx context.Context, term string) ([]Product, error) {
	var (
		products []Product
		err      error
	)
	if strings.TrimSpace(term) == "" {
		products, err = s.gateway.ListAll(ctx)
	} else {
		products, err = s.gateway.Search(ctx, term)
	}
	if err != nil {
		return nil, err
	}
	return nonNil(products), nil
}

// invalidate drops every product cache key after a successful write.
func (s *Service) invalidate(ctx context.Context, op string, id uuid.UUID) error {
	pattern := s.InvalidationPattern()

	removed, err := cache.RemoveByPattern(ctx, s.store, pattern)
	s.metrics.Invalidation(removed, err)
	if err == nil {
		s.logger.Debug("product cache invalidated",
			zap.String("op", op),
			zap.String("pattern", pattern),
			zap.Int("removed", removed),
		)
		return nil
	}

	s.logger.Warn("product cache invalidation failed",
		zap.String("op", op),
		zap.Stringer("product_id", id),
		zap.String("pattern", pattern),
		zap.Int("removed", removed),
		zap.Error(err),
	)
	if s.strict {
		return fmt.Errorf("%w: %s %s: %w", ErrInvalidationFailed, op, id, err)
	}
	return nil
}

func nonNil(products []Product) []Product {
	if products == nil {
		return []Product{}
	}
	return products
}
