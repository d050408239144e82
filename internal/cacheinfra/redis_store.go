package cacheinfra

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-inventory-cache/cache"
	"github.com/redis/go-redis/v9"
)

var _ cache.Store = (*RedisStore)(nil)

// RedisStore is a cache.Store on top of a go-redis UniversalClient.
// Patterns are evaluated server side by SCAN MATCH.
type RedisStore struct {
	client    redis.UniversalClient
	scanCount int64
}

// NewRedisClient builds a standalone or cluster client from cfg.
func NewRedisClient(cfg RedisConfig) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       cfg.Addrs,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
}

// NewRedisStore wraps client. scanCount is the SCAN COUNT hint.
func NewRedisStore(client redis.UniversalClient, scanCount int64) *RedisStore {
	if scanCount <= 0 {
		scanCount = 100
	}
	return &RedisStore{client: client, scanCount: scanCount}
}

// Get implements cache.Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := cache.ValidateKey(key); err != nil {
		return nil, false, err
	}

	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, goerrors.Wrap(err, goerrors.CategoryExternal, "redis get "+key)
	}
	return value, true, nil
}

// Set implements cache.Store. A ttl that is not positive stores the key
// without expiry.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "redis set "+key)
	}
	return nil
}

// Delete implements cache.Store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "redis del "+key)
	}
	return nil
}

// ScanKeys implements cache.Store with the incremental SCAN cursor. A cluster
// client is scanned on every master. SCAN may report a key more than once;
// the result is deduplicated and sorted.
func (s *RedisStore) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	if err := cache.ValidatePattern(pattern); err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
	)
	collect := func(ctx context.Context, node redis.Cmdable) error {
		iter := node.Scan(ctx, 0, pattern, s.scanCount).Iterator()
		for iter.Next(ctx) {
			mu.Lock()
			seen[iter.Val()] = struct{}{}
			mu.Unlock()
		}
		return iter.Err()
	}

	var err error
	if cluster, ok := s.client.(*redis.ClusterClient); ok {
		err = cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return collect(ctx, node)
		})
	} else {
		err = collect(ctx, s.client)
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "redis scan "+pattern)
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
