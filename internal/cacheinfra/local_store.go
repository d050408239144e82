package cacheinfra

import (
	"context"
	"slices"
	"time"

	"github.com/goliatone/go-inventory-cache/cache"
	"github.com/viccon/sturdyc"
)

var _ cache.Store = (*LocalStore)(nil)

// localEntry carries its own deadline. sturdyc only knows the client wide
// TTL, so shorter per entry lifetimes are enforced on read.
type localEntry struct {
	value     []byte
	expiresAt time.Time
}

// LocalStore is an in-process cache.Store backed by a sturdyc client.
type LocalStore struct {
	client *sturdyc.Client[localEntry]
	maxTTL time.Duration
	now    func() time.Time
}

// NewLocalStore creates a sturdyc backed store.
//
// Capacity, NumShards, TTL and EvictionPercentage are passed to sturdyc.New.
func NewLocalStore(cfg Config) (*LocalStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[localEntry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		opts...,
	)

	return &LocalStore{client: client, maxTTL: cfg.TTL, now: time.Now}, nil
}

// Get implements cache.Store.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := cache.ValidateKey(key); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	entry, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		s.client.Delete(key)
		return nil, false, nil
	}
	return slices.Clone(entry.value), true, nil
}

// Set implements cache.Store. A ttl that is not positive or exceeds the
// configured TTL is capped to it.
func (s *LocalStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if ttl <= 0 || ttl > s.maxTTL {
		ttl = s.maxTTL
	}
	s.client.Set(key, localEntry{value: slices.Clone(value), expiresAt: s.now().Add(ttl)})
	return nil
}

// Delete implements cache.Store.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.client.Delete(key)
	return nil
}

// ScanKeys implements cache.Store. sturdyc hands back a copy of its key set,
// so shards are only locked while that copy is taken.
func (s *LocalStore) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	matcher, err := cache.CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keys []string
	for _, key := range s.client.ScanKeys() {
		if matcher.Match(key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Size returns the number of entries held, expired ones included until
// they are read or swept.
func (s *LocalStore) Size() int {
	return s.client.Size()
}
