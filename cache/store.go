package cache

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrEmptyKey is returned when a caller passes an empty or blank key.
	// It is a usage error and never means "miss".
	ErrEmptyKey = goerrors.New("cache key cannot be empty", goerrors.CategoryBadInput).
			WithTextCode("CACHE_EMPTY_KEY")

	// ErrEmptyPattern is returned when a caller passes an empty or blank pattern.
	ErrEmptyPattern = goerrors.New("cache key pattern cannot be empty", goerrors.CategoryBadInput).
			WithTextCode("CACHE_EMPTY_PATTERN")

	// ErrMalformedEntry marks cache contents that could not be decoded.
	ErrMalformedEntry = goerrors.New("cache entry could not be decoded", goerrors.CategoryInternal).
				WithTextCode("CACHE_MALFORMED_ENTRY")
)

// Store is the key-value capability the inventory layer needs from a cache
// backend. Values are opaque bytes; encoding is the caller's concern.
//
// Implementations must treat an expired entry exactly like an absent one and
// must reject empty keys and patterns with ErrEmptyKey / ErrEmptyPattern
// before performing any I/O.
type Store interface {
	// Get returns the stored bytes and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. After ttl elapses the entry reads as absent.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// ScanKeys enumerates the keys currently matching a glob-style pattern
	// without locking the keyspace.
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}

// ValidateKey reports ErrEmptyKey for empty or whitespace-only keys.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}

// ValidatePattern reports ErrEmptyPattern for empty or whitespace-only patterns.
func ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return ErrEmptyPattern
	}
	return nil
}
