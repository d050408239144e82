// Package cache defines the cache store contract used by the inventory layer
// and the protocol for invalidating families of keys.
//
// # Overview
//
// The package exports:
//
//   - Store: get, set with expiry, delete and pattern scan over opaque bytes
//   - RemoveByPattern: scan-then-delete invalidation of a key family
//   - Namespace: deterministic key and pattern construction
//   - Codec: msgpack (default) and JSON value encoding, plus the typed
//     GetValue and SetValue helpers
//
// Concrete stores live in internal/cacheinfra (Redis, sturdyc, circuit
// breaker) and pkg/testsupport (in-memory double).
//
// # Key Conventions
//
// Keys are built from a namespace plus optional parts joined by "_":
//
//	ns := cache.NewNamespace("Products")
//	ns.Key("all")  // "products_all"
//	ns.Pattern()   // "products_*"
//
// Namespace names are snake-cased and stripped of glob metacharacters so a
// namespace pattern only ever matches its own keys.
//
// # Invalidation Semantics
//
// RemoveByPattern never takes a keyspace lock. It enumerates matching keys
// through Store.ScanKeys (SCAN on Redis) and deletes them one by one. Keys
// written while the scan is running may be missed; such entries expire with
// their TTL. Callers that need a stronger barrier must provide it
// themselves.
//
// # Error Handling
//
// Empty keys and patterns are usage errors (ErrEmptyKey, ErrEmptyPattern)
// and are reported before any I/O. Undecodable entries surface as
// ErrMalformedEntry rather than as misses.
package cache
