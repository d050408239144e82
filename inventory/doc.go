// Package inventory implements the product catalog service: cache-aside
// reads of the full product list and cache invalidation on every write.
//
// # Overview
//
// Service sits between callers and two collaborators passed in at
// construction:
//
//   - Gateway: the durable product store and source of truth
//   - cache.Store: a key-value cache with expiry and pattern scan
//
// A Service is built with functional options:
//
//	svc := inventory.NewService(gateway, store,
//		inventory.WithLogger(logger),
//		inventory.WithMetrics(collector),
//	)
//
//	products, err := svc.GetAll(ctx)
//
// # Read Path
//
// Only the full list is cached, under the key "products_all":
//
//  1. Read the key from the store
//  2. On a hit, return the decoded list
//  3. On a miss, read Gateway.ListAll
//  4. Store the list for DefaultTTL (5 minutes)
//  5. Return the list
//
// GetByID and Search always go to the gateway.
//
// # Write Path
//
// Create, Update and Delete write to the gateway first and, only after the
// write succeeded, remove every key matching "products_*". Delete always
// invalidates, even when the id did not exist.
//
// # Error Handling
//
// Update on a missing id returns a *NotFoundError (errors.Is
// ErrProductNotFound). Gateway and cache read failures are returned
// unchanged. A failed invalidation after a successful write is logged and
// counted; WithStrictInvalidation turns it into ErrInvalidationFailed.
//
// # Consistency
//
// Within one write the store write happens before the invalidation.
// Concurrent writes are not ordered against each other. The scan-then-delete
// invalidation can miss a list cached while the scan runs; such an entry is
// stale for at most its TTL.
package inventory
