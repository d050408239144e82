package cache

import (
	"context"
	"errors"
	"fmt"
)

// RemoveByPattern deletes every key the store reports for pattern.
//
// Keys are enumerated with Store.ScanKeys and then deleted one at a time, so
// the call never blocks other cache traffic. Only the scanned snapshot is
// guaranteed to be removed: a key written while the scan is in flight may
// survive until its TTL expires.
//
// Deletion keeps going after an individual failure; the returned count is
// the number of keys actually deleted and the error joins every failure.
func RemoveByPattern(ctx context.Context, store Store, pattern string) (int, error) {
	if err := ValidatePattern(pattern); err != nil {
		return 0, err
	}

	keys, err := store.ScanKeys(ctx, pattern)
	if err != nil {
		return 0, fmt.Errorf("scan keys %q: %w", pattern, err)
	}

	var (
		removed int
		errs    []error
	)
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete key %q: %w", key, err))
			continue
		}
		removed++
	}

	return removed, errors.Join(errs...)
}
