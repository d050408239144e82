package inventory

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

var (
	// ErrProductNotFound is the root of every not-found failure.
	ErrProductNotFound = goerrors.New("product not found", goerrors.CategoryNotFound).
				WithTextCode("PRODUCT_NOT_FOUND")

	// ErrInvalidationFailed is returned, in strict mode only, when the store
	// write succeeded but the cache could not be invalidated.
	ErrInvalidationFailed = goerrors.New("cache invalidation failed", goerrors.CategoryExternal).
				WithTextCode("CACHE_INVALIDATION_FAILED")
)

// NotFoundError names the product id that could not be found.
// It must not be retried: the outcome is deterministic.
type NotFoundError struct {
	ID uuid.UUID
}

// NewNotFoundError returns a not-found failure for id.
func NewNotFoundError(id uuid.UUID) error {
	return &NotFoundError{ID: id}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product with id %s not found", e.ID)
}

// Unwrap exposes ErrProductNotFound to errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrProductNotFound
}

// IsNotFound reports whether err is a product not-found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}
