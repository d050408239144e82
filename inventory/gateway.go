package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Gateway is the durable product store. It is the source of truth; the
// cache never is.
type Gateway interface {
	// ListAll returns every product ordered by name, ascending, in code
	// point order.
	ListAll(ctx context.Context) ([]Product, error)
	// GetByID returns the product and true, or false when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (Product, bool, error)
	// Insert stores a new product, assigning ID and CreatedAt.
	Insert(ctx context.Context, product Product) (Product, error)
	// Update persists every field of an existing product.
	Update(ctx context.Context, product Product) (Product, error)
	// Delete removes a product. Deleting a missing id is a no-op.
	Delete(ctx context.Context, id uuid.UUID) error
	// Search returns products whose name or category contains term,
	// ordered like ListAll.
	Search(ctx context.Context, term string) ([]Product, error)
}
