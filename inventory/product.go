package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog record. ID and CreatedAt are assigned by the Gateway
// on insert and never change afterwards. UpdatedAt stays nil until the first
// update.
type Product struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

// Draft holds the caller supplied, mutable fields of a product. It is used
// both to create a product and as the change set of an update.
type Draft struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Product returns a new, not yet stored, product built from the draft.
func (d Draft) Product() Product {
	return Product{
		Name:     d.Name,
		Category: d.Category,
		Price:    d.Price,
		Quantity: d.Quantity,
	}
}

// Draft returns the mutable fields of p.
func (p Product) Draft() Draft {
	return Draft{
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Quantity: p.Quantity,
	}
}

// Clone returns a copy of p that shares no pointers with it.
func (p Product) Clone() Product {
	if p.UpdatedAt != nil {
		at := *p.UpdatedAt
		p.UpdatedAt = &at
	}
	return p
}

// apply overlays every mutable field from changes and stamps UpdatedAt.
func (p *Product) apply(changes Draft, at time.Time) {
	p.Name = changes.Name
	p.Category = changes.Category
	p.Price = changes.Price
	p.Quantity = changes.Quantity
	at = at.UTC()
	p.UpdatedAt = &at
}

// normalizeTimes puts every timestamp in UTC. Decoders are free to hand
// back local times.
func normalizeTimes(products []Product) {
	for i := range products {
		products[i].CreatedAt = products[i].CreatedAt.UTC()
		if products[i].UpdatedAt != nil {
			at := products[i].UpdatedAt.UTC()
			products[i].UpdatedAt = &at
		}
	}
}
