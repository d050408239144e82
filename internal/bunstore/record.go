package bunstore

import (
	"time"

	"github.com/goliatone/go-inventory-cache/inventory"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// productRecord is the row shape of the products table.
type productRecord struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID        uuid.UUID       `bun:"id,pk,type:varchar(36)"`
	Name      string          `bun:"name,notnull"`
	Category  string          `bun:"category,notnull"`
	Price     decimal.Decimal `bun:"price,type:varchar(32),notnull"`
	Quantity  int             `bun:"quantity,notnull"`
	CreatedAt time.Time       `bun:"created_at,notnull"`
	UpdatedAt *time.Time      `bun:"updated_at"`
}

func newRecord(p inventory.Product) *productRecord {
	p = p.Clone()
	return &productRecord{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Quantity:  p.Quantity,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (r *productRecord) product() inventory.Product {
	p := inventory.Product{
		ID:        r.ID,
		Name:      r.Name,
		Category:  r.Category,
		Price:     r.Price,
		Quantity:  r.Quantity,
		CreatedAt: r.CreatedAt.UTC(),
	}
	if r.UpdatedAt != nil {
		at := r.UpdatedAt.UTC()
		p.UpdatedAt = &at
	}
	return p
}

func products(records []*productRecord) []inventory.Product {
	out := make([]inventory.Product, 0, len(records))
	for _, r := range records {
		out = append(out, r.product())
	}
	return out
}

func recordHandlers() repository.ModelHandlers[*productRecord] {
	return repository.ModelHandlers[*productRecord]{
		NewRecord: func() *productRecord {
			return &productRecord{}
		},
		GetID: func(r *productRecord) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *productRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
	}
}
