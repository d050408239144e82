package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-inventory-cache/inventory"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

var _ inventory.Gateway = (*Gateway)(nil)

// Products are listed by name then id in code point order. Postgres sorts
// text by the database locale unless told otherwise, so it gets the "C"
// collation explicitly.
const (
	orderByName          = "p.name ASC, p.id ASC"
	orderByNameCodePoint = `p.name COLLATE "C" ASC, p.id COLLATE "C" ASC`
)

func orderByNameFor(name dialect.Name) string {
	if name == dialect.PG {
		return orderByNameCodePoint
	}
	return orderByName
}

// Gateway is an inventory.Gateway backed by a SQL database through bun.
type Gateway struct {
	db      *bun.DB
	repo    repository.Repository[*productRecord]
	now     func() time.Time
	orderBy string
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithClock overrides the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGateway returns a Gateway using db. The schema must exist, see EnsureSchema.
func NewGateway(db *bun.DB, opts ...Option) *Gateway {
	g := &Gateway{
		db:      db,
		repo:    repository.NewRepository[*productRecord](db, recordHandlers()),
		now:     time.Now,
		orderBy: orderByNameFor(db.Dialect().Name()),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ListAll implements inventory.Gateway.
func (g *Gateway) ListAll(ctx context.Context) ([]inventory.Product, error) {
	var records []*productRecord
	if err := g.db.NewSelect().
		Model(&records).
		OrderExpr(g.orderBy).
		Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "list products")
	}
	return products(records), nil
}

// GetByID implements inventory.Gateway.
func (g *Gateway) GetByID(ctx context.Context, id uuid.UUID) (inventory.Product, bool, error) {
	record := new(productRecord)
	err := g.db.NewSelect().
		Model(record).
		Where("p.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.Product{}, false, nil
	}
	if err != nil {
		return inventory.Product{}, false, goerrors.Wrap(err, goerrors.CategoryInternal, "get product "+id.String())
	}
	return record.product(), true, nil
}

// Insert implements inventory.Gateway. ID and CreatedAt are assigned here.
func (g *Gateway) Insert(ctx context.Context, product inventory.Product) (inventory.Product, error) {
	record := newRecord(product)
	record.ID = uuid.New()
	record.CreatedAt = g.now().UTC()
	record.UpdatedAt = nil

	created, err := g.repo.Create(ctx, record)
	if err != nil {
		return inventory.Product{}, goerrors.Wrap(err, goerrors.CategoryInternal, "insert product")
	}
	return created.product(), nil
}

// Update implements inventory.Gateway. A row that does not exist yields an
// inventory.NotFoundError.
func (g *Gateway) Update(ctx context.Context, product inventory.Product) (inventory.Product, error) {
	record := newRecord(product)

	res, err := g.db.NewUpdate().
		Model(record).
		WherePK().
		Exec(ctx)
	if err != nil {
		return inventory.Product{}, goerrors.Wrap(err, goerrors.CategoryInternal, "update product "+product.ID.String())
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return inventory.Product{}, inventory.NewNotFoundError(product.ID)
	}
	return record.product(), nil
}

// Delete implements inventory.Gateway. Deleting a missing id is a no-op.
func (g *Gateway) Delete(ctx context.Context, id uuid.UUID) error {
	err := g.repo.DeleteWhere(ctx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("id = ?", id)
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "delete product "+id.String())
	}
	return nil
}

// Search implements inventory.Gateway. The term is matched literally and
// case-insensitively against name and category.
func (g *Gateway) Search(ctx context.Context, term string) ([]inventory.Product, error) {
	like := "%" + escapeLike(strings.ToLower(term)) + "%"

	var records []*productRecord
	if err := g.db.NewSelect().
		Model(&records).
		Where(`lower(p.name) LIKE ? ESCAPE '\'`, like).
		WhereOr(`lower(p.category) LIKE ? ESCAPE '\'`, like).
		OrderExpr(g.orderBy).
		Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "search products")
	}
	return products(records), nil
}

// Count returns the number of stored products.
func (g *Gateway) Count(ctx context.Context) (int, error) {
	n, err := g.repo.Count(ctx)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "count products")
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in s match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
