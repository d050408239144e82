package testsupport

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-inventory-cache/inventory"
	"github.com/google/uuid"
)

// Gateway operation names used by MemoryGateway.FailOn and CallCount.
const (
	OpListAll = "ListAll"
	OpGetByID = "GetByID"
	OpInsert  = "Insert"
	OpUpdate  = "Update"
	OpRemove  = "Delete"
	OpSearch  = "Search"
)

var _ inventory.Gateway = (*MemoryGateway)(nil)

// MemoryGateway is an in-memory inventory.Gateway that counts calls.
// Search matches case-insensitively.
type MemoryGateway struct {
	mu       sync.RWMutex
	products map[uuid.UUID]inventory.Product
	now      func() time.Time
	calls    map[string]int
	errs     map[string]error
}

// NewMemoryGateway returns an empty gateway using time.Now.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		products: make(map[uuid.UUID]inventory.Product),
		now:      time.Now,
		calls:    make(map[string]int),
		errs:     make(map[string]error),
	}
}

// SetClock replaces the clock used for CreatedAt.
func (g *MemoryGateway) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// FailOn makes op return err until cleared with a nil err.
func (g *MemoryGateway) FailOn(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.errs, op)
		return
	}
	g.errs[op] = err
}

// CallCount returns how many times op was called.
func (g *MemoryGateway) CallCount(op string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.calls[op]
}

// ResetCalls clears the call counters.
func (g *MemoryGateway) ResetCalls() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = make(map[string]int)
}

// Seed inserts drafts without recording calls and returns the stored products.
func (g *MemoryGateway) Seed(drafts ...inventory.Draft) []inventory.Product {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]inventory.Product, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, g.insertLocked(d.Product()))
	}
	return out
}

// ListAll implements inventory.Gateway.
func (g *MemoryGateway) ListAll(ctx context.Context) ([]inventory.Product, error) {
	if err := g.record(ctx, OpListAll); err != nil {
		return nil, err
	}
	return g.filter(func(inventory.Product) bool { return true }), nil
}

// GetByID implements inventory.Gateway.
func (g *MemoryGateway) GetByID(ctx context.Context, id uuid.UUID) (inventory.Product, bool, error) {
	if err := g.record(ctx, OpGetByID); err != nil {
		return inventory.Product{}, false, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.products[id]
	if !ok {
		return inventory.Product{}, false, nil
	}
	return p.Clone(), true, nil
}

// Insert implements inventory.Gateway.
func (g *MemoryGateway) Insert(ctx context.Context, product inventory.Product) (inventory.Product, error) {
	if err := g.record(ctx, OpInsert); err != nil {
		return inventory.Product{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.insertLocked(product), nil
}

// Update implements inventory.Gateway.
func (g *MemoryGateway) Update(ctx context.Context, product inventory.Product) (inventory.Product, error) {
	if err := g.record(ctx, OpUpdate); err != nil {
		return inventory.Product{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.products[product.ID]; !ok {
		return inventory.Product{}, inventory.NewNotFoundError(product.ID)
	}
	g.products[product.ID] = product.Clone()
	return product.Clone(), nil
}

// Delete implements inventory.Gateway.
func (g *MemoryGateway) Delete(ctx context.Context, id uuid.UUID) error {
	if err := g.record(ctx, OpRemove); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.products, id)
	return nil
}

// Search implements inventory.Gateway.
func (g *MemoryGateway) Search(ctx context.Context, term string) ([]inventory.Product, error) {
	if err := g.record(ctx, OpSearch); err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	return g.filter(func(p inventory.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle)
	}), nil
}

func (g *MemoryGateway) insertLocked(product inventory.Product) inventory.Product {
	product.ID = uuid.New()
	product.CreatedAt = g.now().UTC()
	product.UpdatedAt = nil
	g.products[product.ID] = product.Clone()
	return product
}

func (g *MemoryGateway) filter(keep func(inventory.Product) bool) []inventory.Product {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]inventory.Product, 0, len(g.products))
	for _, p := range g.products {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b inventory.Product) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

func (g *MemoryGateway) record(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[op]++
	return g.errs[op]
}
