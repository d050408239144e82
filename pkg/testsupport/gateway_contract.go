package testsupport

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/goliatone/go-inventory-cache/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GatewayFactory builds an empty gateway whose insert clock is now.
type GatewayFactory func(t *testing.T, now func() time.Time) inventory.Gateway

// ContractTime is the instant reported by the clock handed to GatewayFactory.
var ContractTime = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// RunGatewayContract checks the behaviour every inventory.Gateway must share.
func RunGatewayContract(t *testing.T, newGateway GatewayFactory) {
	t.Helper()

	clock := func() time.Time { return ContractTime }
	ctx := context.Background()

	insertAll := func(t *testing.T, g inventory.Gateway, drafts ...inventory.Draft) []inventory.Product {
		t.Helper()
		out := make([]inventory.Product, 0, len(drafts))
		for _, d := range drafts {
			p, err := g.Insert(ctx, d.Product())
			if err != nil {
				t.Fatalf("Insert %s: %v", d.Name, err)
			}
			out = append(out, p)
		}
		return out
	}

	t.Run("insert assigns identity", func(t *testing.T) {
		g := newGateway(t, clock)
		p := insertAll(t, g, Laptop())[0]

		if p.ID == uuid.Nil {
			t.Fatal("expected an assigned id")
		}
		if !p.CreatedAt.Equal(ContractTime) || p.CreatedAt.Location() != time.UTC {
			t.Errorf("CreatedAt = %v, want %v UTC", p.CreatedAt, ContractTime)
		}
		if p.UpdatedAt != nil {
			t.Errorf("UpdatedAt = %v, want nil", p.UpdatedAt)
		}

		got, ok, err := g.GetByID(ctx, p.ID)
		if err != nil || !ok {
			t.Fatalf("GetByID: ok=%v err=%v", ok, err)
		}
		if got.Name != "Laptop" || got.Category != "Electronics" || got.Quantity != 10 {
			t.Errorf("unexpected product %+v", got)
		}
		if !got.Price.Equal(decimal.RequireFromString("999.99")) {
			t.Errorf("price = %s, want 999.99", got.Price)
		}
		if !got.CreatedAt.Equal(ContractTime) {
			t.Errorf("stored CreatedAt = %v", got.CreatedAt)
		}
	})

	t.Run("insert ignores caller identity", func(t *testing.T) {
		g := newGateway(t, clock)
		supplied := uuid.New()
		in := Mouse().Product()
		in.ID = supplied

		p, err := g.Insert(ctx, in)
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if p.ID == supplied {
			t.Error("gateway must assign its own id")
		}
	})

	t.Run("get missing id", func(t *testing.T) {
		g := newGateway(t, clock)
		_, ok, err := g.GetByID(ctx, uuid.New())
		if err != nil || ok {
			t.Fatalf("expected absent, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("list all ordered by name", func(t *testing.T) {
		g := newGateway(t, clock)
		lower := DeskChair()
		lower.Name = "desk lamp"
		insertAll(t, g, Mouse(), lower, Laptop(), DeskChair())

		all, err := g.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		if got, want := productNames(all), []string{"Desk Chair", "Laptop", "Mouse", "desk lamp"}; !slices.Equal(got, want) {
			t.Errorf("ListAll order = %v, want %v", got, want)
		}
	})

	t.Run("list all empty", func(t *testing.T) {
		g := newGateway(t, clock)
		all, err := g.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		if len(all) != 0 {
			t.Errorf("expected no products, got %d", len(all))
		}
	})

	t.Run("update persists every field", func(t *testing.T) {
		g := newGateway(t, clock)
		p := insertAll(t, g, Laptop())[0]

		updatedAt := ContractTime.Add(time.Hour)
		p.Name = "Gaming Laptop"
		p.Category = "Computers"
		p.Price = decimal.RequireFromString("1299.50")
		p.Quantity = 0
		p.UpdatedAt = &updatedAt

		out, err := g.Update(ctx, p)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if out.ID != p.ID || out.Name != "Gaming Laptop" {
			t.Errorf("unexpected update result %+v", out)
		}

		got, _, err := g.GetByID(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Name != "Gaming Laptop" || got.Category != "Computers" || got.Quantity != 0 {
			t.Errorf("fields not persisted: %+v", got)
		}
		if !got.Price.Equal(decimal.RequireFromString("1299.5")) {
			t.Errorf("price = %s", got.Price)
		}
		if got.UpdatedAt == nil || !got.UpdatedAt.Equal(updatedAt) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, updatedAt)
		}
		if !got.CreatedAt.Equal(ContractTime) {
			t.Errorf("CreatedAt changed to %v", got.CreatedAt)
		}
	})

	t.Run("update missing id", func(t *testing.T) {
		g := newGateway(t, clock)
		p := Laptop().Product()
		p.ID = uuid.New()

		_, err := g.Update(ctx, p)
		if !inventory.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		g := newGateway(t, clock)
		ps := insertAll(t, g, Laptop(), Mouse())

		for i := 0; i < 2; i++ {
			if err := g.Delete(ctx, ps[0].ID); err != nil {
				t.Fatalf("Delete #%d: %v", i+1, err)
			}
		}
		if err := g.Delete(ctx, uuid.New()); err != nil {
			t.Fatalf("Delete missing: %v", err)
		}

		all, err := g.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		if got := productNames(all); !slices.Equal(got, []string{"Mouse"}) {
			t.Errorf("remaining = %v", got)
		}
	})

	t.Run("search", func(t *testing.T) {
		g := newGateway(t, clock)
		wild := Mouse()
		wild.Name = "100% Cotton_Shirt"
		wild.Category = "Apparel"
		insertAll(t, g, Laptop(), Mouse(), DeskChair(), wild)

		tests := []struct {
			term string
			want []string
		}{
			{"lap", []string{"Laptop"}},
			{"LAPTOP", []string{"Laptop"}},
			{"electronics", []string{"Laptop", "Mouse"}},
			{"furn", []string{"Desk Chair"}},
			{"o", []string{"100% Cotton_Shirt", "Laptop", "Mouse"}},
			{"%", []string{"100% Cotton_Shirt"}},
			{"n_s", []string{"100% Cotton_Shirt"}},
			{"p_", nil},
			{"keyboard", nil},
		}
		for _, tt := range tests {
			got, err := g.Search(ctx, tt.term)
			if err != nil {
				t.Fatalf("Search(%q): %v", tt.term, err)
			}
			if names := productNames(got); !slices.Equal(names, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.term, names, tt.want)
			}
		}
	})
}

func productNames(products []inventory.Product) []string {
	var out []string
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}
