package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-inventory-cache/cache"
	"github.com/goliatone/go-inventory-cache/inventory"
	"github.com/goliatone/go-inventory-cache/pkg/testsupport"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recordingMetrics captures the outcomes reported by the service.
type recordingMetrics struct {
	mu               sync.Mutex
	hits             int
	misses           int
	populateFailures int
	invalidations    int
	invalidationErrs int
}

func (m *recordingMetrics) CacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *recordingMetrics) CachePopulateFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.populateFailures++
}

func (m *recordingMetrics) Invalidation(removed int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidations++
	if err != nil {
		m.invalidationErrs++
	}
}

type fixture struct {
	gateway *testsupport.MemoryGateway
	store   *testsupport.MemoryStore
	metrics *recordingMetrics
	logs    *observer.ObservedLogs
	svc     *inventory.Service
}

func newFixture(t *testing.T, opts ...inventory.Option) *fixture {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	f := &fixture{
		gateway: testsupport.NewMemoryGateway(),
		store:   testsupport.NewMemoryStore(),
		metrics: &recordingMetrics{},
		logs:    logs,
	}
	opts = append([]inventory.Option{
		inventory.WithLogger(zap.New(core)),
		inventory.WithMetrics(f.metrics),
	}, opts...)
	f.svc = inventory.NewService(f.gateway, f.store, opts...)
	return f
}

func (f *fixture) resetCalls() {
	f.gateway.ResetCalls()
	f.store.ResetCalls()
}

func names(products []inventory.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestService_Keys(t *testing.T) {
	f := newFixture(t)

	if got := f.svc.AllKey(); got != "products_all" {
		t.Errorf("AllKey() = %q, want %q", got, "products_all")
	}
	if got := f.svc.InvalidationPattern(); got != "products_*" {
		t.Errorf("InvalidationPattern() = %q, want %q", got, "products_*")
	}
}

func TestService_GetAll_MissReadsGatewayAndPopulatesOnce(t *testing.T) {
	f := newFixture(t)
	f.gateway.Seed(testsupport.Mouse(), testsupport.Laptop())

	products, err := f.svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}

	if want := []string{"Laptop", "Mouse"}; !equalStrings(names(products), want) {
		t.Errorf("GetAll() names = %v, want %v", names(products), want)
	}
	if n := f.gateway.CallCount(testsupport.OpListAll); n != 1 {
		t.Errorf("expected 1 gateway read, got %d", n)
	}
	if n := f.store.CallCount(testsupport.OpSet); n != 1 {
		t.Errorf("expected 1 cache populate, got %d", n)
	}
	if !f.store.Has("products_all") {
		t.Error("expected products_all to be cached")
	}
	if f.metrics.misses != 1 || f.metrics.hits != 0 {
		t.Errorf("expected 1 miss and 0 hits, got misses=%d hits=%d", f.metrics.misses, f.metrics.hits)
	}
}

func TestService_GetAll_HitSkipsGateway(t *testing.T) {
	f := newFixture(t)
	f.gateway.Seed(testsupport.Laptop(), testsupport.Mouse())
	ctx := context.Background()

	first, err := f.svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("first GetAll() error = %v", err)
	}
	f.resetCalls()

	second, err := f.svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("second GetAll() error = %v", err)
	}

	if n := f.gateway.CallCount(testsupport.OpListAll); n != 0 {
		t.Errorf("cache hit must not reach the gateway, got %d reads", n)
	}
	if n := f.store.CallCount(testsupport.OpSet); n != 0 {
		t.Errorf("cache hit must not repopulate, got %d sets", n)
	}
	if len(first) != len(second) {
		t.Fatalf("expected %d products from cache, got %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || !first[i].Price.Equal(second[i].Price) {
			t.Errorf("cached product %d = %+v, want %+v", i, second[i], first[i])
		}
		if !first[i].CreatedAt.Equal(second[i].CreatedAt) || second[i].CreatedAt.Location() != time.UTC {
			t.Errorf("cached CreatedAt = %v, want %v in UTC", second[i].CreatedAt, first[i].CreatedAt)
		}
	}
	if f.metrics.hits != 1 {
		t.Errorf("expected 1 hit, got %d", f.metrics.hits)
	}
}

func TestService_GetAll_ExpiredEntryIsMiss(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, inventory.WithTTL(time.Minute))
	f.store.SetClock(func() time.Time { return now })
	f.gateway.Seed(testsupport.Laptop())
	ctx := context.Background()

	if _, err := f.svc.GetAll(ctx); err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	f.resetCalls()

	now = now.Add(time.Minute)
	if _, err := f.svc.GetAll(ctx); err != nil {
		t.Fatalf("GetAll() after expiry error = %v", err)
	}

	if n := f.gateway.CallCount(testsupport.OpListAll); n != 1 {
		t.Errorf("expired entry should be re-read from the gateway, got %d reads", n)
	}
}

func TestService_GetAll_CacheReadFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.gateway.Seed(testsupport.Laptop())
	boom := errors.New("cache timeout")
	f.store.FailOn(testsupport.OpGet, boom)

	_, err := f.svc.GetAll(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected cache error to propagate, got %v", err)
	}
	if n := f.gateway.CallCount(testsupport.OpListAll); n != 0 {
		t.Errorf("a cache failure must not be treated as a miss, got %d gateway reads", n)
	}
}

func TestService_GetAll_MalformedEntryIsError(t *testing.T) {
	f := newFixture(t)
	f.gateway.Seed(testsupport.Laptop())
	f.store.Put("products_all", []byte{0xc1, 0xff, 0x00})

	_, err := f.svc.GetAll(context.Background())
	if !errors.Is(err, cache.ErrMalformedEntry) {
		t.Fatalf("expected ErrMalformedEntry, got %v", err)
	}
	if n := f.gateway.CallCount(testsupport.OpListAll); n != 0 {
		t.Errorf("malformed entry must not fall back to the gateway, got %d reads", n)
	}
}

func TestService_GetAll_GatewayFailureSkipsPopulate(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("db down")
	f.gateway.FailOn(testsupport.OpListAll, boom)

	if _, err := f.svc.GetAll(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if n := f.store.CallCount(testsupport.OpSet); n != 0 {
		t.Errorf("expected no cache populate after a gateway failure, got %d", n)
	}
}

func TestService_GetAll_PopulateFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.gateway.Seed(testsupport.Laptop())
	f.store.FailOn(testsupport.OpSet, errors.New("read only replica"))

	products, err := f.svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("populate failure should not fail the read, got %v", err)
	}
	if len(products) != 1 {
		t.Errorf("expected 1 product, got %d", len(products))
	}
	if f.metrics.populateFailures != 1 {
		t.Errorf("expected populate failure to be counted, got %d", f.metrics.populateFailures)
	}
	if n := f.logs.FilterMessage("failed to cache product list").Len(); n != 1 {
		t.Errorf("expected populate failure to be logged once, got %d", n)
	}
}

func TestService_GetAll_EmptyStore(t *testing.T) {
	f := newFixture(t)

	products, err := f.svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if products == nil || len(products) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", products)
	}
}

func TestService_CreateThenGetByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, draft := range testsupport.LoadDrafts(t, testsupport.FixturePath("products.json")) {
		created, err := f.svc.Create(ctx, draft)
		if err != nil {
			t.Fatalf("Create(%s) error = %v", draft.Name, err)
		}
		if created.ID == uuid.Nil {
			t.Errorf("Create(%s) did not assign an id", draft.Name)
		}
		if created.CreatedAt.IsZero() {
			t.Errorf("Create(%s) did not assign CreatedAt", draft.Name)
		}
		if created.UpdatedAt != nil {
			t.Errorf("Create(%s) set UpdatedAt = %v, want nil", draft.Name, created.UpdatedAt)
		}

		fetched, ok, err := f.svc.GetByID(ctx, created.ID)
		if err != nil || !ok {
			t.Fatalf("GetByID(%s) = ok %v, err %v", created.ID, ok, err)
		}
		got := fetched.Draft()
		if got.Name != draft.Name || got.Category != draft.Category ||
			!got.Price.Equal(draft.Price) || got.Quantity != draft.Quantity {
			t.Errorf("GetByID() = %+v, want fields of %+v", got, draft)
		}
	}
}

func TestService_GetByID_BypassesCache(t *testing.T) {
	f := newFixture(t)
	seeded := f.gateway.Seed(testsupport.Laptop())

	if _, ok, err := f.svc.GetByID(context.Background(), seeded[0].ID); err != nil || !ok {
		t.Fatalf("GetByID() ok=%v err=%v", ok, err)
	}
	if calls := f.store.Calls(); len(calls) != 0 {
		t.Errorf("GetByID must not touch the cache, got %v", calls)
	}
}

func TestService_GetByID_MissingIsNotAnError(t *testing.T) {
	f := newFixture(t)

	_, ok, err := f.svc.GetByID(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if ok {
		t.Error("expected missing product to report ok=false")
	}
}

func TestService_Create_InvalidatesAfterWrite(t *testing.T) {
	f := newFixture(t)
	f.gateway.Seed(testsupport.Laptop())
	ctx := context.Background()

	if _, err := f.svc.GetAll(ctx); err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if _, err := f.svc.Create(ctx, testsupport.Mouse()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if f.store.Has("products_all") {
		t.Error("expected products_all to be invalidated after create")
	}

	products, err := f.svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if want := []string{"Laptop", "Mouse"}; !equalStrings(names(products), want) {
		t.Errorf("GetAll() after create = %v, want %v", names(products), want)
	}
}

func TestService_Create_FailedWriteDoesNotInvalidate(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("constraint violation")
	f.gateway.FailOn(testsupport.OpInsert, boom)

	if _, err := f.svc.Create(context.Background(), testsupport.Laptop()); !errors.Is(err, boom) {
		t.Fatalf("expected insert error, got %v", err)
	}
	if calls := f.store.Calls(); len(calls) != 0 {
		t.Errorf("expected no cache calls after a failed write, got %v", calls)
	}
}

func TestService_Update_MissingIDIsNotFound(t *testing.T) {
	f := newFixture(t)
	missing := uuid.New()

	_, err := f.svc.Update(context.Background(), missing, testsupport.Laptop())
	if !inventory.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	var nf *inventory.NotFoundError
	if !errors.As(err, &nf) || nf.ID != missing {
		t.Errorf("expected NotFoundError carrying %s, got %v", missing, err)
	}
	if calls := f.store.Calls(); len(calls) != 0 {
		t.Errorf("not found must not reach the cache, got %v", calls)
	}
	if n := f.gateway.CallCount(testsupport.OpUpdate); n != 0 {
		t.Errorf("not found must not write, got %d updates", n)
	}
}

func TestService_Update_OverlaysMutableFields(t *testing.T) {
	stamp := time.Date(2024, 3, 1, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))
	f := newFixture(t, inventory.WithClock(func() time.Time { return stamp }))
	seeded := f.gateway.Seed(testsupport.Laptop())[0]

	changes := testsupport.DeskChair()
	updated, err := f.svc.Update(context.Background(), seeded.ID, changes)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.ID != seeded.ID {
		t.Errorf("ID changed: %s -> %s", seeded.ID, updated.ID)
	}
	if !updated.CreatedAt.Equal(seeded.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", seeded.CreatedAt, updated.CreatedAt)
	}
	if updated.UpdatedAt == nil || !updated.UpdatedAt.Equal(stamp) || updated.UpdatedAt.Location() != time.UTC {
		t.Errorf("UpdatedAt = %v, want %v in UTC", updated.UpdatedAt, stamp)
	}
	got := updated.Draft()
	if got.Name != changes.Name || got.Category != changes.Category ||
		!got.Price.Equal(changes.Price) || got.Quantity != changes.Quantity {
		t.Errorf("Update() fields = %+v, want %+v", got, changes)
	}

	stored, _, _ := f.gateway.GetByID(context.Background(), seeded.ID)
	if stored.Name != changes.Name {
		t.Errorf("gateway holds %q, want %q", stored.Name, changes.Name)
	}
	if n := f.store.CallCount(testsupport.OpScanKeys); n != 1 {
		t.Errorf("expected one invalidation scan, got %d", n)
	}
}

func TestService_Delete_MissingIDStillInvalidates(t *testing.T) {
	f := newFixture(t)
	f.store.Put("products_all", []byte("stale"))

	if err := f.svc.Delete(context.Background(), uuid.New()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n := f.store.CallCount(testsupport.OpScanKeys); n != 1 {
		t.Errorf("expected invalidation scan, got %d", n)
	}
	if f.store.Has("products_all") {
		t.Error("expected products_all to be removed")
	}
}

func TestService_Delete_GatewayFailureSkipsInvalidation(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("lock timeout")
	f.gateway.FailOn(testsupport.OpRemove, boom)

	if err := f.svc.Delete(context.Background(), uuid.New()); !errors.Is(err, boom) {
		t.Fatalf("expected delete error, got %v", err)
	}
	if calls := f.store.Calls(); len(calls) != 0 {
		t.Errorf("expected no cache calls, got %v", calls)
	}
}

func TestService_Invalidation_LeavesOtherNamespaces(t *testing.T) {
	f := newFixture(t)
	f.store.Put("products_all", []byte("x"))
	f.store.Put("products_by_category", []byte("x"))
	f.store.Put("orders_all", []byte("x"))

	if _, err := f.svc.Create(context.Background(), testsupport.Laptop()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if f.store.Has("products_all") || f.store.Has("products_by_category") {
		t.Error("expected every products_* key to be removed")
	}
	if !f.store.Has("orders_all") {
		t.Error("expected keys outside the namespace to survive")
	}
}

func TestService_InvalidationFailure(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("lenient logs and succeeds", func(t *testing.T) {
		f := newFixture(t)
		f.store.FailOn(testsupport.OpScanKeys, boom)

		created, err := f.svc.Create(context.Background(), testsupport.Laptop())
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if created.ID == uuid.Nil {
			t.Error("expected created product to be returned")
		}
		if n := f.logs.FilterMessage("product cache invalidation failed").Len(); n != 1 {
			t.Errorf("expected invalidation failure to be logged once, got %d", n)
		}
		if f.metrics.invalidationErrs != 1 {
			t.Errorf("expected 1 invalidation error, got %d", f.metrics.invalidationErrs)
		}
	})

	t.Run("strict returns error with record", func(t *testing.T) {
		f := newFixture(t, inventory.WithStrictInvalidation())
		f.store.FailOn(testsupport.OpScanKeys, boom)

		created, err := f.svc.Create(context.Background(), testsupport.Laptop())
		if !errors.Is(err, inventory.ErrInvalidationFailed) || !errors.Is(err, boom) {
			t.Fatalf("expected ErrInvalidationFailed wrapping cause, got %v", err)
		}
		if created.ID == uuid.Nil {
			t.Error("expected the stored record alongside the error")
		}
		if n := f.gateway.CallCount(testsupport.OpInsert); n != 1 {
			t.Errorf("expected write to have happened, got %d inserts", n)
		}
	})
}

func TestService_Search(t *testing.T) {
	f := newFixture(t)
	f.gateway.Seed(testsupport.LoadDrafts(t, testsupport.FixturePath("products.json"))...)
	ctx := context.Background()

	tests := []struct {
		name string
		term string
		want []string
	}{
		{name: "by name", term: "mouse", want: []string{"Mouse"}},
		{name: "by category", term: "electronics", want: []string{"Laptop", "Mouse"}},
		{name: "substring", term: "ug", want: []string{"Coffee Mug"}},
		{name: "no match", term: "garden", want: []string{}},
		{name: "empty is full list", term: "", want: []string{"Coffee Mug", "Desk Chair", "Laptop", "Mouse"}},
		{name: "whitespace is full list", term: "   ", want: []string{"Coffee Mug", "Desk Chair", "Laptop", "Mouse"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Search(ctx, tt.term)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", tt.term, err)
			}
			if !equalStrings(names(got), tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.term, names(got), tt.want)
			}
		})
	}

	if calls := f.store.Calls(); len(calls) != 0 {
		t.Errorf("Search must never touch the cache, got %v", calls)
	}
}

func TestService_SearchEmptyMatchesGetAllIgnoringCache(t *testing.T) {
	f := newFixture(t)
	f.gateway.Seed(testsupport.Mouse(), testsupport.Laptop(), testsupport.DeskChair())
	ctx := context.Background()

	all, err := f.svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}

	// Change the store behind the cache's back; Search must see it.
	f.gateway.Seed(testsupport.Mouse())

	searched, err := f.svc.Search(ctx, "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(searched) != len(all)+1 {
		t.Errorf("Search(\"\") returned %d products, want %d", len(searched), len(all)+1)
	}

	fresh, err := f.gateway.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	for i := range fresh {
		if fresh[i].ID != searched[i].ID {
			t.Fatalf("Search(\"\") order differs from ListAll at %d", i)
		}
	}
}

func TestService_LaptopMouseScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	laptop, err := f.svc.Create(ctx, testsupport.Laptop())
	if err != nil {
		t.Fatalf("Create(Laptop) error = %v", err)
	}
	mouse, err := f.svc.Create(ctx, testsupport.Mouse())
	if err != nil {
		t.Fatalf("Create(Mouse) error = %v", err)
	}

	found, err := f.svc.Search(ctx, "mouse")
	if err != nil || len(found) != 1 || found[0].ID != mouse.ID {
		t.Fatalf("Search(mouse) = %v, %v; want only Mouse", names(found), err)
	}

	found, err = f.svc.Search(ctx, "electronics")
	if err != nil || !equalStrings(names(found), []string{"Laptop", "Mouse"}) {
		t.Fatalf("Search(electronics) = %v, %v; want [Laptop Mouse]", names(found), err)
	}

	// Warm the cache so the update has something to invalidate.
	if _, err := f.svc.GetAll(ctx); err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}

	changes := laptop.Draft()
	changes.Quantity = 8
	if _, err := f.svc.Update(ctx, laptop.ID, changes); err != nil {
		t.Fatalf("Update(Laptop) error = %v", err)
	}

	all, err := f.svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 2 || all[0].Quantity != 8 || all[1].Quantity != 50 {
		t.Fatalf("GetAll() after update = %+v, want Laptop qty 8 and Mouse qty 50", all)
	}

	if err := f.svc.Delete(ctx, mouse.ID); err != nil {
		t.Fatalf("Delete(Mouse) error = %v", err)
	}

	all, err = f.svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 1 || all[0].ID != laptop.ID {
		t.Fatalf("GetAll() after delete = %v, want only Laptop", names(all))
	}
}

func TestService_ConcurrentWritesAreVisible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seeded := f.gateway.Seed(testsupport.Laptop(), testsupport.Mouse())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Create(ctx, testsupport.DeskChair()); err != nil {
				t.Errorf("Create() error = %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := f.svc.GetAll(ctx); err != nil {
				t.Errorf("GetAll() error = %v", err)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		changes := seeded[0].Draft()
		changes.Quantity = 1
		if _, err := f.svc.Update(ctx, seeded[0].ID, changes); err != nil {
			t.Errorf("Update() error = %v", err)
		}
	}()
	wg.Wait()

	// With all writes finished, the next miss-or-hit must reflect them once
	// any entry cached mid-flight has been invalidated by a later write.
	if err := f.svc.Delete(ctx, uuid.New()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	all, err := f.svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 22 {
		t.Errorf("expected 22 products, got %d", len(all))
	}
	for _, p := range all {
		if p.ID == seeded[0].ID && p.Quantity != 1 {
			t.Errorf("expected updated quantity 1, got %d", p.Quantity)
		}
	}
}

func TestService_InvalidationRaceKeepsEntryUntilTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, inventory.WithTTL(time.Minute))
	f.store.SetClock(func() time.Time { return now })
	seeded := f.gateway.Seed(testsupport.Laptop())
	ctx := context.Background()

	// A slow reader that listed the store before the write lands its
	// cache populate after the invalidation scan took its snapshot.
	f.store.OnScan(func() {
		f.store.OnScan(nil)
		err := cache.SetValue(ctx, f.store, cache.MsgpackCodec{}, "products_all", seeded, time.Minute)
		if err != nil {
			t.Errorf("SetValue() during scan error = %v", err)
		}
	})

	if _, err := f.svc.Create(ctx, testsupport.Mouse()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	stale, err := f.svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(stale) != 1 {
		t.Fatalf("expected the racing entry to survive the scan, got %d products", len(stale))
	}

	now = now.Add(time.Minute)
	fresh, err := f.svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(fresh) != 2 {
		t.Errorf("expected the stale entry to expire within its TTL, got %d products", len(fresh))
	}
}

func TestService_JSONCodec(t *testing.T) {
	f := newFixture(t, inventory.WithCodec(cache.JSONCodec{}), inventory.WithNamespace("Catalog Items"))
	f.gateway.Seed(testsupport.Laptop())
	ctx := context.Background()

	if _, err := f.svc.GetAll(ctx); err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if !f.store.Has("catalog_items_all") {
		t.Fatal("expected catalog_items_all to be cached")
	}

	all, err := f.svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() from cache error = %v", err)
	}
	if len(all) != 1 || all[0].Name != "Laptop" {
		t.Errorf("unexpected cached list %v", names(all))
	}
}

func TestService_CanceledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.svc.GetAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
