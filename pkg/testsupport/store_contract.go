package testsupport

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/goliatone/go-inventory-cache/cache"
)

// StoreFactory builds an empty store. advance moves the store's notion of
// time forward so TTL expiry can be observed.
type StoreFactory func(t *testing.T) (store cache.Store, advance func(time.Duration))

// RunStoreContract checks the behaviour every cache.Store must share.
func RunStoreContract(t *testing.T, newStore StoreFactory) {
	t.Helper()
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		s, _ := newStore(t)
		if _, ok, err := s.Get(ctx, "products_all"); err != nil || ok {
			t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
		}
		if err := s.Set(ctx, "products_all", []byte("payload"), time.Minute); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, ok, err := s.Get(ctx, "products_all")
		if err != nil || !ok || string(got) != "payload" {
			t.Fatalf("Get = %q, %v, %v", got, ok, err)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		s, _ := newStore(t)
		_ = s.Set(ctx, "k", []byte("one"), time.Minute)
		_ = s.Set(ctx, "k", []byte("two"), time.Minute)
		got, _, _ := s.Get(ctx, "k")
		if string(got) != "two" {
			t.Errorf("expected last write to win, got %q", got)
		}
	})

	t.Run("ttl expiry", func(t *testing.T) {
		s, advance := newStore(t)
		if err := s.Set(ctx, "products_all", []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set: %v", err)
		}
		advance(30 * time.Second)
		if _, ok, _ := s.Get(ctx, "products_all"); !ok {
			t.Fatal("entry expired early")
		}
		advance(31 * time.Second)
		if _, ok, err := s.Get(ctx, "products_all"); err != nil || ok {
			t.Fatalf("expected expired entry to miss, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s, _ := newStore(t)
		_ = s.Set(ctx, "k", []byte("v"), time.Minute)
		if err := s.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, ok, _ := s.Get(ctx, "k"); ok {
			t.Error("deleted key still present")
		}
		if err := s.Delete(ctx, "k"); err != nil {
			t.Errorf("deleting a missing key: %v", err)
		}
	})

	t.Run("scan keys", func(t *testing.T) {
		s, _ := newStore(t)
		for _, key := range []string{"products_all", "products_7", "orders_all", "productsx"} {
			if err := s.Set(ctx, key, []byte("v"), time.Minute); err != nil {
				t.Fatalf("Set %s: %v", key, err)
			}
		}
		keys, err := s.ScanKeys(ctx, "products_*")
		if err != nil {
			t.Fatalf("ScanKeys: %v", err)
		}
		slices.Sort(keys)
		if want := []string{"products_7", "products_all"}; !slices.Equal(keys, want) {
			t.Errorf("ScanKeys = %v, want %v", keys, want)
		}
	})

	t.Run("usage errors", func(t *testing.T) {
		s, _ := newStore(t)
		if _, _, err := s.Get(ctx, ""); !errors.Is(err, cache.ErrEmptyKey) {
			t.Errorf("Get: %v", err)
		}
		if err := s.Set(ctx, " ", []byte("v"), time.Minute); !errors.Is(err, cache.ErrEmptyKey) {
			t.Errorf("Set: %v", err)
		}
		if err := s.Delete(ctx, ""); !errors.Is(err, cache.ErrEmptyKey) {
			t.Errorf("Delete: %v", err)
		}
		if _, err := s.ScanKeys(ctx, ""); !errors.Is(err, cache.ErrEmptyPattern) {
			t.Errorf("ScanKeys: %v", err)
		}
	})
}
