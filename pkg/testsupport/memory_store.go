package testsupport

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-inventory-cache/cache"
	"github.com/puzpuzpuz/xsync/v3"
)

// Store operation names used by MemoryStore.FailOn and CallCount.
const (
	OpGet      = "Get"
	OpSet      = "Set"
	OpDelete   = "Delete"
	OpScanKeys = "ScanKeys"
)

var _ cache.Store = (*MemoryStore)(nil)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is an in-process cache.Store for tests. It honours TTLs
// against an injectable clock, records every call and can be told to fail
// specific operations.
type MemoryStore struct {
	entries *xsync.MapOf[string, memoryEntry]

	mu     sync.Mutex
	now    func() time.Time
	calls  []string
	errs   map[string]error
	onScan func()
}

// NewMemoryStore returns an empty MemoryStore using time.Now.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: xsync.NewMapOf[string, memoryEntry](),
		now:     time.Now,
		errs:    make(map[string]error),
	}
}

// SetClock replaces the clock used for expiry.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// FailOn makes op return err until cleared with a nil err.
func (m *MemoryStore) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
		return
	}
	m.errs[op] = err
}

// OnScan registers a hook that runs after ScanKeys took its snapshot and
// before it returns, to simulate writes racing an invalidation.
func (m *MemoryStore) OnScan(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onScan = fn
}

// Calls returns the recorded operation names in order.
func (m *MemoryStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many times op was called.
func (m *MemoryStore) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == op {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log.
func (m *MemoryStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Has reports whether key holds a live entry, without recording a call.
func (m *MemoryStore) Has(key string) bool {
	entry, ok := m.entries.Load(key)
	return ok && !entry.expired(m.clock())
}

// Put stores raw bytes without recording a call.
func (m *MemoryStore) Put(key string, value []byte) {
	m.entries.Store(key, memoryEntry{value: append([]byte(nil), value...)})
}

// Get implements cache.Store.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := cache.ValidateKey(key); err != nil {
		return nil, false, err
	}
	if err := m.record(ctx, OpGet); err != nil {
		return nil, false, err
	}

	entry, ok := m.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	if entry.expired(m.clock()) {
		m.entries.Delete(key)
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

// Set implements cache.Store. A non-positive ttl never expires.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}
	if err := m.record(ctx, OpSet); err != nil {
		return err
	}

	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = m.clock().Add(ttl)
	}
	m.entries.Store(key, entry)
	return nil
}

// Delete implements cache.Store.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}
	if err := m.record(ctx, OpDelete); err != nil {
		return err
	}
	m.entries.Delete(key)
	return nil
}

// ScanKeys implements cache.Store.
func (m *MemoryStore) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	matcher, err := cache.CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	if err := m.record(ctx, OpScanKeys); err != nil {
		return nil, err
	}

	now := m.clock()
	var keys []string
	m.entries.Range(func(key string, entry memoryEntry) bool {
		if !entry.expired(now) && matcher.Match(key) {
			keys = append(keys, key)
		}
		return true
	})

	m.mu.Lock()
	hook := m.onScan
	m.mu.Unlock()
	if hook != nil {
		hook()
	}

	return keys, nil
}

func (m *MemoryStore) record(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, op)
	return m.errs[op]
}

func (m *MemoryStore) clock() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now()
}
