package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// mapStore is an in-memory StateStore.
type mapStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string][]byte)}
}

func (m *mapStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *mapStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	m.saves++
	return nil
}

func (m *mapStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// failingStore fails every Save, and every Load when loadErr is set.
type failingStore struct {
	mu      sync.Mutex
	loadErr error
	saves   int
}

var errStoreDown = errors.New("store down")

func (f *failingStore) Load(context.Context, string) ([]byte, error) {
	return nil, f.loadErr
}

func (f *failingStore) Save(context.Context, string, []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	return errStoreDown
}

func (f *failingStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

// newTestCache builds a cache on a fake clock with the given config.
func newTestCache(t *testing.T, cfg Config, opts ...Option) (*Cache, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	all := append([]Option{WithConfig(cfg), WithClock(clock.Now)}, opts...)
	c, err := New(context.Background(), all...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

func ptr[T any](v T) *T {
	return &v
}
