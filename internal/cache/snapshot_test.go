package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()

	c, err := New(ctx, WithStateStore(store))
	require.NoError(t, err)

	require.NoError(t, c.UpdateConfig(ConfigUpdate{
		MaxBytes:   ptr(int64(4096)),
		DefaultTTL: ptr(90 * time.Second),
	}))
	c.Set(Files, "/a", "payload")
	_, _ = c.Get(Files, "/a")
	_, _ = c.Get(Files, "/a")
	_, _ = c.Get(Files, "/missing")
	require.NoError(t, c.Close())

	restored, err := New(ctx, WithStateStore(store))
	require.NoError(t, err)
	defer restored.Close()

	assert.Equal(t, int64(4096), restored.Config().MaxBytes)
	assert.Equal(t, 90*time.Second, restored.Config().DefaultTTL)
	assert.Equal(t, DefaultMaxEntries, restored.Config().MaxEntries)

	counters := restored.Counters()
	assert.Equal(t, uint64(2), counters.Hits)
	assert.Equal(t, uint64(1), counters.Misses)

	assert.Equal(t, 0, restored.Stats().EntryCount, "payloads are never persisted")
}

func TestPersistence_RecordLayout(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	clock := newFakeClock()

	c, err := New(ctx, WithStateStore(store), WithClock(clock.Now))
	require.NoError(t, err)
	c.Set(Folders, "/", []string{"secret-payload"})
	require.NoError(t, c.Close())

	raw := store.data[StateKey]
	require.NotEmpty(t, raw)
	assert.NotContains(t, string(raw), "secret-payload")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.Len(t, rec, 3)
	assert.Equal(t, map[string]any{
		"maxBytes":           float64(DefaultMaxBytes),
		"maxEntries":         float64(DefaultMaxEntries),
		"defaultTtlMs":       float64(DefaultTTL.Milliseconds()),
		"persistenceEnabled": true,
	}, rec["config"])
	assert.Equal(t, map[string]any{"hits": float64(0), "misses": float64(0)}, rec["stats"])
	assert.Equal(t, float64(clock.Now().UnixMilli()), rec["timestamp"])
}

func TestPersistence_DisabledSkipsWrites(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	cfg := DefaultConfig()
	cfg.PersistenceEnabled = false

	c, err := New(ctx, WithConfig(cfg), WithStateStore(store))
	require.NoError(t, err)
	c.Set(Files, "a", 1)
	c.Delete(Files, "a")
	require.NoError(t, c.Close())

	assert.Zero(t, store.saveCount())
}

func TestPersistence_DisablingIsPersisted(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()

	c, err := New(ctx, WithStateStore(store))
	require.NoError(t, err)
	require.NoError(t, c.UpdateConfig(ConfigUpdate{PersistenceEnabled: ptr(false)}))
	require.NoError(t, c.Close())

	restored, err := New(ctx, WithStateStore(store))
	require.NoError(t, err)
	defer restored.Close()
	assert.False(t, restored.Config().PersistenceEnabled)
}

func TestPersistence_SaveFailureFallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{}

	c, err := New(ctx, WithStateStore(store))
	require.NoError(t, err)

	c.Set(Files, "a", "v")
	require.NoError(t, c.Close())
	saves := store.saveCount()
	assert.GreaterOrEqual(t, saves, 1)
	assert.False(t, c.persisting())

	// Operations keep working in memory after the failure.
	c.Set(Files, "b", "v")
	v, ok := c.Get(Files, "b")
	require.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Equal(t, saves, store.saveCount())
}

func TestPersistence_LoadFailureIsMemoryOnly(t *testing.T) {
	store := &failingStore{loadErr: errStoreDown}

	c, err := New(context.Background(), WithStateStore(store))
	require.NoError(t, err)
	c.Set(Files, "a", 1)
	require.NoError(t, c.Close())

	assert.Nil(t, c.persist)
	assert.Zero(t, store.saveCount())
	assert.Equal(t, DefaultConfig(), c.Config())
}

func TestPersistence_CorruptedRecordUsesDefaults(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{{{"},
		{"invalid config", `{"config":{"maxBytes":-1,"maxEntries":5,"defaultTtlMs":1000},"stats":{"hits":9,"misses":9},"timestamp":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMapStore()
			store.data[StateKey] = []byte(tt.data)

			c, err := New(context.Background(), WithStateStore(store))
			require.NoError(t, err)
			defer c.Close()

			assert.Equal(t, DefaultConfig(), c.Config())
			assert.Zero(t, c.Counters().Hits)
			assert.NotNil(t, c.persist, "a corrupted record does not disable persistence")
		})
	}
}

func TestPersistence_CloseIsIdempotent(t *testing.T) {
	c, err := New(context.Background(), WithStateStore(newMapStore()))
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
