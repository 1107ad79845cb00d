package fsm

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storageUnderTest enumerates the backends. The Redis case is gated on
// REDIS_ADDR so the suite stays runnable without infrastructure.
func storageUnderTest(t *testing.T) map[string]Storage {
	t.Helper()

	backends := map[string]Storage{
		"memory": NewMemoryStorage(),
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		t.Cleanup(func() { _ = client.Close() })
		backends["redis"] = NewRedisStorage(client)
	}
	return backends
}

func TestStorageDataLifecycle(t *testing.T) {
	key := StorageKey{ChatID: 42, UserID: 7}

	for name, storage := range storageUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, storage.Clear(ctx, key))

			data, err := storage.GetData(ctx, key)
			require.NoError(t, err)
			assert.Empty(t, data)

			require.NoError(t, storage.SetData(ctx, key, map[string]any{"a": float64(1)}))
			require.NoError(t, storage.UpdateData(ctx, key, map[string]any{"b": float64(2)}))

			data, err = storage.GetData(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"a": float64(1), "b": float64(2)}, data)

			require.NoError(t, storage.Clear(ctx, key))
			data, err = storage.GetData(ctx, key)
			require.NoError(t, err)
			assert.Empty(t, data)
		})
	}
}

func TestStorageStateLifecycle(t *testing.T) {
	key := StorageKey{ChatID: 1, UserID: 2}
	wizard := NewStatesGroup("Wizard", "step1")

	for name, storage := range storageUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, storage.Clear(ctx, key))

			state, err := storage.GetState(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, "", state)

			require.NoError(t, storage.SetState(ctx, key, wizard.State("step1")))
			state, err = storage.GetState(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, "Wizard:step1", state)

			require.NoError(t, storage.SetState(ctx, key, None))
			state, err = storage.GetState(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, "", state)
		})
	}
}

func TestStorageClearRemovesBoth(t *testing.T) {
	key := StorageKey{ChatID: 9, UserID: 9}

	for name, storage := range storageUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, storage.SetData(ctx, key, map[string]any{"x": "y"}))
			require.NoError(t, storage.SetState(ctx, key, RawState("G:s")))

			require.NoError(t, storage.Clear(ctx, key))

			data, err := storage.GetData(ctx, key)
			require.NoError(t, err)
			assert.Empty(t, data)
			state, err := storage.GetState(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, "", state)
		})
	}
}

// UpdateData must be an atomic merge: concurrent single-key patches may not
// drop each other's writes.
func TestMemoryUpdateDataConcurrentMerge(t *testing.T) {
	storage := NewMemoryStorage()
	key := StorageKey{ChatID: 3, UserID: 4}
	ctx := context.Background()

	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for i, k := range keys {
		wg.Add(1)
		go func(k string, v int) {
			defer wg.Done()
			_ = storage.UpdateData(ctx, key, map[string]any{k: v})
		}(k, i)
	}
	wg.Wait()

	data, err := storage.GetData(ctx, key)
	require.NoError(t, err)
	assert.Len(t, data, len(keys))
	for i, k := range keys {
		assert.Equal(t, i, data[k])
	}
}

func TestMemoryGetDataReturnsCopy(t *testing.T) {
	storage := NewMemoryStorage()
	key := StorageKey{ChatID: 1, UserID: 1}
	ctx := context.Background()

	require.NoError(t, storage.SetData(ctx, key, map[string]any{"a": 1}))

	data, err := storage.GetData(ctx, key)
	require.NoError(t, err)
	data["a"] = 99

	again, err := storage.GetData(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, again["a"])
}

func TestDefaultKeyBuilder(t *testing.T) {
	tests := []struct {
		key  StorageKey
		part string
		want string
	}{
		{StorageKey{ChatID: 42, UserID: 7}, "data", "42:7:data"},
		{StorageKey{ChatID: 42, UserID: 7}, "state", "42:7:state"},
		{StorageKey{ChatID: 0, UserID: 7}, "data", "0:7:data"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultKeyBuilder(tt.key, tt.part))
	}
}

func TestContextFacade(t *testing.T) {
	storage := NewMemoryStorage()
	key := StorageKey{ChatID: 42, UserID: 7}
	fc := NewContext(storage, key)
	ctx := context.Background()

	require.NoError(t, fc.UpdateData(ctx, map[string]any{"name": "sam"}))
	require.NoError(t, fc.SetState(ctx, RawState("Wizard:step1")))

	// The facade reads through to the same record the raw key addresses.
	data, err := storage.GetData(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "sam", data["name"])

	state, err := fc.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Wizard:step1", state)

	require.NoError(t, fc.Clear(ctx))
	data, err = fc.GetData(ctx)
	require.NoError(t, err)
	assert.Empty(t, data)
	state, err = fc.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", state)
}
