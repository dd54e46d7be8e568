package blockstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)

	tests := []struct {
		name  string
		id    BlockID
		level StorageLevel
	}{
		{"memory only", "block-mem", MemoryOnly},
		{"disk only", "block-disk", DiskOnly},
		{"memory and disk", "block-both", MemoryAndDisk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte("payload for " + tt.id)
			require.NoError(t, store.Put(tt.id, data, tt.level))

			got, err := store.Get(tt.id)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestGetAbsentBlock(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get("never-stored")
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestGetReturnsACopy(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Put("b", []byte{1, 2, 3}, MemoryOnly))

	got, err := store.Get("b")
	require.NoError(t, err)
	got[0] = 99

	fresh, err := store.Get("b")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, fresh, "callers must not be able to mutate stored blocks")
}

func TestPutReplacesExisting(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Put("b", []byte("old"), MemoryAndDisk))
	require.NoError(t, store.Put("b", []byte("new"), MemoryAndDisk))

	got, err := store.Get("b")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestDiskOnlyEvictsMemoryCopy(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Put("b", []byte("v1"), MemoryOnly))
	require.NoError(t, store.Put("b", []byte("v2"), DiskOnly))

	got, err := store.Get("b")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got, "stale memory copy must not shadow the disk write")
}

func TestMemoryOnlyEvictsDiskCopy(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Put("b", []byte("v1"), DiskOnly))
	require.NoError(t, store.Put("b", []byte("v2"), MemoryOnly))

	got, err := store.Get("b")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	// Simulate the memory level being lost: only the disk level remains, and
	// the superseded v1 must not resurface there
	store.mu.Lock()
	delete(store.mem, "b")
	store.mu.Unlock()

	_, err = store.Get("b")
	assert.ErrorIs(t, err, ErrBlockNotFound, "stale disk copy must not outlive a memory-only replacement")
}

func TestRemove(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Put("b", []byte("x"), MemoryAndDisk))

	require.NoError(t, store.Remove("b"))
	_, err := store.Get("b")
	assert.ErrorIs(t, err, ErrBlockNotFound)

	err = store.Remove("b")
	assert.ErrorIs(t, err, ErrBlockNotFound)
}
