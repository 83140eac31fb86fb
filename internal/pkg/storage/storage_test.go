package storage

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	handle, err := store.Store([]byte("scan bytes"), "application/pdf")
	require.NoError(t, err)
	assert.Contains(t, handle, ".pdf")

	path, err := store.Resolve(handle)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "scan bytes", string(data))

	require.NoError(t, store.Delete(handle))
	_, err = store.Resolve(handle)
	assert.Error(t, err)

	// Deleting an already-removed handle is fine
	assert.NoError(t, store.Delete(handle))
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	for _, handle := range []string{"", "../secrets", "a/b", `a\b`} {
		_, err := store.Resolve(handle)
		assert.Error(t, err, "handle %q", handle)
		assert.Error(t, store.Delete("../secrets"))
	}
}
