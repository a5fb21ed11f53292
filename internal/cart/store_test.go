package cart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cart.json")
	store := NewFileStore(path)

	lines, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, lines)

	saved := []Line{line("A", "20.00", 5)}
	saved[0].Quantity = 2
	require.NoError(t, store.Save(saved))

	lines, err = store.Load()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "A", lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "20", lines[0].UnitPrice.String())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Save([]Line{line("A", "1.00", 1)}))
	lines, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	require.NoError(t, store.Clear())
	lines, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, lines)
}
