package attend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCredentialStoreRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileCredentialStore(dir)
	require.NoError(t, err)

	// Empty before any save.
	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("my-token"))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "my-token", token)

	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func TestFileCredentialStorePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileCredentialStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save("secret"))

	info, err := os.Stat(filepath.Join(dir, "token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileCredentialStoreTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "token"), []byte("  padded \n"), 0600))

	store, err := NewFileCredentialStore(dir)
	require.NoError(t, err)

	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "padded", token)
}

func TestMemoryCredentialStore(t *testing.T) {
	store := NewMemoryCredentialStore("seed")

	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "seed", token)

	require.NoError(t, store.Save("next"))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "next", token)

	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}
